package evaluation

import "time"

type Evaluation struct {
	ID              int64      `gorm:"primaryKey"`
	StagiaireID     int64      `gorm:"column:stagiaire_id;not null;index"`
	EvaluatorID     int64      `gorm:"column:evaluator_id;not null;index"`
	TechnicalSkills float64    `gorm:"column:technical_skills;not null"`
	Communication   float64    `gorm:"column:communication;not null"`
	Teamwork        float64    `gorm:"column:teamwork;not null"`
	Initiative      float64    `gorm:"column:initiative;not null"`
	AverageScore    float64    `gorm:"column:average_score;not null"`
	Comment         string     `gorm:"column:comment"`
	Status          string     `gorm:"column:status;not null;default:draft"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
