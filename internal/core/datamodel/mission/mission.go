package mission

import "time"

type Mission struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"column:status;not null;default:not_started;index"`
	Progress    int       `gorm:"column:progress;not null;default:0"`
	Department  string    `gorm:"column:department;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Mission) TableName() string {
	return "missions"
}

// MissionStagiaire is the assignment join row between a mission and a stagiaire.
type MissionStagiaire struct {
	MissionID   int64     `gorm:"column:mission_id;primaryKey"`
	StagiaireID int64     `gorm:"column:stagiaire_id;primaryKey;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (MissionStagiaire) TableName() string {
	return "mission_stagiaires"
}
