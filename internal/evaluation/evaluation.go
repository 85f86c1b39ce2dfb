package evaluation

import (
	"math"
	"time"

	evaluationDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/evaluation"
)

const (
	StatusDraft    = "draft"
	StatusReviewed = "reviewed"
)

const (
	MinScore = 0
	MaxScore = 5
)

type Evaluation struct {
	ID              int64      `json:"id"`
	StagiaireID     int64      `json:"stagiaireId"`
	EvaluatorID     int64      `json:"evaluatorId"`
	TechnicalSkills float64    `json:"technicalSkills"`
	Communication   float64    `json:"communication"`
	Teamwork        float64    `json:"teamwork"`
	Initiative      float64    `json:"initiative"`
	AverageScore    float64    `json:"averageScore"`
	Comment         string     `json:"comment"`
	Status          string     `json:"status"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// AverageScore returns the mean of scores rounded to two decimals.
func AverageScore(scores ...float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return math.Round(sum/float64(len(scores))*100) / 100
}

// Recompute refreshes AverageScore from the four sub-scores.
func (e *Evaluation) Recompute() {
	e.AverageScore = AverageScore(e.TechnicalSkills, e.Communication, e.Teamwork, e.Initiative)
}

func (e *Evaluation) IsReviewed() bool {
	return e.Status == StatusReviewed
}

func IsValidStatus(status string) bool {
	return status == StatusDraft || status == StatusReviewed
}

func ToDataModel(e *Evaluation) *evaluationDatamodel.Evaluation {
	return &evaluationDatamodel.Evaluation{
		ID:              e.ID,
		StagiaireID:     e.StagiaireID,
		EvaluatorID:     e.EvaluatorID,
		TechnicalSkills: e.TechnicalSkills,
		Communication:   e.Communication,
		Teamwork:        e.Teamwork,
		Initiative:      e.Initiative,
		AverageScore:    e.AverageScore,
		Comment:         e.Comment,
		Status:          e.Status,
		ReviewedAt:      e.ReviewedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModel(row *evaluationDatamodel.Evaluation) *Evaluation {
	return &Evaluation{
		ID:              row.ID,
		StagiaireID:     row.StagiaireID,
		EvaluatorID:     row.EvaluatorID,
		TechnicalSkills: row.TechnicalSkills,
		Communication:   row.Communication,
		Teamwork:        row.Teamwork,
		Initiative:      row.Initiative,
		AverageScore:    row.AverageScore,
		Comment:         row.Comment,
		Status:          row.Status,
		ReviewedAt:      row.ReviewedAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
