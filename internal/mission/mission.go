package mission

import (
	"time"

	missionDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/mission"
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

type Mission struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Department  string    `json:"department"`
	Stagiaires  []int64   `json:"stagiaires"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ClampProgress bounds p to [0, 100].
func ClampProgress(p int) int {
	if p < MinProgress {
		return MinProgress
	}
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}

// StatusForProgress derives the status implied by a progress value.
func StatusForProgress(p int) string {
	switch ClampProgress(p) {
	case MinProgress:
		return StatusNotStarted
	case MaxProgress:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// SetProgress clamps p and derives the status from it.
func (m *Mission) SetProgress(p int) {
	m.Progress = ClampProgress(p)
	m.Status = StatusForProgress(m.Progress)
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func ToDataModel(m *Mission) *missionDatamodel.Mission {
	return &missionDatamodel.Mission{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		Progress:    m.Progress,
		Department:  m.Department,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func FromDataModel(row *missionDatamodel.Mission, stagiaireIDs []int64) *Mission {
	if stagiaireIDs == nil {
		stagiaireIDs = []int64{}
	}
	return &Mission{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Status:      row.Status,
		Progress:    row.Progress,
		Department:  row.Department,
		Stagiaires:  stagiaireIDs,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
