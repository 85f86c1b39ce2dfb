package mission

import (
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal/core/common/validation"
)

// CreateMissionDTO is the create body. A given progress always wins over a given status.
type CreateMissionDTO struct {
	Title       string  `json:"title" validate:"required,notblank,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Status      string  `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
	Progress    *int    `json:"progress"`
	Department  string  `json:"department" validate:"max=100"`
	Stagiaires  []int64 `json:"stagiaires"`
}

func (d CreateMissionDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

// UpdateMissionDTO carries a partial update; nil fields are left untouched.
// A non-nil Stagiaires replaces the whole assignment list.
type UpdateMissionDTO struct {
	Title       *string  `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string  `json:"description" validate:"omitnil,max=5000"`
	Status      *string  `json:"status" validate:"omitnil,oneof=not_started in_progress completed"`
	Progress    *int     `json:"progress"`
	Department  *string  `json:"department" validate:"omitnil,max=100"`
	Stagiaires  *[]int64 `json:"stagiaires"`
}

func (d UpdateMissionDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

// Apply merges the provided fields into m. Assignments are handled by the service.
func (d UpdateMissionDTO) Apply(m *Mission) {
	if d.Title != nil {
		m.Title = strings.TrimSpace(*d.Title)
	}
	if d.Description != nil {
		m.Description = strings.TrimSpace(*d.Description)
	}
	if d.Department != nil {
		m.Department = strings.TrimSpace(*d.Department)
	}
	if d.Status != nil {
		m.Status = *d.Status
	}
	if d.Progress != nil {
		m.SetProgress(*d.Progress)
	}
}

type UpdateProgressDTO struct {
	Progress *int `json:"progress" validate:"required"`
}

func (d UpdateProgressDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

type ListFilter struct {
	Status     string
	Department string
	Order      string
	Limit      int
	Offset     int
}

type MissionsResponse struct {
	Missions []*Mission `json:"missions"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// uniqueIDs drops duplicates and keeps the first-seen order.
func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
