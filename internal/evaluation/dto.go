package evaluation

import (
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/common/validation"
)

const maxCommentLength = 2000

// CreateEvaluationDTO is the create body. averageScore is always computed server-side,
// so a client-sent value is ignored.
type CreateEvaluationDTO struct {
	StagiaireID     int64    `json:"stagiaireId"`
	EvaluatorID     *int64   `json:"evaluatorId"`
	TechnicalSkills *float64 `json:"technicalSkills"`
	Communication   *float64 `json:"communication"`
	Teamwork        *float64 `json:"teamwork"`
	Initiative      *float64 `json:"initiative"`
	Comment         string   `json:"comment"`
}

func (d CreateEvaluationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("stagiaireId", d.StagiaireID).Required()
	scoreFields(v, d.TechnicalSkills, d.Communication, d.Teamwork, d.Initiative, true)
	v.Field("comment", d.Comment).MaxLength(maxCommentLength)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateEvaluationDTO carries a partial update; nil fields are left untouched.
type UpdateEvaluationDTO struct {
	TechnicalSkills *float64 `json:"technicalSkills"`
	Communication   *float64 `json:"communication"`
	Teamwork        *float64 `json:"teamwork"`
	Initiative      *float64 `json:"initiative"`
	Comment         *string  `json:"comment"`
}

func (d UpdateEvaluationDTO) Validate() error {
	v := validation.NewValidator()
	scoreFields(v, d.TechnicalSkills, d.Communication, d.Teamwork, d.Initiative, false)
	if d.Comment != nil {
		v.Field("comment", *d.Comment).MaxLength(maxCommentLength)
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d UpdateEvaluationDTO) ChangesScores() bool {
	return d.TechnicalSkills != nil || d.Communication != nil || d.Teamwork != nil || d.Initiative != nil
}

// Apply merges the provided fields into e and recomputes the average.
func (d UpdateEvaluationDTO) Apply(e *Evaluation) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.TechnicalSkills, d.TechnicalSkills)
	set(&e.Communication, d.Communication)
	set(&e.Teamwork, d.Teamwork)
	set(&e.Initiative, d.Initiative)
	if d.Comment != nil {
		e.Comment = strings.TrimSpace(*d.Comment)
	}
	e.Recompute()
}

func scoreFields(v *validation.ValidationBuilder, technical, communication, teamwork, initiative *float64, required bool) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"technicalSkills", technical},
		{"communication", communication},
		{"teamwork", teamwork},
		{"initiative", initiative},
	}
	for _, f := range fields {
		fv := v.Field(f.name, f.value)
		if required {
			fv.Required()
		}
		fv.FloatRange(MinScore, MaxScore, internal.ErrCodeInvalidScore)
	}
}

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

type ListFilter struct {
	StagiaireID int64
	Status      string
	Order       string
	Limit       int
	Offset      int
}

type EvaluationsResponse struct {
	Evaluations []*Evaluation `json:"evaluations"`
	Total       int64         `json:"total"`
	Limit       int           `json:"limit"`
	Offset      int           `json:"offset"`
}
