package stagiaire

import (
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal/core/common/validation"
)

type CreateStagiaireDTO struct {
	Nom           string  `json:"nom" validate:"required,notblank,max=100"`
	Prenom        string  `json:"prenom" validate:"required,notblank,max=100"`
	Email         string  `json:"email" validate:"required,email,max=255"`
	Telephone     string  `json:"telephone" validate:"max=30"`
	Etablissement string  `json:"etablissement" validate:"max=255"`
	Formation     string  `json:"formation" validate:"max=255"`
	Intitule      string  `json:"intitule" validate:"max=255"`
	Status        string  `json:"status" validate:"omitempty,oneof=active completed upcoming"`
	DateDebut     string  `json:"dateDebut" validate:"max=50"`
	DateFin       string  `json:"dateFin" validate:"max=50"`
	Avatar        *string `json:"avatar" validate:"omitnil,max=1024"`
}

func (d CreateStagiaireDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

// UpdateStagiaireDTO carries a partial update; nil fields are left untouched.
type UpdateStagiaireDTO struct {
	Nom           *string `json:"nom" validate:"omitnil,notblank,max=100"`
	Prenom        *string `json:"prenom" validate:"omitnil,notblank,max=100"`
	Email         *string `json:"email" validate:"omitnil,email,max=255"`
	Telephone     *string `json:"telephone" validate:"omitnil,max=30"`
	Etablissement *string `json:"etablissement" validate:"omitnil,max=255"`
	Formation     *string `json:"formation" validate:"omitnil,max=255"`
	Intitule      *string `json:"intitule" validate:"omitnil,max=255"`
	Status        *string `json:"status" validate:"omitnil,oneof=active completed upcoming"`
	DateDebut     *string `json:"dateDebut" validate:"omitnil,max=50"`
	DateFin       *string `json:"dateFin" validate:"omitnil,max=50"`
	Avatar        *string `json:"avatar" validate:"omitnil,max=1024"`
}

func (d UpdateStagiaireDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

// Apply merges the provided fields into s.
func (d UpdateStagiaireDTO) Apply(s *Stagiaire) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.Nom, d.Nom)
	set(&s.Prenom, d.Prenom)
	set(&s.Telephone, d.Telephone)
	set(&s.Etablissement, d.Etablissement)
	set(&s.Formation, d.Formation)
	set(&s.Intitule, d.Intitule)
	set(&s.Status, d.Status)
	set(&s.DateDebut, d.DateDebut)
	set(&s.DateFin, d.DateFin)
	if d.Email != nil {
		s.Email = normalizeEmail(*d.Email)
	}
	if d.Avatar != nil {
		avatar := strings.TrimSpace(*d.Avatar)
		if avatar == "" {
			s.Avatar = nil
		} else {
			s.Avatar = &avatar
		}
	}
}

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListFilter narrows List. Search matches nom, prenom or email.
type ListFilter struct {
	Status string
	Search string
	Order  string
	Limit  int
	Offset int
}

type StagiairesResponse struct {
	Stagiaires []*Stagiaire `json:"stagiaires"`
	Total      int64        `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
