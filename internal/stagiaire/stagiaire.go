package stagiaire

import (
	"strings"
	"time"

	stagiaireDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/stagiaire"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusUpcoming  = "upcoming"
)

type Stagiaire struct {
	ID            int64     `json:"id"`
	Nom           string    `json:"nom"`
	Prenom        string    `json:"prenom"`
	Email         string    `json:"email"`
	Telephone     string    `json:"telephone"`
	Etablissement string    `json:"etablissement"`
	Formation     string    `json:"formation"`
	Intitule      string    `json:"intitule"`
	Status        string    `json:"status"`
	DateDebut     string    `json:"dateDebut"`
	DateFin       string    `json:"dateFin"`
	Avatar        *string   `json:"avatar"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *Stagiaire) FullName() string {
	return strings.TrimSpace(s.Prenom + " " + s.Nom)
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusCompleted, StatusUpcoming:
		return true
	}
	return false
}

func ToDataModel(s *Stagiaire) *stagiaireDatamodel.Stagiaire {
	return &stagiaireDatamodel.Stagiaire{
		ID:            s.ID,
		Nom:           s.Nom,
		Prenom:        s.Prenom,
		Email:         s.Email,
		Telephone:     s.Telephone,
		Etablissement: s.Etablissement,
		Formation:     s.Formation,
		Intitule:      s.Intitule,
		Status:        s.Status,
		DateDebut:     s.DateDebut,
		DateFin:       s.DateFin,
		Avatar:        s.Avatar,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func FromDataModel(s *stagiaireDatamodel.Stagiaire) *Stagiaire {
	return &Stagiaire{
		ID:            s.ID,
		Nom:           s.Nom,
		Prenom:        s.Prenom,
		Email:         s.Email,
		Telephone:     s.Telephone,
		Etablissement: s.Etablissement,
		Formation:     s.Formation,
		Intitule:      s.Intitule,
		Status:        s.Status,
		DateDebut:     s.DateDebut,
		DateFin:       s.DateFin,
		Avatar:        s.Avatar,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
