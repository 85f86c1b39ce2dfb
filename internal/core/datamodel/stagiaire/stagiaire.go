package stagiaire

import "time"

type Stagiaire struct {
	ID            int64     `gorm:"primaryKey"`
	Nom           string    `gorm:"column:nom;not null"`
	Prenom        string    `gorm:"column:prenom;not null"`
	Email         string    `gorm:"column:email;uniqueIndex;not null"`
	Telephone     string    `gorm:"column:telephone"`
	Etablissement string    `gorm:"column:etablissement"`
	Formation     string    `gorm:"column:formation"`
	Intitule      string    `gorm:"column:intitule"`
	Status        string    `gorm:"column:status;not null;default:active;index"`
	DateDebut     string    `gorm:"column:date_debut"`
	DateFin       string    `gorm:"column:date_fin"`
	Avatar        *string   `gorm:"column:avatar"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Stagiaire) TableName() string {
	return "stagiaires"
}
