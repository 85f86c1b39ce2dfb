package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Nom          string    `gorm:"column:nom"`
	Prenom       string    `gorm:"column:prenom"`
	Department   string    `gorm:"column:department"`
	Role         string    `gorm:"column:role;not null;default:user"`
	Theme        string    `gorm:"column:theme;not null;default:light"`
	Brightness   int       `gorm:"column:brightness;not null;default:100"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
