package user

import (
	"time"

	"github.com/frahmantamala/stagiaire-management/internal"
	userDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/user"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	DefaultBrightness = 100
)

type Preferences struct {
	Theme      string `json:"theme"`
	Brightness int    `json:"brightness"`
}

type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Nom          string      `json:"nom"`
	Prenom       string      `json:"prenom"`
	Department   string      `json:"department"`
	Role         string      `json:"role"`
	Preferences  Preferences `json:"preferences"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

// Principal is the slim identity stored in the request context.
func (u *User) Principal() *internal.User {
	return &internal.User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// NewUser builds a user with the default role and preferences.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         internal.RoleUser,
		Preferences:  Preferences{Theme: ThemeLight, Brightness: DefaultBrightness},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func IsValidRole(role string) bool {
	switch role {
	case internal.RoleAdmin, internal.RoleEncadrant, internal.RoleUser:
		return true
	}
	return false
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Nom:          u.Nom,
		Prenom:       u.Prenom,
		Department:   u.Department,
		Role:         u.Role,
		Theme:        u.Preferences.Theme,
		Brightness:   u.Preferences.Brightness,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Nom:          u.Nom,
		Prenom:       u.Prenom,
		Department:   u.Department,
		Role:         u.Role,
		Preferences: Preferences{
			Theme:      u.Theme,
			Brightness: u.Brightness,
		},
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
