package auth

import "github.com/frahmantamala/stagiaire-management/internal/core/common/validation"

// LoginDTO accepts either a username or an email in Username.
type LoginDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Login() string {
	if d.Username != "" {
		return d.Username
	}
	return d.Email
}

// Validate uses the builder because the login may arrive in either field.
func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", d.Login()).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RegisterDTO struct {
	Username   string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Nom        string `json:"nom" validate:"max=100"`
	Prenom     string `json:"prenom" validate:"max=100"`
	Department string `json:"department" validate:"max=100"`
}

func (d RegisterDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required,notblank"`
}

func (d RefreshTokenDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}
