package user

import "github.com/frahmantamala/stagiaire-management/internal/core/common/validation"

type UpdateProfileDTO struct {
	Nom        *string `json:"nom" validate:"omitnil,max=100"`
	Prenom     *string `json:"prenom" validate:"omitnil,max=100"`
	Email      *string `json:"email" validate:"omitnil,email"`
	Department *string `json:"department" validate:"omitnil,max=100"`
}

func (d UpdateProfileDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

type UpdatePreferencesDTO struct {
	Theme      *string `json:"theme" validate:"omitnil,oneof=light dark system"`
	Brightness *int    `json:"brightness" validate:"omitnil,gte=0,lte=100"`
}

func (d UpdatePreferencesDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

func (d ChangePasswordDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

type ChangeRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=admin encadrant user"`
}

func (d ChangeRoleDTO) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return nil
}

type UsersResponse struct {
	Users  []*User `json:"users"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
