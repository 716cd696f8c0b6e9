package admin

import (
	errors "github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/core/common/validation"
)

type GrantAccessDTO struct {
	PermissionTypeID int64 `json:"permission_type_id"`
}

func (d GrantAccessDTO) Validate() *errors.AppError {
	return validation.ValidateID("permission_type_id", d.PermissionTypeID)
}

type SetActiveDTO struct {
	IsActive *bool `json:"is_active"`
}

func (d SetActiveDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("is_active", d.IsActive).Required()
	return v.Validate()
}

type AssignRoleDTO struct {
	RoleID int64 `json:"role_id"`
}

func (d AssignRoleDTO) Validate() *errors.AppError {
	return validation.ValidateID("role_id", d.RoleID)
}

type MutationResponse struct {
	Status string `json:"status"`
}
