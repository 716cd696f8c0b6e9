package user

import (
	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/identity"
)

type UserResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `json:"is_active"`
}

type AccessResponse struct {
	User    UserResponse    `json:"user"`
	Profile *access.Profile `json:"profile"`
}

func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		IsActive:    u.IsActive,
	}
}
