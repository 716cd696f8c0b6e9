package user

import (
	"context"
	"errors"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/identity"
)

type UserReader interface {
	GetUserByID(ctx context.Context, id int64) (*identity.User, error)
}

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*identity.User, error)
}

type Service struct {
	users UserReader
}

func NewService(users UserReader) *Service {
	return &Service{users: users}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*identity.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return u, nil
}
