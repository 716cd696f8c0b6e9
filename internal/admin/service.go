package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/core/events"
	"github.com/frahmantamala/property-hub/internal/identity"
)

type ServiceAPI interface {
	GrantWorkstreamAccess(ctx context.Context, actorID, userID, workstreamID, permissionTypeID int64) error
	RevokeWorkstreamAccess(ctx context.Context, actorID, userID, workstreamID int64) error
	SetUserActive(ctx context.Context, actorID, userID int64, active bool) error
	SetWorkstreamActive(ctx context.Context, actorID, workstreamID int64, active bool) error
	AssignRole(ctx context.Context, actorID, userID, roleID int64) error
}

// Service applies Global Admin mutations and publishes an event for each
// one. Events are published synchronously so cached profiles are evicted
// before the caller sees success.
type Service struct {
	store  identity.Writer
	events events.Publisher
	logger *slog.Logger
}

func NewService(store identity.Writer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		events: publisher,
		logger: logger,
	}
}

func (s *Service) GrantWorkstreamAccess(ctx context.Context, actorID, userID, workstreamID, permissionTypeID int64) error {
	if err := s.store.GrantWorkstreamAccess(ctx, userID, workstreamID, permissionTypeID, &actorID); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("workstream access granted",
		"actor_id", actorID,
		"user_id", userID,
		"workstream_id", workstreamID,
		"permission_type_id", permissionTypeID)
	return s.publish(ctx, events.NewUserAccessChangedEvent(events.EventTypeGrantChanged, userID, actorID))
}

func (s *Service) RevokeWorkstreamAccess(ctx context.Context, actorID, userID, workstreamID int64) error {
	if err := s.store.RevokeWorkstreamAccess(ctx, userID, workstreamID); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("workstream access revoked",
		"actor_id", actorID,
		"user_id", userID,
		"workstream_id", workstreamID)
	return s.publish(ctx, events.NewUserAccessChangedEvent(events.EventTypeGrantChanged, userID, actorID))
}

func (s *Service) SetUserActive(ctx context.Context, actorID, userID int64, active bool) error {
	if err := s.store.SetUserActive(ctx, userID, active); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("user status changed", "actor_id", actorID, "user_id", userID, "is_active", active)
	return s.publish(ctx, events.NewUserAccessChangedEvent(events.EventTypeUserStatusChanged, userID, actorID))
}

func (s *Service) SetWorkstreamActive(ctx context.Context, actorID, workstreamID int64, active bool) error {
	if err := s.store.SetWorkstreamActive(ctx, workstreamID, active); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("workstream status changed", "actor_id", actorID, "workstream_id", workstreamID, "is_active", active)
	return s.publish(ctx, events.NewWorkstreamStatusChangedEvent(workstreamID, active, actorID))
}

func (s *Service) AssignRole(ctx context.Context, actorID, userID, roleID int64) error {
	if err := s.store.AssignRole(ctx, userID, roleID); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("role assigned", "actor_id", actorID, "user_id", userID, "role_id", roleID)
	return s.publish(ctx, events.NewUserAccessChangedEvent(events.EventTypeRoleAssigned, userID, actorID))
}

// publish reports an eviction failure as an error: the mutation is stored
// but a stale profile may still be served until its TTL runs out.
func (s *Service) publish(ctx context.Context, event events.Event) error {
	if err := s.events.PublishSync(ctx, event); err != nil {
		return internal.NewInternalError("change saved but access cache was not refreshed", fmt.Errorf("publish %s: %w", event.EventType(), err))
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	case errors.Is(err, identity.ErrRoleNotFound):
		return internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	case errors.Is(err, identity.ErrWorkstreamNotFound):
		return internal.NewNotFoundError("workstream not found", internal.ErrCodeWorkstreamNotFound)
	case errors.Is(err, identity.ErrPermissionTypeNotFound):
		return internal.NewNotFoundError("permission type not found", internal.ErrCodePermissionTypeNotFound)
	case errors.Is(err, identity.ErrGrantNotFound):
		return internal.NewNotFoundError("workstream grant not found", internal.ErrCodeGrantNotFound)
	default:
		return internal.NewInternalError("identity store write failed", err)
	}
}
