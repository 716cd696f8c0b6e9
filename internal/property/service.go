package property

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/access"
	propertyDatamodel "github.com/frahmantamala/property-hub/internal/core/datamodel/property"
)

const defaultPageSize = 50

type ServiceAPI interface {
	List(ctx context.Context, limit, offset int) ([]*Property, error)
	Get(ctx context.Context, id int64) (*Property, error)
	Create(ctx context.Context, decision access.Decision, actorID int64, dto CreatePropertyDTO) (*Property, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Property, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list properties", err)
	}
	out := make([]*Property, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Property, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load property", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("property not found", internal.ErrCodePropertyNotFound)
	}
	return FromDataModel(row), nil
}

// Create needs at least write on the workstream the gate matched.
func (s *Service) Create(ctx context.Context, decision access.Decision, actorID int64, dto CreatePropertyDTO) (*Property, error) {
	if !decision.Permits(access.PermissionWrite) {
		s.logger.Warn("property write refused",
			"user_id", actorID,
			"workstream", decision.Workstream,
			"permission", decision.Permission.String())
		return nil, internal.ErrWriteAccessRequired
	}

	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row := &propertyDatamodel.Property{
		Name:        dto.Name,
		AddressLine: dto.AddressLine,
		City:        dto.City,
		Postcode:    dto.Postcode,
		CreatedBy:   actorID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create property", err)
	}

	s.logger.Info("property created", "property_id", row.ID, "user_id", actorID)
	return FromDataModel(row), nil
}
