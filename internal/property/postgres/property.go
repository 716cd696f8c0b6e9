package postgres

import (
	"context"
	"errors"

	propertyDatamodel "github.com/frahmantamala/property-hub/internal/core/datamodel/property"
	"github.com/frahmantamala/property-hub/internal/property"
	"gorm.io/gorm"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) property.RepositoryAPI {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) List(ctx context.Context, limit, offset int) ([]*propertyDatamodel.Property, error) {
	var rows []*propertyDatamodel.Property
	err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

// GetByID returns nil, nil when the property does not exist.
func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*propertyDatamodel.Property, error) {
	var row propertyDatamodel.Property
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *propertyDatamodel.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}
