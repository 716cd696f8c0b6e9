package property

import (
	"context"
	"time"

	propertyDatamodel "github.com/frahmantamala/property-hub/internal/core/datamodel/property"
)

type Property struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city,omitempty"`
	Postcode    string    `json:"postcode,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RepositoryAPI interface {
	List(ctx context.Context, limit, offset int) ([]*propertyDatamodel.Property, error)
	GetByID(ctx context.Context, id int64) (*propertyDatamodel.Property, error)
	Create(ctx context.Context, p *propertyDatamodel.Property) error
}

func FromDataModel(p *propertyDatamodel.Property) *Property {
	return &Property{
		ID:          p.ID,
		Name:        p.Name,
		AddressLine: p.AddressLine,
		City:        p.City,
		Postcode:    p.Postcode,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
