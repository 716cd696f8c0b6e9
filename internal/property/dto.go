package property

import (
	"strings"

	errors "github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/core/common/validation"
)

type CreatePropertyDTO struct {
	Name        string `json:"name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	Postcode    string `json:"postcode"`
}

func (d *CreatePropertyDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.AddressLine = strings.TrimSpace(d.AddressLine)
	d.City = strings.TrimSpace(d.City)
	d.Postcode = strings.ToUpper(strings.TrimSpace(d.Postcode))
}

func (d CreatePropertyDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MinLength(2).MaxLength(200)
	v.Field("address_line", d.AddressLine).Required().MaxLength(300)
	v.Field("city", d.City).MaxLength(100)
	v.Field("postcode", d.Postcode).MaxLength(10)
	return v.Validate()
}

type PropertiesResponse struct {
	Properties []*Property `json:"properties"`
	Permission string      `json:"permission"`
}
