package productunit

import (
	"github.com/profaxno/admin-management/internal"
	productUnitDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/productunit"
)

type ProductUnitDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// UpsertProductUnitDTO routes to create when ID is empty and to update when
// it is present.
type UpsertProductUnitDTO struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (d UpsertProductUnitDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SearchProductUnitsDTO struct {
	Name string `json:"name,omitempty"`
	internal.SearchPagination
}

type SynchronizeProductUnitsDTO struct {
	internal.SearchPagination
}

func toDTO(m *productUnitDatamodel.ProductUnit) *ProductUnitDTO {
	return &ProductUnitDTO{
		ID:     m.ID,
		Name:   m.Name,
		Active: m.Active,
	}
}

func toDTOList(models []productUnitDatamodel.ProductUnit) []ProductUnitDTO {
	dtos := make([]ProductUnitDTO, 0, len(models))
	for i := range models {
		dtos = append(dtos, *toDTO(&models[i]))
	}
	return dtos
}
