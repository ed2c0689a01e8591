package documenttype

import (
	"github.com/profaxno/admin-management/internal"
	documentTypeDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/documenttype"
)

type DocumentTypeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// UpsertDocumentTypeDTO routes to create when ID is empty and to update when
// it is present.
type UpsertDocumentTypeDTO struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (d UpsertDocumentTypeDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SearchDocumentTypesDTO struct {
	Name string `json:"name,omitempty"`
	internal.SearchPagination
}

type SynchronizeDocumentTypesDTO struct {
	internal.SearchPagination
}

func toDTO(m *documentTypeDatamodel.DocumentType) *DocumentTypeDTO {
	return &DocumentTypeDTO{
		ID:     m.ID,
		Name:   m.Name,
		Active: m.Active,
	}
}

func toDTOList(models []documentTypeDatamodel.DocumentType) []DocumentTypeDTO {
	dtos := make([]DocumentTypeDTO, 0, len(models))
	for i := range models {
		dtos = append(dtos, *toDTO(&models[i]))
	}
	return dtos
}
