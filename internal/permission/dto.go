package permission

import (
	"github.com/profaxno/admin-management/internal"
	permissionDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/permission"
)

type PermissionDTO struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

// UpsertPermissionDTO routes to create when ID is empty and to update when it
// is present.
type UpsertPermissionDTO struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Code  string `json:"code"`
}

func (d UpsertPermissionDTO) Validate() error {
	if d.Label == "" {
		return internal.NewValidationError("label is required", internal.ErrCodeValidationFailed)
	}
	if d.Code == "" {
		return internal.NewValidationError("code is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SearchPermissionsDTO struct {
	Label string `json:"label,omitempty"`
	Code  string `json:"code,omitempty"`
	internal.SearchPagination
}

func toDTO(m *permissionDatamodel.Permission) *PermissionDTO {
	return &PermissionDTO{
		ID:     m.ID,
		Label:  m.Label,
		Code:   m.Code,
		Active: m.Active,
	}
}

func toDTOList(models []permissionDatamodel.Permission) []PermissionDTO {
	dtos := make([]PermissionDTO, 0, len(models))
	for i := range models {
		dtos = append(dtos, *toDTO(&models[i]))
	}
	return dtos
}
