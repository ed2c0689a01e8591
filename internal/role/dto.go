package role

import (
	"github.com/profaxno/admin-management/internal"
	roleDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/role"
)

type RolePermissionDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type RoleDTO struct {
	ID          string              `json:"id"`
	CompanyID   string              `json:"companyId"`
	Name        string              `json:"name"`
	Active      bool                `json:"active"`
	Permissions []RolePermissionDTO `json:"permissions"`
}

// UpsertRoleDTO carries the full target permission set; an empty or absent
// list leaves the stored associations untouched.
type UpsertRoleDTO struct {
	ID            string   `json:"id,omitempty"`
	CompanyID     string   `json:"companyId"`
	Name          string   `json:"name"`
	PermissionIDs []string `json:"permissions,omitempty"`
}

func (d UpsertRoleDTO) Validate() error {
	if d.CompanyID == "" {
		return internal.NewValidationError("companyId is required", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SearchRolesDTO struct {
	CompanyID string `json:"companyId"`
	Name      string `json:"name,omitempty"`
	internal.SearchPagination
}

// toDTO composes the response from an already-loaded link set; the permission
// list mirrors exactly what the caller's operation resolved.
func toDTO(m *roleDatamodel.Role, links []roleDatamodel.RolePermission) *RoleDTO {
	permissions := make([]RolePermissionDTO, 0, len(links))
	for i := range links {
		permissions = append(permissions, RolePermissionDTO{
			ID:    links[i].Permission.ID,
			Label: links[i].Permission.Label,
		})
	}
	return &RoleDTO{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		Active:      m.Active,
		Permissions: permissions,
	}
}
