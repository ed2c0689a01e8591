package user

import (
	"github.com/profaxno/admin-management/internal"
	userDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/user"
)

type UserRoleDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EffectivePermissionDTO struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// UserDTO flattens the loaded role graph: EffectivePermissions is the
// deduplicated union of the assigned roles' permissions, computed on every
// read and never stored. Password is only populated on the lookups consumed
// by the authentication collaborator.
type UserDTO struct {
	ID                   string                   `json:"id"`
	CompanyID            string                   `json:"companyId"`
	Name                 string                   `json:"name"`
	Email                string                   `json:"email"`
	Password             string                   `json:"password,omitempty"`
	Status               string                   `json:"status"`
	Active               bool                     `json:"active"`
	Roles                []UserRoleDTO            `json:"roles"`
	EffectivePermissions []EffectivePermissionDTO `json:"effectivePermissions"`
}

type UpsertUserDTO struct {
	ID        string   `json:"id,omitempty"`
	CompanyID string   `json:"companyId"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password,omitempty"`
	Status    string   `json:"status,omitempty"`
	RoleIDs   []string `json:"roles,omitempty"`
}

func (d UpsertUserDTO) Validate() error {
	if d.CompanyID == "" {
		return internal.NewValidationError("companyId is required", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if d.Email == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if d.Status != "" && d.Status != userDatamodel.StatusAvailable && d.Status != userDatamodel.StatusDisabled {
		return internal.NewValidationError("status must be AVAILABLE or DISABLED", internal.ErrCodeInvalidStatus)
	}
	return nil
}

type SearchUsersDTO struct {
	CompanyID string `json:"companyId"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	internal.SearchPagination
}

type SynchronizeUsersDTO struct {
	CompanyID string `json:"companyId,omitempty"`
	internal.SearchPagination
}

func toDTO(m *userDatamodel.User, links []userDatamodel.UserRole) *UserDTO {
	roles := make([]UserRoleDTO, 0, len(links))
	effective := make([]EffectivePermissionDTO, 0)
	seen := make(map[string]struct{})

	for i := range links {
		roles = append(roles, UserRoleDTO{
			ID:   links[i].Role.ID,
			Name: links[i].Role.Name,
		})
		for j := range links[i].Role.Permissions {
			p := links[i].Role.Permissions[j].Permission
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			effective = append(effective, EffectivePermissionDTO{ID: p.ID, Code: p.Code})
		}
	}

	return &UserDTO{
		ID:                   m.ID,
		CompanyID:            m.CompanyID,
		Name:                 m.Name,
		Email:                m.Email,
		Status:               m.Status,
		Active:               m.Active,
		Roles:                roles,
		EffectivePermissions: effective,
	}
}
