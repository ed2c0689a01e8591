package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/core/database"
	permissionDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/permission"
	roleDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/role"
	"github.com/profaxno/admin-management/internal/permission"
	"github.com/profaxno/admin-management/internal/reconcile"
	"github.com/profaxno/admin-management/internal/role"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(id string) (*roleDatamodel.Role, error) {
	var model roleDatamodel.Role
	err := r.db.Preload("Permissions.Permission").Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *RoleRepository) GetActiveByName(companyID, name string) (*roleDatamodel.Role, error) {
	var model roleDatamodel.Role
	err := r.db.Where("company_id = ? AND name = ? AND active = ?", companyID, name, true).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

// GetByIDs resolves active roles with their permission graph; it backs the
// user-side role reconciler and effective-permission composition.
func (r *RoleRepository) GetByIDs(ids []string) ([]roleDatamodel.Role, error) {
	var models []roleDatamodel.Role
	err := r.db.Preload("Permissions.Permission").Where("id IN ? AND active = ?", ids, true).Find(&models).Error
	return models, err
}

func (r *RoleRepository) Search(companyID, name string, page, limit int) ([]roleDatamodel.Role, error) {
	query := r.db.Preload("Permissions.Permission").Where("company_id = ? AND active = ?", companyID, true)
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var models []roleDatamodel.Role
	err := query.Scopes(database.Paginate(page, limit)).Order("name ASC").Find(&models).Error
	return models, err
}

func (r *RoleRepository) Save(model *roleDatamodel.Role) error {
	return r.db.Omit("Permissions").Save(model).Error
}

func (r *RoleRepository) SoftDelete(id string) error {
	return r.db.Model(&roleDatamodel.Role{}).Where("id = ?", id).Update("active", false).Error
}

// NewPermissionReconciler wires the replace-all algorithm for a role's
// permission set against the global catalog.
func NewPermissionReconciler(db *gorm.DB, permissions permission.RepositoryAPI) *reconcile.Reconciler[permissionDatamodel.Permission, roleDatamodel.RolePermission] {
	return &reconcile.Reconciler[permissionDatamodel.Permission, roleDatamodel.RolePermission]{
		DB: db,
		Lookup: func(_ *gorm.DB, ids []string) ([]permissionDatamodel.Permission, error) {
			return permissions.GetByIDs(ids)
		},
		KeyOf: func(p permissionDatamodel.Permission) string {
			return p.ID
		},
		DeleteOwned: func(tx *gorm.DB, roleID string) error {
			return tx.Where("role_id = ?", roleID).Delete(&roleDatamodel.RolePermission{}).Error
		},
		Link: func(roleID string, p permissionDatamodel.Permission) roleDatamodel.RolePermission {
			return roleDatamodel.RolePermission{RoleID: roleID, PermissionID: p.ID, Permission: p}
		},
		NotFound: func(missing []string) error {
			return internal.NewNotFoundError(
				fmt.Sprintf("permissions with id [%s] not found", reconcile.FormatMissing(missing)),
				internal.ErrCodePermissionNotFound)
		},
	}
}
