package postgres

import (
	"gorm.io/gorm"

	"github.com/profaxno/admin-management/internal/core/database"
	permissionDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/permission"
	"github.com/profaxno/admin-management/internal/permission"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetByID(id string) (*permissionDatamodel.Permission, error) {
	var model permissionDatamodel.Permission
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *PermissionRepository) GetByCode(code string) (*permissionDatamodel.Permission, error) {
	var model permissionDatamodel.Permission
	err := r.db.Where("code = ?", code).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

// GetByIDs resolves active catalog rows only; inactive permissions cannot be
// assigned to roles.
func (r *PermissionRepository) GetByIDs(ids []string) ([]permissionDatamodel.Permission, error) {
	var models []permissionDatamodel.Permission
	err := r.db.Where("id IN ? AND active = ?", ids, true).Find(&models).Error
	return models, err
}

func (r *PermissionRepository) Search(label, code string, page, limit int) ([]permissionDatamodel.Permission, error) {
	query := r.db.Where("active = ?", true)
	if label != "" {
		query = query.Where("label LIKE ?", "%"+label+"%")
	}
	if code != "" {
		query = query.Where("code LIKE ?", "%"+code+"%")
	}

	var models []permissionDatamodel.Permission
	err := query.Scopes(database.Paginate(page, limit)).Order("code ASC").Find(&models).Error
	return models, err
}

func (r *PermissionRepository) Save(model *permissionDatamodel.Permission) error {
	return r.db.Save(model).Error
}

func (r *PermissionRepository) SoftDelete(id string) error {
	return r.db.Model(&permissionDatamodel.Permission{}).Where("id = ?", id).Update("active", false).Error
}
