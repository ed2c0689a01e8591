package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/core/database"
	roleDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/role"
	userDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/user"
	"github.com/profaxno/admin-management/internal/reconcile"
	"github.com/profaxno/admin-management/internal/role"
	"github.com/profaxno/admin-management/internal/user"
)

const roleGraph = "Roles.Role.Permissions.Permission"

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id string) (*userDatamodel.User, error) {
	var model userDatamodel.User
	err := r.db.Preload(roleGraph).Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *UserRepository) GetActiveByEmail(companyID, email string) (*userDatamodel.User, error) {
	var model userDatamodel.User
	err := r.db.Where("company_id = ? AND email = ? AND active = ?", companyID, email, true).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

// GetAvailableByEmail is the authentication lookup: the email resolves across
// companies but only to an available, active user.
func (r *UserRepository) GetAvailableByEmail(email string) (*userDatamodel.User, error) {
	var model userDatamodel.User
	err := r.db.Preload(roleGraph).
		Where("email = ? AND active = ? AND status = ?", email, true, userDatamodel.StatusAvailable).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *UserRepository) Search(companyID, name, email string, page, limit int) ([]userDatamodel.User, error) {
	query := r.db.Preload(roleGraph).Where("company_id = ? AND active = ?", companyID, true)
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if email != "" {
		query = query.Where("email LIKE ?", "%"+email+"%")
	}

	var models []userDatamodel.User
	err := query.Scopes(database.Paginate(page, limit)).Order("name ASC").Find(&models).Error
	return models, err
}

// GetPage returns all rows including inactive ones for the synchronize
// sweep; an empty companyID sweeps every tenant.
func (r *UserRepository) GetPage(companyID string, page, limit int) ([]userDatamodel.User, error) {
	query := r.db.Preload(roleGraph)
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	var models []userDatamodel.User
	err := query.Scopes(database.Paginate(page, limit)).Order("created_at ASC").Find(&models).Error
	return models, err
}

func (r *UserRepository) Save(model *userDatamodel.User) error {
	return r.db.Omit("Roles").Save(model).Error
}

func (r *UserRepository) SoftDelete(id string) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", id).Update("active", false).Error
}

// NewRoleReconciler wires the replace-all algorithm for a user's role set.
// Role resolution goes through the role repository so only active roles with
// their permission graph qualify.
func NewRoleReconciler(db *gorm.DB, roles role.RepositoryAPI) *reconcile.Reconciler[roleDatamodel.Role, userDatamodel.UserRole] {
	return &reconcile.Reconciler[roleDatamodel.Role, userDatamodel.UserRole]{
		DB: db,
		Lookup: func(_ *gorm.DB, ids []string) ([]roleDatamodel.Role, error) {
			return roles.GetByIDs(ids)
		},
		KeyOf: func(r roleDatamodel.Role) string {
			return r.ID
		},
		DeleteOwned: func(tx *gorm.DB, userID string) error {
			return tx.Where("user_id = ?", userID).Delete(&userDatamodel.UserRole{}).Error
		},
		Link: func(userID string, r roleDatamodel.Role) userDatamodel.UserRole {
			return userDatamodel.UserRole{UserID: userID, RoleID: r.ID, Role: r}
		},
		NotFound: func(missing []string) error {
			return internal.NewNotFoundError(
				fmt.Sprintf("roles with id [%s] not found", reconcile.FormatMissing(missing)),
				internal.ErrCodeRoleNotFound)
		},
	}
}
