package role

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	permissionDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/permission"
)

// Role name uniqueness is scoped to the company and enforced at the service
// layer against active rows only, so the column carries a plain index.
type Role struct {
	ID          string           `gorm:"primaryKey;type:uuid"`
	CompanyID   string           `gorm:"column:company_id;type:uuid;index;not null"`
	Name        string           `gorm:"column:name;index;not null"`
	Active      bool             `gorm:"column:active;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at"`
	Permissions []RolePermission `gorm:"foreignKey:RoleID"`
}

func (Role) TableName() string {
	return "adm_role"
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RolePermission rows have no independent lifecycle: every permission
// assignment wholesale-replaces the owner role's set.
type RolePermission struct {
	ID           int64                          `gorm:"primaryKey;autoIncrement"`
	RoleID       string                         `gorm:"column:role_id;type:uuid;index;not null"`
	PermissionID string                         `gorm:"column:permission_id;type:uuid;not null"`
	Permission   permissionDatamodel.Permission `gorm:"foreignKey:PermissionID"`
	CreatedAt    time.Time                      `gorm:"column:created_at"`
}

func (RolePermission) TableName() string {
	return "adm_role_permission"
}
