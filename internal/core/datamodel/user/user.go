package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	roleDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/role"
)

const (
	StatusAvailable = "AVAILABLE"
	StatusDisabled  = "DISABLED"
)

// Email uniqueness is scoped to the company and checked at the service layer,
// matching role name scoping.
type User struct {
	ID        string     `gorm:"primaryKey;type:uuid"`
	CompanyID string     `gorm:"column:company_id;type:uuid;index;not null"`
	Name      string     `gorm:"column:name;not null"`
	Email     string     `gorm:"column:email;index;not null"`
	Password  string     `gorm:"column:password;not null"`
	Status    string     `gorm:"column:status;default:'AVAILABLE'"`
	Active    bool       `gorm:"column:active;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	Roles     []UserRole `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "adm_user"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserRole follows the same wholesale-replace semantics as RolePermission.
type UserRole struct {
	ID        int64              `gorm:"primaryKey;autoIncrement"`
	UserID    string             `gorm:"column:user_id;type:uuid;index;not null"`
	RoleID    string             `gorm:"column:role_id;type:uuid;not null"`
	Role      roleDatamodel.Role `gorm:"foreignKey:RoleID"`
	CreatedAt time.Time          `gorm:"column:created_at"`
}

func (UserRole) TableName() string {
	return "adm_user_role"
}
