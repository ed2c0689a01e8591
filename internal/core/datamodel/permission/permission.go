package permission

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permission is a global catalog row, not scoped to a company.
type Permission struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Label     string    `gorm:"column:label;not null"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Active    bool      `gorm:"column:active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Permission) TableName() string {
	return "adm_permission"
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
