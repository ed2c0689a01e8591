package documenttype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentType is a global catalog row consumed by the purchases and sales
// services.
type DocumentType struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Active    bool      `gorm:"column:active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (DocumentType) TableName() string {
	return "adm_document_type"
}

func (d *DocumentType) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
