package productunit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductUnit is a global measurement-unit catalog row consumed by the
// products service.
type ProductUnit struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Active    bool      `gorm:"column:active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ProductUnit) TableName() string {
	return "adm_product_unit"
}

func (p *ProductUnit) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
