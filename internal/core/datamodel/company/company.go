package company

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID                string    `gorm:"primaryKey;type:uuid"`
	Name              string    `gorm:"column:name;uniqueIndex;not null"`
	FantasyName       string    `gorm:"column:fantasy_name"`
	IDDoc             string    `gorm:"column:id_doc"`
	Address           string    `gorm:"column:address"`
	Email             string    `gorm:"column:email"`
	Phone             string    `gorm:"column:phone"`
	BankName          string    `gorm:"column:bank_name"`
	BankAccountType   string    `gorm:"column:bank_account_type"`
	BankAccountNumber string    `gorm:"column:bank_account_number"`
	ImgURLLogo        string    `gorm:"column:img_url_logo"`
	ImgURLHeader      string    `gorm:"column:img_url_header"`
	ImgURLFooter      string    `gorm:"column:img_url_footer"`
	ImgURLTransfer    string    `gorm:"column:img_url_transfer"`
	Active            bool      `gorm:"column:active;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (Company) TableName() string {
	return "adm_company"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
