package postgres

import (
	"gorm.io/gorm"

	"github.com/profaxno/admin-management/internal/company"
	"github.com/profaxno/admin-management/internal/core/database"
	companyDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/company"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(id string) (*companyDatamodel.Company, error) {
	var model companyDatamodel.Company
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *CompanyRepository) GetByName(name string) (*companyDatamodel.Company, error) {
	var model companyDatamodel.Company
	err := r.db.Where("name = ?", name).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *CompanyRepository) Search(name string, page, limit int) ([]companyDatamodel.Company, error) {
	query := r.db.Where("active = ?", true)
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var models []companyDatamodel.Company
	err := query.Scopes(database.Paginate(page, limit)).Order("name ASC").Find(&models).Error
	return models, err
}

// GetPage returns all rows including inactive ones; the synchronize sweep
// needs both to partition update and delete messages.
func (r *CompanyRepository) GetPage(page, limit int) ([]companyDatamodel.Company, error) {
	var models []companyDatamodel.Company
	err := r.db.Scopes(database.Paginate(page, limit)).Order("created_at ASC").Find(&models).Error
	return models, err
}

func (r *CompanyRepository) Save(model *companyDatamodel.Company) error {
	return r.db.Save(model).Error
}

func (r *CompanyRepository) SoftDelete(id string) error {
	return r.db.Model(&companyDatamodel.Company{}).Where("id = ?", id).Update("active", false).Error
}
