package postgres

import (
	"gorm.io/gorm"

	"github.com/profaxno/admin-management/internal/core/database"
	productUnitDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/productunit"
	"github.com/profaxno/admin-management/internal/productunit"
)

type ProductUnitRepository struct {
	db *gorm.DB
}

func NewProductUnitRepository(db *gorm.DB) productunit.RepositoryAPI {
	return &ProductUnitRepository{db: db}
}

func (r *ProductUnitRepository) GetByID(id string) (*productUnitDatamodel.ProductUnit, error) {
	var model productUnitDatamodel.ProductUnit
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *ProductUnitRepository) GetByName(name string) (*productUnitDatamodel.ProductUnit, error) {
	var model productUnitDatamodel.ProductUnit
	err := r.db.Where("name = ?", name).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *ProductUnitRepository) Search(name string, page, limit int) ([]productUnitDatamodel.ProductUnit, error) {
	query := r.db.Where("active = ?", true)
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var models []productUnitDatamodel.ProductUnit
	err := query.Scopes(database.Paginate(page, limit)).Order("name ASC").Find(&models).Error
	return models, err
}

// GetPage returns all rows including inactive ones; the synchronize sweep
// needs both to partition update and delete messages.
func (r *ProductUnitRepository) GetPage(page, limit int) ([]productUnitDatamodel.ProductUnit, error) {
	var models []productUnitDatamodel.ProductUnit
	err := r.db.Scopes(database.Paginate(page, limit)).Order("created_at ASC").Find(&models).Error
	return models, err
}

func (r *ProductUnitRepository) Save(model *productUnitDatamodel.ProductUnit) error {
	return r.db.Save(model).Error
}

func (r *ProductUnitRepository) SoftDelete(id string) error {
	return r.db.Model(&productUnitDatamodel.ProductUnit{}).Where("id = ?", id).Update("active", false).Error
}
