package postgres

import (
	"gorm.io/gorm"

	"github.com/profaxno/admin-management/internal/core/database"
	documentTypeDatamodel "github.com/profaxno/admin-management/internal/core/datamodel/documenttype"
	"github.com/profaxno/admin-management/internal/documenttype"
)

type DocumentTypeRepository struct {
	db *gorm.DB
}

func NewDocumentTypeRepository(db *gorm.DB) documenttype.RepositoryAPI {
	return &DocumentTypeRepository{db: db}
}

func (r *DocumentTypeRepository) GetByID(id string) (*documentTypeDatamodel.DocumentType, error) {
	var model documentTypeDatamodel.DocumentType
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *DocumentTypeRepository) GetByName(name string) (*documentTypeDatamodel.DocumentType, error) {
	var model documentTypeDatamodel.DocumentType
	err := r.db.Where("name = ?", name).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}

func (r *DocumentTypeRepository) Search(name string, page, limit int) ([]documentTypeDatamodel.DocumentType, error) {
	query := r.db.Where("active = ?", true)
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var models []documentTypeDatamodel.DocumentType
	err := query.Scopes(database.Paginate(page, limit)).Order("name ASC").Find(&models).Error
	return models, err
}

// GetPage returns all rows including inactive ones; the synchronize sweep
// needs both to partition update and delete messages.
func (r *DocumentTypeRepository) GetPage(page, limit int) ([]documentTypeDatamodel.DocumentType, error) {
	var models []documentTypeDatamodel.DocumentType
	err := r.db.Scopes(database.Paginate(page, limit)).Order("created_at ASC").Find(&models).Error
	return models, err
}

func (r *DocumentTypeRepository) Save(model *documentTypeDatamodel.DocumentType) error {
	return r.db.Save(model).Error
}

func (r *DocumentTypeRepository) SoftDelete(id string) error {
	return r.db.Model(&documentTypeDatamodel.DocumentType{}).Where("id = ?", id).Update("active", false).Error
}
