package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/contractgen/backend/internal/model"
)

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(tpl *model.Template) error {
	return r.db.Create(tpl).Error
}

func (r *templateRepository) Get(id uint) (*model.Template, error) {
	var tpl model.Template
	err := r.db.
		Preload("Keys").
		Preload("Attachment").
		First(&tpl, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) ListByOrganization(orgID uint) ([]model.Template, error) {
	var tpls []model.Template
	err := r.db.
		Preload("Keys").
		Preload("Attachment").
		Where("organization_id = ?", orgID).
		Order("id").
		Find(&tpls).Error
	if err != nil {
		return nil, err
	}
	return tpls, nil
}

func (r *templateRepository) Save(tpl *model.Template) error {
	return r.db.Save(tpl).Error
}

// ReplaceKeys 整体替换模板与占位键的关联关系
func (r *templateRepository) ReplaceKeys(tpl *model.Template, keys []model.Key) error {
	return r.db.Model(tpl).Association("Keys").Replace(keys)
}

func (r *templateRepository) ExistsByNameAndOrganization(name string, orgID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Template{}).
		Where("name = ? AND organization_id = ?", name, orgID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *templateRepository) Delete(id uint) error {
	return r.db.Delete(&model.Template{}, id).Error
}
