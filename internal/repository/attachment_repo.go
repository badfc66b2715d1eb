package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/contractgen/backend/internal/model"
)

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(att *model.Attachment) error {
	return r.db.Create(att).Error
}

func (r *attachmentRepository) Get(id uint) (*model.Attachment, error) {
	var att model.Attachment
	if err := r.db.First(&att, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) GetByHash(hash string) (*model.Attachment, error) {
	var att model.Attachment
	if err := r.db.Where("hash_id = ?", hash).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) Save(att *model.Attachment) error {
	return r.db.Save(att).Error
}

func (r *attachmentRepository) Delete(id uint) error {
	return r.db.Delete(&model.Attachment{}, id).Error
}
