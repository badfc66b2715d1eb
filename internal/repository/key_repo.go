package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/contractgen/backend/internal/model"
)

type keyRepository struct {
	db *gorm.DB
}

func NewKeyRepository(db *gorm.DB) KeyRepository {
	return &keyRepository{db: db}
}

func (r *keyRepository) Create(key *model.Key) error {
	return r.db.Create(key).Error
}

func (r *keyRepository) Get(id uint) (*model.Key, error) {
	var key model.Key
	if err := r.db.First(&key, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &key, nil
}

func (r *keyRepository) GetByToken(token string) (*model.Key, error) {
	var key model.Key
	if err := r.db.Where("token = ?", token).First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &key, nil
}

func (r *keyRepository) GetByTokens(tokens []string) ([]model.Key, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var keys []model.Key
	if err := r.db.Where("token IN ?", tokens).Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *keyRepository) List() ([]model.Key, error) {
	var keys []model.Key
	if err := r.db.Order("id").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *keyRepository) Delete(id uint) error {
	return r.db.Delete(&model.Key{}, id).Error
}
