package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/contractgen/backend/internal/model"
)

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(contract *model.Contract) error {
	return r.db.Create(contract).Error
}

func (r *contractRepository) Get(id uint) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.
		Preload("Template").
		Preload("Template.Attachment").
		Preload("Data").
		Preload("Data.Key").
		Preload("Attachment").
		Preload("Operators").
		First(&contract, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) GetByIDs(ids []uint) ([]model.Contract, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var contracts []model.Contract
	err := r.db.
		Preload("Template").
		Preload("Template.Attachment").
		Preload("Data").
		Preload("Data.Key").
		Preload("Attachment").
		Where("id IN ?", ids).
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *contractRepository) ListByOperator(userID uint) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.
		Preload("Template").
		Preload("Data").
		Preload("Data.Key").
		Joins("JOIN contract_operators co ON co.contract_id = contracts.id").
		Where("co.user_id = ?", userID).
		Order("contracts.id").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *contractRepository) IsOperator(contractID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("contract_operators").
		Where("contract_id = ? AND user_id = ?", contractID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetGenerated 标记合同已生成并关联产物附件
func (r *contractRepository) SetGenerated(contractID, attachmentID uint) error {
	return r.db.Model(&model.Contract{}).
		Where("id = ?", contractID).
		Updates(map[string]interface{}{
			"is_generated":  true,
			"attachment_id": attachmentID,
		}).Error
}

// ResetGenerated 数据变更后作废缓存的生成产物
func (r *contractRepository) ResetGenerated(contractID uint) error {
	return r.db.Model(&model.Contract{}).
		Where("id = ?", contractID).
		Updates(map[string]interface{}{
			"is_generated":  false,
			"attachment_id": nil,
		}).Error
}

func (r *contractRepository) UpdateDataValue(dataID uint, value string) error {
	return r.db.Model(&model.ContractData{}).
		Where("id = ?", dataID).
		Update("value", value).Error
}

func (r *contractRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&model.ContractData{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Contract{}, id).Error
	})
}
