package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/contractgen/backend/internal/model"
)

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(org *model.Organization) error {
	return r.db.Create(org).Error
}

func (r *organizationRepository) Get(id uint) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List() ([]model.Organization, error) {
	var orgs []model.Organization
	if err := r.db.Order("id").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *organizationRepository) AddMember(membership *model.UserOrganization) error {
	return r.db.Create(membership).Error
}

func (r *organizationRepository) IsMember(userID, orgID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.UserOrganization{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
