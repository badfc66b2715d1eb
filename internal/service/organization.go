package service

import (
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/repository"
)

type OrganizationService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo, userRepo: userRepo}
}

func (s *OrganizationService) Create(name, address string) (*model.Organization, error) {
	org := &model.Organization{Name: name, Address: address}
	if err := s.orgRepo.Create(org); err != nil {
		return nil, fmt.Errorf("创建机构失败: %w", err)
	}
	klog.V(6).Infof("机构已创建: id=%d, name=%s", org.ID, org.Name)
	return org, nil
}

func (s *OrganizationService) Get(id uint) (*model.Organization, error) {
	org, err := s.orgRepo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperrors.OrganizationNotFoundError{ID: id}
		}
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) List() ([]model.Organization, error) {
	return s.orgRepo.List()
}

// AddMember 把用户加入机构，重复加入幂等
func (s *OrganizationService) AddMember(orgID, userID uint) error {
	if _, err := s.orgRepo.Get(orgID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &apperrors.OrganizationNotFoundError{ID: orgID}
		}
		return err
	}
	if _, err := s.userRepo.Get(userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &apperrors.UserNotFoundError{ID: userID}
		}
		return err
	}

	exists, err := s.orgRepo.IsMember(userID, orgID)
	if err != nil {
		return fmt.Errorf("查询成员关系失败: %w", err)
	}
	if exists {
		return nil
	}
	return s.orgRepo.AddMember(&model.UserOrganization{
		UserID:         userID,
		OrganizationID: orgID,
		IsCurrent:      true,
	})
}

// IsMember 管理员不受机构边界限制
func (s *OrganizationService) IsMember(user *model.User, orgID uint) (bool, error) {
	if user.Role == model.RoleAdmin {
		return true, nil
	}
	return s.orgRepo.IsMember(user.ID, orgID)
}
