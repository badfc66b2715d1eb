package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Create 注册用户并签发不透明令牌，手机号全局唯一
func (s *UserService) Create(fullName, phoneNumber, passportID, role string) (*model.User, error) {
	if _, err := s.userRepo.GetByPhone(phoneNumber); err == nil {
		return nil, &apperrors.UserAlreadyExistsError{PhoneNumber: phoneNumber}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if role == "" {
		role = model.RoleOperator
	}
	user := &model.User{
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		PassportID:  passportID,
		Role:        role,
		Token:       uuid.NewString(),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	klog.V(6).Infof("用户已创建: id=%d, phone=%s, role=%s", user.ID, user.PhoneNumber, user.Role)
	return user, nil
}

func (s *UserService) Get(id uint) (*model.User, error) {
	user, err := s.userRepo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperrors.UserNotFoundError{ID: id}
		}
		return nil, err
	}
	return user, nil
}

// Authenticate 按令牌解析用户，供鉴权中间件使用
func (s *UserService) Authenticate(token string) (*model.User, error) {
	user, err := s.userRepo.GetByToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperrors.UserNotFoundError{}
		}
		return nil, err
	}
	return user, nil
}
