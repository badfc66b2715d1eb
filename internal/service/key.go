package service

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/repository"
)

type KeyService struct {
	keyRepo repository.KeyRepository
}

func NewKeyService(keyRepo repository.KeyRepository) *KeyService {
	return &KeyService{keyRepo: keyRepo}
}

// NormalizeToken 统一为带 $ 定界符的存储形式
func NormalizeToken(name string) string {
	return "$" + strings.Trim(name, "$") + "$"
}

func (s *KeyService) List() ([]model.Key, error) {
	return s.keyRepo.List()
}

// Create 显式创建占位键，字面值全局唯一
func (s *KeyService) Create(name string) (*model.Key, error) {
	token := NormalizeToken(name)
	if _, err := s.keyRepo.GetByToken(token); err == nil {
		return nil, &apperrors.DuplicateKeyError{Token: token}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("查询占位键失败: %w", err)
	}

	key := &model.Key{Token: token}
	if err := s.keyRepo.Create(key); err != nil {
		return nil, fmt.Errorf("创建占位键失败: %w", err)
	}
	return key, nil
}

func (s *KeyService) Delete(id uint) error {
	if _, err := s.keyRepo.Get(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &apperrors.KeyNotFoundError{ID: id}
		}
		return err
	}
	return s.keyRepo.Delete(id)
}

// EnsureTokens 按提取结果惰性建键：已存在的复用，缺失的创建。
// tokens 均为含定界符的字面值，一次批量查询后只为缺失的建行。
func (s *KeyService) EnsureTokens(tokens []string) ([]model.Key, error) {
	existing, err := s.keyRepo.GetByTokens(tokens)
	if err != nil {
		return nil, fmt.Errorf("查询占位键失败: %w", err)
	}
	byToken := make(map[string]model.Key, len(existing))
	for _, key := range existing {
		byToken[key.Token] = key
	}

	var keys []model.Key
	for _, token := range tokens {
		if key, ok := byToken[token]; ok {
			keys = append(keys, key)
			continue
		}
		fresh := &model.Key{Token: token}
		if err := s.keyRepo.Create(fresh); err != nil {
			return nil, fmt.Errorf("创建占位键失败: token=%s, %w", token, err)
		}
		klog.V(6).Infof("占位键已创建: id=%d, token=%s", fresh.ID, fresh.Token)
		keys = append(keys, *fresh)
	}
	return keys, nil
}
