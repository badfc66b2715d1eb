package service

import (
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/repository"
)

// KeyValue 提交合同时的一对键值，键名不含定界符
type KeyValue struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

type ContractService struct {
	contractRepo repository.ContractRepository
	templates    *TemplateService
}

func NewContractService(contractRepo repository.ContractRepository, templates *TemplateService) *ContractService {
	return &ContractService{contractRepo: contractRepo, templates: templates}
}

// Create 按模板创建合同：键不得重复，模板必填键必须全部提供，
// 不属于模板的键拒绝。创建者自动成为操作人。
func (s *ContractService) Create(actor *model.User, templateID uint, data []KeyValue) (*model.Contract, error) {
	tpl, err := s.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	provided := make(map[string]string, len(data))
	for _, kv := range data {
		token := NormalizeToken(kv.Key)
		if _, dup := provided[token]; dup {
			return nil, &apperrors.DuplicateKeyError{Token: token}
		}
		provided[token] = kv.Value
	}

	keyIDs := make(map[string]uint, len(tpl.Keys))
	var missing []string
	for _, key := range tpl.Keys {
		keyIDs[key.Token] = key.ID
		if _, ok := provided[key.Token]; !ok {
			missing = append(missing, key.Display())
		}
	}
	if len(missing) > 0 {
		return nil, &apperrors.MissingRequiredKeysError{TemplateID: templateID, Missing: missing}
	}
	for token := range provided {
		if _, ok := keyIDs[token]; !ok {
			return nil, &apperrors.KeyNotFoundError{Token: token}
		}
	}

	contract := &model.Contract{
		TemplateID: templateID,
		Operators:  []model.User{*actor},
	}
	for _, key := range tpl.Keys {
		contract.Data = append(contract.Data, model.ContractData{
			KeyID: key.ID,
			Value: provided[key.Token],
		})
	}
	if err := s.contractRepo.Create(contract); err != nil {
		return nil, fmt.Errorf("创建合同失败: %w", err)
	}
	klog.V(6).Infof("合同已创建: id=%d, templateID=%d, operator=%d", contract.ID, templateID, actor.ID)
	return s.Get(actor, contract.ID)
}

// UpdateData 更新合同数据值并作废已生成的产物
func (s *ContractService) UpdateData(actor *model.User, contractID uint, data []KeyValue) (*model.Contract, error) {
	contract, err := s.Get(actor, contractID)
	if err != nil {
		return nil, err
	}

	dataIDs := make(map[string]uint, len(contract.Data))
	for _, d := range contract.Data {
		if d.Key != nil {
			dataIDs[d.Key.Token] = d.ID
		}
	}

	seen := make(map[string]struct{}, len(data))
	for _, kv := range data {
		token := NormalizeToken(kv.Key)
		if _, dup := seen[token]; dup {
			return nil, &apperrors.DuplicateKeyError{Token: token}
		}
		seen[token] = struct{}{}
		if _, ok := dataIDs[token]; !ok {
			return nil, &apperrors.KeyNotFoundError{Token: token}
		}
	}

	for _, kv := range data {
		token := NormalizeToken(kv.Key)
		if err := s.contractRepo.UpdateDataValue(dataIDs[token], kv.Value); err != nil {
			return nil, fmt.Errorf("更新合同数据失败: %w", err)
		}
	}
	// 数据变更后旧产物不再可信
	if err := s.contractRepo.ResetGenerated(contractID); err != nil {
		return nil, fmt.Errorf("重置生成标记失败: %w", err)
	}
	klog.V(6).Infof("合同数据已更新: id=%d, values=%d", contractID, len(data))
	return s.Get(actor, contractID)
}

// Get 操作人范围内的读取，非操作人一律拒绝
func (s *ContractService) Get(actor *model.User, id uint) (*model.Contract, error) {
	contract, err := s.contractRepo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperrors.ContractNotFoundError{ID: id}
		}
		return nil, err
	}
	if err := s.requireOperator(actor, id); err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) List(actor *model.User) ([]model.Contract, error) {
	return s.contractRepo.ListByOperator(actor.ID)
}

func (s *ContractService) Delete(actor *model.User, id uint) error {
	if _, err := s.Get(actor, id); err != nil {
		return err
	}
	return s.contractRepo.Delete(id)
}

func (s *ContractService) requireOperator(actor *model.User, contractID uint) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	ok, err := s.contractRepo.IsOperator(contractID, actor.ID)
	if err != nil {
		return fmt.Errorf("查询操作人失败: %w", err)
	}
	if !ok {
		return &apperrors.PermissionDeniedError{ActorID: actor.ID, Resource: "contract", ID: contractID}
	}
	return nil
}
