package repository

import (
	"errors"

	"github.com/contractgen/backend/internal/model"
)

// ErrNotFound 记录不存在（或已被软删除）
// 软删除由 gorm.DeletedAt 在数据访问层统一过滤，
// 业务层不感知删除标记本身。
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(user *model.User) error
	Get(id uint) (*model.User, error)
	GetByToken(token string) (*model.User, error)
	GetByPhone(phone string) (*model.User, error)
	Save(user *model.User) error
}

type OrganizationRepository interface {
	Create(org *model.Organization) error
	Get(id uint) (*model.Organization, error)
	List() ([]model.Organization, error)
	AddMember(membership *model.UserOrganization) error
	IsMember(userID, orgID uint) (bool, error)
}

type AttachmentRepository interface {
	Create(att *model.Attachment) error
	Get(id uint) (*model.Attachment, error)
	GetByHash(hash string) (*model.Attachment, error)
	Save(att *model.Attachment) error
	Delete(id uint) error
}

type KeyRepository interface {
	Create(key *model.Key) error
	Get(id uint) (*model.Key, error)
	GetByToken(token string) (*model.Key, error)
	GetByTokens(tokens []string) ([]model.Key, error)
	List() ([]model.Key, error)
	Delete(id uint) error
}

type TemplateRepository interface {
	Create(tpl *model.Template) error
	Get(id uint) (*model.Template, error)
	ListByOrganization(orgID uint) ([]model.Template, error)
	Save(tpl *model.Template) error
	ReplaceKeys(tpl *model.Template, keys []model.Key) error
	ExistsByNameAndOrganization(name string, orgID uint) (bool, error)
	Delete(id uint) error
}

type ContractRepository interface {
	Create(contract *model.Contract) error
	Get(id uint) (*model.Contract, error)
	GetByIDs(ids []uint) ([]model.Contract, error)
	ListByOperator(userID uint) ([]model.Contract, error)
	IsOperator(contractID, userID uint) (bool, error)
	SetGenerated(contractID, attachmentID uint) error
	ResetGenerated(contractID uint) error
	UpdateDataValue(dataID uint, value string) error
	Delete(id uint) error
}

type JobRepository interface {
	Create(job *model.Job) error
	Get(id uint) (*model.Job, error)
	GetByIDsAndCreator(ids []uint, creatorID uint) ([]model.Job, error)
	ListByCreator(creatorID uint) ([]model.Job, error)
	GetByStatus(status string) ([]model.Job, error)
	// ClaimPending 原子认领：仅当任务仍为 pending 时迁移到 processing，
	// 返回是否认领成功。防止多个调度周期重复处理同一任务。
	ClaimPending(id uint) (bool, error)
	ResetToPending(id uint) error
	Save(job *model.Job) error
	// FailProcessing 启动时把遗留在 processing 的任务标记为失败
	FailProcessing(reason string) (int64, error)
}
