package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 角色定义
const (
	RoleAdmin    = "admin"
	RoleDirector = "director"
	RoleOperator = "operator"
)

// Job 输出格式
const (
	ExtensionDOCX = "docx"
	ExtensionPDF  = "pdf"
)

// Job 状态
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	FullName    string         `json:"full_name" gorm:"size:255;not null"`
	PhoneNumber string         `json:"phone_number" gorm:"size:32;uniqueIndex;not null"`
	PassportID  string         `json:"passport_id" gorm:"size:64"`
	Role        string         `json:"role" gorm:"size:20;not null;default:operator"` // admin, director, operator
	Token       string         `json:"-" gorm:"size:64;uniqueIndex"`                  // 鉴权令牌，由认证层签发
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

type Organization struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:255;not null"`
	Address   string         `json:"address" gorm:"size:500"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserOrganization 用户与机构的成员关系
type UserOrganization struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"index;not null"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	IsCurrent      bool           `json:"is_current" gorm:"default:false"`
	LeftAt         *time.Time     `json:"left_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Attachment 二进制文件记录，创建后除软删除外不可变
type Attachment struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	ContentType string         `json:"content_type" gorm:"size:100;not null"`
	Size        int64          `json:"size" gorm:"not null"`
	Extension   string         `json:"extension" gorm:"size:10;not null"`
	Path        string         `json:"-" gorm:"size:500;not null"` // 存储路径不对外暴露
	HashID      string         `json:"hash_id" gorm:"size:32;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Key 占位符，未删除记录间按字面值去重。
// 唯一性在服务层校验而不是数据库唯一索引：
// 软删除的行留在表里，硬唯一索引会挡住同名键重建。
// Token 含 $ 定界符存储，对外展示时去掉定界符
type Key struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Token     string         `json:"token" gorm:"size:255;index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Display 去掉定界符后的键名
func (k *Key) Display() string {
	return strings.Trim(k.Token, "$")
}

type Template struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"size:255;not null;index:idx_templates_org_name"`
	OrganizationID uint           `json:"organization_id" gorm:"not null;index:idx_templates_org_name"`
	AttachmentID   uint           `json:"attachment_id" gorm:"not null"`
	Attachment     *Attachment    `json:"attachment,omitempty" gorm:"foreignKey:AttachmentID"`
	Keys           []Key          `json:"keys,omitempty" gorm:"many2many:template_keys"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

type Contract struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TemplateID   uint           `json:"template_id" gorm:"index;not null"`
	Template     *Template      `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	AttachmentID *uint          `json:"attachment_id"`
	Attachment   *Attachment    `json:"attachment,omitempty" gorm:"foreignKey:AttachmentID"`
	IsGenerated  bool           `json:"is_generated" gorm:"default:false"` // 生成物是否与当前数据一致
	Operators    []User         `json:"operators,omitempty" gorm:"many2many:contract_operators"`
	Data         []ContractData `json:"data,omitempty" gorm:"foreignKey:ContractID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type ContractData struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ContractID uint           `json:"contract_id" gorm:"index;not null"`
	KeyID      uint           `json:"key_id" gorm:"index;not null"`
	Key        *Key           `json:"key,omitempty" gorm:"foreignKey:KeyID"`
	Value      string         `json:"value" gorm:"size:2000;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// Job 异步生成任务
// status: pending, processing, completed, failed
// processing 为调度器认领状态，对外仍按 pending 汇报
type Job struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Extension    string         `json:"extension" gorm:"size:10;not null"` // docx, pdf
	Status       string         `json:"status" gorm:"size:20;default:pending;index"`
	AttachmentID *uint          `json:"attachment_id"`
	Attachment   *Attachment    `json:"attachment,omitempty" gorm:"foreignKey:AttachmentID"`
	Contracts    []Contract     `json:"contracts,omitempty" gorm:"many2many:job_contracts"`
	CreatedBy    uint           `json:"created_by" gorm:"index;not null"`
	ErrorMsg     string         `json:"error_msg" gorm:"size:1000"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
