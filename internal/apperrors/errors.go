// Package apperrors 定义核心流程的错误分类。
// 每种错误一个独立类型，携带结构化字段，调用方通过 errors.As 分支，
// 不做字符串匹配。编号沿用 资源段*100 的方式。
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

type Code int

const (
	CodeUserNotFound         Code = 100
	CodeUserAlreadyExists    Code = 101
	CodeOrganizationNotFound Code = 102

	CodeKeyNotFound      Code = 200
	CodeKeyAlreadyExists Code = 201

	CodeTemplateNotFound      Code = 300
	CodeTemplateAlreadyExists Code = 301
	CodeInvalidFileFormat     Code = 302
	CodeDocumentRead          Code = 303

	CodeContractNotFound    Code = 400
	CodeDuplicateContract   Code = 401
	CodeMissingRequiredKeys Code = 402

	CodeAttachmentNotFound Code = 500
	CodeConversionFailure  Code = 501

	CodeJobNotFound Code = 600

	CodePermissionDenied Code = 700
)

// Coded 可编号错误
type Coded interface {
	error
	AppCode() Code
}

// CodeOf 提取错误链上的编号，未命中返回 false
func CodeOf(err error) (Code, bool) {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.AppCode(), true
	}
	return 0, false
}

type UserNotFoundError struct {
	ID uint
}

func (e *UserNotFoundError) Error() string { return fmt.Sprintf("user not found: id=%d", e.ID) }
func (e *UserNotFoundError) AppCode() Code { return CodeUserNotFound }

type UserAlreadyExistsError struct {
	PhoneNumber string
}

func (e *UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user already exists: phone=%s", e.PhoneNumber)
}
func (e *UserAlreadyExistsError) AppCode() Code { return CodeUserAlreadyExists }

type OrganizationNotFoundError struct {
	ID uint
}

func (e *OrganizationNotFoundError) Error() string {
	return fmt.Sprintf("organization not found: id=%d", e.ID)
}
func (e *OrganizationNotFoundError) AppCode() Code { return CodeOrganizationNotFound }

type KeyNotFoundError struct {
	ID    uint
	Token string
}

func (e *KeyNotFoundError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("key not found: token=%s", e.Token)
	}
	return fmt.Sprintf("key not found: id=%d", e.ID)
}
func (e *KeyNotFoundError) AppCode() Code { return CodeKeyNotFound }

type DuplicateKeyError struct {
	Token string
}

func (e *DuplicateKeyError) Error() string { return fmt.Sprintf("duplicate key: token=%s", e.Token) }
func (e *DuplicateKeyError) AppCode() Code { return CodeKeyAlreadyExists }

type TemplateNotFoundError struct {
	ID uint
}

func (e *TemplateNotFoundError) Error() string { return fmt.Sprintf("template not found: id=%d", e.ID) }
func (e *TemplateNotFoundError) AppCode() Code { return CodeTemplateNotFound }

type TemplateAlreadyExistsError struct {
	Name           string
	OrganizationID uint
}

func (e *TemplateAlreadyExistsError) Error() string {
	return fmt.Sprintf("template already exists: name=%s, organizationID=%d", e.Name, e.OrganizationID)
}
func (e *TemplateAlreadyExistsError) AppCode() Code { return CodeTemplateAlreadyExists }

// InvalidFileFormatError 上传或请求的扩展名不在允许范围内
type InvalidFileFormatError struct {
	Extension string
	Allowed   []string
}

func (e *InvalidFileFormatError) Error() string {
	return fmt.Sprintf("invalid file format: extension=%s, allowed=%s", e.Extension, strings.Join(e.Allowed, ","))
}
func (e *InvalidFileFormatError) AppCode() Code { return CodeInvalidFileFormat }

// DocumentReadError 文档无法解析（损坏、加密或非 OOXML 容器）
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("cannot read document: path=%s, err=%v", e.Path, e.Err)
}
func (e *DocumentReadError) AppCode() Code { return CodeDocumentRead }
func (e *DocumentReadError) Unwrap() error { return e.Err }

type ContractNotFoundError struct {
	ID uint
}

func (e *ContractNotFoundError) Error() string { return fmt.Sprintf("contract not found: id=%d", e.ID) }
func (e *ContractNotFoundError) AppCode() Code { return CodeContractNotFound }

type DuplicateContractError struct {
	ID uint
}

func (e *DuplicateContractError) Error() string {
	return fmt.Sprintf("duplicate contract id in request: id=%d", e.ID)
}
func (e *DuplicateContractError) AppCode() Code { return CodeDuplicateContract }

// MissingRequiredKeysError 合同提交缺少模板必填键
type MissingRequiredKeysError struct {
	TemplateID uint
	Missing    []string
}

func (e *MissingRequiredKeysError) Error() string {
	return fmt.Sprintf("missing required keys: templateID=%d, keys=%s", e.TemplateID, strings.Join(e.Missing, ","))
}
func (e *MissingRequiredKeysError) AppCode() Code { return CodeMissingRequiredKeys }

type AttachmentNotFoundError struct {
	ID   uint
	Hash string
}

func (e *AttachmentNotFoundError) Error() string {
	if e.Hash != "" {
		return fmt.Sprintf("attachment not found: hash=%s", e.Hash)
	}
	return fmt.Sprintf("attachment not found: id=%d", e.ID)
}
func (e *AttachmentNotFoundError) AppCode() Code { return CodeAttachmentNotFound }

// ConversionFailureError 外部渲染进程退出码非零、无法启动或超时
type ConversionFailureError struct {
	Path   string
	Output string
	Err    error
}

func (e *ConversionFailureError) Error() string {
	return fmt.Sprintf("pdf conversion failed: path=%s, err=%v, output=%s", e.Path, e.Err, e.Output)
}
func (e *ConversionFailureError) AppCode() Code { return CodeConversionFailure }
func (e *ConversionFailureError) Unwrap() error { return e.Err }

type JobNotFoundError struct {
	ID uint
}

func (e *JobNotFoundError) Error() string { return fmt.Sprintf("job not found: id=%d", e.ID) }
func (e *JobNotFoundError) AppCode() Code { return CodeJobNotFound }

// PermissionDeniedError 操作者不是目标资源的授权人
type PermissionDeniedError struct {
	ActorID  uint
	Resource string
	ID       uint
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: actorID=%d, resource=%s, id=%d", e.ActorID, e.Resource, e.ID)
}
func (e *PermissionDeniedError) AppCode() Code { return CodePermissionDenied }
