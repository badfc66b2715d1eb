package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/pkg/hashid"
	"github.com/contractgen/backend/internal/pkg/storage"
	"github.com/contractgen/backend/internal/repository"
)

const (
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF  = "application/pdf"
	ContentTypeZip  = "application/zip"
)

// AttachmentService 附件元数据与二进制内容的读写入口。
// 对外只暴露短 hash，存储路径不出服务边界。
type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	store          storage.BlobStore
	hash           *hashid.Encoder
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, store storage.BlobStore, hash *hashid.Encoder) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		store:          store,
		hash:           hash,
	}
}

// Store 写入二进制内容并登记附件。hash 依赖自增主键，
// 在首次落库之后生成并回写。
func (s *AttachmentService) Store(ctx context.Context, category, name, contentType string, r io.Reader) (*model.Attachment, error) {
	info, err := s.store.Save(ctx, category, name, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("写入存储失败: %w", err)
	}

	att := &model.Attachment{
		Name:        info.Name,
		ContentType: info.ContentType,
		Size:        info.Size,
		Extension:   info.Extension,
		Path:        info.Path,
	}
	if err := s.attachmentRepo.Create(att); err != nil {
		_ = s.store.Delete(ctx, info.Path)
		return nil, fmt.Errorf("登记附件失败: %w", err)
	}

	h, err := s.hash.Encode(att.ID)
	if err != nil {
		return nil, fmt.Errorf("生成附件hash失败: %w", err)
	}
	att.HashID = h
	if err := s.attachmentRepo.Save(att); err != nil {
		return nil, fmt.Errorf("回写附件hash失败: %w", err)
	}

	klog.V(6).Infof("附件已存储: id=%d, hash=%s, size=%d", att.ID, att.HashID, att.Size)
	return att, nil
}

// StoreFile 把磁盘文件收入存储，文件名取基础名
func (s *AttachmentService) StoreFile(ctx context.Context, category, path, contentType string) (*model.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()
	return s.Store(ctx, category, filepath.Base(path), contentType, f)
}

func (s *AttachmentService) Get(id uint) (*model.Attachment, error) {
	att, err := s.attachmentRepo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperrors.AttachmentNotFoundError{ID: id}
		}
		return nil, err
	}
	return att, nil
}

func (s *AttachmentService) GetByHash(hash string) (*model.Attachment, error) {
	att, err := s.attachmentRepo.GetByHash(hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperrors.AttachmentNotFoundError{Hash: hash}
		}
		return nil, err
	}
	return att, nil
}

func (s *AttachmentService) Open(ctx context.Context, att *model.Attachment) (io.ReadCloser, error) {
	return s.store.Open(ctx, att.Path)
}

// Materialize 把附件内容落到本地工作目录，返回本地路径。
// 文件名由调用方指定，决定后续转换输出与归档条目的名字。
func (s *AttachmentService) Materialize(ctx context.Context, att *model.Attachment, dir, filename string) (string, error) {
	src, err := s.store.Open(ctx, att.Path)
	if err != nil {
		return "", fmt.Errorf("读取附件失败: id=%d, %w", att.ID, err)
	}
	defer src.Close()

	path := filepath.Join(dir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建工作文件失败: %w", err)
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("落盘附件失败: id=%d, %w", att.ID, err)
	}
	return path, nil
}

// Delete 软删除元数据并移除二进制内容
func (s *AttachmentService) Delete(ctx context.Context, att *model.Attachment) error {
	if err := s.attachmentRepo.Delete(att.ID); err != nil {
		return fmt.Errorf("删除附件记录失败: %w", err)
	}
	if err := s.store.Delete(ctx, att.Path); err != nil {
		klog.Warningf("删除附件内容失败: id=%d, err=%v", att.ID, err)
	}
	return nil
}
