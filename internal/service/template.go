package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/pkg/docx"
	"github.com/contractgen/backend/internal/repository"
)

// 模板允许的上传格式
var templateExtensions = []string{"doc", "docx"}

type TemplateService struct {
	templateRepo repository.TemplateRepository
	keyService   *KeyService
	orgService   *OrganizationService
	attachments  *AttachmentService
	workDir      string
}

func NewTemplateService(templateRepo repository.TemplateRepository, keyService *KeyService, orgService *OrganizationService, attachments *AttachmentService, workDir string) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		keyService:   keyService,
		orgService:   orgService,
		attachments:  attachments,
		workDir:      workDir,
	}
}

// Upload 上传模板：校验扩展名与同机构重名，存储原始文件，
// 提取占位键并惰性建键，最后落库模板与键的关联。
func (s *TemplateService) Upload(ctx context.Context, actor *model.User, orgID uint, name, filename string, r io.Reader) (*model.Template, error) {
	ext := normalizeExt(filename)
	if !contains(templateExtensions, ext) {
		return nil, &apperrors.InvalidFileFormatError{Extension: ext, Allowed: templateExtensions}
	}

	if _, err := s.orgService.Get(orgID); err != nil {
		return nil, err
	}
	member, err := s.orgService.IsMember(actor, orgID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, &apperrors.PermissionDeniedError{ActorID: actor.ID, Resource: "organization", ID: orgID}
	}

	exists, err := s.templateRepo.ExistsByNameAndOrganization(name, orgID)
	if err != nil {
		return nil, fmt.Errorf("查询模板重名失败: %w", err)
	}
	if exists {
		return nil, &apperrors.TemplateAlreadyExistsError{Name: name, OrganizationID: orgID}
	}

	att, keys, err := s.storeAndExtract(ctx, filename, ext, r)
	if err != nil {
		return nil, err
	}

	tpl := &model.Template{
		Name:           name,
		OrganizationID: orgID,
		AttachmentID:   att.ID,
		Keys:           keys,
	}
	if err := s.templateRepo.Create(tpl); err != nil {
		return nil, fmt.Errorf("创建模板失败: %w", err)
	}
	klog.V(6).Infof("模板已上传: id=%d, name=%s, orgID=%d, keys=%d", tpl.ID, tpl.Name, orgID, len(keys))
	return s.Get(tpl.ID)
}

// Replace 整体替换模板文件：重新提取占位键，旧附件软删除
func (s *TemplateService) Replace(ctx context.Context, actor *model.User, id uint, filename string, r io.Reader) (*model.Template, error) {
	tpl, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	member, err := s.orgService.IsMember(actor, tpl.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, &apperrors.PermissionDeniedError{ActorID: actor.ID, Resource: "template", ID: id}
	}

	ext := normalizeExt(filename)
	if !contains(templateExtensions, ext) {
		return nil, &apperrors.InvalidFileFormatError{Extension: ext, Allowed: templateExtensions}
	}

	att, keys, err := s.storeAndExtract(ctx, filename, ext, r)
	if err != nil {
		return nil, err
	}

	oldAtt := tpl.Attachment
	tpl.AttachmentID = att.ID
	tpl.Attachment = nil
	tpl.Keys = nil
	if err := s.templateRepo.Save(tpl); err != nil {
		return nil, fmt.Errorf("更新模板失败: %w", err)
	}
	if err := s.templateRepo.ReplaceKeys(tpl, keys); err != nil {
		return nil, fmt.Errorf("替换模板键失败: %w", err)
	}

	if oldAtt != nil {
		if err := s.attachments.Delete(ctx, oldAtt); err != nil {
			klog.Warningf("旧模板附件清理失败: templateID=%d, err=%v", id, err)
		}
	}
	klog.V(6).Infof("模板已替换: id=%d, keys=%d", id, len(keys))
	return s.Get(id)
}

func (s *TemplateService) Get(id uint) (*model.Template, error) {
	tpl, err := s.templateRepo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperrors.TemplateNotFoundError{ID: id}
		}
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) ListByOrganization(orgID uint) ([]model.Template, error) {
	return s.templateRepo.ListByOrganization(orgID)
}

func (s *TemplateService) Delete(ctx context.Context, actor *model.User, id uint) error {
	tpl, err := s.Get(id)
	if err != nil {
		return err
	}
	member, err := s.orgService.IsMember(actor, tpl.OrganizationID)
	if err != nil {
		return err
	}
	if !member {
		return &apperrors.PermissionDeniedError{ActorID: actor.ID, Resource: "template", ID: id}
	}
	return s.templateRepo.Delete(id)
}

// storeAndExtract 先把上传内容落到工作目录做占位键提取，
// 再原样收入存储。doc 为历史格式，不做提取。
func (s *TemplateService) storeAndExtract(ctx context.Context, filename, ext string, r io.Reader) (*model.Attachment, []model.Key, error) {
	tmpPath := filepath.Join(s.workDir, uuid.NewString()+"."+ext)
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	defer os.Remove(tmpPath)

	var keys []model.Key
	if ext == model.ExtensionDOCX {
		doc, err := docx.Open(tmpPath)
		if err != nil {
			return nil, nil, err
		}
		tokens := doc.ExtractTokens()
		keys, err = s.keyService.EnsureTokens(tokens)
		if err != nil {
			return nil, nil, err
		}
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		return nil, nil, fmt.Errorf("重读临时文件失败: %w", err)
	}
	defer src.Close()
	// 元数据记录原始文件名，存储内部名由 BlobStore 生成
	att, err := s.attachments.Store(ctx, "templates", filename, ContentTypeDocx, src)
	if err != nil {
		return nil, nil, err
	}
	return att, keys, nil
}

func normalizeExt(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
