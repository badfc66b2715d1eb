package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/contractgen/backend/config"
	"github.com/contractgen/backend/internal/apperrors"
	"github.com/contractgen/backend/internal/eventbus"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/pkg/archive"
	"github.com/contractgen/backend/internal/pkg/converter"
	"github.com/contractgen/backend/internal/pkg/docx"
	"github.com/contractgen/backend/internal/repository"
	"github.com/contractgen/backend/internal/service/statemachine"
)

// 任务允许的输出格式
var jobExtensions = []string{model.ExtensionDOCX, model.ExtensionPDF}

// JobStatusView 状态查询的对外视图。processing 是内部认领态，
// 对外仍按 pending 汇报；下载引用只给附件 hash，不给路径。
type JobStatusView struct {
	ID           uint   `json:"id"`
	Status       string `json:"status"`
	Extension    string `json:"extension"`
	DownloadHash string `json:"download_hash,omitempty"`
	ErrorMsg     string `json:"error_msg,omitempty"`
}

type JobService struct {
	cfg          *config.Config
	jobRepo      repository.JobRepository
	contractRepo repository.ContractRepository
	attachments  *AttachmentService
	converter    converter.Converter
	sm           *statemachine.JobStateMachine
	bus          *eventbus.Bus
	kick         func()
}

func NewJobService(cfg *config.Config, jobRepo repository.JobRepository, contractRepo repository.ContractRepository, attachments *AttachmentService, conv converter.Converter, bus *eventbus.Bus) *JobService {
	return &JobService{
		cfg:          cfg,
		jobRepo:      jobRepo,
		contractRepo: contractRepo,
		attachments:  attachments,
		converter:    conv,
		sm:           statemachine.NewJobStateMachine(),
		bus:          bus,
	}
}

// SetKick 注册调度器的唤醒回调，提交后不等下一个轮询周期
func (s *JobService) SetKick(kick func()) {
	s.kick = kick
}

// Submit 校验后持久化 PENDING 任务，立即返回不等待执行。
// 校验顺序：重复ID -> 合同存在 -> 操作人权限，任一失败不落库。
func (s *JobService) Submit(actor *model.User, contractIDs []uint, extension string) (*model.Job, error) {
	if !contains(jobExtensions, extension) {
		return nil, &apperrors.InvalidFileFormatError{Extension: extension, Allowed: jobExtensions}
	}
	if len(contractIDs) == 0 {
		return nil, &apperrors.ContractNotFoundError{}
	}

	seen := make(map[uint]struct{}, len(contractIDs))
	for _, id := range contractIDs {
		if _, dup := seen[id]; dup {
			return nil, &apperrors.DuplicateContractError{ID: id}
		}
		seen[id] = struct{}{}
	}

	contracts, err := s.contractRepo.GetByIDs(contractIDs)
	if err != nil {
		return nil, fmt.Errorf("查询合同失败: %w", err)
	}
	if len(contracts) != len(contractIDs) {
		resolved := make(map[uint]struct{}, len(contracts))
		for _, c := range contracts {
			resolved[c.ID] = struct{}{}
		}
		for _, id := range contractIDs {
			if _, ok := resolved[id]; !ok {
				return nil, &apperrors.ContractNotFoundError{ID: id}
			}
		}
	}

	for _, c := range contracts {
		ok, err := s.contractRepo.IsOperator(c.ID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("查询操作人失败: %w", err)
		}
		if !ok && actor.Role != model.RoleAdmin {
			return nil, &apperrors.PermissionDeniedError{ActorID: actor.ID, Resource: "contract", ID: c.ID}
		}
	}

	job := &model.Job{
		Extension: extension,
		Status:    model.JobStatusPending,
		Contracts: contracts,
		CreatedBy: actor.ID,
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}
	klog.V(6).Infof("任务已提交: jobID=%d, contracts=%d, extension=%s", job.ID, len(contracts), extension)

	if s.kick != nil {
		s.kick()
	}
	return job, nil
}

// Process 执行一个已认领的任务。
// 固定顺序：填充 ->（转换）-> 归档 -> 落库产物 -> 翻转状态。
// 任一环节出错即 FAILED 并记录原因，错误继续向上抛给编排器日志。
func (s *JobService) Process(ctx context.Context, jobID uint) error {
	job, err := s.jobRepo.Get(jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &apperrors.JobNotFoundError{ID: jobID}
		}
		return err
	}

	result, err := s.generate(ctx, job)
	if err != nil {
		s.fail(ctx, job, err)
		return err
	}

	if err := s.sm.Transition(statemachine.JobStatus(job.Status), statemachine.JobStatusCompleted, job.ID); err != nil {
		s.fail(ctx, job, err)
		return err
	}
	job.Status = model.JobStatusCompleted
	job.AttachmentID = &result.ID
	job.Attachment = nil
	job.ErrorMsg = ""
	if err := s.jobRepo.Save(job); err != nil {
		return fmt.Errorf("保存任务结果失败: %w", err)
	}

	s.publish(ctx, eventbus.JobEvent{
		Type:          eventbus.JobEventCompleted,
		JobID:         job.ID,
		CreatedBy:     job.CreatedBy,
		ContractCount: len(job.Contracts),
		Extension:     job.Extension,
	})
	return nil
}

// generate 产出归档附件。每份合同生成（或复用）docx 后立刻落库，
// 之后的失败不回滚已生成的合同产物，重提任务可直接复用。
func (s *JobService) generate(ctx context.Context, job *model.Job) (*model.Attachment, error) {
	dir := filepath.Join(s.cfg.Storage.WorkDir, fmt.Sprintf("job-%d-%s", job.ID, uuid.NewString()[:8]))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建任务工作目录失败: %w", err)
	}
	defer os.RemoveAll(dir)

	ids := make([]uint, 0, len(job.Contracts))
	for _, c := range job.Contracts {
		ids = append(ids, c.ID)
	}
	contracts, err := s.contractRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("加载合同失败: %w", err)
	}

	var files []string
	for i := range contracts {
		path, err := s.contractFile(ctx, &contracts[i], dir)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	if job.Extension == model.ExtensionPDF {
		var pdfs []string
		for _, f := range files {
			pdfPath, err := s.converter.ConvertToPDF(ctx, f, dir)
			if err != nil {
				return nil, err
			}
			pdfs = append(pdfs, pdfPath)
		}
		// 中间 docx 不进归档
		files = pdfs
	}

	zipPath, size, err := archive.BuildZip(files, dir)
	if err != nil {
		return nil, err
	}
	klog.V(6).Infof("归档完成: jobID=%d, files=%d, size=%d", job.ID, len(files), size)

	return s.attachments.StoreFile(ctx, "archives", zipPath, ContentTypeZip)
}

// contractFile 为一份合同准备 docx：产物仍然有效时直接复用，
// 否则从模板填充并把新产物立刻登记到合同上。
func (s *JobService) contractFile(ctx context.Context, c *model.Contract, dir string) (string, error) {
	filename := fmt.Sprintf("contract_%d.docx", c.ID)

	if c.IsGenerated && c.AttachmentID != nil {
		att, err := s.attachments.Get(*c.AttachmentID)
		if err != nil {
			return "", err
		}
		klog.V(6).Infof("复用合同产物: contractID=%d, attachmentID=%d", c.ID, att.ID)
		return s.attachments.Materialize(ctx, att, dir, filename)
	}

	if c.Template == nil || c.Template.Attachment == nil {
		return "", &apperrors.TemplateNotFoundError{ID: c.TemplateID}
	}
	tplPath, err := s.attachments.Materialize(ctx, c.Template.Attachment, dir, uuid.NewString()+".docx")
	if err != nil {
		return "", err
	}
	defer os.Remove(tplPath)

	doc, err := docx.Open(tplPath)
	if err != nil {
		return "", err
	}

	values := make(map[string]string, len(c.Data))
	for _, d := range c.Data {
		if d.Key != nil {
			values[d.Key.Token] = d.Value
		}
	}
	replaced := doc.Fill(values)

	outPath := filepath.Join(dir, filename)
	if err := doc.Save(outPath); err != nil {
		return "", fmt.Errorf("写出合同文档失败: contractID=%d, %w", c.ID, err)
	}
	klog.V(6).Infof("合同填充完成: contractID=%d, runs=%d", c.ID, replaced)

	att, err := s.attachments.StoreFile(ctx, "contracts", outPath, ContentTypeDocx)
	if err != nil {
		return "", err
	}
	if err := s.contractRepo.SetGenerated(c.ID, att.ID); err != nil {
		return "", fmt.Errorf("登记合同产物失败: %w", err)
	}
	return outPath, nil
}

func (s *JobService) fail(ctx context.Context, job *model.Job, cause error) {
	if err := s.sm.Transition(statemachine.JobStatus(job.Status), statemachine.JobStatusFailed, job.ID); err != nil {
		klog.Errorf("任务失败状态迁移被拒绝: jobID=%d, err=%v", job.ID, err)
		return
	}
	job.Status = model.JobStatusFailed
	job.AttachmentID = nil
	job.Attachment = nil
	job.ErrorMsg = truncate(cause.Error(), 1000)
	if err := s.jobRepo.Save(job); err != nil {
		klog.Errorf("保存失败状态失败: jobID=%d, err=%v", job.ID, err)
	}

	s.publish(ctx, eventbus.JobEvent{
		Type:      eventbus.JobEventFailed,
		JobID:     job.ID,
		CreatedBy: job.CreatedBy,
		Extension: job.Extension,
		ErrorMsg:  job.ErrorMsg,
	})
}

func (s *JobService) publish(ctx context.Context, event eventbus.JobEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		klog.Warningf("任务事件发布失败: jobID=%d, err=%v", event.JobID, err)
	}
}

// Status 创建者范围内的批量状态查询。
// 查不到或属于他人的ID返回 JobNotFoundError。
func (s *JobService) Status(actor *model.User, ids []uint) ([]JobStatusView, error) {
	jobs, err := s.jobRepo.GetByIDsAndCreator(ids, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}

	byID := make(map[uint]*model.Job, len(jobs))
	for i := range jobs {
		byID[jobs[i].ID] = &jobs[i]
	}

	views := make([]JobStatusView, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		job, ok := byID[id]
		if !ok {
			return nil, &apperrors.JobNotFoundError{ID: id}
		}
		views = append(views, statusView(job))
	}
	return views, nil
}

func (s *JobService) List(actor *model.User) ([]JobStatusView, error) {
	jobs, err := s.jobRepo.ListByCreator(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	views := make([]JobStatusView, 0, len(jobs))
	for i := range jobs {
		views = append(views, statusView(&jobs[i]))
	}
	return views, nil
}

// FailStuckOnStartup 重启后把遗留的 processing 任务判定为失败
func (s *JobService) FailStuckOnStartup() error {
	n, err := s.jobRepo.FailProcessing("server restarted during processing")
	if err != nil {
		return fmt.Errorf("清理遗留任务失败: %w", err)
	}
	if n > 0 {
		klog.Warningf("启动清理: %d 个遗留 processing 任务已标记失败", n)
	}
	return nil
}

func statusView(job *model.Job) JobStatusView {
	view := JobStatusView{ID: job.ID, Status: publicStatus(job.Status), Extension: job.Extension}
	if job.Status == model.JobStatusCompleted && job.Attachment != nil {
		view.DownloadHash = job.Attachment.HashID
	}
	if job.Status == model.JobStatusFailed {
		view.ErrorMsg = job.ErrorMsg
	}
	return view
}

// publicStatus 对外屏蔽内部认领态
func publicStatus(status string) string {
	if status == model.JobStatusProcessing {
		return model.JobStatusPending
	}
	return status
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
