package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/contractgen/backend/internal/model"
)

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *model.Job) error {
	return r.db.Create(job).Error
}

func (r *jobRepository) Get(id uint) (*model.Job, error) {
	var job model.Job
	err := r.db.
		Preload("Contracts").
		Preload("Attachment").
		First(&job, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) GetByIDsAndCreator(ids []uint, creatorID uint) ([]model.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var jobs []model.Job
	err := r.db.
		Preload("Attachment").
		Where("id IN ? AND created_by = ?", ids, creatorID).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) ListByCreator(creatorID uint) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.
		Preload("Contracts").
		Preload("Attachment").
		Where("created_by = ?", creatorID).
		Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) GetByStatus(status string) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.
		Preload("Contracts").
		Where("status = ?", status).
		Order("id").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ClaimPending 通过条件更新完成原子认领，
// 只有一个调度周期能把 pending 改成 processing。
func (r *jobRepository) ClaimPending(id uint) (bool, error) {
	res := r.db.Model(&model.Job{}).
		Where("id = ? AND status = ?", id, model.JobStatusPending).
		Update("status", model.JobStatusProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *jobRepository) ResetToPending(id uint) error {
	return r.db.Model(&model.Job{}).
		Where("id = ?", id).
		Update("status", model.JobStatusPending).Error
}

func (r *jobRepository) Save(job *model.Job) error {
	return r.db.Save(job).Error
}

// FailProcessing 进程重启后清理：上一次运行遗留的 processing 任务无法续跑，
// 统一判定为失败。
func (r *jobRepository) FailProcessing(reason string) (int64, error) {
	res := r.db.Model(&model.Job{}).
		Where("status = ?", model.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":    model.JobStatusFailed,
			"error_msg": reason,
		})
	return res.RowsAffected, res.Error
}
