package service

import (
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/config"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/repository"
	"github.com/contractgen/backend/internal/service/orchestrator"
)

// Scheduler 单协程轮询 pending 任务，认领成功后交给编排器。
// 认领（pending -> processing 的条件更新）保证一个任务只会被
// 分发一次，即使多个实例共享同一个库。
type Scheduler struct {
	cfg      *config.Config
	jobRepo  repository.JobRepository
	orch     *orchestrator.Orchestrator
	kick     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func NewScheduler(cfg *config.Config, jobRepo repository.JobRepository, orch *orchestrator.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		jobRepo: jobRepo,
		orch:    orch,
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.loop()
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Kick 唤醒一次轮询，提交任务后不必等下一个周期。
// 信号丢失无所谓，周期轮询兜底。
func (s *Scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	interval := s.cfg.Scheduler.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	klog.V(6).Infof("任务调度器启动: interval=%v", interval)
	for {
		select {
		case <-s.stop:
			klog.V(6).Infof("任务调度器停止")
			return
		case <-ticker.C:
			s.dispatchPending()
		case <-s.kick:
			s.dispatchPending()
		}
	}
}

func (s *Scheduler) dispatchPending() {
	jobs, err := s.jobRepo.GetByStatus(model.JobStatusPending)
	if err != nil {
		klog.Errorf("查询待处理任务失败: %v", err)
		return
	}

	for _, job := range jobs {
		claimed, err := s.jobRepo.ClaimPending(job.ID)
		if err != nil {
			klog.Errorf("任务认领失败: jobID=%d, err=%v", job.ID, err)
			continue
		}
		if !claimed {
			// 已被其他周期或实例认领
			continue
		}

		if err := s.orch.EnqueueJob(orchestrator.NewGenerationJob(job.ID, s.cfg.Scheduler.JobTimeout)); err != nil {
			klog.Warningf("任务入队失败，回滚认领: jobID=%d, err=%v", job.ID, err)
			if rErr := s.jobRepo.ResetToPending(job.ID); rErr != nil {
				klog.Errorf("回滚认领失败: jobID=%d, err=%v", job.ID, rErr)
			}
			continue
		}
		klog.V(6).Infof("任务已认领并入队: jobID=%d", job.ID)
	}
}
