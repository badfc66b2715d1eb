package subscriber

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/eventbus"
)

// JobEventSubscriber 消费任务生命周期事件，目前只做审计日志。
// 后续的通知渠道（短信/站内信）挂在这里。
type JobEventSubscriber struct{}

func NewJobEventSubscriber() *JobEventSubscriber {
	return &JobEventSubscriber{}
}

func (s *JobEventSubscriber) Register(bus *eventbus.Bus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.JobEventCompleted, s.handleJobCompleted)
	bus.Subscribe(eventbus.JobEventFailed, s.handleJobFailed)
}

func (s *JobEventSubscriber) handleJobCompleted(ctx context.Context, event eventbus.JobEvent) error {
	klog.V(6).Infof("任务完成: jobID=%d, contracts=%d, extension=%s, createdBy=%d",
		event.JobID, event.ContractCount, event.Extension, event.CreatedBy)
	return nil
}

func (s *JobEventSubscriber) handleJobFailed(ctx context.Context, event eventbus.JobEvent) error {
	klog.Errorf("任务失败: jobID=%d, createdBy=%d, err=%s",
		event.JobID, event.CreatedBy, event.ErrorMsg)
	return nil
}
