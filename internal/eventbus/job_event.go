package eventbus

import "context"

type JobEventType string

const (
	JobEventCompleted JobEventType = "JobCompleted"
	JobEventFailed    JobEventType = "JobFailed"
)

// JobEvent 生成任务的生命周期事件
type JobEvent struct {
	Type          JobEventType
	JobID         uint
	CreatedBy     uint
	ContractCount int
	Extension     string
	ErrorMsg      string
}

type JobEventHandler func(ctx context.Context, event JobEvent) error
