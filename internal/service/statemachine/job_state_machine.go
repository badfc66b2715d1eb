package statemachine

import (
	"fmt"

	"k8s.io/klog/v2"
)

// JobStatus 定义生成任务的所有可能状态
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"    // 已提交等待调度
	JobStatusProcessing JobStatus = "processing" // 已被调度器认领，正在执行
	JobStatusCompleted  JobStatus = "completed"  // 产物已生成
	JobStatusFailed     JobStatus = "failed"     // 执行失败，不自动重试
)

// JobTransition 定义任务状态迁移
type JobTransition struct {
	From JobStatus
	To   JobStatus
}

// JobStateMachine 生成任务状态机
type JobStateMachine struct {
	allowedTransitions map[JobTransition]bool
}

// NewJobStateMachine 创建新的任务状态机
// 迁移路径：pending -> processing -> completed/failed
// 失败与完成均为终止态，重新生成需要提交新任务。
func NewJobStateMachine() *JobStateMachine {
	sm := &JobStateMachine{
		allowedTransitions: make(map[JobTransition]bool),
	}

	transitions := []JobTransition{
		{JobStatusPending, JobStatusProcessing},
		{JobStatusProcessing, JobStatusCompleted},
		{JobStatusProcessing, JobStatusFailed},
		// 入队失败时调度器把认领回滚
		{JobStatusProcessing, JobStatusPending},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// CanTransition 检查状态迁移是否合法
func (sm *JobStateMachine) CanTransition(from, to JobStatus) bool {
	if from == to {
		return false // 不允许状态不变
	}
	return sm.allowedTransitions[JobTransition{From: from, To: to}]
}

// ValidateTransition 验证状态迁移并返回错误
func (sm *JobStateMachine) ValidateTransition(from, to JobStatus) error {
	if !sm.CanTransition(from, to) {
		return &InvalidStateTransitionError{
			From: string(from),
			To:   string(to),
		}
	}
	return nil
}

// Transition 执行状态迁移（带日志）
func (sm *JobStateMachine) Transition(from, to JobStatus, jobID uint) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.V(6).Infof("任务状态迁移被拒绝: jobID=%d, %s -> %s, error=%v",
			jobID, from, to, err)
		return err
	}

	klog.V(6).Infof("任务状态迁移成功: jobID=%d, %s -> %s", jobID, from, to)
	return nil
}

// InvalidStateTransitionError 无效的状态迁移错误
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid job state transition: %s -> %s", e.From, e.To)
}

// IsTerminal 判断状态是否为终止态（不能再迁移）
func IsTerminal(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}
