package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"k8s.io/klog/v2"
)

// -----------------------------
// Job 定义
// -----------------------------
// Job 是已被调度器认领、等待协程池执行的生成任务。
// 失败不在池内重试，重新生成由用户提交新任务完成。
type Job struct {
	JobID      uint
	EnqueuedAt time.Time
	Timeout    time.Duration
}

// -----------------------------
// JobExecutor 接口
// -----------------------------
type JobExecutor interface {
	ProcessJob(ctx context.Context, jobID uint) error
}

// -----------------------------
// Orchestrator
// -----------------------------
type Orchestrator struct {
	jobQueue *jobQueue

	pool *ants.Pool

	executor JobExecutor

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// -----------------------------
// 错误定义
// -----------------------------
var (
	ErrOrchestratorStopped = errors.New("orchestrator is stopped")
	ErrQueueFull           = errors.New("job queue is full")
)

// NewGenerationJob
// 说明：包装一个待执行的生成任务，记录入队时间与超时
func NewGenerationJob(jobID uint, timeout time.Duration) *Job {
	return &Job{
		JobID:      jobID,
		EnqueuedAt: time.Now(),
		Timeout:    timeout,
	}
}

// -----------------------------
// 构造函数
// -----------------------------
func NewOrchestrator(maxWorkers int, executor JobExecutor) (*Orchestrator, error) {
	ctx, cancel := context.WithCancel(context.Background())

	jobQ := newJobQueue(120)

	pool, err := ants.NewPool(maxWorkers,
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(1000),
		ants.WithExpiryDuration(5*time.Minute),
	)
	if err != nil {
		cancel()
		klog.Errorf("ants pool initialization failed: %v", err)
		return nil, err
	}

	return &Orchestrator{
		jobQueue: jobQ,
		pool:     pool,
		executor: executor,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// -----------------------------
// 启动
// -----------------------------
func (o *Orchestrator) Start() {
	go o.dispatchLoop()
}

// -----------------------------
// 停止
// -----------------------------
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		klog.V(6).Infof("Orchestrator stopping...")

		// 1. 停止接收新任务，关闭队列
		o.cancel()
		o.jobQueue.Close()

		// 2. 等待队列中待执行的任务全部分发完毕
		for o.jobQueue.Len() > 0 {
			time.Sleep(100 * time.Millisecond)
			klog.V(6).Infof("Waiting for queue to empty: %d", o.jobQueue.Len())
		}

		// 3. 等待正在执行的生成任务完成
		runningJobs := o.pool.Running()
		if runningJobs > 0 {
			klog.V(6).Infof("Waiting for %d running jobs to complete", runningJobs)
		}

		// 转换一批合同最长十分钟，留余量等十五分钟
		timeout := 15 * time.Minute
		if rErr := o.pool.ReleaseTimeout(timeout); rErr == nil {
			klog.V(6).Infof("All running jobs completed before timeout")
		} else {
			klog.Warningf("Timeout after %v: some running jobs may be forced to stop", timeout)
		}

		klog.V(6).Infof("Orchestrator stopped completely")
	})
}

// -----------------------------
// 入队任务
// -----------------------------
func (o *Orchestrator) EnqueueJob(job *Job) error {
	select {
	case <-o.ctx.Done():
		return ErrOrchestratorStopped
	default:
	}

	if err := o.jobQueue.Enqueue(job); err != nil {
		if errors.Is(err, ErrQueueFull) {
			klog.Warningf("Job queue full: jobID=%d", job.JobID)
		}
		return err
	}
	klog.V(6).Infof("Job enqueued: jobID=%d", job.JobID)
	return nil
}

// -----------------------------
// Dispatch Loop
// -----------------------------
func (o *Orchestrator) dispatchLoop() {
	for {
		select {
		case <-o.ctx.Done():
			return
		default:
			job, ok := o.jobQueue.Dequeue()
			if !ok {
				continue
			}
			o.dispatch(job)
		}
	}
}

// dispatch 提交任务到协程池执行
// 任务在入队前已被数据库原子认领，提交失败时由上层把认领回滚，
// 这里不做重试。
func (o *Orchestrator) dispatch(job *Job) {
	if err := o.pool.Submit(func() {
		o.executeJob(job)
	}); err != nil {
		klog.Errorf("提交任务到协程池失败: jobID=%d, err=%v", job.JobID, err)
	}
}

// executeJob 在超时控制下执行一次，结果状态由执行器落库
func (o *Orchestrator) executeJob(job *Job) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("Job panic recovered: jobID=%d, err=%v", job.JobID, r)
		}
	}()

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(o.ctx, timeout)
	defer cancel()

	if err := o.executor.ProcessJob(ctx, job.JobID); err != nil {
		klog.Warningf("任务执行失败: jobID=%d, err=%v", job.JobID, err)
		return
	}
	klog.V(6).Infof("Job completed: jobID=%d", job.JobID)
}

// -----------------------------
// Queue Status
// -----------------------------
type QueueStatus struct {
	QueueLength   int `json:"queue_length"`
	ActiveWorkers int `json:"active_workers"`
}

func (o *Orchestrator) GetQueueStatus() *QueueStatus {
	return &QueueStatus{
		QueueLength:   o.jobQueue.Len(),
		ActiveWorkers: o.pool.Running(),
	}
}

// -----------------------------
// JobQueue (Ring Buffer) + Reject New
// -----------------------------
type jobQueue struct {
	maxSize int
	items   []*Job
	mutex   sync.Mutex
	cond    *sync.Cond
	closed  bool
}

func newJobQueue(maxSize int) *jobQueue {
	q := &jobQueue{
		maxSize: maxSize,
		items:   make([]*Job, 0, maxSize),
	}
	q.cond = sync.NewCond(&q.mutex)
	return q
}

func (q *jobQueue) Enqueue(job *Job) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed {
		return ErrOrchestratorStopped
	}
	if q.maxSize > 0 && len(q.items) >= q.maxSize {
		return ErrQueueFull // Reject New
	}
	q.items = append(q.items, job)
	q.cond.Signal()
	return nil
}

func (q *jobQueue) Dequeue() (*Job, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	job := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return job, true
}

func (q *jobQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

func (q *jobQueue) Close() {
	q.mutex.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mutex.Unlock()
}
