package main

import (
	"context"

	"github.com/contractgen/backend/internal/service"
)

// jobExecutor 把任务服务接到编排器的执行接口上
type jobExecutor struct {
	jobs *service.JobService
}

func (e *jobExecutor) ProcessJob(ctx context.Context, jobID uint) error {
	return e.jobs.Process(ctx, jobID)
}
