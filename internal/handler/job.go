package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contractgen/backend/internal/middleware"
	"github.com/contractgen/backend/internal/service"
	"github.com/contractgen/backend/internal/service/orchestrator"
)

type JobHandler struct {
	service *service.JobService
	orch    *orchestrator.Orchestrator
}

func NewJobHandler(service *service.JobService, orch *orchestrator.Orchestrator) *JobHandler {
	return &JobHandler{service: service, orch: orch}
}

type createJobRequest struct {
	ContractIDs []uint `json:"contract_ids" binding:"required"`
	Extension   string `json:"extension" binding:"required"`
}

// Create 提交生成任务，立即返回不等待执行
func (h *JobHandler) Create(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.service.Submit(actor, req.ContractIDs, req.Extension)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": job.Status})
}

// Status 批量状态查询，ids 为逗号分隔
func (h *JobHandler) Status(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	raw := strings.Split(c.Query("ids"), ",")
	var ids []uint
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ids"})
			return
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids is required"})
		return
	}

	views, err := h.service.Status(actor, ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *JobHandler) List(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	views, err := h.service.List(actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// QueueStatus 编排器队列观测
func (h *JobHandler) QueueStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.GetQueueStatus())
}
