package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/contractgen/backend/internal/middleware"
	"github.com/contractgen/backend/internal/service"
)

type ContractHandler struct {
	service *service.ContractService
}

func NewContractHandler(service *service.ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

type createContractRequest struct {
	TemplateID uint               `json:"template_id" binding:"required"`
	Data       []service.KeyValue `json:"data"`
}

func (h *ContractHandler) Create(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.service.Create(actor, req.TemplateID, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

type updateContractDataRequest struct {
	Data []service.KeyValue `json:"data" binding:"required"`
}

func (h *ContractHandler) UpdateData(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateContractDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.service.UpdateData(actor, uint(id), req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) List(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	contracts, err := h.service.List(actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *ContractHandler) Get(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	contract, err := h.service.Get(actor, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(actor, uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
