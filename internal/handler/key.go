package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/contractgen/backend/internal/service"
)

type KeyHandler struct {
	service *service.KeyService
}

func NewKeyHandler(service *service.KeyService) *KeyHandler {
	return &KeyHandler{service: service}
}

type keyView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// List 对外展示去掉定界符的键名
func (h *KeyHandler) List(c *gin.Context) {
	keys, err := h.service.List()
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]keyView, 0, len(keys))
	for i := range keys {
		views = append(views, keyView{ID: keys[i].ID, Name: keys[i].Display()})
	}
	c.JSON(http.StatusOK, views)
}

type createKeyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *KeyHandler) Create(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, err := h.service.Create(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, keyView{ID: key.ID, Name: key.Display()})
}

func (h *KeyHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
