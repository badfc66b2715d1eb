package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/contractgen/backend/internal/middleware"
	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/service"
)

type TemplateHandler struct {
	service *service.TemplateService
}

func NewTemplateHandler(service *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

type templateView struct {
	Template *model.Template `json:"template"`
	Keys     []keyView       `json:"keys"`
}

func newTemplateView(tpl *model.Template) templateView {
	keys := make([]keyView, 0, len(tpl.Keys))
	for i := range tpl.Keys {
		keys = append(keys, keyView{ID: tpl.Keys[i].ID, Name: tpl.Keys[i].Display()})
	}
	return templateView{Template: tpl, Keys: keys}
}

// Create 上传模板文件（multipart: file, name, organization_id）
func (h *TemplateHandler) Create(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	orgID, err := strconv.ParseUint(c.PostForm("organization_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization_id"})
		return
	}
	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	tpl, err := h.service.Upload(c.Request.Context(), actor, uint(orgID), name, fileHeader.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTemplateView(tpl))
}

func (h *TemplateHandler) List(c *gin.Context) {
	orgID, err := strconv.ParseUint(c.Query("organization_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization_id"})
		return
	}

	tpls, err := h.service.ListByOrganization(uint(orgID))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]templateView, 0, len(tpls))
	for i := range tpls {
		views = append(views, newTemplateView(&tpls[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	tpl, err := h.service.Get(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTemplateView(tpl))
}

// Update 整体替换模板文件并重新提取占位键
func (h *TemplateHandler) Update(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	tpl, err := h.service.Replace(c.Request.Context(), actor, uint(id), fileHeader.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTemplateView(tpl))
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
