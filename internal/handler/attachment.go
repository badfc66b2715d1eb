package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contractgen/backend/internal/service"
)

type AttachmentHandler struct {
	service *service.AttachmentService
}

func NewAttachmentHandler(service *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Download 按公开 hash 下载附件内容
func (h *AttachmentHandler) Download(c *gin.Context) {
	h.serve(c, "attachment")
}

// Preview 浏览器内联打开
func (h *AttachmentHandler) Preview(c *gin.Context) {
	h.serve(c, "inline")
}

func (h *AttachmentHandler) serve(c *gin.Context, disposition string) {
	att, err := h.service.GetByHash(c.Param("hash"))
	if err != nil {
		respondError(c, err)
		return
	}

	rc, err := h.service.Open(c.Request.Context(), att)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`%s; filename="%s"`, disposition, att.Name),
	}
	c.DataFromReader(http.StatusOK, att.Size, att.ContentType, rc, headers)
}
