package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
)

// respondError 把业务错误映射为 HTTP 状态码。
// 未编号的错误一律 500，不向客户端泄露内部细节之外的内容。
func respondError(c *gin.Context, err error) {
	code, ok := apperrors.CodeOf(err)
	if !ok {
		klog.Errorf("未分类错误: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeUserNotFound,
		apperrors.CodeOrganizationNotFound,
		apperrors.CodeKeyNotFound,
		apperrors.CodeTemplateNotFound,
		apperrors.CodeContractNotFound,
		apperrors.CodeAttachmentNotFound,
		apperrors.CodeJobNotFound:
		status = http.StatusNotFound
	case apperrors.CodeUserAlreadyExists,
		apperrors.CodeKeyAlreadyExists,
		apperrors.CodeTemplateAlreadyExists,
		apperrors.CodeDuplicateContract:
		status = http.StatusConflict
	case apperrors.CodeInvalidFileFormat,
		apperrors.CodeDocumentRead,
		apperrors.CodeMissingRequiredKeys:
		status = http.StatusBadRequest
	case apperrors.CodePermissionDenied:
		status = http.StatusForbidden
	case apperrors.CodeConversionFailure:
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
