// Package converter 调用外部无头渲染进程把 docx 转成 pdf。
// 每个文档一次独立进程调用，不做内部重试，失败策略由上层决定。
package converter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/contractgen/backend/internal/apperrors"
)

// Converter 文档格式转换
type Converter interface {
	// ConvertToPDF 把 docxPath 转为 outDir 下同名 .pdf，返回输出路径
	ConvertToPDF(ctx context.Context, docxPath, outDir string) (string, error)
}

// SofficeConverter 基于 LibreOffice 的转换器
type SofficeConverter struct {
	binary  string
	timeout time.Duration
}

func NewSofficeConverter(binary string, timeout time.Duration) *SofficeConverter {
	if binary == "" {
		binary = "soffice"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &SofficeConverter{binary: binary, timeout: timeout}
}

func (c *SofficeConverter) ConvertToPDF(ctx context.Context, docxPath, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, "--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &apperrors.ConversionFailureError{
			Path:   docxPath,
			Output: string(output),
			Err:    err,
		}
	}

	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", &apperrors.ConversionFailureError{
			Path:   docxPath,
			Output: string(output),
			Err:    fmt.Errorf("converter exited 0 but produced no output: %w", err),
		}
	}

	klog.V(6).Infof("转换完成: %s -> %s", docxPath, pdfPath)
	return pdfPath, nil
}
