package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/contractgen/backend/internal/apperrors"
)

func TestConvertToPDFMissingBinary(t *testing.T) {
	c := NewSofficeConverter(filepath.Join(t.TempDir(), "no-such-binary"), time.Second)

	_, err := c.ConvertToPDF(context.Background(), "doc.docx", t.TempDir())
	var convErr *apperrors.ConversionFailureError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionFailureError, got %v", err)
	}
}

// fakeSoffice 写一个模拟转换器脚本：把输入复制成 outdir 下的同名 pdf
func fakeSoffice(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake converter script requires a POSIX shell")
	}

	script := `#!/bin/sh
# args: --headless --convert-to pdf --outdir <dir> <file>
outdir="$5"
input="$6"
base=$(basename "$input")
cp "$input" "$outdir/${base%.*}.pdf"
`
	path := filepath.Join(t.TempDir(), "fake-soffice")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write fake converter error: %v", err)
	}
	return path
}

func TestConvertToPDFSiblingPath(t *testing.T) {
	c := NewSofficeConverter(fakeSoffice(t), 10*time.Second)

	workDir := t.TempDir()
	docxPath := filepath.Join(workDir, "contract.docx")
	if err := os.WriteFile(docxPath, []byte("docx-bytes"), 0644); err != nil {
		t.Fatalf("write input error: %v", err)
	}

	pdfPath, err := c.ConvertToPDF(context.Background(), docxPath, workDir)
	if err != nil {
		t.Fatalf("convert error: %v", err)
	}
	if pdfPath != filepath.Join(workDir, "contract.pdf") {
		t.Fatalf("unexpected output path: %s", pdfPath)
	}
	if _, err := os.Stat(pdfPath); err != nil {
		t.Fatalf("expected pdf on disk: %v", err)
	}
}

func TestConvertToPDFNoOutputIsFailure(t *testing.T) {
	// 脚本成功退出但不产出文件
	script := "#!/bin/sh\nexit 0\n"
	if runtime.GOOS == "windows" {
		t.Skip("fake converter script requires a POSIX shell")
	}
	binary := filepath.Join(t.TempDir(), "noop-soffice")
	if err := os.WriteFile(binary, []byte(script), 0755); err != nil {
		t.Fatalf("write fake converter error: %v", err)
	}

	c := NewSofficeConverter(binary, 10*time.Second)
	workDir := t.TempDir()
	docxPath := filepath.Join(workDir, "contract.docx")
	if err := os.WriteFile(docxPath, []byte("x"), 0644); err != nil {
		t.Fatalf("write input error: %v", err)
	}

	_, err := c.ConvertToPDF(context.Background(), docxPath, workDir)
	var convErr *apperrors.ConversionFailureError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionFailureError, got %v", err)
	}
}

func TestConvertToPDFTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake converter script requires a POSIX shell")
	}
	binary := filepath.Join(t.TempDir(), "slow-soffice")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\nsleep 5\n"), 0755); err != nil {
		t.Fatalf("write fake converter error: %v", err)
	}

	c := NewSofficeConverter(binary, 100*time.Millisecond)
	workDir := t.TempDir()
	docxPath := filepath.Join(workDir, "contract.docx")
	if err := os.WriteFile(docxPath, []byte("x"), 0644); err != nil {
		t.Fatalf("write input error: %v", err)
	}

	_, err := c.ConvertToPDF(context.Background(), docxPath, workDir)
	var convErr *apperrors.ConversionFailureError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionFailureError on timeout, got %v", err)
	}
}
