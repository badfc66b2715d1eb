package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore 本地文件系统存储，路径形如
// <base>/<category>/<yyyy>/<mm>/<dd>/<uuid>.<ext>
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Save(ctx context.Context, category, name, contentType string, r io.Reader) (*BlobInfo, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")

	now := time.Now()
	dir := filepath.Join(s.baseDir, category, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create partition dir: %w", err)
	}

	fileName := uuid.NewString()
	if ext != "" {
		fileName += "." + ext
	}
	path := filepath.Join(dir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create blob file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write blob file: %w", err)
	}

	return &BlobInfo{
		Name:        name,
		ContentType: contentType,
		Extension:   ext,
		Path:        path,
		Size:        size,
	}, nil
}

func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blob file: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob file: %w", err)
	}
	return nil
}
