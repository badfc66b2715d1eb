// Package archive 把一批生成文件打成单个 zip。
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// BuildZip 在 dir 下以随机名创建 zip，所有文件按基础文件名平铺，
// 不保留目录结构。磁盘上已不存在的路径跳过，不视为错误，
// 以容忍上游的部分失败。返回 zip 路径与字节大小。
func BuildZip(paths []string, dir string) (string, int64, error) {
	zipPath := filepath.Join(dir, uuid.NewString()+".zip")

	f, err := os.Create(zipPath)
	if err != nil {
		return "", 0, fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(f)
	for _, path := range paths {
		if err := addFile(zw, path); err != nil {
			zw.Close()
			f.Close()
			os.Remove(zipPath)
			return "", 0, err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return "", 0, fmt.Errorf("close archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("close archive file: %w", err)
	}

	info, err := os.Stat(zipPath)
	if err != nil {
		return "", 0, fmt.Errorf("stat archive: %w", err)
	}
	return zipPath, info.Size(), nil
}

func addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			klog.Warningf("归档跳过不存在的文件: %s", path)
			return nil
		}
		return fmt.Errorf("open archive entry %s: %w", path, err)
	}
	defer src.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", path, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write archive entry %s: %w", path, err)
	}
	return nil
}
