// Package storage 二进制文件存储。写入返回稳定唯一路径，
// 路径对上层不透明，按日期与类别分区只是运维便利。
package storage

import (
	"context"
	"io"
)

// BlobInfo 一次写入的结果元数据
type BlobInfo struct {
	Name        string
	ContentType string
	Extension   string
	Path        string // 存储内唯一路径
	Size        int64
}

type BlobStore interface {
	// Save 写入一个对象，category 用于目录分区（templates、contracts、archives）
	Save(ctx context.Context, category, name, contentType string, r io.Reader) (*BlobInfo, error)
	// Open 按 Save 返回的路径读取对象
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete 删除对象
	Delete(ctx context.Context, path string) error
}
