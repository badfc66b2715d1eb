// Package hashid 生成附件下载用的短公开标识，
// 避免对外暴露自增主键和存储路径。
package hashid

import (
	"fmt"

	"github.com/speps/go-hashids/v2"
)

type Encoder struct {
	h *hashids.HashID
}

func New(salt string, minLength int) (*Encoder, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("init hashids: %w", err)
	}
	return &Encoder{h: h}, nil
}

func (e *Encoder) Encode(id uint) (string, error) {
	return e.h.EncodeInt64([]int64{int64(id)})
}

func (e *Encoder) Decode(hash string) (uint, error) {
	ids, err := e.h.DecodeInt64WithError(hash)
	if err != nil {
		return 0, fmt.Errorf("decode hash %q: %w", hash, err)
	}
	if len(ids) != 1 || ids[0] < 0 {
		return 0, fmt.Errorf("decode hash %q: unexpected payload", hash)
	}
	return uint(ids[0]), nil
}
