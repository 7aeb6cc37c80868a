package service

import (
	"context"
	"io"

	"column/internal/domain"
)

// Mailer 发送验证 / 重置邮件
type Mailer interface {
	SendVerification(ctx context.Context, to, name, rawToken string) error
	SendPasswordReset(ctx context.Context, to, name, rawToken string) error
}

// ImageStore 封面图存储
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType, filename string) (domain.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// Upload 已打开的上传文件
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// Page 列表结果：data + meta
type Page[T any] struct {
	Items []T
	Meta  any
}

func (p *Page[T]) Envelope() (any, any) { return p.Items, p.Meta }

const (
	DefaultFeedLimit    = 6
	DefaultAdminLimit   = 10
	DefaultCommentLimit = 5
	MaxPageLimit        = 50
)

// PageParams 页码从 1 开始；nil 表示未传
type PageParams struct {
	Page  *int `form:"page"`
	Limit *int `form:"limit"`
}

func (p PageParams) resolve(defLimit int) (page, limit int, err error) {
	page, limit = 1, defLimit
	if p.Page != nil {
		page = *p.Page
	}
	if p.Limit != nil {
		limit = *p.Limit
	}
	if page < 1 {
		return 0, 0, errBadPage
	}
	if limit < 1 {
		return 0, 0, errBadLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, nil
}
