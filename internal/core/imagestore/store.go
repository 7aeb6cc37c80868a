package imagestore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"column/internal/domain"
)

var ErrDisabled = errors.New("image store is not configured")

// Backend 对象存储后端（minio / gcs）
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Bucket() string
	// URL 对象的公开访问地址
	URL(key string) string
}

type Options struct {
	Prefix        string
	PublicBaseURL string
	Timeout       time.Duration
}

// Store 上传封面图，PublicID 即对象 key
type Store struct {
	backend Backend
	opts    Options
}

func New(backend Backend, o Options) *Store {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return &Store{backend: backend, opts: o}
}

func (s *Store) Enabled() bool { return s != nil && s.backend != nil }

func (s *Store) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.backend.EnsureBucket(ctx)
}

func (s *Store) Upload(ctx context.Context, r io.Reader, size int64, contentType, filename string) (domain.Image, error) {
	if !s.Enabled() {
		return domain.Image{}, ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	key := s.key(filename)
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return domain.Image{}, err
	}
	return domain.Image{URL: s.url(key), PublicID: key}, nil
}

func (s *Store) Delete(ctx context.Context, publicID string) error {
	if !s.Enabled() || publicID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	return s.backend.Delete(ctx, publicID)
}

func (s *Store) key(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	name := uuid.NewString() + ext
	if p := strings.Trim(s.opts.Prefix, "/"); p != "" {
		return p + "/" + name
	}
	return name
}

func (s *Store) url(key string) string {
	if base := strings.TrimRight(s.opts.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	return s.backend.URL(key)
}
