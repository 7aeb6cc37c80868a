package imagestore

import (
	"context"
	"fmt"
	"time"

	"column/internal/core/config"
)

// Open 按配置选择后端；none 返回未启用的 Store
func Open(ctx context.Context, cfg config.Images) (*Store, error) {
	opts := Options{
		Prefix:        cfg.Prefix,
		PublicBaseURL: cfg.PublicBaseURL,
		Timeout:       time.Duration(cfg.UploadTimeoutSec) * time.Second,
	}
	switch cfg.Backend {
	case "", "none":
		return New(nil, opts), nil
	case "minio":
		b, err := NewMinio(MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return New(b, opts), nil
	case "gcs":
		b, err := NewGCS(ctx, GCSConfig{
			Bucket:          cfg.Bucket,
			ProjectID:       cfg.ProjectID,
			CredentialsFile: cfg.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		return New(b, opts), nil
	}
	return nil, fmt.Errorf("unknown image backend %q", cfg.Backend)
}
