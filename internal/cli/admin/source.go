package admin

import (
	"context"
	"fmt"
	"os"

	"github.com/cloo-solutions/communityos/internal/config"
	"github.com/cloo-solutions/communityos/internal/storage"
)

// readSource loads a dataset from a local path or an s3://bucket/key URI.
func readSource(ctx context.Context, cfg *config.Config, source string) ([]byte, error) {
	if !storage.IsURI(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		return data, nil
	}

	client, key, err := s3Target(ctx, cfg, source)
	if err != nil {
		return nil, err
	}
	data, err := client.GetObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", source, err)
	}
	return data, nil
}

// writeSource stores data at a local path or an s3://bucket/key URI.
func writeSource(ctx context.Context, cfg *config.Config, target string, data []byte) error {
	if !storage.IsURI(target) {
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil
	}

	client, key, err := s3Target(ctx, cfg, target)
	if err != nil {
		return err
	}
	if err := client.PutObject(ctx, key, data, "application/json"); err != nil {
		return fmt.Errorf("failed to upload %s: %w", target, err)
	}
	return nil
}

func s3Target(ctx context.Context, cfg *config.Config, uri string) (*storage.S3Client, string, error) {
	bucket, key, err := storage.ParseURI(uri)
	if err != nil {
		return nil, "", err
	}
	if cfg == nil || !cfg.HasS3() {
		return nil, "", fmt.Errorf("%s: S3 is not configured, set COMMUNITY_S3_ENDPOINT and credentials", uri)
	}
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	return client.WithBucket(bucket), key, nil
}
