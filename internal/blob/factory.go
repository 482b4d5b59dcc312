package blob

import (
	"context"
	"fmt"

	infraS3 "xsplot/internal/infra/blob/s3"
)

// Config selects and configures a blob backend.
type Config struct {
	Driver string   `yaml:"driver"`  // fs|s3|memory (default fs)
	FSRoot string   `yaml:"fs_root"` // root directory for the fs driver (default ./blobdata)
	S3     S3Config `yaml:"s3"`
}

// S3Config re-exports the infra S3 configuration.
type S3Config = infraS3.Config

// Open constructs the configured blob store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewS3 constructs an S3-backed store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// NewMockS3ForTests exposes the in-process S3 fake for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
