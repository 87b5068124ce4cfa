// Package bootstrap provides dependency initialization for opensmile-check.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/maauso/opensmile-check/internal/check"
	"github.com/maauso/opensmile-check/internal/config"
	"github.com/maauso/opensmile-check/internal/storage"
	"github.com/maauso/opensmile-check/internal/summary"
)

// Dependencies holds all initialized dependencies for the CLI.
type Dependencies struct {
	Checker *check.Checker
}

// NewDependencies creates and initializes all dependencies for the application.
// Warnings for skipped files are printed to warnings.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, warnings io.Writer) (*Dependencies, error) {
	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	checker := check.NewChecker(
		store,
		logger,
		check.WithWarningWriter(warnings),
		check.WithSummaryOptions(summary.Options{LoudnessThreshold: cfg.LoudnessThreshold}),
	)

	return &Dependencies{
		Checker: checker,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(ctx, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Debug("S3 summary mirror configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.String("prefix", cfg.S3Prefix),
		)
		return s3Store, nil
	}

	logger.Debug("local storage configured")
	return storage.NewLocalStorage(), nil
}
