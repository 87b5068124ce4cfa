// Package check validates the OpenSMILE output for one audio file and writes
// its quality summary. A file pair that cannot be used is skipped with a
// warning; the absence of the summary file is the durable failure signal.
package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/opensmile-check/internal/storage"
	"github.com/maauso/opensmile-check/internal/summary"
	"github.com/maauso/opensmile-check/internal/table"
)

// Status is the outcome of a check.
type Status string

const (
	// StatusPassed indicates the summary was written.
	StatusPassed Status = "PASSED"
	// StatusLoadFailed indicates one of the inputs could not be parsed.
	StatusLoadFailed Status = "LOAD_FAILED"
	// StatusFileLevelEmpty indicates the IS10 table has no rows.
	StatusFileLevelEmpty Status = "FILE_LEVEL_EMPTY"
	// StatusFrameLevelEmpty indicates the GeMAPS table has no rows.
	StatusFrameLevelEmpty Status = "FRAME_LEVEL_EMPTY"
	// StatusNoCompleteFrames indicates every GeMAPS row misses a required value.
	StatusNoCompleteFrames Status = "NO_COMPLETE_FRAMES"
)

// Passed reports whether the check produced a summary.
func (s Status) Passed() bool {
	return s == StatusPassed
}

// Input names the files of one check.
type Input struct {
	// GemapsPath is the frame-level GeMAPS CSV, rewritten in place.
	// An unusable path is reported as a load failure.
	GemapsPath string
	// IS10Path is the file-level IS10 CSV, rewritten in place.
	IS10Path string
	// SavePath is where the summary CSV is written.
	SavePath string `validate:"required"`
}

// Result describes a finished check.
type Result struct {
	Status Status
	// Summary is set when Status is StatusPassed.
	Summary *summary.Summary
	// SummaryURL is the S3 location of the mirrored summary, if any.
	SummaryURL string
}

// Checker runs the OpenSMILE output checks.
type Checker struct {
	store     storage.Storage
	logger    *slog.Logger
	warnings  io.Writer
	opts      summary.Options
	validator *validator.Validate
}

// Option configures a Checker.
type Option func(*Checker)

// WithWarningWriter sets where skip warnings are printed. Defaults to stdout.
func WithWarningWriter(w io.Writer) Option {
	return func(c *Checker) {
		c.warnings = w
	}
}

// WithSummaryOptions overrides the summary thresholds.
func WithSummaryOptions(opts summary.Options) Option {
	return func(c *Checker) {
		c.opts = opts
	}
}

// NewChecker creates a Checker backed by store.
func NewChecker(store storage.Storage, logger *slog.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Checker{
		store:     store,
		logger:    logger,
		warnings:  os.Stdout,
		opts:      summary.DefaultOptions(),
		validator: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check loads both tables, rewrites them comma-delimited in place and writes
// the one-row summary to in.SavePath.
//
// Unusable inputs are skipped: a warning is printed and the returned Result
// carries a non-passed status with a nil error. Any other failure, such as a
// missing GeMAPS column or a write error, is returned as an error.
func (c *Checker) Check(ctx context.Context, in Input) (*Result, error) {
	if err := c.validator.Struct(in); err != nil {
		return nil, fmt.Errorf("check input: %w", err)
	}

	logger := c.logger.With(
		slog.String("gemaps_path", in.GemapsPath),
		slog.String("is10_path", in.IS10Path),
	)

	gemaps, is10, err := c.loadPair(ctx, in)
	if err != nil {
		logger.Info("inputs not loadable", slog.String("error", err.Error()))
		c.warn("WARNING: unable to load OpenSMILE output paths (%s, %s), skipping file", in.GemapsPath, in.IS10Path)
		return c.skip(logger, StatusLoadFailed), nil
	}

	return c.checkTables(ctx, logger, in, gemaps, is10)
}

func (c *Checker) checkTables(ctx context.Context, logger *slog.Logger, in Input, gemaps, is10 *table.Table) (*Result, error) {
	if is10.Empty() {
		c.warnManualInspection(in.IS10Path)
		return c.skip(logger, StatusFileLevelEmpty), nil
	}
	if gemaps.Empty() {
		c.warnManualInspection(in.GemapsPath)
		return c.skip(logger, StatusFrameLevelEmpty), nil
	}

	if err := c.rewrite(ctx, in.GemapsPath, gemaps); err != nil {
		return nil, err
	}
	if err := c.rewrite(ctx, in.IS10Path, is10); err != nil {
		return nil, err
	}
	logger.Debug("inputs rewritten comma-delimited",
		slog.Int("gemaps_rows", gemaps.Len()),
		slog.Int("is10_rows", is10.Len()),
	)

	s, err := summary.Compute(gemaps, c.opts)
	if errors.Is(err, summary.ErrNoCompleteFrames) {
		c.warn("WARNING: no complete frames in %s, audio needs to be manually inspected", in.GemapsPath)
		return c.skip(logger, StatusNoCompleteFrames), nil
	}
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", in.GemapsPath, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.Table().Write(&buf, table.Comma); err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	if err := c.store.Replace(ctx, in.SavePath, bytes.NewReader(buf.Bytes())); err != nil {
		return nil, fmt.Errorf("write summary %s: %w", in.SavePath, err)
	}

	res := &Result{Status: StatusPassed, Summary: s}
	res.SummaryURL = c.mirror(ctx, logger, in.SavePath, buf.Bytes())

	logger.Info("opensmile check passed",
		slog.String("save_path", in.SavePath),
		slog.Int("rows", s.RowCount),
		slog.Int("filtered_rows", s.FilteredRowCount),
		slog.Float64("fraction_loud_bins", s.FractionLoudBins),
		slog.Float64("fraction_nonzero_bins", s.FractionNonzeroBins),
	)
	return res, nil
}

func (c *Checker) loadPair(ctx context.Context, in Input) (gemaps, is10 *table.Table, err error) {
	if gemaps, err = c.load(ctx, in.GemapsPath); err != nil {
		return nil, nil, err
	}
	if is10, err = c.load(ctx, in.IS10Path); err != nil {
		return nil, nil, err
	}
	return gemaps, is10, nil
}

// load parses a semicolon-delimited OpenSMILE table.
func (c *Checker) load(ctx context.Context, path string) (*table.Table, error) {
	rc, err := c.store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	t, err := table.Read(rc, table.Semicolon)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// rewrite replaces path with the comma-delimited form of t.
func (c *Checker) rewrite(ctx context.Context, path string, t *table.Table) error {
	var buf bytes.Buffer
	if err := t.Write(&buf, table.Comma); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := c.store.Replace(ctx, path, &buf); err != nil {
		return fmt.Errorf("rewrite %s: %w", path, err)
	}
	return nil
}

// mirror uploads the summary when the store supports S3. Failures are logged only.
func (c *Checker) mirror(ctx context.Context, logger *slog.Logger, savePath string, data []byte) string {
	url, err := c.store.UploadToS3(ctx, filepath.Base(savePath), bytes.NewReader(data))
	if errors.Is(err, storage.ErrS3NotConfigured) {
		return ""
	}
	if err != nil {
		logger.Warn("summary mirror failed",
			slog.String("save_path", savePath),
			slog.String("error", err.Error()),
		)
		return ""
	}
	logger.Info("summary mirrored", slog.String("url", url))
	return url
}

func (c *Checker) skip(logger *slog.Logger, status Status) *Result {
	logger.Info("opensmile check skipped", slog.String("status", string(status)))
	return &Result{Status: status}
}

func (c *Checker) warnManualInspection(path string) {
	c.warn("WARNING: file level output for %s empty, audio needs to be manually inspected", path)
}

func (c *Checker) warn(format string, args ...any) {
	_, _ = fmt.Fprintf(c.warnings, format+"\n", args...)
}
