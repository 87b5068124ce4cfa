// Package main provides the entry point for the opensmile-check CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/maauso/opensmile-check/internal/bootstrap"
	"github.com/maauso/opensmile-check/internal/check"
	"github.com/maauso/opensmile-check/internal/config"
)

func main() {
	if err := newApp(os.Stdout).RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the CLI. Skip warnings are printed to stdout.
func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "opensmile-check",
		Usage:     "check OpenSMILE GeMAPS/IS10 output for one audio file and write a summary CSV",
		ArgsUsage: "<gemaps_path> <is10_path> <save_path>",
		Writer:    stdout,
		// Positional arguments only; a path starting with '-' is still a path.
		SkipFlagParsing: true,
		HideHelp:        true,
		Action: func(c *cli.Context) error {
			// Arguments past the third are ignored.
			if c.NArg() < 3 {
				return fmt.Errorf("usage: %s %s", c.App.Name, c.App.ArgsUsage)
			}
			in := check.Input{
				GemapsPath: c.Args().Get(0),
				IS10Path:   c.Args().Get(1),
				SavePath:   c.Args().Get(2),
			}
			return run(c.Context, in, stdout)
		},
	}
}

func run(ctx context.Context, in check.Input, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Debug("starting opensmile-check",
		slog.String("config", cfg.String()),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
	)

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger, stdout)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	res, err := deps.Checker.Check(ctx, in)
	if err != nil {
		return err
	}

	logger.Debug("opensmile-check finished", slog.String("status", string(res.Status)))
	return nil
}
