package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ps2id/internal/identification"
	"ps2id/internal/logging"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var format string
	var workers int

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Identify every disc image below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := validateFormat(format)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Scan.Workers
			}
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}

			sessionID := uuid.NewString()
			logger, logCloser, err := ctx.newLogger(sessionID)
			if err != nil {
				return err
			}
			defer logCloser.Close()
			identifier, err := ctx.newIdentifier(logger)
			if err != nil {
				return err
			}

			paths, err := collectImages(args[0], identifier.Accepts, cfg.Scan.FollowSymlinks)
			if err != nil {
				return err
			}
			logger.Info("scan started",
				logging.String("root", args[0]),
				logging.Int("image_count", len(paths)),
				logging.Int("workers", workers),
			)

			reports, err := identifyAll(cmd.Context(), identifier, paths, workers)
			if err != nil {
				return err
			}
			logScanSummary(logger, reports)

			if handled, err := writeStructured(cmd, outFormat, reports); handled {
				return err
			}
			if err := renderReports(cmd, outFormat, reports); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identified %d of %d images\n", countIdentified(reports), len(reports))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent identifications (defaults to scan.workers)")
	return cmd
}

// collectImages walks root and returns accepted files in lexical order.
func collectImages(root string, accepts func(string) bool, followSymlinks bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Unreadable subdirectories are skipped.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if !followSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if accepts(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}

// identifyAll runs identifications on a bounded pool. Per-image failures land
// in the report; only cancellation aborts the batch.
func identifyAll(ctx context.Context, identifier *identification.Identifier, paths []string, workers int) ([]imageReport, error) {
	reports := make([]imageReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := identifier.Identify(gctx, path)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			reports[i] = newImageReport(path, result, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortReports(reports)
	return reports, nil
}

func logScanSummary(logger *slog.Logger, reports []imageReport) {
	counts := map[string]int{}
	for _, r := range reports {
		counts[r.Status]++
	}
	logger.Info("scan finished",
		logging.Int("images", len(reports)),
		logging.Int(statusIdentified, counts[statusIdentified]),
		logging.Int(statusNotFound, counts[statusNotFound]),
		logging.Int(statusUnreadable, counts[statusUnreadable]),
		logging.Int(statusFailed, counts[statusFailed]),
	)
}
