package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ps2id/internal/logging"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Identify disc images as they appear in a directory",
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
			dir := args[0]
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("watch target %s is not a directory", dir)
			}

			lock, err := acquireWatchLock(cfg.Watch.LockPath)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			logger, logCloser, err := ctx.newLogger(uuid.NewString())
			if err != nil {
				return err
			}
			defer logCloser.Close()
			identifier, err := ctx.newIdentifier(logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := &imageWatcher{
				dir:      dir,
				debounce: time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond,
				accepts:  identifier.Accepts,
				identify: func(ctx context.Context, path string) imageReport {
					result, err := identifier.Identify(ctx, path)
					return newImageReport(path, result, err)
				},
				emit: func(report imageReport) {
					writeWatchReport(cmd, out, outFormat, report)
				},
				logger: logging.NewComponentLogger(logger, "watch"),
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", dir)
			err = w.Run(cmd.Context(), nil)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format per image: table, json or yaml")
	return cmd
}

// acquireWatchLock keeps two watchers from identifying the same drops.
func acquireWatchLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another ps2id watcher is already running (lock %s)", path)
	}
	return lock, nil
}

func writeWatchReport(cmd *cobra.Command, out io.Writer, format string, report imageReport) {
	if handled, _ := writeStructured(cmd, format, report); handled {
		return
	}
	if report.identified() {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", filepath.Base(report.Path), report.Serial, report.Region, report.Title)
		return
	}
	fmt.Fprintf(out, "%s\t%s\t%s\n", filepath.Base(report.Path), report.Status, report.Error)
}

// imageWatcher identifies accepted files once writes to them settle.
type imageWatcher struct {
	dir      string
	debounce time.Duration
	accepts  func(string) bool
	identify func(context.Context, string) imageReport
	emit     func(imageReport)
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// Run blocks until ctx is cancelled. ready, when non-nil, is closed once the
// directory is being watched.
func (w *imageWatcher) Run(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	w.pending = map[string]time.Time{}
	w.logger.Info("watcher active", logging.String("dir", w.dir))
	if ready != nil {
		close(ready)
	}

	debounce := w.debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !w.accepts(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may have been missed"),
			)
		case now := <-ticker.C:
			for _, path := range w.settled(now, debounce) {
				if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
					continue
				}
				w.emit(w.identify(ctx, path))
			}
		}
	}
}

// settled removes and returns paths idle for at least quiet.
func (w *imageWatcher) settled(now time.Time, quiet time.Duration) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= quiet {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}
