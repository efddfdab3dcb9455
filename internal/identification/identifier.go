package identification

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ps2id/internal/logging"
	"ps2id/internal/regiondb"
	"ps2id/internal/serial"
)

// Database resolves normalized serials to a region and title.
type Database interface {
	Lookup(serialNumber string) (regiondb.Region, string, bool)
}

// Options configures an Identifier.
type Options struct {
	// Extensions lists accepted lowercase extensions with a leading dot.
	// Empty selects .iso and .bin.
	Extensions []string
	// Scan tunes the raw byte scan of the default strategies.
	Scan ScanOptions
	// ScanTimeout bounds each raw scan. Zero disables the deadline.
	ScanTimeout time.Duration
	// ScanOnStructuredMiss runs the raw scan when a structured listing
	// produced candidates but none resolved.
	ScanOnStructuredMiss bool
	// Strategies overrides the default extraction order.
	Strategies []Strategy
}

// Identifier resolves disc images against a region database.
type Identifier struct {
	db          Database
	logger      *slog.Logger
	extensions  map[string]struct{}
	strategies  []Strategy
	fallback    *Strategy
	scanTimeout time.Duration
	scanOnMiss  bool
}

// NewIdentifier builds an Identifier. A nil logger discards output.
func NewIdentifier(db Database, logger *slog.Logger, opts Options) *Identifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".iso", ".bin"}
	}
	extSet := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies(opts.Scan)
	}
	id := &Identifier{
		db:          db,
		logger:      logging.NewComponentLogger(logger, "identify"),
		extensions:  extSet,
		strategies:  strategies,
		scanTimeout: opts.ScanTimeout,
		scanOnMiss:  opts.ScanOnStructuredMiss,
	}
	for i := range strategies {
		if strategies[i].Kind == RawBinary {
			id.fallback = &strategies[i]
			break
		}
	}
	return id
}

// Accepts reports whether path carries an accepted extension.
func (id *Identifier) Accepts(path string) bool {
	_, ok := id.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Identify extracts a serial from the image at path and resolves it. Failures
// are returned as *Error; cancellation carries the context error as its Kind.
func (id *Identifier) Identify(ctx context.Context, path string) (Result, error) {
	if !id.Accepts(path) {
		return Result{}, &Error{Path: path, Kind: ErrUnsupportedExtension}
	}

	logger := id.logger.With(logging.String(logging.FieldImage, path))
	image, err := statImage(path)
	if err != nil {
		return Result{}, &Error{Path: path, Kind: ErrUnreadableImage, Cause: err}
	}
	start := time.Now()

	kind, candidates, err := id.extract(ctx, logger, image)
	if err != nil {
		return Result{}, &Error{Path: path, Kind: err}
	}
	if len(candidates) == 0 {
		logger.Info("no serial candidates", logging.Int64("size_bytes", image.Size))
		return Result{}, &Error{Path: path, Kind: ErrUnreadableImage}
	}

	result, tried, ok := id.resolve(logger, candidates)
	if !ok && id.scanOnMiss && kind != RawBinary && id.fallback != nil {
		logger.Info("structured listing did not resolve",
			logging.Args(logging.DecisionAttrs("structured_miss", "raw_scan", "no candidate resolved")...)...)
		more, err := id.run(ctx, logger, *id.fallback, image)
		if err != nil && ctx.Err() != nil {
			return Result{}, &Error{Path: path, Kind: ctx.Err()}
		}
		if len(more) > 0 {
			kind = RawBinary
			var extra []string
			result, extra, ok = id.resolve(logger, more)
			tried = append(tried, extra...)
		}
	}
	if !ok {
		logger.Info("serial not in region databases",
			logging.Any("serials", tried),
			logging.Bool("raw_scan_on_miss", id.scanOnMiss),
		)
		return Result{}, &Error{Path: path, Kind: ErrGameNotFound, Serials: tried}
	}

	result.Path = path
	result.DiscKind = kind
	logger.Info("resolved",
		logging.String(logging.FieldSerial, result.Serial),
		logging.String(logging.FieldRegion, result.Region.String()),
		logging.String("title", result.Title),
		logging.String("disc_kind", kind.String()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// extract runs strategies in order until one yields candidates.
func (id *Identifier) extract(ctx context.Context, logger *slog.Logger, image Image) (DiscKind, []string, error) {
	for _, strategy := range id.strategies {
		candidates, err := id.run(ctx, logger, strategy, image)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", nil, ctxErr
		}
		if err != nil || len(candidates) == 0 {
			continue
		}
		logger.Debug("strategy produced candidates",
			logging.String(logging.FieldStrategy, strategy.Name),
			logging.Int("candidate_count", len(candidates)),
		)
		return strategy.Kind, candidates, nil
	}
	return "", nil, nil
}

func (id *Identifier) run(ctx context.Context, logger *slog.Logger, strategy Strategy, image Image) ([]string, error) {
	if strategy.Kind == RawBinary && id.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, id.scanTimeout)
		defer cancel()
	}
	candidates, err := strategy.Extract(ctx, image.Path)
	if err != nil {
		attrs := []logging.Attr{logging.String(logging.FieldStrategy, strategy.Name), logging.Error(err)}
		if errors.Is(err, context.DeadlineExceeded) {
			attrs = append(attrs, logging.Duration("timeout", id.scanTimeout))
		}
		logger.Debug("strategy failed", logging.Args(attrs...)...)
	}
	return candidates, err
}

// resolve walks candidates in order and returns the first region hit. tried
// collects the normalized serials that passed the prefix filter.
func (id *Identifier) resolve(logger *slog.Logger, candidates []string) (Result, []string, bool) {
	var tried []string
	for _, raw := range candidates {
		normalized := serial.Normalize(raw)
		if !serial.HasValidPrefix(normalized) {
			logger.Debug("skipping candidate",
				logging.String("candidate", raw),
				logging.Error(errInvalidPrefix),
			)
			continue
		}
		tried = append(tried, normalized)
		if id.db == nil {
			continue
		}
		region, title, ok := id.db.Lookup(normalized)
		if ok {
			return Result{Serial: normalized, Region: region, Title: title}, tried, true
		}
	}
	return Result{}, tried, false
}

func statImage(path string) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, err
	}
	if info.IsDir() {
		return Image{}, errors.New("path is a directory")
	}
	return Image{Path: path, Size: info.Size()}, nil
}
