package identification

import (
	"context"
	"fmt"

	"ps2id/internal/disc/iso9660"
	"ps2id/internal/disc/udf"
)

// ExtractFunc returns the candidate names found in an image. A nil or empty
// slice means the strategy found nothing usable.
type ExtractFunc func(ctx context.Context, path string) ([]string, error)

// Strategy is one way of pulling serial candidates out of an image.
type Strategy struct {
	Name    string
	Kind    DiscKind
	Extract ExtractFunc
}

// DefaultStrategies returns UDF, ISO 9660 and raw scan, in that order.
func DefaultStrategies(scan ScanOptions) []Strategy {
	return []Strategy{
		{Name: "udf", Kind: StructuredDVD, Extract: extractUDF},
		{Name: "iso9660", Kind: StructuredCD, Extract: extractISO9660},
		BinaryStrategy(scan),
	}
}

// BinaryStrategy wraps ScanForSerial as a Strategy.
func BinaryStrategy(scan ScanOptions) Strategy {
	return Strategy{
		Name: "binary",
		Kind: RawBinary,
		Extract: func(ctx context.Context, path string) ([]string, error) {
			found, ok, err := ScanForSerial(ctx, path, scan)
			if err != nil {
				return nil, fmt.Errorf("binary scan: %w", err)
			}
			if !ok {
				return nil, nil
			}
			return []string{found}, nil
		},
	}
}

func extractUDF(_ context.Context, path string) ([]string, error) {
	entries, err := udf.ListEntries(path)
	if err != nil {
		return nil, fmt.Errorf("dvd listing: %w", err)
	}
	return entries, nil
}

func extractISO9660(_ context.Context, path string) ([]string, error) {
	entries, err := iso9660.ListEntries(path)
	if err != nil {
		return nil, fmt.Errorf("cd listing: %w", err)
	}
	return entries, nil
}
