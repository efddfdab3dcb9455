package identification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"ps2id/internal/serial"
)

// DefaultChunkSize is the read size of the raw byte scan.
const DefaultChunkSize = 10 * 1024 * 1024

// ScanOptions tunes ScanForSerial.
type ScanOptions struct {
	// ChunkSize must exceed serial.MaxPrefixLen. Zero selects DefaultChunkSize.
	ChunkSize int
}

var serialPattern = buildSerialPattern()

func buildSerialPattern() *regexp.Regexp {
	quoted := make([]string, len(serial.Prefixes))
	for i, p := range serial.Prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(` + strings.Join(quoted, "|") + `)[_-][0-9.]+;`)
}

// ScanForSerial reads path chunk by chunk looking for an embedded serial of
// the form PREFIX_NNN.NN;. Within a chunk the prefix ranked highest in
// serial.Prefixes wins regardless of byte position. The returned serial is
// normalized. Cancellation is checked between chunks.
func ScanForSerial(ctx context.Context, path string, opts ScanOptions) (string, bool, error) {
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize <= serial.MaxPrefixLen {
		return "", false, fmt.Errorf("chunk size %d must exceed %d bytes", chunkSize, serial.MaxPrefixLen)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()
	adviseSequential(file)

	buf := make([]byte, chunkSize)
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		n, readErr := file.ReadAt(buf, offset)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return "", false, fmt.Errorf("read image at %d: %w", offset, readErr)
		}
		if n == 0 {
			return "", false, nil
		}
		if found, ok := matchChunk(buf[:n]); ok {
			return found, true, nil
		}
		offset = nextChunkOffset(offset, n, readErr != nil)
	}
}

// matchChunk picks the hit whose prefix ranks first in the prefix table.
func matchChunk(chunk []byte) (string, bool) {
	hits := serialPattern.FindAllSubmatchIndex(chunk, -1)
	if len(hits) == 0 {
		return "", false
	}
	best, bestRank := -1, len(serial.Prefixes)
	for i, hit := range hits {
		rank := serial.PrefixRank(string(chunk[hit[2]:hit[3]]))
		if rank >= 0 && rank < bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return "", false
	}
	hit := hits[best]
	return serial.Normalize(string(chunk[hit[0]:hit[1]])), true
}

// nextChunkOffset advances past a chunk of n bytes read at offset. After a
// chunk that did not reach end of file the cursor steps back by
// serial.MaxPrefixLen so a prefix split across the boundary is read whole.
func nextChunkOffset(offset int64, n int, final bool) int64 {
	next := offset + int64(n)
	if final || next <= serial.MaxPrefixLen {
		return next
	}
	return next - serial.MaxPrefixLen
}
