package identification

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedExtension is returned for files outside the accepted
	// extension list. No I/O is performed for them.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrUnreadableImage means no strategy produced a single candidate.
	ErrUnreadableImage = errors.New("no serial candidates found in image")
	// ErrGameNotFound means candidates were found but none resolved.
	ErrGameNotFound = errors.New("serial not found in region databases")

	errInvalidPrefix = errors.New("invalid serial prefix")
)

// Error describes why an image could not be identified. It unwraps to one of
// the sentinel kinds and, when present, the underlying cause.
type Error struct {
	Path string
	Kind error
	// Serials lists normalized candidates that passed the prefix filter.
	Serials []string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Path, e.Kind)
	if len(e.Serials) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(e.Serials, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
