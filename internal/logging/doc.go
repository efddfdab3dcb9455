// Package logging assembles the structured slog loggers used by ps2id.
//
// It owns the console and JSON handlers, level parsing, and output routing,
// plus a small set of attribute helpers and standard field keys so that every
// component (region loader, extractors, scanner, CLI) emits records with the
// same shape. A no-op logger is provided for tests and for library callers
// that do not care about diagnostics.
package logging
