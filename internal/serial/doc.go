// Package serial canonicalizes PlayStation 2 serial numbers and validates
// their publisher prefix.
//
// Serials appear on disc as file identifiers such as "SLUS_123.45;1". The
// canonical form used by the region databases is "SLUS-12345": uppercase,
// dots removed, underscore rewritten to a hyphen, and the ISO 9660 version
// suffix dropped. Normalize is total and idempotent, so callers may apply it
// to database keys and disc candidates alike.
package serial
