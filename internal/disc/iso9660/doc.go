// Package iso9660 lists the directory tree of ISO 9660 images.
//
// Both cooked images (2048-byte user-data sectors) and raw BIN dumps
// (2352-byte sectors carrying Mode 1 or Mode 2 Form 1 data) are accepted.
// The reader never extracts file contents; it only walks directory records
// from the primary volume descriptor root.
package iso9660
