// Package identification resolves PlayStation 2 disc images to catalog
// titles.
//
// An Identifier classifies an image by trying extraction strategies in a
// fixed order (UDF root listing, ISO 9660 tree walk, raw byte scan). The first
// strategy that yields candidate names fixes the disc kind; candidates are then
// normalized, filtered by serial prefix and looked up in the region databases.
// Identifiers hold no mutable state and can serve concurrent callers.
package identification
