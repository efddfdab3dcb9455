// Package regiondb loads the per-region serial→title reference tables and
// resolves canonical serials against them in a fixed precedence order.
//
// Each region table is a JSON object file mapping serial strings to titles.
// A Set is built once at startup (Load or New) and never written afterwards,
// so a single Set may be shared by any number of concurrent identifications.
//
// Lookup order is Asia, Australia, Europe, Japan, Korea, USA, then the
// optional legacy "official" table. The tables are expected to be disjoint;
// when a serial appears in more than one, the earlier region wins.
package regiondb
