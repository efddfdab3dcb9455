// Package udf lists the root directory of UDF (ECMA-167) disc images.
//
// Only the structures needed to reach the root directory are decoded: the
// anchor volume descriptor pointer, the main volume descriptor sequence, the
// file set descriptor and the root file entry. File contents are never read.
package udf
