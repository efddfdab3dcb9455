package identification

import (
	"ps2id/internal/regiondb"
)

// DiscKind records which extraction strategy produced the winning candidates.
type DiscKind string

const (
	StructuredDVD DiscKind = "structured_dvd"
	StructuredCD  DiscKind = "structured_cd"
	RawBinary     DiscKind = "raw_binary"
)

func (k DiscKind) String() string {
	return string(k)
}

// Label returns a short human readable name.
func (k DiscKind) Label() string {
	switch k {
	case StructuredDVD:
		return "DVD (UDF)"
	case StructuredCD:
		return "CD (ISO 9660)"
	case RawBinary:
		return "raw scan"
	default:
		return string(k)
	}
}

// Image is the file under identification.
type Image struct {
	Path string
	Size int64
}

// Result is a successful identification.
type Result struct {
	Path     string          `json:"path" yaml:"path"`
	Serial   string          `json:"serial" yaml:"serial"`
	Region   regiondb.Region `json:"region" yaml:"region"`
	Title    string          `json:"title" yaml:"title"`
	DiscKind DiscKind        `json:"disc_kind" yaml:"disc_kind"`
}
