package iso9660

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// BlockSize is the logical block size this reader supports.
	BlockSize = 2048
	// RawSectorSize is the physical sector size of raw CD dumps.
	RawSectorSize = 2352

	pvdSector        = 16
	maxDescriptors   = 32
	maxDepth         = 16
	maxExtentBytes   = 16 << 20
	mode1DataOffset  = 16
	mode2Form1Offset = 24

	descriptorPrimary    = 1
	descriptorTerminator = 255

	flagDirectory = 0x02
)

var (
	// ErrNotISO9660 reports that no primary volume descriptor was found.
	ErrNotISO9660 = errors.New("iso9660: no primary volume descriptor")

	standardID = []byte("CD001")
	syncHeader = []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
)

// Layout describes how logical blocks map onto the physical image.
type Layout struct {
	SectorSize int
	DataOffset int
}

var (
	// Cooked is a plain 2048-byte-per-sector ISO.
	Cooked = Layout{SectorSize: BlockSize, DataOffset: 0}
	// RawMode1 is a 2352-byte dump whose user data starts after the header.
	RawMode1 = Layout{SectorSize: RawSectorSize, DataOffset: mode1DataOffset}
	// RawMode2Form1 is a 2352-byte dump with an XA subheader before user data.
	RawMode2Form1 = Layout{SectorSize: RawSectorSize, DataOffset: mode2Form1Offset}
)

// Volume is an open ISO 9660 image.
type Volume struct {
	file   io.ReaderAt
	closer io.Closer
	layout Layout
	root   record
}

type record struct {
	extent uint32
	size   uint32
	flags  byte
	name   string
}

func (r record) isDir() bool {
	return r.flags&flagDirectory != 0
}

// Open detects the sector layout of path and parses its primary volume
// descriptor.
func Open(path string) (*Volume, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("iso9660: open: %w", err)
	}
	vol, err := NewVolume(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	vol.closer = file
	return vol, nil
}

// NewVolume parses an image from an arbitrary reader. The caller keeps
// ownership of r.
func NewVolume(r io.ReaderAt) (*Volume, error) {
	layout, err := detectLayout(r)
	if err != nil {
		return nil, err
	}
	vol := &Volume{file: r, layout: layout}
	if err := vol.readPrimaryDescriptor(); err != nil {
		return nil, err
	}
	return vol, nil
}

// Layout reports the detected sector layout.
func (v *Volume) Layout() Layout {
	return v.layout
}

// Close releases the underlying file when the volume was opened by path.
func (v *Volume) Close() error {
	if v == nil || v.closer == nil {
		return nil
	}
	err := v.closer.Close()
	v.closer = nil
	return err
}

// Entries walks the directory tree and returns every file and directory path
// relative to the root, for example "SYSTEM.CNF;1" or "MODULES/IOPRP.IMG;1".
func (v *Volume) Entries() ([]string, error) {
	var paths []string
	visited := map[uint32]struct{}{v.root.extent: {}}
	if err := v.walk(v.root, "", 0, visited, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// ListEntries opens path, walks its tree and closes it.
func ListEntries(path string) ([]string, error) {
	vol, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer vol.Close()
	return vol.Entries()
}

func detectLayout(r io.ReaderAt) (Layout, error) {
	head := make([]byte, 6)
	if _, err := r.ReadAt(head, pvdSector*BlockSize); err == nil {
		if bytes.Equal(head[1:6], standardID) {
			return Cooked, nil
		}
	}

	raw := make([]byte, mode2Form1Offset+6)
	if _, err := r.ReadAt(raw, pvdSector*RawSectorSize); err != nil {
		return Layout{}, ErrNotISO9660
	}
	if !bytes.Equal(raw[:len(syncHeader)], syncHeader) {
		return Layout{}, ErrNotISO9660
	}
	switch raw[15] {
	case 1:
		if bytes.Equal(raw[mode1DataOffset+1:mode1DataOffset+6], standardID) {
			return RawMode1, nil
		}
	case 2:
		if bytes.Equal(raw[mode2Form1Offset+1:mode2Form1Offset+6], standardID) {
			return RawMode2Form1, nil
		}
	}
	return Layout{}, ErrNotISO9660
}

func (v *Volume) readBlock(lba uint32) ([]byte, error) {
	buf := make([]byte, BlockSize)
	offset := int64(lba)*int64(v.layout.SectorSize) + int64(v.layout.DataOffset)
	if _, err := v.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("iso9660: read block %d: %w", lba, err)
	}
	return buf, nil
}

// readExtent returns size bytes starting at lba. The buffer grows as blocks
// arrive so a bogus size fails on the first short read.
func (v *Volume) readExtent(lba, size uint32) ([]byte, error) {
	if size > maxExtentBytes {
		return nil, fmt.Errorf("iso9660: directory of %d bytes is too large", size)
	}
	blocks := (size + BlockSize - 1) / BlockSize
	var data []byte
	for i := uint32(0); i < blocks; i++ {
		block, err := v.readBlock(lba + i)
		if err != nil {
			return nil, err
		}
		data = append(data, block...)
	}
	return data[:size], nil
}

func (v *Volume) readPrimaryDescriptor() error {
	for i := uint32(0); i < maxDescriptors; i++ {
		block, err := v.readBlock(pvdSector + i)
		if err != nil {
			return err
		}
		if !bytes.Equal(block[1:6], standardID) {
			return ErrNotISO9660
		}
		switch block[0] {
		case descriptorPrimary:
			if size := binary.LittleEndian.Uint16(block[128:130]); size != BlockSize {
				return fmt.Errorf("iso9660: unsupported logical block size %d", size)
			}
			root, ok := parseRecord(block[156:190])
			if !ok || !root.isDir() {
				return errors.New("iso9660: malformed root directory record")
			}
			v.root = root
			return nil
		case descriptorTerminator:
			return ErrNotISO9660
		}
	}
	return ErrNotISO9660
}

func (v *Volume) walk(dir record, prefix string, depth int, visited map[uint32]struct{}, out *[]string) error {
	if depth > maxDepth {
		return fmt.Errorf("iso9660: directory depth exceeds %d at %q", maxDepth, prefix)
	}
	data, err := v.readExtent(dir.extent, dir.size)
	if err != nil {
		return err
	}

	for offset := 0; offset < len(data); {
		length := int(data[offset])
		if length == 0 {
			// Records never straddle a block; zero padding fills the rest.
			offset = (offset/BlockSize + 1) * BlockSize
			continue
		}
		if offset+length > len(data) {
			return fmt.Errorf("iso9660: directory record overruns extent in %q", prefix)
		}
		rec, ok := parseRecord(data[offset : offset+length])
		offset += length
		if !ok || rec.name == "" {
			continue
		}

		path := prefix + rec.name
		*out = append(*out, path)
		if !rec.isDir() {
			continue
		}
		if _, seen := visited[rec.extent]; seen {
			continue
		}
		visited[rec.extent] = struct{}{}
		if err := v.walk(rec, path+"/", depth+1, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// parseRecord decodes one directory record. The self and parent entries come
// back with an empty name.
func parseRecord(buf []byte) (record, bool) {
	if len(buf) < 34 {
		return record{}, false
	}
	nameLen := int(buf[32])
	if 33+nameLen > len(buf) {
		return record{}, false
	}
	rec := record{
		extent: binary.LittleEndian.Uint32(buf[2:6]),
		size:   binary.LittleEndian.Uint32(buf[10:14]),
		flags:  buf[25],
	}
	name := buf[33 : 33+nameLen]
	if nameLen == 1 && (name[0] == 0x00 || name[0] == 0x01) {
		return rec, true
	}
	rec.name = strings.TrimRight(string(name), "\x00")
	return rec, true
}
