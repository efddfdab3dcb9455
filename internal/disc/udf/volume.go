package udf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// SectorSize is the only logical block size this reader supports.
	SectorSize = 2048

	anchorSector       = 256
	maxSequenceSectors = 64
	maxDirectoryBytes  = 16 << 20

	fileCharDirectory = 0x02
	fileCharParent    = 0x08

	adShort    = 0
	adLong     = 1
	adEmbedded = 3
)

// ErrNoAnchor reports that sector 256 does not hold an anchor volume
// descriptor pointer.
var ErrNoAnchor = errors.New("udf: anchor volume descriptor not found")

// Entry is one record of the root directory.
type Entry struct {
	Name      string
	Directory bool
}

// Volume is an open UDF image.
type Volume struct {
	file           io.ReaderAt
	closer         io.Closer
	partitionStart uint32
	rootICB        longAD
}

// Open parses the volume structures of the image at path.
func Open(path string) (*Volume, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("udf: open: %w", err)
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
	vol := &Volume{file: r}
	if err := vol.readVolumeStructures(); err != nil {
		return nil, err
	}
	return vol, nil
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

// Entries returns the identifiers of the root directory, parent link
// excluded.
func (v *Volume) Entries() ([]string, error) {
	records, err := v.RootDirectory()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	return names, nil
}

// ListEntries opens path, lists its root directory and closes it.
func ListEntries(path string) ([]string, error) {
	vol, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer vol.Close()
	return vol.Entries()
}

// RootDirectory decodes the file identifier descriptors of the root
// directory.
func (v *Volume) RootDirectory() ([]Entry, error) {
	data, err := v.readFileData(v.rootICB)
	if err != nil {
		return nil, fmt.Errorf("udf: root directory: %w", err)
	}
	return parseDirectory(data)
}

func (v *Volume) readSector(lba uint32) ([]byte, error) {
	buf := make([]byte, SectorSize)
	if _, err := v.file.ReadAt(buf, int64(lba)*SectorSize); err != nil {
		return nil, fmt.Errorf("udf: read sector %d: %w", lba, err)
	}
	return buf, nil
}

func (v *Volume) readDescriptor(lba uint32, want uint16) ([]byte, error) {
	buf, err := v.readSector(lba)
	if err != nil {
		return nil, err
	}
	t, err := parseTag(buf)
	if err != nil {
		return nil, fmt.Errorf("sector %d: %w", lba, err)
	}
	if t.ID != want {
		return nil, fmt.Errorf("udf: sector %d: tag %d, want %d", lba, t.ID, want)
	}
	return buf, nil
}

func (v *Volume) readVolumeStructures() error {
	anchor, err := v.readSector(anchorSector)
	if err != nil {
		return ErrNoAnchor
	}
	if t, err := parseTag(anchor); err != nil || t.ID != TagAnchor {
		return ErrNoAnchor
	}
	mainSeq := parseExtentAD(anchor[16:24])

	sectors := mainSeq.Length / SectorSize
	if sectors == 0 || sectors > maxSequenceSectors {
		sectors = maxSequenceSectors
	}

	var (
		havePartition bool
		fileSet       longAD
		haveFileSet   bool
	)
	for i := uint32(0); i < sectors; i++ {
		buf, err := v.readSector(mainSeq.Location + i)
		if err != nil {
			return err
		}
		t, err := parseTag(buf)
		if err != nil {
			return fmt.Errorf("volume descriptor sequence: %w", err)
		}
		switch t.ID {
		case TagPartition:
			if !havePartition {
				v.partitionStart = binary.LittleEndian.Uint32(buf[188:192])
				havePartition = true
			}
		case TagLogicalVolume:
			if size := binary.LittleEndian.Uint32(buf[212:216]); size != SectorSize {
				return fmt.Errorf("udf: unsupported logical block size %d", size)
			}
			fileSet = parseLongAD(buf[248:264])
			haveFileSet = true
		}
		if t.ID == TagTerminating {
			break
		}
	}
	if !havePartition {
		return errors.New("udf: partition descriptor not found")
	}
	if !haveFileSet {
		return errors.New("udf: logical volume descriptor not found")
	}

	fsd, err := v.readDescriptor(v.partitionStart+fileSet.Block, TagFileSet)
	if err != nil {
		return fmt.Errorf("file set descriptor: %w", err)
	}
	v.rootICB = parseLongAD(fsd[400:416])
	return nil
}

// readFileData returns the bytes described by the (extended) file entry at
// icb.
func (v *Volume) readFileData(icb longAD) ([]byte, error) {
	entry, err := v.readSector(v.partitionStart + icb.Block)
	if err != nil {
		return nil, err
	}
	t, err := parseTag(entry)
	if err != nil {
		return nil, err
	}

	var eaLenOff, baseOff int
	switch t.ID {
	case TagFileEntry:
		eaLenOff, baseOff = 168, 176
	case TagExtendedFileEntry:
		eaLenOff, baseOff = 208, 216
	default:
		return nil, fmt.Errorf("udf: tag %d is not a file entry", t.ID)
	}

	infoLen := binary.LittleEndian.Uint64(entry[56:64])
	if infoLen > maxDirectoryBytes {
		return nil, fmt.Errorf("udf: directory of %d bytes is too large", infoLen)
	}
	eaLen := int(binary.LittleEndian.Uint32(entry[eaLenOff : eaLenOff+4]))
	adLen := int(binary.LittleEndian.Uint32(entry[eaLenOff+4 : eaLenOff+8]))
	start := baseOff + eaLen
	if start < baseOff || start+adLen > len(entry) || adLen < 0 {
		return nil, errors.New("udf: allocation descriptors overrun file entry")
	}
	ads := entry[start : start+adLen]

	flags := binary.LittleEndian.Uint16(entry[34:36])
	switch flags & 0x07 {
	case adEmbedded:
		if uint64(len(ads)) < infoLen {
			return nil, errors.New("udf: embedded data shorter than information length")
		}
		return ads[:infoLen], nil
	case adShort:
		return v.readExtents(ads, shortADSize, parseShortAD, infoLen)
	case adLong:
		return v.readExtents(ads, longADSize, parseLongAD, infoLen)
	default:
		return nil, fmt.Errorf("udf: unsupported allocation descriptor type %d", flags&0x07)
	}
}

// readExtents gathers infoLen bytes from the extents in ads. Extents are
// read only as far as infoLen needs, whatever length they record.
func (v *Volume) readExtents(ads []byte, size int, parse func([]byte) longAD, infoLen uint64) ([]byte, error) {
	data := make([]byte, 0, infoLen)
	for off := 0; off+size <= len(ads) && uint64(len(data)) < infoLen; off += size {
		ad := parse(ads[off : off+size])
		if ad.Length == 0 {
			break
		}
		want := min(uint64(ad.Length), infoLen-uint64(len(data)))
		sectors := uint32((want + SectorSize - 1) / SectorSize)
		for i := uint32(0); i < sectors; i++ {
			sector, err := v.readSector(v.partitionStart + ad.Block + i)
			if err != nil {
				return nil, err
			}
			take := min(uint64(len(sector)), want-uint64(i)*SectorSize)
			data = append(data, sector[:take]...)
		}
	}
	if uint64(len(data)) < infoLen {
		return nil, errors.New("udf: allocation descriptors shorter than information length")
	}
	return data, nil
}

func parseDirectory(data []byte) ([]Entry, error) {
	var entries []Entry
	for off := 0; off+38 <= len(data); {
		t, err := parseTag(data[off:])
		if err != nil {
			return nil, fmt.Errorf("file identifier at %d: %w", off, err)
		}
		if t.ID != TagFileIdentifier {
			return nil, fmt.Errorf("udf: tag %d in directory stream", t.ID)
		}
		characteristics := data[off+18]
		nameLen := int(data[off+19])
		implLen := int(binary.LittleEndian.Uint16(data[off+36 : off+38]))
		nameStart := off + 38 + implLen
		if nameStart+nameLen > len(data) {
			return nil, errors.New("udf: file identifier overruns directory")
		}
		if characteristics&fileCharParent == 0 {
			name, err := decodeIdentifier(data[nameStart : nameStart+nameLen])
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Name: name, Directory: characteristics&fileCharDirectory != 0})
		}
		off += (38 + implLen + nameLen + 3) &^ 3
	}
	return entries, nil
}
