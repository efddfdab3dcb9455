package testsupport

import (
	"encoding/binary"
	"slices"
)

const sectorSize = 2048

// UDFOptions selects the structures BuildUDF emits.
type UDFOptions struct {
	// Extended writes the root as an extended file entry.
	Extended bool
	// Embedded stores the directory stream inside the file entry.
	Embedded bool
	// Directories lists names flagged as directories.
	Directories []string
	// CorruptAnchor breaks the anchor tag checksum.
	CorruptAnchor bool
}

const (
	udfAnchorSector    = 256
	udfSequenceSector  = 32
	udfPartitionStart  = 300
	udfFileSetBlock    = 0
	udfRootEntryBlock  = 1
	udfDirectoryBlock  = 2
	udfIdentCompressed = 8
)

// BuildUDF returns a minimal UDF image whose root directory lists names.
func BuildUDF(names []string, opts UDFOptions) []byte {
	dirs := make(map[string]bool, len(opts.Directories))
	for _, name := range opts.Directories {
		dirs[name] = true
	}

	stream := udfParentFID()
	for _, name := range names {
		stream = append(stream, udfFID(name, dirs[name])...)
	}
	for _, name := range opts.Directories {
		if !slices.Contains(names, name) {
			stream = append(stream, udfFID(name, true)...)
		}
	}

	dirSectors := 0
	if !opts.Embedded {
		dirSectors = (len(stream) + sectorSize - 1) / sectorSize
	}
	total := udfPartitionStart + udfDirectoryBlock + dirSectors + 1
	img := make([]byte, total*sectorSize)
	sector := func(n int) []byte { return img[n*sectorSize : (n+1)*sectorSize] }

	avdp := sector(udfAnchorSector)
	binary.LittleEndian.PutUint32(avdp[16:], 3*sectorSize)
	binary.LittleEndian.PutUint32(avdp[20:], udfSequenceSector)
	finishTag(avdp, 2, udfAnchorSector)
	if opts.CorruptAnchor {
		avdp[4]++
	}

	pd := sector(udfSequenceSector)
	binary.LittleEndian.PutUint32(pd[188:], udfPartitionStart)
	binary.LittleEndian.PutUint32(pd[192:], uint32(total-udfPartitionStart))
	finishTag(pd, 5, udfSequenceSector)

	lvd := sector(udfSequenceSector + 1)
	binary.LittleEndian.PutUint32(lvd[212:], sectorSize)
	putLongAD(lvd[248:], sectorSize, udfFileSetBlock)
	finishTag(lvd, 6, udfSequenceSector+1)

	finishTag(sector(udfSequenceSector+2), 8, udfSequenceSector+2)

	fsd := sector(udfPartitionStart + udfFileSetBlock)
	putLongAD(fsd[400:], sectorSize, udfRootEntryBlock)
	finishTag(fsd, 256, udfFileSetBlock)

	fe := sector(udfPartitionStart + udfRootEntryBlock)
	eaLenOff, base, id := 168, 176, uint16(261)
	if opts.Extended {
		eaLenOff, base, id = 208, 216, 266
	}
	fe[16+11] = 4 // file type: directory
	binary.LittleEndian.PutUint64(fe[56:], uint64(len(stream)))
	if opts.Embedded {
		binary.LittleEndian.PutUint16(fe[34:], 3)
		binary.LittleEndian.PutUint32(fe[eaLenOff+4:], uint32(len(stream)))
		copy(fe[base:], stream)
	} else {
		binary.LittleEndian.PutUint32(fe[eaLenOff+4:], 8)
		binary.LittleEndian.PutUint32(fe[base:], uint32(len(stream)))
		binary.LittleEndian.PutUint32(fe[base+4:], udfDirectoryBlock)
		copy(img[(udfPartitionStart+udfDirectoryBlock)*sectorSize:], stream)
	}
	finishTag(fe, id, udfRootEntryBlock)
	return img
}

func udfParentFID() []byte {
	fid := make([]byte, 40)
	fid[18] = 0x0A
	putLongAD(fid[20:], sectorSize, udfRootEntryBlock)
	finishTag(fid, 257, 0)
	return fid
}

func udfFID(name string, dir bool) []byte {
	ident := append([]byte{udfIdentCompressed}, name...)
	size := (38 + len(ident) + 3) &^ 3
	fid := make([]byte, size)
	if dir {
		fid[18] = 0x02
	}
	fid[19] = byte(len(ident))
	putLongAD(fid[20:], sectorSize, udfRootEntryBlock)
	copy(fid[38:], ident)
	finishTag(fid, 257, 0)
	return fid
}

func putLongAD(buf []byte, length, block uint32) {
	binary.LittleEndian.PutUint32(buf[0:], length)
	binary.LittleEndian.PutUint32(buf[4:], block)
}

func finishTag(buf []byte, id uint16, location uint32) {
	binary.LittleEndian.PutUint16(buf[0:], id)
	binary.LittleEndian.PutUint16(buf[2:], 2)
	binary.LittleEndian.PutUint32(buf[12:], location)
	var sum byte
	for i := 0; i < 16; i++ {
		if i != 4 {
			sum += buf[i]
		}
	}
	buf[4] = sum
}
