package udf

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Descriptor tag identifiers.
const (
	TagAnchor            = 2
	TagPartition         = 5
	TagLogicalVolume     = 6
	TagTerminating       = 8
	TagFileSet           = 256
	TagFileIdentifier    = 257
	TagFileEntry         = 261
	TagExtendedFileEntry = 266
)

const tagSize = 16

type tag struct {
	ID       uint16
	Location uint32
}

// parseTag decodes a descriptor tag and verifies its checksum.
func parseTag(buf []byte) (tag, error) {
	if len(buf) < tagSize {
		return tag{}, fmt.Errorf("udf: short descriptor tag (%d bytes)", len(buf))
	}
	if got, want := buf[4], TagChecksum(buf); got != want {
		return tag{}, fmt.Errorf("udf: tag checksum mismatch: got %#x want %#x", got, want)
	}
	return tag{
		ID:       binary.LittleEndian.Uint16(buf[0:2]),
		Location: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// TagChecksum sums the first sixteen tag bytes, skipping the checksum byte.
func TagChecksum(buf []byte) byte {
	var sum byte
	for i := 0; i < tagSize; i++ {
		if i == 4 {
			continue
		}
		sum += buf[i]
	}
	return sum
}

type extentAD struct {
	Length   uint32
	Location uint32
}

func parseExtentAD(buf []byte) extentAD {
	return extentAD{
		Length:   binary.LittleEndian.Uint32(buf[0:4]),
		Location: binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// longAD addresses a logical block inside a partition.
type longAD struct {
	Length    uint32
	Block     uint32
	Partition uint16
}

const (
	shortADSize = 8
	longADSize  = 16
	lengthMask  = 0x3FFFFFFF
)

func parseLongAD(buf []byte) longAD {
	return longAD{
		Length:    binary.LittleEndian.Uint32(buf[0:4]) & lengthMask,
		Block:     binary.LittleEndian.Uint32(buf[4:8]),
		Partition: binary.LittleEndian.Uint16(buf[8:10]),
	}
}

func parseShortAD(buf []byte) longAD {
	return longAD{
		Length: binary.LittleEndian.Uint32(buf[0:4]) & lengthMask,
		Block:  binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// decodeIdentifier converts an OSTA compressed unicode identifier.
func decodeIdentifier(buf []byte) (string, error) {
	if len(buf) == 0 {
		return "", nil
	}
	switch buf[0] {
	case 8:
		runes := make([]rune, 0, len(buf)-1)
		for _, b := range buf[1:] {
			runes = append(runes, rune(b))
		}
		return string(runes), nil
	case 16:
		body := buf[1:]
		if len(body)%2 != 0 {
			return "", fmt.Errorf("udf: odd length UTF-16 identifier")
		}
		units := make([]uint16, len(body)/2)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(body[2*i:])
		}
		return string(utf16.Decode(units)), nil
	default:
		return "", fmt.Errorf("udf: unknown identifier compression %d", buf[0])
	}
}
