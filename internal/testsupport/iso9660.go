package testsupport

import (
	"encoding/binary"
	"sort"
	"strings"
)

// ISOLayout selects the physical sector format of BuildISO output.
type ISOLayout int

const (
	ISOCooked ISOLayout = iota
	ISORawMode1
	ISORawMode2
)

// ISOOptions tweaks BuildISO output.
type ISOOptions struct {
	Layout ISOLayout
	// LoopDir adds a root directory record pointing back at the root extent.
	LoopDir string
	// Payload is copied into the first block after the directory tree.
	Payload []byte
}

const (
	isoPVDBlock   = 16
	isoFirstBlock = 18
	rawSector     = 2352
)

type isoDir struct {
	path     string
	block    uint32
	parent   *isoDir
	children []string
	dirs     map[string]*isoDir
}

// BuildISO returns an ISO 9660 image containing paths. Directory components
// are created implicitly and every file is empty. Each directory must fit in
// one block.
func BuildISO(paths []string, opts ISOOptions) []byte {
	root := &isoDir{dirs: map[string]*isoDir{}}
	root.parent = root
	ordered := []*isoDir{root}

	for _, p := range paths {
		parts := strings.Split(p, "/")
		cur := root
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur.dirs[part]
			if !ok {
				next = &isoDir{path: joinISO(cur.path, part), parent: cur, dirs: map[string]*isoDir{}}
				cur.dirs[part] = next
				cur.children = append(cur.children, part)
				ordered = append(ordered, next)
			}
			cur = next
		}
		cur.children = append(cur.children, parts[len(parts)-1])
	}
	if opts.LoopDir != "" {
		root.children = append(root.children, opts.LoopDir)
	}
	for i, d := range ordered {
		d.block = uint32(isoFirstBlock + i)
		sort.Strings(d.children)
	}

	blocks := isoFirstBlock + len(ordered) + 1
	logical := make([]byte, blocks*sectorSize)
	block := func(n uint32) []byte { return logical[int(n)*sectorSize : int(n+1)*sectorSize] }

	pvd := block(isoPVDBlock)
	pvd[0] = 1
	copy(pvd[1:], "CD001")
	pvd[6] = 1
	putBoth16(pvd[128:], sectorSize)
	putRecord(pvd[156:], root.block, sectorSize, true, "\x00")

	term := block(isoPVDBlock + 1)
	term[0] = 255
	copy(term[1:], "CD001")
	term[6] = 1

	for _, d := range ordered {
		buf := block(d.block)
		off := putRecord(buf, d.block, sectorSize, true, "\x00")
		off += putRecord(buf[off:], d.parent.block, sectorSize, true, "\x01")
		for _, name := range d.children {
			if sub, ok := d.dirs[name]; ok {
				off += putRecord(buf[off:], sub.block, sectorSize, true, name)
				continue
			}
			if d == root && name == opts.LoopDir {
				off += putRecord(buf[off:], root.block, sectorSize, true, name)
				continue
			}
			off += putRecord(buf[off:], 0, 0, false, name)
		}
	}
	copy(block(uint32(blocks-1)), opts.Payload)

	switch opts.Layout {
	case ISORawMode1:
		return rawSectors(logical, 1)
	case ISORawMode2:
		return rawSectors(logical, 2)
	default:
		return logical
	}
}

func joinISO(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func putRecord(buf []byte, extent, size uint32, dir bool, name string) int {
	length := 33 + len(name)
	if length%2 != 0 {
		length++
	}
	buf[0] = byte(length)
	putBoth32(buf[2:], extent)
	putBoth32(buf[10:], size)
	if dir {
		buf[25] = 0x02
	}
	putBoth16(buf[28:], 1)
	buf[32] = byte(len(name))
	copy(buf[33:], name)
	return length
}

func putBoth16(buf []byte, v uint16) {
	binary.LittleEndian.PutUint16(buf[0:], v)
	binary.BigEndian.PutUint16(buf[2:], v)
}

func putBoth32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf[0:], v)
	binary.BigEndian.PutUint32(buf[4:], v)
}

// rawSectors wraps each 2048-byte block in a 2352-byte CD sector with sync
// pattern and header. EDC and ECC are left zeroed.
func rawSectors(logical []byte, mode byte) []byte {
	count := len(logical) / sectorSize
	out := make([]byte, count*rawSector)
	dataOffset := 16
	if mode == 2 {
		dataOffset = 24
	}
	for i := 0; i < count; i++ {
		sec := out[i*rawSector : (i+1)*rawSector]
		sec[0] = 0x00
		for j := 1; j <= 10; j++ {
			sec[j] = 0xFF
		}
		sec[11] = 0x00
		sec[15] = mode
		copy(sec[dataOffset:], logical[i*sectorSize:(i+1)*sectorSize])
	}
	return out
}
