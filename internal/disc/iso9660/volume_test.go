package iso9660_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"ps2id/internal/disc/iso9660"
	"ps2id/internal/testsupport"
)

func TestEntriesWalksTree(t *testing.T) {
	paths := []string{"SYSTEM.CNF;1", "SLUS_209.46;1", "MODULES/IOPRP.IMG;1", "MODULES/SIO2MAN.IRX;1"}
	want := []string{"MODULES", "MODULES/IOPRP.IMG;1", "MODULES/SIO2MAN.IRX;1", "SLUS_209.46;1", "SYSTEM.CNF;1"}

	tests := []struct {
		name   string
		layout testsupport.ISOLayout
		want   iso9660.Layout
	}{
		{"cooked", testsupport.ISOCooked, iso9660.Cooked},
		{"raw mode 1", testsupport.ISORawMode1, iso9660.RawMode1},
		{"raw mode 2 form 1", testsupport.ISORawMode2, iso9660.RawMode2Form1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testsupport.BuildISO(paths, testsupport.ISOOptions{Layout: tt.layout})
			vol, err := iso9660.NewVolume(bytes.NewReader(img))
			if err != nil {
				t.Fatalf("NewVolume: %v", err)
			}
			if vol.Layout() != tt.want {
				t.Fatalf("layout = %+v, want %+v", vol.Layout(), tt.want)
			}
			got, err := vol.Entries()
			if err != nil {
				t.Fatalf("Entries: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("entries = %v, want %v", got, want)
			}
		})
	}
}

func TestEntriesRejectsBogusRootSize(t *testing.T) {
	tests := []struct {
		name string
		size uint32
	}{
		{"larger than any directory", 0xFFFFF000},
		{"past end of image", 8 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testsupport.BuildISO([]string{"SYSTEM.CNF;1"}, testsupport.ISOOptions{})
			// Root record data length lives at PVD offset 156+10, both-endian.
			rootRecord := 16*iso9660.BlockSize + 156
			binary.LittleEndian.PutUint32(img[rootRecord+10:], tt.size)
			binary.BigEndian.PutUint32(img[rootRecord+14:], tt.size)

			vol, err := iso9660.NewVolume(bytes.NewReader(img))
			if err != nil {
				t.Fatalf("NewVolume: %v", err)
			}
			if _, err := vol.Entries(); err == nil {
				t.Fatal("expected error for oversized root directory")
			}
		})
	}
}

func TestEntriesSkipsDirectoryCycles(t *testing.T) {
	img := testsupport.BuildISO([]string{"SYSTEM.CNF;1"}, testsupport.ISOOptions{LoopDir: "LOOP"})
	vol, err := iso9660.NewVolume(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	got, err := vol.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	want := []string{"LOOP", "SYSTEM.CNF;1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
}

func TestListEntriesClosesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.bin")
	testsupport.WriteBytes(t, path, testsupport.BuildISO([]string{"SLES_123.45;1"}, testsupport.ISOOptions{Layout: testsupport.ISORawMode2}))

	got, err := iso9660.ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(got) != 1 || got[0] != "SLES_123.45;1" {
		t.Fatalf("unexpected entries: %v", got)
	}
}

func TestOpenRejectsNonISO(t *testing.T) {
	if _, err := iso9660.NewVolume(bytes.NewReader(make([]byte, 64*1024))); !errors.Is(err, iso9660.ErrNotISO9660) {
		t.Fatalf("expected ErrNotISO9660, got %v", err)
	}
	if _, err := iso9660.NewVolume(bytes.NewReader([]byte("short"))); !errors.Is(err, iso9660.ErrNotISO9660) {
		t.Fatalf("expected ErrNotISO9660 for short input, got %v", err)
	}
	if _, err := iso9660.Open(filepath.Join(t.TempDir(), "absent.iso")); err == nil {
		t.Fatal("expected open error")
	}
}
