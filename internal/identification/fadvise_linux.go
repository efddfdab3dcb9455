//go:build linux

package identification

import (
	"os"

	"golang.org/x/sys/unix"
)

func adviseSequential(file *os.File) {
	_ = unix.Fadvise(int(file.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
