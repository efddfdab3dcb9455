//go:build !linux

package identification

import "os"

func adviseSequential(*os.File) {}
