//go:build unix

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// checkDatabaseDir fails early with a readable message when the database
// directory cannot be listed.
func checkDatabaseDir(dir string) error {
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		return fmt.Errorf("database directory %s is not readable: %w (set database.dir or PS2ID_DATABASE_DIR)", dir, err)
	}
	return nil
}
