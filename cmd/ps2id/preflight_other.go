//go:build !unix

package main

import (
	"fmt"
	"os"
)

func checkDatabaseDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("database directory %s is not readable: %w (set database.dir or PS2ID_DATABASE_DIR)", dir, err)
	}
	return nil
}
