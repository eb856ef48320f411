// Package fileops holds small filesystem helpers shared by the config
// layer and the artifact writer.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir ensures that the parent directory of a file exists.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ensure parent directory: %w", err)
	}
	return nil
}

// ReadBytes reads a file and returns its raw bytes.
// If the file doesn't exist, returns nil and nil error.
func ReadBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}
