package model

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadImage loads the file at path as an image payload named after its base name.
// Contents are not inspected; the price service decides what it accepts.
func ReadImage(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filepath.Base(path))
	}

	data, err := os.ReadFile(path) //nolint:gosec // path chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", filepath.Base(path))
	}

	return &Image{Name: filepath.Base(path), Data: data}, nil
}
