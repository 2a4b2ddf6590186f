package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// Input is one job's identifier and byte source. Load is called once, by
// the worker that picks the job up.
type Input struct {
	ID   string
	Load func() ([]byte, error)
}

// FromBytes wraps an in-memory buffer.
func FromBytes(id string, data []byte) Input {
	return Input{ID: id, Load: func() ([]byte, error) { return data, nil }}
}

// FromFile reads path lazily so a large batch never holds every input in
// memory at once.
func FromFile(path string) Input {
	return Input{
		ID: filepath.ToSlash(path),
		Load: func() ([]byte, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			return data, nil
		},
	}
}
