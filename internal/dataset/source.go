package dataset

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed data/problems.json
var embeddedCatalog []byte

// Source returns the raw catalog bytes (a JSON array of problems).
type Source func() ([]byte, error)

// FileSource reads the catalog from disk.
func FileSource(path string) Source {
	return func() ([]byte, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		return b, nil
	}
}

// EmbeddedSource serves the catalog bundled into the binary.
func EmbeddedSource() Source {
	return BytesSource(embeddedCatalog)
}

// BytesSource serves a fixed byte slice.
func BytesSource(b []byte) Source {
	return func() ([]byte, error) {
		return b, nil
	}
}

// SourceFor picks FileSource for a non-empty path, the embedded catalog otherwise.
func SourceFor(path string) Source {
	if path == "" {
		return EmbeddedSource()
	}
	return FileSource(path)
}
