package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"docqa/internal/domain"
)

// Bundle is the persisted index artifact: the parallel unit and vector
// collections plus the vector dimension. It is written once per build run
// and read-only at query time.
type Bundle struct {
	Units     []domain.Unit
	Vectors   [][]float32
	Dimension int
}

// Save writes the bundle with gob encoding.
func (b *Bundle) Save(path string) error {
	if len(b.Units) != len(b.Vectors) {
		return fmt.Errorf("bundle units/vectors length mismatch: %d vs %d", len(b.Units), len(b.Vectors))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a bundle from disk. A missing file is fatal at query
// time, so the error propagates.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if len(b.Units) != len(b.Vectors) {
		return nil, fmt.Errorf("corrupt bundle: %d units vs %d vectors", len(b.Units), len(b.Vectors))
	}
	return &b, nil
}
