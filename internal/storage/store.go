package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Storer provides read access to a set of loaded assets.
type Storer[T ValidatingSpec] interface {
	Get(Identifier) T
	GetAll() map[Identifier]T
}

// FileStore holds assets loaded from a directory of JSON files. The reference
// data never changes at runtime, so the records map is built once during
// construction and only read afterwards.
type FileStore[T ValidatingSpec] struct {
	records map[Identifier]T
}

// NewFileStore loads every .json file under dir, validating each asset and
// rejecting duplicate ids.
func NewFileStore[T ValidatingSpec](dir string) (*FileStore[T], error) {
	s := &FileStore[T]{
		records: map[Identifier]T{},
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		asset, err := readAsset[T](path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}

		err = asset.Validate()
		if err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
		}

		_, ok := s.records[asset.Id()]
		if ok {
			return fmt.Errorf("duplicate asset id %q in %s", asset.Id(), filepath.Base(path))
		}
		s.records[asset.Id()] = asset.Spec

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

func readAsset[T ValidatingSpec](path string) (*Asset[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	asset := &Asset[T]{}
	err = json.Unmarshal(data, asset)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return asset, nil
}

// Get returns the asset spec for an id, or the zero value when absent.
func (s *FileStore[T]) Get(id Identifier) T {
	return s.records[id]
}

// GetAll returns a copy of the record map so callers can't mutate the store.
func (s *FileStore[T]) GetAll() map[Identifier]T {
	vals := make(map[Identifier]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}
