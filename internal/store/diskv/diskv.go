// Package diskv implements the local state store on a file-backed
// key/value store with a single well-known key.
package diskv

import (
	"encoding/json"
	"fmt"
	"os"

	kv "github.com/peterbourgon/diskv/v3"

	"github.com/studiflow/studiflow/internal/model"
)

const stateKey = "studiflow_app_state"

// Store holds the whole AppState as one JSON blob.
type Store struct {
	d *kv.Diskv
}

// New creates a store rooted at basePath, creating it on first write.
func New(basePath string) *Store {
	return &Store{d: kv.New(kv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}
}

// Load reads the persisted state. A missing key maps to
// model.ErrNotFound; a malformed payload is reported as an error so the
// caller can substitute the seed state.
func (s *Store) Load() (*model.AppState, error) {
	data, err := s.d.Read(stateKey)
	if err != nil {
		return nil, model.ErrNotFound
	}
	var st model.AppState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}

// Save serializes and overwrites the full state.
func (s *Store) Save(st *model.AppState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.d.Write(stateKey, data)
}

// Clear deletes the persisted state entirely. Clearing an empty store is
// not an error.
func (s *Store) Clear() error {
	err := s.d.Erase(stateKey)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
