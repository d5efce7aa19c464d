package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"

	atomicio "github.com/statarb/pairscan/internal/io"
)

// Store reads and writes one checkpoint file. Writes are atomic with
// respect to process interruption: a crash mid-write leaves the previous
// valid checkpoint untouched.
type Store struct {
	path string
}

// NewStore builds a store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the persisted checkpoint. It returns (nil, nil)
// when no checkpoint exists, and an error wrapping ErrCorrupt when the file
// cannot be decoded or fails validation.
func (s *Store) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var ck Checkpoint
	if err := json.Unmarshal(data, &ck); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := ck.Validate(); err != nil {
		return nil, err
	}
	return &ck, nil
}

// Save persists the checkpoint atomically.
func (s *Store) Save(ck *Checkpoint) error {
	if err := atomicio.WriteJSONAtomic(s.path, ck); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Discard removes the checkpoint file. Used when the caller decides a
// corrupted or stale checkpoint should not block a fresh run.
func (s *Store) Discard() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
