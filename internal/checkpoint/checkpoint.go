// Package checkpoint persists batch-scan progress so an interrupted run
// can resume exactly where it left off. The on-disk format is a single
// JSON document with an explicit schema, written atomically; it replaces
// nothing silently and refuses to load when its invariants are violated.
package checkpoint

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/statarb/pairscan/internal/score"
)

// Run status values carried in the checkpoint.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// ErrCorrupt indicates the persisted checkpoint failed to deserialize or
// violates its invariants. Fatal for the run: resuming from a corrupted
// checkpoint risks double-counting or losing completed work, so the caller
// must decide whether to discard it and restart.
var ErrCorrupt = errors.New("checkpoint: corrupt")

// Checkpoint is the durable snapshot of a scan. It is owned exclusively by
// the batch coordinator and mutated only at chunk boundaries.
type Checkpoint struct {
	RunID       string             `json:"run_id"`
	Status      string             `json:"status"`
	TotalPairs  int                `json:"total_pairs"`
	ChunkCursor int                `json:"chunk_cursor"`
	Processed   []string           `json:"processed"`
	Scored      []score.ScoredPair `json:"scored"`
	Excluded    map[string]int     `json:"excluded"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	processedSet map[string]struct{}
}

// New initializes an empty checkpoint for a run over totalPairs candidates.
func New(runID string, totalPairs int) *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{
		RunID:        runID,
		Status:       StatusRunning,
		TotalPairs:   totalPairs,
		Excluded:     make(map[string]int),
		CreatedAt:    now,
		UpdatedAt:    now,
		processedSet: make(map[string]struct{}),
	}
}

// Validate checks the structural invariants of a loaded checkpoint and
// rebuilds the processed-set index. It returns ErrCorrupt on any violation.
func (c *Checkpoint) Validate() error {
	if c.RunID == "" {
		return fmt.Errorf("%w: missing run id", ErrCorrupt)
	}
	if c.Status != StatusRunning && c.Status != StatusCompleted {
		return fmt.Errorf("%w: unknown status %q", ErrCorrupt, c.Status)
	}
	if c.ChunkCursor < 0 {
		return fmt.Errorf("%w: negative chunk cursor", ErrCorrupt)
	}
	// Chunks hold at least one pair, so the cursor can never pass the
	// candidate count.
	if c.ChunkCursor > c.TotalPairs {
		return fmt.Errorf("%w: chunk cursor %d beyond candidate count %d",
			ErrCorrupt, c.ChunkCursor, c.TotalPairs)
	}
	if len(c.Processed) > c.TotalPairs {
		return fmt.Errorf("%w: processed set (%d) exceeds candidate count (%d)",
			ErrCorrupt, len(c.Processed), c.TotalPairs)
	}

	c.processedSet = make(map[string]struct{}, len(c.Processed))
	for _, id := range c.Processed {
		if _, dup := c.processedSet[id]; dup {
			return fmt.Errorf("%w: duplicate pair %s in processed set", ErrCorrupt, id)
		}
		c.processedSet[id] = struct{}{}
	}

	for _, sp := range c.Scored {
		if _, ok := c.processedSet[sp.ID]; !ok {
			return fmt.Errorf("%w: scored pair %s not in processed set", ErrCorrupt, sp.ID)
		}
	}
	if c.Excluded == nil {
		c.Excluded = make(map[string]int)
	}
	return nil
}

// IsProcessed reports whether the pair has already been driven through the
// stage pipeline in this run.
func (c *Checkpoint) IsProcessed(pairID string) bool {
	_, ok := c.processedSet[pairID]
	return ok
}

// MarkChunk records a completed chunk: every pair in ids becomes processed
// exactly once, the chunk's scored pairs are accumulated, exclusion counts
// merge in, and the cursor advances.
func (c *Checkpoint) MarkChunk(ids []string, scored []score.ScoredPair, excluded map[string]int) error {
	for _, id := range ids {
		if _, dup := c.processedSet[id]; dup {
			return fmt.Errorf("pair %s already processed", id)
		}
	}
	for _, id := range ids {
		c.processedSet[id] = struct{}{}
		c.Processed = append(c.Processed, id)
	}
	sort.Strings(c.Processed)

	c.Scored = append(c.Scored, scored...)
	for reason, n := range excluded {
		c.Excluded[reason] += n
	}
	c.ChunkCursor++
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Finalize marks the run complete.
func (c *Checkpoint) Finalize() {
	c.Status = StatusCompleted
	c.UpdatedAt = time.Now().UTC()
}

// Remaining returns how many candidates are still unprocessed.
func (c *Checkpoint) Remaining() int {
	return c.TotalPairs - len(c.Processed)
}
