// Package log provides progress reporting for long-running scans on top of
// zerolog.
package log

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ChunkProgress reports chunk-level progress of a batch scan: completion
// percentage, pairs processed, scored so far, and an ETA extrapolated from
// observed throughput.
type ChunkProgress struct {
	mu          sync.Mutex
	totalPairs  int
	donePairs   int
	totalChunks int
	doneChunks  int
	scored      int
	start       time.Time
}

// NewChunkProgress creates a reporter for a run over totalPairs candidates
// split into totalChunks chunks.
func NewChunkProgress(totalPairs, totalChunks int) *ChunkProgress {
	return &ChunkProgress{
		totalPairs:  totalPairs,
		totalChunks: totalChunks,
		start:       time.Now(),
	}
}

// ChunkDone records one completed chunk and logs the updated position.
func (p *ChunkProgress) ChunkDone(pairs, scored int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.doneChunks++
	p.donePairs += pairs
	p.scored += scored

	ev := log.Info().
		Int("chunk", p.doneChunks).
		Int("chunks_total", p.totalChunks).
		Int("pairs_done", p.donePairs).
		Int("pairs_total", p.totalPairs).
		Int("scored", p.scored).
		Float64("pct", p.percent())

	if eta, ok := p.eta(); ok {
		ev = ev.Dur("eta", eta)
	}
	ev.Msg("chunk complete")
}

// Finish logs the terminal summary for the run.
func (p *ChunkProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	log.Info().
		Int("pairs", p.donePairs).
		Int("scored", p.scored).
		Dur("elapsed", time.Since(p.start).Round(time.Millisecond)).
		Msg("scan complete")
}

func (p *ChunkProgress) percent() float64 {
	if p.totalPairs == 0 {
		return 100
	}
	return float64(p.donePairs) / float64(p.totalPairs) * 100
}

func (p *ChunkProgress) eta() (time.Duration, bool) {
	if p.donePairs == 0 || p.donePairs >= p.totalPairs {
		return 0, false
	}
	elapsed := time.Since(p.start)
	rate := float64(p.donePairs) / elapsed.Seconds()
	remaining := float64(p.totalPairs - p.donePairs)
	return time.Duration(remaining/rate) * time.Second, true
}
