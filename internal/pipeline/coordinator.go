// Package pipeline drives every screened candidate pair through the
// cointegration test, half-life estimate and scorer in fixed-size chunks,
// persisting a checkpoint at each chunk boundary so a restarted process
// resumes exactly where the prior run left off.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/statarb/pairscan/internal/checkpoint"
	"github.com/statarb/pairscan/internal/coint"
	"github.com/statarb/pairscan/internal/halflife"
	plog "github.com/statarb/pairscan/internal/log"
	"github.com/statarb/pairscan/internal/metrics"
	"github.com/statarb/pairscan/internal/score"
	"github.com/statarb/pairscan/internal/screen"
	"github.com/statarb/pairscan/internal/series"
	"github.com/statarb/pairscan/internal/stats"
)

// Exclusion reasons recorded for pairs that leave the pipeline without a
// score. None of them aborts the batch.
const (
	ReasonUpstream         = "upstream_unavailable"
	ReasonInsufficientData = "insufficient_data"
	ReasonDegenerate       = "degenerate_regression"
	ReasonNotCointegrated  = "not_cointegrated"
	ReasonNonReverting     = "non_reverting"
	ReasonHalfLifeBounds   = "half_life_out_of_bounds"
)

// ErrInterrupted reports a cooperative stop: the in-flight chunk finished
// and was persisted, then the coordinator exited cleanly. Resuming with the
// same checkpoint continues the run.
var ErrInterrupted = errors.New("pipeline: scan interrupted, progress checkpointed")

// Options configures the coordinator.
type Options struct {
	// ChunkSize is the number of pairs per checkpointed chunk.
	ChunkSize int
	// TopK is the size of the head of the ranking exposed separately.
	TopK int
	// Workers bounds intra-chunk parallelism; values below 1 mean serial.
	Workers int
	// MaxPValue is the cointegration acceptance threshold.
	MaxPValue float64
}

// Outcome is the terminal state of a run (or the partial state at a clean
// interruption).
type Outcome struct {
	RunID     string
	Completed bool
	Processed int
	Ranked    []score.ScoredPair
	Top       []score.ScoredPair
	Excluded  map[string]int
}

// Coordinator owns the per-run checkpoint and drives the stage pipeline.
type Coordinator struct {
	opts      Options
	store     series.Store
	tester    *coint.Tester
	estimator *halflife.Estimator
	weights   score.Weights
	ckpts     *checkpoint.Store
	metrics   *metrics.Registry
}

// New wires a coordinator. reg may be nil to disable instrumentation.
func New(opts Options, store series.Store, tester *coint.Tester, estimator *halflife.Estimator,
	weights score.Weights, ckpts *checkpoint.Store, reg *metrics.Registry) *Coordinator {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Coordinator{
		opts:      opts,
		store:     store,
		tester:    tester,
		estimator: estimator,
		weights:   weights,
		ckpts:     ckpts,
		metrics:   reg,
	}
}

// Run processes every candidate exactly once, resuming from a persisted
// checkpoint when one exists. screening supplies the per-pair screening
// results (for the correlation carried into ScoredPair). Cancellation is
// observed between chunks only, so chunk-level checkpoint atomicity holds.
func (c *Coordinator) Run(ctx context.Context, candidates []screen.Candidate, screening map[string]screen.Result) (*Outcome, error) {
	if c.metrics != nil {
		c.metrics.ActiveScan.Set(1)
		defer c.metrics.ActiveScan.Set(0)
	}

	ck, err := c.loadOrInit(candidates)
	if err != nil {
		return nil, err
	}

	var remaining []screen.Candidate
	for _, cand := range candidates {
		if !ck.IsProcessed(cand.ID) {
			remaining = append(remaining, cand)
		}
	}
	chunks := partition(remaining, c.opts.ChunkSize)

	log.Info().
		Str("run_id", ck.RunID).
		Int("candidates", len(candidates)).
		Int("remaining", len(remaining)).
		Int("chunks", len(chunks)).
		Int("chunk_size", c.opts.ChunkSize).
		Msg("starting batch scan")

	progress := plog.NewChunkProgress(len(remaining), len(chunks))

	for _, chunk := range chunks {
		if ctx.Err() != nil {
			log.Warn().Str("run_id", ck.RunID).Int("remaining", ck.Remaining()).
				Msg("stop requested, exiting at chunk boundary")
			return c.outcome(ck), ErrInterrupted
		}

		start := time.Now()
		scored, excluded := c.processChunk(ctx, chunk, screening)

		ids := make([]string, len(chunk))
		for i, cand := range chunk {
			ids[i] = cand.ID
		}
		if err := ck.MarkChunk(ids, scored, excluded); err != nil {
			return nil, fmt.Errorf("record chunk: %w", err)
		}
		if err := c.ckpts.Save(ck); err != nil {
			return nil, err
		}

		if c.metrics != nil {
			c.metrics.ChunkDuration.Observe(time.Since(start).Seconds())
			c.metrics.CheckpointWrites.Inc()
		}
		progress.ChunkDone(len(chunk), len(scored))
	}

	ck.Finalize()
	if err := c.ckpts.Save(ck); err != nil {
		return nil, err
	}
	progress.Finish()

	return c.outcome(ck), nil
}

// loadOrInit restores a prior checkpoint or creates a fresh one. A loaded
// checkpoint must belong to the same candidate set; anything else is
// treated as corruption and surfaced rather than silently resumed.
func (c *Coordinator) loadOrInit(candidates []screen.Candidate) (*checkpoint.Checkpoint, error) {
	ck, err := c.ckpts.Load()
	if err != nil {
		return nil, err
	}
	if ck == nil {
		ck = checkpoint.New(uuid.NewString(), len(candidates))
		if err := c.ckpts.Save(ck); err != nil {
			return nil, err
		}
		return ck, nil
	}

	if ck.TotalPairs != len(candidates) {
		return nil, fmt.Errorf("%w: checkpoint candidate count %d does not match current set %d",
			checkpoint.ErrCorrupt, ck.TotalPairs, len(candidates))
	}
	known := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		known[cand.ID] = struct{}{}
	}
	for _, id := range ck.Processed {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: processed pair %s not in current candidate set",
				checkpoint.ErrCorrupt, id)
		}
	}

	log.Info().
		Str("run_id", ck.RunID).
		Int("processed", len(ck.Processed)).
		Int("remaining", ck.Remaining()).
		Msg("resuming from checkpoint")
	return ck, nil
}

// pairOutcome is the per-pair result of the stage pipeline: either a
// scored pair or an exclusion reason.
type pairOutcome struct {
	scored *score.ScoredPair
	reason string
}

// processChunk runs the stage pipeline over one chunk with a bounded
// worker pool. Results are collected positionally, so the merge below is
// deterministic regardless of completion order.
func (c *Coordinator) processChunk(ctx context.Context, chunk []screen.Candidate, screening map[string]screen.Result) ([]score.ScoredPair, map[string]int) {
	outcomes := make([]pairOutcome, len(chunk))

	g := new(errgroup.Group)
	g.SetLimit(c.opts.Workers)
	for i, cand := range chunk {
		i, cand := i, cand
		g.Go(func() error {
			outcomes[i] = c.evaluate(ctx, cand, screening[cand.ID])
			return nil
		})
	}
	_ = g.Wait() // per-pair failures are exclusions, never chunk errors

	var scored []score.ScoredPair
	excluded := make(map[string]int)
	for i, out := range outcomes {
		if out.scored != nil {
			scored = append(scored, *out.scored)
			continue
		}
		excluded[out.reason]++
		log.Debug().Str("pair", chunk[i].ID).Str("reason", out.reason).Msg("pair excluded")
		if c.metrics != nil {
			c.metrics.Exclusions.WithLabelValues(out.reason).Inc()
		}
	}
	return scored, excluded
}

// evaluate drives a single pair through cointegration, half-life and
// scoring. All failures are local: the pair is excluded with a reason and
// the batch continues.
func (c *Coordinator) evaluate(ctx context.Context, cand screen.Candidate, scr screen.Result) pairOutcome {
	sa, err := c.store.Get(ctx, cand.SymbolA)
	if err != nil {
		return pairOutcome{reason: ReasonUpstream}
	}
	sb, err := c.store.Get(ctx, cand.SymbolB)
	if err != nil {
		return pairOutcome{reason: ReasonUpstream}
	}

	pa, pb := series.Align(sa, sb)
	logA := series.LogPrices(pa)
	logB := series.LogPrices(pb)

	// Spread construction follows the hedge regression of B on A.
	res, err := c.tester.Test(logA, logB)
	if err != nil {
		reason := ReasonDegenerate
		if errors.Is(err, stats.ErrInsufficientData) {
			reason = ReasonInsufficientData
		}
		if reason == ReasonDegenerate {
			log.Warn().Str("pair", cand.ID).Err(err).Msg("cointegration regression degenerate")
		}
		c.countStage("cointegration", "error")
		return pairOutcome{reason: reason}
	}
	if res.PValue >= c.opts.MaxPValue {
		c.countStage("cointegration", "rejected")
		return pairOutcome{reason: ReasonNotCointegrated}
	}
	c.countStage("cointegration", "passed")

	hl, err := c.estimator.Estimate(res.Spread)
	if err != nil {
		c.countStage("half_life", "error")
		return pairOutcome{reason: ReasonInsufficientData}
	}
	if math.IsInf(hl.HalfLife, 1) {
		c.countStage("half_life", "rejected")
		return pairOutcome{reason: ReasonNonReverting}
	}
	if !c.estimator.InBounds(hl.HalfLife) {
		c.countStage("half_life", "rejected")
		return pairOutcome{reason: ReasonHalfLifeBounds}
	}
	c.countStage("half_life", "passed")

	sp := &score.ScoredPair{
		ID:           cand.ID,
		SymbolA:      cand.SymbolA,
		SymbolB:      cand.SymbolB,
		HedgeRatio:   res.HedgeRatio,
		PValue:       res.PValue,
		HalfLife:     hl.HalfLife,
		Correlation:  scr.Correlation,
		Score:        c.weights.Score(res.PValue, hl.HalfLife),
		Observations: res.Obs,
	}
	c.countStage("score", "passed")
	return pairOutcome{scored: sp}
}

func (c *Coordinator) countStage(stage, result string) {
	if c.metrics != nil {
		c.metrics.PairsProcessed.WithLabelValues(stage, result).Inc()
	}
}

// outcome assembles the ranked result set from the checkpoint state.
// Ties on score break by p-value ascending, then half-life ascending,
// then pair identifier, so the ranking is fully deterministic.
func (c *Coordinator) outcome(ck *checkpoint.Checkpoint) *Outcome {
	ranked := make([]score.ScoredPair, len(ck.Scored))
	copy(ranked, ck.Scored)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.PValue != b.PValue {
			return a.PValue < b.PValue
		}
		if a.HalfLife != b.HalfLife {
			return a.HalfLife < b.HalfLife
		}
		return a.ID < b.ID
	})

	topK := c.opts.TopK
	if topK <= 0 || topK > len(ranked) {
		topK = len(ranked)
	}

	excluded := make(map[string]int, len(ck.Excluded))
	for reason, n := range ck.Excluded {
		excluded[reason] = n
	}

	return &Outcome{
		RunID:     ck.RunID,
		Completed: ck.Status == checkpoint.StatusCompleted,
		Processed: len(ck.Processed),
		Ranked:    ranked,
		Top:       ranked[:topK],
		Excluded:  excluded,
	}
}

// partition splits candidates into fixed-size chunks, the last one ragged.
func partition(cands []screen.Candidate, size int) [][]screen.Candidate {
	var chunks [][]screen.Candidate
	for start := 0; start < len(cands); start += size {
		end := start + size
		if end > len(cands) {
			end = len(cands)
		}
		chunks = append(chunks, cands[start:end])
	}
	return chunks
}
