// Package report renders scan results: a CSV of the ranked candidate set
// and a plaintext funnel summary for operators.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	atomicio "github.com/statarb/pairscan/internal/io"
	"github.com/statarb/pairscan/internal/pipeline"
	"github.com/statarb/pairscan/internal/score"
	"github.com/statarb/pairscan/internal/screen"
)

// Funnel captures how many pairs survived each stage of a run.
type Funnel struct {
	Universe     int
	Resolved     int
	Generated    int
	Screened     int
	Processed    int
	Scored       int
	ScreenExcl   map[string]int
	PipelineExcl map[string]int
}

// BuildFunnel merges screening stats with the pipeline outcome.
func BuildFunnel(stats screen.Stats, out *pipeline.Outcome) Funnel {
	return Funnel{
		Universe:     stats.Universe,
		Resolved:     stats.Resolved,
		Generated:    stats.Generated,
		Screened:     stats.Passed,
		Processed:    out.Processed,
		Scored:       len(out.Ranked),
		ScreenExcl:   stats.Exclusions,
		PipelineExcl: out.Excluded,
	}
}

// WriteCSV writes the ranked pairs to path, best first, atomically.
func WriteCSV(path string, ranked []score.ScoredPair) error {
	lines := make([]string, 0, len(ranked)+1)
	lines = append(lines, "rank,pair,symbol_a,symbol_b,score,p_value,half_life_days,hedge_ratio,correlation,observations")
	for i, sp := range ranked {
		lines = append(lines, fmt.Sprintf("%d,%s,%s,%s,%.4f,%.6f,%.2f,%.6f,%.4f,%d",
			i+1, sp.ID, sp.SymbolA, sp.SymbolB,
			sp.Score, sp.PValue, sp.HalfLife, sp.HedgeRatio, sp.Correlation, sp.Observations))
	}
	return atomicio.WriteLinesAtomic(path, lines)
}

// WriteSummary writes the plaintext run summary to path atomically.
func WriteSummary(path string, out *pipeline.Outcome, funnel Funnel) error {
	return atomicio.WriteFileAtomic(path, []byte(Summary(out, funnel)))
}

// Summary renders the funnel, exclusion breakdown, score aggregates and
// the head of the ranking.
func Summary(out *pipeline.Outcome, funnel Funnel) string {
	var b strings.Builder

	fmt.Fprintf(&b, "pairscan run %s\n", out.RunID)
	fmt.Fprintf(&b, "generated %s\n\n", time.Now().UTC().Format(time.RFC3339))

	b.WriteString("FUNNEL\n")
	fmt.Fprintf(&b, "  universe symbols     %8d\n", funnel.Universe)
	fmt.Fprintf(&b, "  histories resolved   %8d\n", funnel.Resolved)
	fmt.Fprintf(&b, "  pairs generated      %8d\n", funnel.Generated)
	fmt.Fprintf(&b, "  passed screening     %8d\n", funnel.Screened)
	fmt.Fprintf(&b, "  pairs processed      %8d\n", funnel.Processed)
	fmt.Fprintf(&b, "  pairs scored         %8d\n", funnel.Scored)
	b.WriteString("\n")

	writeReasons(&b, "SCREEN EXCLUSIONS", funnel.ScreenExcl)
	writeReasons(&b, "PIPELINE EXCLUSIONS", funnel.PipelineExcl)

	if len(out.Ranked) > 0 {
		writeAggregates(&b, out.Ranked)
		writeTop(&b, out.Top)
	} else {
		b.WriteString("no pairs survived scoring\n")
	}
	return b.String()
}

func writeReasons(b *strings.Builder, title string, reasons map[string]int) {
	if len(reasons) == 0 {
		return
	}
	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(title + "\n")
	for _, k := range keys {
		fmt.Fprintf(b, "  %-28s %8d\n", k, reasons[k])
	}
	b.WriteString("\n")
}

func writeAggregates(b *strings.Builder, ranked []score.ScoredPair) {
	var sumScore, sumHL, sumP float64
	minScore, maxScore := math.Inf(1), math.Inf(-1)
	for _, sp := range ranked {
		sumScore += sp.Score
		sumHL += sp.HalfLife
		sumP += sp.PValue
		minScore = math.Min(minScore, sp.Score)
		maxScore = math.Max(maxScore, sp.Score)
	}
	n := float64(len(ranked))

	b.WriteString("SCORED SET\n")
	fmt.Fprintf(b, "  score    mean %.2f  min %.2f  max %.2f\n", sumScore/n, minScore, maxScore)
	fmt.Fprintf(b, "  p-value  mean %.4f\n", sumP/n)
	fmt.Fprintf(b, "  half-life mean %.1f days\n", sumHL/n)
	b.WriteString("\n")
}

func writeTop(b *strings.Builder, top []score.ScoredPair) {
	limit := len(top)
	if limit > 10 {
		limit = 10
	}
	b.WriteString("TOP PAIRS\n")
	for i := 0; i < limit; i++ {
		sp := top[i]
		fmt.Fprintf(b, "  %2d. %-20s score %7.2f  p %.4f  half-life %5.1fd  beta %+.4f\n",
			i+1, sp.ID, sp.Score, sp.PValue, sp.HalfLife, sp.HedgeRatio)
	}
}
