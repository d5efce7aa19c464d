package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/statarb/pairscan/internal/checkpoint"
	"github.com/statarb/pairscan/internal/coint"
	"github.com/statarb/pairscan/internal/config"
	"github.com/statarb/pairscan/internal/halflife"
	"github.com/statarb/pairscan/internal/metrics"
	"github.com/statarb/pairscan/internal/pipeline"
	"github.com/statarb/pairscan/internal/report"
	"github.com/statarb/pairscan/internal/screen"
	"github.com/statarb/pairscan/internal/series"
)

func newScanCmd() *cobra.Command {
	var (
		flagConfig      string
		flagDataDir     string
		flagLiquidity   string
		flagCheckpoint  string
		flagOutDir      string
		flagMetricsAddr string
		flagResume      bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Screen, test and rank all pairs in the universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(flagConfig, flagDataDir, flagLiquidity, flagCheckpoint, flagOutDir, flagMetricsAddr, flagResume)
		},
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "YAML config file (defaults apply when omitted)")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "data", "directory of per-symbol close CSVs")
	cmd.Flags().StringVar(&flagLiquidity, "liquidity", "", "CSV of symbol,avg_traded_value (liquidity filter off when omitted)")
	cmd.Flags().StringVar(&flagCheckpoint, "checkpoint", "pairscan_checkpoint.json", "checkpoint file path")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "out", "directory for result files")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "listen address for Prometheus metrics (disabled when empty)")
	cmd.Flags().BoolVar(&flagResume, "resume", true, "resume from an existing checkpoint instead of starting fresh")
	return cmd
}

func runScan(configPath, dataDir, liquidityPath, checkpointPath, outDir, metricsAddr string, resume bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := series.LoadDir(dataDir)
	if err != nil {
		return err
	}

	var liquidity screen.LiquidityFunc
	if liquidityPath != "" {
		values, err := loadLiquidity(liquidityPath)
		if err != nil {
			return err
		}
		liquidity = func(symbol string) (float64, bool) {
			v, ok := values[symbol]
			return v, ok
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reg *metrics.Registry
	if metricsAddr != "" {
		promReg := prometheus.NewRegistry()
		reg = metrics.NewRegistry(promReg)
		go serveMetrics(metricsAddr, promReg)
	}

	ckpts := checkpoint.NewStore(checkpointPath)
	if !resume {
		if err := ckpts.Discard(); err != nil {
			return fmt.Errorf("discard checkpoint: %w", err)
		}
	}

	screener := screen.NewScreener(cfg.Screen, store, liquidity)
	passed, results, stats, err := screener.ScreenUniverse(ctx, store.Symbols())
	if err != nil {
		return err
	}

	if cfg.Sample.Ratio < 1 {
		passed = screen.Sample(passed, cfg.Sample.Ratio, cfg.Sample.Seed)
		log.Info().Int("sampled", len(passed)).Float64("ratio", cfg.Sample.Ratio).Msg("candidate set subsampled")
	}

	coord := pipeline.New(
		pipeline.Options{
			ChunkSize: cfg.Batch.ChunkSize,
			TopK:      cfg.Batch.TopK,
			Workers:   cfg.Batch.Workers,
			MaxPValue: cfg.Cointegration.MaxPValue,
		},
		store,
		coint.NewTester(cfg.Cointegration.Config),
		halflife.NewEstimator(cfg.HalfLife),
		cfg.Scoring,
		ckpts,
		reg,
	)

	out, err := coord.Run(ctx, passed, results)
	if errors.Is(err, pipeline.ErrInterrupted) {
		log.Warn().Str("checkpoint", ckpts.Path()).Msg("scan interrupted, rerun with --resume to continue")
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	funnel := report.BuildFunnel(stats, out)
	if err := report.WriteCSV(filepath.Join(outDir, "pairs.csv"), out.Ranked); err != nil {
		return err
	}
	if err := report.WriteCSV(filepath.Join(outDir, "top_pairs.csv"), out.Top); err != nil {
		return err
	}
	if err := report.WriteSummary(filepath.Join(outDir, "summary.txt"), out, funnel); err != nil {
		return err
	}

	log.Info().
		Str("run_id", out.RunID).
		Int("scored", len(out.Ranked)).
		Str("out_dir", outDir).
		Msg("results written")
	return nil
}

// loadLiquidity reads a symbol,avg_traded_value CSV. A header row is
// detected by a non-numeric second column and skipped.
func loadLiquidity(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open liquidity file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse liquidity file: %w", err)
	}

	values := make(map[string]float64, len(records))
	for i, rec := range records {
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("liquidity file %s line %d: %w", path, i+1, err)
		}
		values[rec[0]] = v
	}
	return values, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Info().Str("addr", addr).Msg("metrics listener started")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics listener stopped")
	}
}
