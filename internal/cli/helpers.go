package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/detok"
	"github.com/happyhackingspace/detok/internal/config"
	"github.com/happyhackingspace/detok/internal/corpus"
)

func (c *CLI) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Cmd:        cmd,
		ConfigFile: c.configFile,
		Defaults:   config.DefaultConfig(),
	})
	if err != nil {
		return config.Config{}, err
	}
	slog.Debug("Configuration loaded", "config", fmt.Sprintf("%+v", cfg))
	return cfg, nil
}

// loadEntries reads the configured corpus. limit caps the number of lines read; 0 reads all.
func loadEntries(cfg config.CorpusConfig, limit int) ([]detok.Entry, error) {
	opts := corpus.Options{NFC: cfg.NFC, Limit: limit}
	if cfg.Tokenized != "" {
		slog.Debug("Reading parallel corpus", "raw", cfg.Raw, "tokenized", cfg.Tokenized)
		return corpus.ReadParallel(cfg.Raw, cfg.Tokenized, opts)
	}
	tok, err := corpus.NewTokenizer(cfg.Tokenizer, cfg.SPMModel)
	if err != nil {
		return nil, err
	}
	slog.Debug("Reading corpus", "raw", cfg.Raw, "tokenizer", cfg.Tokenizer)
	return corpus.ReadWithTokenizer(cfg.Raw, tok, opts)
}

func trainConfig(cfg config.TrainConfig) *detok.TrainConfig {
	return &detok.TrainConfig{
		MaxIterations:   cfg.MaxIterations,
		Tolerance:       cfg.Tolerance,
		Memory:          cfg.Memory,
		Workers:         cfg.Workers,
		MinFeatureCount: cfg.MinFeatureCount,
	}
}

func logCounts(set string, counts detok.Counts) {
	pct := 0.0
	if counts.Total() > 0 {
		pct = 100 * float64(counts.Accepted) / float64(counts.Total())
	}
	slog.Info(fmt.Sprintf("%s on %d (%.2f%%) of %d examples", set, counts.Accepted, pct, counts.Total()))
}
