package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/detok"
	"github.com/happyhackingspace/detok/internal/config"
	"github.com/happyhackingspace/detok/internal/corpus"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var showErrors bool

	cmd := &cobra.Command{
		Use:   "train [modelfile]",
		Short: "Train a detokenizer on a raw corpus and its tokenization",
		Args:  cobra.MaximumNArgs(1),
		Example: `  detok train model.json --raw news.raw.gz --tokenized news.tok.gz
  detok train model.json.gz --raw news.raw --tokenizer sentencepiece --spm-model spm.model
  detok train model.json --raw news.raw --test-size 500 --errors -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Model.Path = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			limit := 0
			if cfg.Corpus.TrainSize > 0 {
				limit = cfg.Corpus.TestSize + cfg.Corpus.TrainSize
			}
			entries, err := loadEntries(cfg.Corpus, limit)
			if err != nil {
				return err
			}
			train, test := corpus.Split(entries, cfg.Corpus.TestSize, cfg.Corpus.TrainSize)
			slog.Info("Training detokenizer", "train", len(train), "test", len(test),
				"regularization", cfg.Train.Regularization, "output", cfg.Model.Path)

			start := time.Now()
			d, counts, err := detok.Train(cfg.Train.Regularization, train, trainConfig(cfg.Train))
			logCounts("Trained", counts)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))

			if len(test) > 0 {
				evaluateAndReport(cmd.OutOrStdout(), d, test, cfg.Train.Workers, showErrors)
			}

			if err := d.Save(cfg.Model.Path); err != nil {
				return err
			}
			slog.Info("Model saved", "path", cfg.Model.Path)
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags(), config.DefaultConfig())
	cmd.Flags().BoolVar(&showErrors, "errors", false, "Print every held-out segment that does not round-trip")
	return cmd
}

func evaluateAndReport(w io.Writer, d *detok.Detokenizer, entries []detok.Entry, workers int, showErrors bool) *detok.EvalResult {
	start := time.Now()
	result := d.Evaluate(entries, &detok.EvalConfig{Workers: workers, CollectMismatches: showErrors})
	duration := time.Since(start)

	logCounts("Tested", result.Counts)
	slog.Info("Test accuracy", "accuracy", result.Accuracy, "correct", result.Correct, "total", result.Total)
	if secs := duration.Seconds(); secs > 0 {
		slog.Info("Test segments/second", "rate", float64(result.Total)/secs)
	}
	if showErrors {
		printMismatches(w, d, result.Mismatches)
	}
	return result
}
