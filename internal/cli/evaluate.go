package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/detok"
	"github.com/happyhackingspace/detok/internal/config"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var showErrors bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure round-trip accuracy of a trained model on a corpus",
		Example: `  detok evaluate --model model.json --raw dev.raw --tokenized dev.tok
  detok evaluate --model model.json.gz --raw dev.raw.gz --errors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			start := time.Now()
			d, err := detok.Load(cfg.Model.Path)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "path", cfg.Model.Path, "duration", time.Since(start))

			entries, err := loadEntries(cfg.Corpus, cfg.Corpus.TestSize)
			if err != nil {
				return err
			}
			slog.Info("Evaluating", "entries", len(entries), "model", cfg.Model.Path)

			out := cmd.OutOrStdout()
			result := evaluateAndReport(out, d, entries, cfg.Train.Workers, showErrors)
			_, _ = fmt.Fprintf(out, "Round-trip accuracy: %.1f%% (%d/%d)\n", result.Accuracy*100, result.Correct, result.Total)
			_, _ = fmt.Fprintf(out, "Skip rate: %.1f%% (%d/%d not alignable)\n", result.SkipRate()*100, result.Counts.Skipped, result.Counts.Total())
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags(), config.DefaultConfig())
	cmd.Flags().BoolVar(&showErrors, "errors", false, "Print every segment that does not round-trip")
	return cmd
}
