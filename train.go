package detok

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"

	"github.com/happyhackingspace/detok/align"
	"github.com/happyhackingspace/detok/features"
	"github.com/happyhackingspace/detok/maxent"
)

// Counts tracks how many entries could be aligned during one run.
type Counts struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// Total returns the number of entries processed.
func (c Counts) Total() int {
	return c.Accepted + c.Skipped
}

// SkipRate returns the fraction of entries that could not be aligned.
func (c Counts) SkipRate() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Skipped) / float64(c.Total())
}

func (c *Counts) record(ok bool) {
	if ok {
		c.Accepted++
	} else {
		c.Skipped++
	}
}

// TrainConfig holds optimizer settings. The regularization strength is
// passed to Train separately.
type TrainConfig struct {
	MaxIterations   int
	Tolerance       float64
	Memory          int
	Workers         int
	MinFeatureCount int
}

// DefaultTrainConfig returns the default optimizer settings.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		MaxIterations:   100,
		Tolerance:       1e-5,
		Memory:          10,
		Workers:         runtime.NumCPU(),
		MinFeatureCount: 1,
	}
}

// Train aligns every entry, extracts per-token features from the entries that
// align, and fits the classifier on them. Entries that do not align are
// skipped whole. The returned Counts cover every entry.
func Train(regularization float64, entries []Entry, config *TrainConfig) (*Detokenizer, Counts, error) {
	cfg := DefaultTrainConfig()
	if config != nil {
		cfg = *config
	}
	log := slog.Default().With("run", uuid.NewString())

	var counts Counts
	var data []map[string]any
	var gold []string
	for _, e := range entries {
		labels, ok := align.Align(e.Raw, e.Tokens)
		counts.record(ok)
		if !ok {
			continue
		}
		for i := range e.Tokens {
			data = append(data, features.TokenFeatures(e.Tokens, i))
			gold = append(gold, labels[i].String())
		}
	}
	log.Debug("Aligned training entries", "accepted", counts.Accepted, "skipped", counts.Skipped, "tokens", len(data))
	if counts.Accepted == 0 {
		return nil, counts, ErrDegenerateModel
	}

	model, err := maxent.Train(data, gold, maxent.TrainerConfig{
		Regularization:  regularization,
		MaxIterations:   cfg.MaxIterations,
		Epsilon:         cfg.Tolerance,
		Memory:          cfg.Memory,
		Workers:         cfg.Workers,
		MinFeatureCount: cfg.MinFeatureCount,
		Logger:          log,
	})
	if err != nil {
		return nil, counts, fmt.Errorf("detok: %w", err)
	}
	d, err := fromModel(model)
	if err != nil {
		return nil, counts, fmt.Errorf("detok: %w", err)
	}
	return d, counts, nil
}
