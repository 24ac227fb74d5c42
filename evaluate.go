package detok

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/detok/align"
)

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	Workers           int
	CollectMismatches bool
}

// EvalResult holds round-trip evaluation results.
type EvalResult struct {
	// Accuracy is the fraction of well-formed entries whose detokenized text
	// equals the raw text exactly. Entries with empty raw text or no tokens are
	// counted as skipped and left out of Correct and Total.
	Accuracy float64
	Correct  int
	Total    int
	// Counts records alignability of the evaluated entries. It is a coverage
	// diagnostic only and does not affect Accuracy.
	Counts     Counts
	Mismatches []Mismatch
}

// Mismatch is an entry whose detokenized text differs from its raw text.
type Mismatch struct {
	Entry Entry
	Got   string
}

// SkipRate returns the fraction of evaluated entries that could not be aligned.
func (r *EvalResult) SkipRate() float64 {
	return r.Counts.SkipRate()
}

// Evaluate detokenizes every entry and compares the result with its raw
// text. Each call starts from fresh counters.
func (d *Detokenizer) Evaluate(entries []Entry, config *EvalConfig) *EvalResult {
	workers := runtime.NumCPU()
	collect := false
	if config != nil {
		if config.Workers > 0 {
			workers = config.Workers
		}
		collect = config.CollectMismatches
	}

	aligned := make([]bool, len(entries))
	got := make([]string, len(entries))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, e := range entries {
		if malformed(e) {
			continue
		}
		g.Go(func() error {
			_, aligned[i] = align.Align(e.Raw, e.Tokens)
			got[i] = d.Detokenize(e.Tokens)
			return nil
		})
	}
	_ = g.Wait()

	result := &EvalResult{}
	for i, e := range entries {
		result.Counts.record(aligned[i])
		if malformed(e) {
			continue
		}
		result.Total++
		if got[i] == e.Raw {
			result.Correct++
		} else if collect {
			result.Mismatches = append(result.Mismatches, Mismatch{Entry: e, Got: got[i]})
		}
	}
	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}
	return result
}

func malformed(e Entry) bool {
	return e.Raw == "" || len(e.Tokens) == 0
}
