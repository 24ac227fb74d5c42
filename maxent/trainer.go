package maxent

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/detok/internal/vectorizer"
)

var (
	// ErrNoExamples is returned by Train when there is nothing to learn from.
	ErrNoExamples = errors.New("maxent: no training examples")
	// ErrInvalidRegularization is returned for a negative or NaN regularization strength.
	ErrInvalidRegularization = errors.New("maxent: regularization must be a non-negative number")
)

// TrainerConfig holds training hyperparameters.
type TrainerConfig struct {
	Regularization  float64 // L2 strength; larger values shrink the weights
	MaxIterations   int
	Epsilon         float64 // convergence threshold on the largest gradient component
	Memory          int     // L-BFGS history size
	Workers         int     // goroutines used to accumulate the gradient
	MinFeatureCount int     // features seen in fewer examples are dropped
	Logger          *slog.Logger
}

// DefaultTrainerConfig returns the default training config.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Regularization:  10.0,
		MaxIterations:   100,
		Epsilon:         1e-5,
		Memory:          10,
		Workers:         runtime.NumCPU(),
		MinFeatureCount: 1,
	}
}

// Train fits a model to feature dicts and their gold labels.
// Given the same data in the same order and the same config, the result is
// identical on every run.
func Train(data []map[string]any, labels []string, config TrainerConfig) (*Model, error) {
	if len(data) == 0 {
		return nil, ErrNoExamples
	}
	if len(data) != len(labels) {
		return nil, fmt.Errorf("maxent: %d feature dicts but %d labels", len(data), len(labels))
	}
	if config.Regularization < 0 || math.IsNaN(config.Regularization) {
		return nil, ErrInvalidRegularization
	}
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}

	model := NewModel()
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = model.Classes.Add(l)
	}
	model.Features = vectorizer.NewDictVectorizer(config.MinFeatureCount)
	x := model.Features.FitTransform(data)

	p := &problem{
		x:          x,
		y:          y,
		numClasses: model.NumClasses(),
		reg:        config.Regularization,
		workers:    max(config.Workers, 1),
	}
	numWeights := model.Features.VocabSize() * p.numClasses
	log.Debug("Training maxent model",
		"examples", len(x), "features", model.Features.VocabSize(), "classes", p.numClasses,
		"regularization", config.Regularization)

	model.Weights = minimize(p, numWeights, config, log)
	return model, nil
}

// problem is the regularized negative conditional log-likelihood.
type problem struct {
	x          []vectorizer.SparseVector
	y          []int
	numClasses int
	reg        float64
	workers    int
}

// gradShards is the number of contiguous example ranges the objective is
// summed over. It is fixed so that the summation order, and with it every
// trained weight, does not depend on the worker count.
const gradShards = 16

// evaluate returns the objective at w and, if withGrad, its gradient.
// Shards are accumulated concurrently, at most p.workers at a time, and then
// summed in shard order.
func (p *problem) evaluate(w []float64, withGrad bool) (float64, []float64) {
	n := len(p.x)
	L := p.numClasses
	shards := min(gradShards, n)
	losses := make([]float64, shards)
	grads := make([][]float64, shards)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for c := range shards {
		lo, hi := c*n/shards, (c+1)*n/shards
		g.Go(func() error {
			var grad []float64
			if withGrad {
				grad = make([]float64, len(w))
				grads[c] = grad
			}
			scores := make([]float64, L)
			for j := lo; j < hi; j++ {
				xj := p.x[j]
				classScores(w, xj, scores)
				lse := logSumExp(scores)
				losses[c] += lse - scores[p.y[j]]
				if grad == nil {
					continue
				}
				for k := range L {
					diff := math.Exp(scores[k] - lse)
					if k == p.y[j] {
						diff -= 1
					}
					for i, idx := range xj.Indices {
						grad[idx*L+k] += diff * xj.Values[i]
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	loss := 0.0
	var grad []float64
	if withGrad {
		grad = make([]float64, len(w))
	}
	for c := range shards {
		loss += losses[c]
		if withGrad {
			for i, v := range grads[c] {
				grad[i] += v
			}
		}
	}

	if p.reg > 0 {
		for i, v := range w {
			loss += 0.5 * p.reg * v * v
			if withGrad {
				grad[i] += p.reg * v
			}
		}
	}
	return loss, grad
}

func minimize(p *problem, numWeights int, config TrainerConfig, log *slog.Logger) []float64 {
	w := make([]float64, numWeights)
	if numWeights == 0 {
		return w
	}

	hist := newHistory(numWeights, config.Memory)
	loss, grad := p.evaluate(w, true)
	dir := make([]float64, numWeights)
	wNew := make([]float64, numWeights)

	for iter := range config.MaxIterations {
		maxGrad := maxAbs(grad)
		if maxGrad == 0 || maxGrad < config.Epsilon {
			log.Debug("Maxent converged", "iteration", iter, "loss", loss, "max_gradient", maxGrad)
			break
		}

		hist.direction(grad, dir)
		if dot(dir, grad) >= 0 {
			hist.clear()
			hist.direction(grad, dir)
		}
		step := 1.0
		if hist.len() == 0 {
			step = 1 / math.Sqrt(dot(grad, grad))
		}

		step, ok := lineSearch(p, w, dir, wNew, loss, dot(dir, grad), step)
		if !ok {
			log.Warn("Maxent line search failed, stopping", "iteration", iter+1, "loss", loss)
			break
		}

		newLoss, newGrad := p.evaluate(wNew, true)
		hist.push(w, wNew, grad, newGrad)
		w, wNew = wNew, w
		loss, grad = newLoss, newGrad
		log.Debug("Maxent training iteration", "iteration", iter+1, "loss", loss, "step", step)
	}
	return w
}

// lineSearch backtracks from step until the Armijo condition holds. On
// success wNew holds w + step*dir.
func lineSearch(p *problem, w, dir, wNew []float64, loss, dirDeriv, step float64) (float64, bool) {
	const c = 1e-4
	for trial := 0; trial < 40; trial++ {
		for i := range w {
			wNew[i] = w[i] + step*dir[i]
		}
		newLoss, _ := p.evaluate(wNew, false)
		if newLoss <= loss+c*step*dirDeriv {
			return step, true
		}
		step *= 0.5
	}
	return 0, false
}
