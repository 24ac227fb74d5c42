// Package config resolves detok settings from defaults, a config file,
// DETOK_* environment variables and command-line flags.
package config

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Corpus CorpusConfig `mapstructure:"corpus"`
	Train  TrainConfig  `mapstructure:"train"`
	Model  ModelConfig  `mapstructure:"model"`
}

type CorpusConfig struct {
	Raw       string `mapstructure:"raw"`
	Tokenized string `mapstructure:"tokenized"`
	Tokenizer string `mapstructure:"tokenizer"`
	SPMModel  string `mapstructure:"spm_model"`
	TrainSize int    `mapstructure:"train_size"`
	TestSize  int    `mapstructure:"test_size"`
	NFC       bool   `mapstructure:"nfc"`
}

type TrainConfig struct {
	Regularization  float64 `mapstructure:"regularization"`
	MaxIterations   int     `mapstructure:"max_iterations"`
	Tolerance       float64 `mapstructure:"tolerance"`
	Memory          int     `mapstructure:"memory"`
	Workers         int     `mapstructure:"workers"`
	MinFeatureCount int     `mapstructure:"min_feature_count"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Corpus: CorpusConfig{
			Tokenizer: "regex",
			TrainSize: 0,
			TestSize:  10000,
		},
		Train: TrainConfig{
			Regularization:  10.0,
			MaxIterations:   100,
			Tolerance:       1e-5,
			Memory:          10,
			Workers:         runtime.NumCPU(),
			MinFeatureCount: 1,
		},
		Model: ModelConfig{
			Path: "model.json",
		},
	}
}

// flagKeys maps config keys to the flag that sets them.
var flagKeys = []struct{ key, flag string }{
	{"corpus.raw", "raw"},
	{"corpus.tokenized", "tokenized"},
	{"corpus.tokenizer", "tokenizer"},
	{"corpus.spm_model", "spm-model"},
	{"corpus.train_size", "train-size"},
	{"corpus.test_size", "test-size"},
	{"corpus.nfc", "nfc"},
	{"train.regularization", "regularization"},
	{"train.max_iterations", "max-iterations"},
	{"train.tolerance", "tolerance"},
	{"train.memory", "memory"},
	{"train.workers", "workers"},
	{"train.min_feature_count", "min-feature-count"},
	{"model.path", "model"},
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("raw", defaults.Corpus.Raw, "Path to raw segments file (.gz accepted)")
	fs.String("tokenized", defaults.Corpus.Tokenized, "Path to tokenized segments file, tokens separated by spaces (.gz accepted)")
	fs.String("tokenizer", defaults.Corpus.Tokenizer, "Tokenizer for raw-only corpora: regex or sentencepiece")
	fs.String("spm-model", defaults.Corpus.SPMModel, "Path to SentencePiece model proto")
	fs.Int("train-size", defaults.Corpus.TrainSize, "Max training size (0 for unlimited)")
	fs.Int("test-size", defaults.Corpus.TestSize, "Held-out test size taken from the start of the corpus (0 to skip testing)")
	fs.Bool("nfc", defaults.Corpus.NFC, "Normalize raw text and tokens to Unicode NFC")
	fs.Float64("regularization", defaults.Train.Regularization, "L2 regularization strength")
	fs.Int("max-iterations", defaults.Train.MaxIterations, "Optimizer iteration cap")
	fs.Float64("tolerance", defaults.Train.Tolerance, "Convergence threshold on the largest gradient component")
	fs.Int("memory", defaults.Train.Memory, "L-BFGS history size")
	fs.Int("workers", defaults.Train.Workers, "Goroutines used for gradient accumulation and evaluation")
	fs.Int("min-feature-count", defaults.Train.MinFeatureCount, "Drop features seen in fewer training tokens")
	fs.String("model", defaults.Model.Path, "Path to model file (.gz for compressed)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		fs := opts.Cmd.Flags()
		for _, fk := range flagKeys {
			f := fs.Lookup(fk.flag)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(fk.key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %q: %w", fk.flag, err)
			}
		}
	}

	v.SetEnvPrefix("DETOK")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("detok")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Corpus.Tokenizer, _ = NormalizeTokenizer(cfg.Corpus.Tokenizer)
	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("corpus.raw", c.Corpus.Raw)
	v.SetDefault("corpus.tokenized", c.Corpus.Tokenized)
	v.SetDefault("corpus.tokenizer", c.Corpus.Tokenizer)
	v.SetDefault("corpus.spm_model", c.Corpus.SPMModel)
	v.SetDefault("corpus.train_size", c.Corpus.TrainSize)
	v.SetDefault("corpus.test_size", c.Corpus.TestSize)
	v.SetDefault("corpus.nfc", c.Corpus.NFC)
	v.SetDefault("train.regularization", c.Train.Regularization)
	v.SetDefault("train.max_iterations", c.Train.MaxIterations)
	v.SetDefault("train.tolerance", c.Train.Tolerance)
	v.SetDefault("train.memory", c.Train.Memory)
	v.SetDefault("train.workers", c.Train.Workers)
	v.SetDefault("train.min_feature_count", c.Train.MinFeatureCount)
	v.SetDefault("model.path", c.Model.Path)
}

// NormalizeTokenizer canonicalizes a tokenizer name. Empty means "regex".
func NormalizeTokenizer(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "regex":
		return "regex", nil
	case "sentencepiece", "spm":
		return "sentencepiece", nil
	default:
		return name, fmt.Errorf("unknown tokenizer %q (want regex or sentencepiece)", name)
	}
}

// Validate reports settings that would make a training run meaningless.
func (c Config) Validate() error {
	if c.Corpus.Raw == "" {
		return fmt.Errorf("corpus.raw is required")
	}
	if _, err := NormalizeTokenizer(c.Corpus.Tokenizer); err != nil {
		return err
	}
	if c.Corpus.Tokenized == "" && c.Corpus.Tokenizer == "sentencepiece" && c.Corpus.SPMModel == "" {
		return fmt.Errorf("corpus.spm_model is required for the sentencepiece tokenizer")
	}
	if c.Corpus.TrainSize < 0 || c.Corpus.TestSize < 0 {
		return fmt.Errorf("corpus sizes must be non-negative")
	}
	if c.Train.Regularization < 0 || math.IsNaN(c.Train.Regularization) {
		return fmt.Errorf("train.regularization must be non-negative, got %v", c.Train.Regularization)
	}
	if c.Train.MaxIterations < 0 {
		return fmt.Errorf("train.max_iterations must be non-negative")
	}
	return nil
}
