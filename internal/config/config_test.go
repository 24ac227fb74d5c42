package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

func parseFlags(t *testing.T, defaults Config, args ...string) *fakeBinder {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return &fakeBinder{fs: fs}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Train.Regularization != 10.0 {
		t.Errorf("Train.Regularization = %v; want 10", cfg.Train.Regularization)
	}
	if cfg.Train.MaxIterations != 100 {
		t.Errorf("Train.MaxIterations = %d; want 100", cfg.Train.MaxIterations)
	}
	if cfg.Train.Tolerance != 1e-5 {
		t.Errorf("Train.Tolerance = %v; want 1e-5", cfg.Train.Tolerance)
	}
	if cfg.Corpus.TestSize != 10000 {
		t.Errorf("Corpus.TestSize = %d; want 10000", cfg.Corpus.TestSize)
	}
	if cfg.Corpus.TrainSize != 0 {
		t.Errorf("Corpus.TrainSize = %d; want 0", cfg.Corpus.TrainSize)
	}
	if cfg.Model.Path != "model.json" {
		t.Errorf("Model.Path = %q; want %q", cfg.Model.Path, "model.json")
	}
}

func TestRegisterFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, DefaultConfig())

	for _, fk := range flagKeys {
		if fs.Lookup(fk.flag) == nil {
			t.Errorf("flag %q for key %q not registered", fk.flag, fk.key)
		}
	}
	if f := fs.Lookup("regularization"); f != nil && f.DefValue != "10" {
		t.Errorf("flag regularization default = %q; want %q", f.DefValue, "10")
	}
}

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	cfg, err := Load(LoadOptions{Cmd: parseFlags(t, defaults), Defaults: defaults})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != defaults {
		t.Errorf("Load() = %+v; want %+v", cfg, defaults)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	binder := parseFlags(t, defaults,
		"--raw=corpus.txt.gz",
		"--regularization=0.5",
		"--test-size=200",
		"--tokenizer=SPM",
		"--nfc",
	)

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Corpus.Raw != "corpus.txt.gz" {
		t.Errorf("Corpus.Raw = %q; want %q", cfg.Corpus.Raw, "corpus.txt.gz")
	}
	if cfg.Train.Regularization != 0.5 {
		t.Errorf("Train.Regularization = %v; want 0.5", cfg.Train.Regularization)
	}
	if cfg.Corpus.TestSize != 200 {
		t.Errorf("Corpus.TestSize = %d; want 200", cfg.Corpus.TestSize)
	}
	if cfg.Corpus.Tokenizer != "sentencepiece" {
		t.Errorf("Corpus.Tokenizer = %q; want %q", cfg.Corpus.Tokenizer, "sentencepiece")
	}
	if !cfg.Corpus.NFC {
		t.Error("Corpus.NFC = false; want true")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DETOK_TRAIN_MAX_ITERATIONS", "7")
	t.Setenv("DETOK_MODEL_PATH", "/tmp/m.json.gz")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Train.MaxIterations != 7 {
		t.Errorf("Train.MaxIterations = %d; want 7", cfg.Train.MaxIterations)
	}
	if cfg.Model.Path != "/tmp/m.json.gz" {
		t.Errorf("Model.Path = %q; want %q", cfg.Model.Path, "/tmp/m.json.gz")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "detok.yaml")
	content := `
corpus:
  raw: news.raw.gz
  tokenized: news.tok.gz
train:
  regularization: 2.5
  workers: 3
`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig()
	binder := parseFlags(t, defaults, "--workers=5")
	cfg, err := Load(LoadOptions{Cmd: binder, ConfigFile: cfgFile, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Corpus.Raw != "news.raw.gz" {
		t.Errorf("Corpus.Raw = %q; want %q", cfg.Corpus.Raw, "news.raw.gz")
	}
	if cfg.Corpus.Tokenized != "news.tok.gz" {
		t.Errorf("Corpus.Tokenized = %q; want %q", cfg.Corpus.Tokenized, "news.tok.gz")
	}
	if cfg.Train.Regularization != 2.5 {
		t.Errorf("Train.Regularization = %v; want 2.5", cfg.Train.Regularization)
	}
	// Explicit flags win over the file.
	if cfg.Train.Workers != 5 {
		t.Errorf("Train.Workers = %d; want 5", cfg.Train.Workers)
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/detok.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}

func TestNormalizeTokenizer(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "regex", false},
		{"regex", "regex", false},
		{" SentencePiece ", "sentencepiece", false},
		{"spm", "sentencepiece", false},
		{"moses", "moses", true},
	}
	for _, tt := range tests {
		got, err := NormalizeTokenizer(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeTokenizer(%q) error = %v; wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTokenizer(%q) = %q; want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Corpus.Raw = "raw.txt"
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing raw", func(c *Config) { c.Corpus.Raw = "" }},
		{"negative regularization", func(c *Config) { c.Train.Regularization = -1 }},
		{"negative test size", func(c *Config) { c.Corpus.TestSize = -1 }},
		{"unknown tokenizer", func(c *Config) { c.Corpus.Tokenizer = "moses" }},
		{"sentencepiece without model", func(c *Config) { c.Corpus.Tokenizer = "sentencepiece" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil; want error")
			}
		})
	}
}
