package bpe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/euforicio/bpe-go/tokenizer"
)

const (
	envMerges       = "BPE_MERGES"
	envMaxVocab     = "BPE_MAX_VOCAB"
	envMinPairCount = "BPE_MIN_PAIR_COUNT"
	envWorkers      = "BPE_WORKERS"
)

// DefaultMerges is the merge budget used when none is configured.
const DefaultMerges = 50

// Config holds everything a training run needs.
type Config struct {
	// MaxVocabSize bounds the number of distinct tokens; 0 means unbounded.
	MaxVocabSize int `yaml:"max_vocab_size"`
	// Merges is the merge budget.
	Merges int `yaml:"merges"`
	// MinPairCount is the smallest count a pair needs to be merged.
	MinPairCount uint64 `yaml:"min_pair_count"`
	// Workers caps counting goroutines; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	Tokenizer tokenizer.Options `yaml:"tokenizer"`
	Output    OutputOptions     `yaml:"output"`
}

// DefaultConfig returns the settings of the reference trainer: up to 50000
// tokens, 50 merges, any pair seen at least once qualifies.
func DefaultConfig() Config {
	return Config{
		MaxVocabSize: DefaultMaxVocabSize,
		Merges:       DefaultMerges,
		MinPairCount: DefaultMinPairCount,
		Tokenizer:    tokenizer.DefaultOptions(),
		Output:       DefaultOutputOptions(),
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with BPE_MERGES, BPE_MAX_VOCAB, BPE_MIN_PAIR_COUNT and
// BPE_WORKERS when they are set.
func (cfg *Config) ApplyEnv() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{envMerges, &cfg.Merges},
		{envMaxVocab, &cfg.MaxVocabSize},
		{envWorkers, &cfg.Workers},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = n
	}
	if v := os.Getenv(envMinPairCount); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envMinPairCount, err)
		}
		cfg.MinPairCount = n
	}
	return nil
}

// Validate rejects settings no run can use.
func (cfg Config) Validate() error {
	switch {
	case cfg.Merges < 0:
		return fmt.Errorf("merges must not be negative, got %d", cfg.Merges)
	case cfg.MaxVocabSize < 0:
		return fmt.Errorf("max_vocab_size must not be negative, got %d", cfg.MaxVocabSize)
	case cfg.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	return cfg.Tokenizer.Validate()
}
