package bpe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/euforicio/bpe-go/tokenizer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "bpe.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxVocabSize != 50000 || cfg.Merges != 50 || cfg.MinPairCount != 1 || cfg.Workers != 0 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Tokenizer.Mode != tokenizer.ModeDelimiters || !cfg.Tokenizer.CaseFold {
		t.Fatalf("tokenizer defaults = %+v", cfg.Tokenizer)
	}
	if cfg.Output.Delimiter != "\t" || cfg.Output.Placeholder != "[NULL]" {
		t.Fatalf("output defaults = %+v", cfg.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	p := writeConfig(t, `
merges: 200
workers: 4
tokenizer:
  mode: words
  case_fold: false
output:
  delimiter: " "
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Merges != 200 || cfg.Workers != 4 {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.MaxVocabSize != DefaultMaxVocabSize || cfg.Tokenizer.Normalization != "nfc" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Tokenizer.Mode != tokenizer.ModeWords || cfg.Tokenizer.CaseFold {
		t.Fatalf("tokenizer = %+v", cfg.Tokenizer)
	}
	if cfg.Output.Delimiter != " " || cfg.Output.Placeholder != DefaultPlaceholder {
		t.Fatalf("output = %+v", cfg.Output)
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("empty file changed defaults: %+v", cfg)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "merge: 3\n"))
	if err == nil || !strings.Contains(err.Error(), "merge") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(envMerges, "7")
	t.Setenv(envMaxVocab, "100")
	t.Setenv(envWorkers, "3")
	t.Setenv(envMinPairCount, "2")
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Merges != 7 || cfg.MaxVocabSize != 100 || cfg.Workers != 3 || cfg.MinPairCount != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv(envMerges, "many")
	cfg := DefaultConfig()
	err := cfg.ApplyEnv()
	if err == nil || !strings.Contains(err.Error(), envMerges) {
		t.Fatalf("err = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	mutate := []func(*Config){
		func(c *Config) { c.Merges = -1 },
		func(c *Config) { c.MaxVocabSize = -1 },
		func(c *Config) { c.Workers = -2 },
		func(c *Config) { c.Tokenizer.Mode = "bytes" },
	}
	for i, m := range mutate {
		cfg := DefaultConfig()
		m(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
