package golden

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	bpe "github.com/euforicio/bpe-go"
	"github.com/euforicio/bpe-go/tokenizer"
)

// goldenRun is the recorded outcome of one training run.
type goldenRun struct {
	Reason string            `json:"reason"`
	Merges []bpe.MergeRecord `json:"merges"`
	Vocab  []string          `json:"vocab"`
}

func TestTrainMatchesGolden(t *testing.T) {
	cases := []struct {
		name   string
		file   string
		text   string
		merges int
	}{
		{
			name: "classic",
			file: "classic.json",
			text: strings.Repeat("low ", 5) + strings.Repeat("lower ", 2) +
				strings.Repeat("Newest ", 6) + strings.Repeat("widest. ", 3),
			merges: 6,
		},
		{
			name:   "exhausts_pairs",
			file:   "exhausts_pairs.json",
			text:   "aa aa, aa! ab",
			merges: 5,
		},
	}

	update := os.Getenv("GOLDEN_UPDATE") == "1"

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, workers := range []int{1, 4} {
				got := train(t, tc.text, tc.merges, workers)

				goldenPath := filepath.Join("testdata", tc.file)
				if update {
					writeGolden(t, goldenPath, got)
					return
				}

				expected := readGolden(t, goldenPath)
				if got.Reason != expected.Reason {
					t.Fatalf("workers=%d: reason %q want %q", workers, got.Reason, expected.Reason)
				}
				if !slices.Equal(got.Merges, expected.Merges) {
					t.Fatalf("workers=%d: merges mismatch:\n got %+v\nwant %+v", workers, got.Merges, expected.Merges)
				}
				if !slices.Equal(got.Vocab, expected.Vocab) {
					t.Fatalf("workers=%d: vocab mismatch:\n got %q\nwant %q", workers, got.Vocab, expected.Vocab)
				}
			}
		})
	}
}

func train(t *testing.T, text string, merges, workers int) goldenRun {
	t.Helper()
	cfg := bpe.DefaultConfig()
	cfg.Merges = merges
	cfg.Workers = workers
	pre, err := tokenizer.New(cfg.Tokenizer)
	if err != nil {
		t.Fatalf("pretokenizer: %v", err)
	}
	v := bpe.NewVocabulary(cfg.MaxVocabSize)
	if err := pre.Each(text, v.Add); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := v.ToSubwords(); err != nil {
		t.Fatalf("split: %v", err)
	}
	tr, err := bpe.NewTrainer(cfg, nil)
	if err != nil {
		t.Fatalf("trainer: %v", err)
	}
	res, err := tr.Train(context.Background(), v)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	run := goldenRun{Reason: res.Reason.String(), Merges: res.Merges}
	for tok, freq := range v.Snapshot() {
		run.Vocab = append(run.Vocab, fmt.Sprintf("%s %d", tok, freq))
	}
	return run
}

func readGolden(t *testing.T, path string) goldenRun {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v", path, err)
	}
	var out goldenRun
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal golden %s: %v", path, err)
	}
	return out
}

func writeGolden(t *testing.T, path string, run goldenRun) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	encoded, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
}
