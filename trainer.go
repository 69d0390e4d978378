package bpe

import (
	"context"
	"fmt"
	"io"
	"log"
)

// Trainer runs the count, select, apply cycle over a Vocabulary.
type Trainer struct {
	merges   int
	minCount uint64
	counter  PairCounter
	log      *log.Logger
	stats    Stats
}

// Stats accumulates over every Train call of one Trainer.
type Stats struct {
	Runs     int `json:"runs"`
	Passes   int `json:"passes"`   // counting passes
	Merges   int `json:"merges"`   // merges applied
	Changed  int `json:"changed"`  // entry rewrites across all merges
	MaxPairs int `json:"maxPairs"` // most distinct pairs seen in one pass
}

// Stats returns the totals so far.
func (t *Trainer) Stats() Stats { return t.stats }

// NewTrainer returns a trainer for cfg. Progress lines go to logger; a nil
// logger discards them.
func NewTrainer(cfg Config, logger *log.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Trainer{
		merges:   cfg.Merges,
		minCount: cfg.MinPairCount,
		counter:  PairCounter{Workers: cfg.Workers},
		log:      logger,
	}, nil
}

// Train merges pairs in v until the merge budget is spent or no pair reaches
// the minimum count. v must already be split with ToSubwords and must not be
// touched by anything else while Train runs. A vocabulary with no entries
// stops with StopNoMorePairs whether or not it was split.
//
// ctx is checked once per iteration, before counting. A canceled run returns
// the records made so far with StopCanceled together with ctx.Err(). Errors
// from counting abort the run; the partial result is still returned.
func (t *Trainer) Train(ctx context.Context, v *Vocabulary) (*Result, error) {
	if !v.IsSplit() && v.Len() > 0 {
		return nil, ErrNotSplit
	}
	t.stats.Runs++
	res := &Result{}
	if v.live() == 0 {
		res.Reason = StopNoMorePairs
		t.log.Printf("vocabulary empty, nothing to merge")
		return res, nil
	}
	t.log.Printf("training: %d entries, %d symbols, budget %d merges", v.live(), v.SymbolCount(), t.merges)

	for remaining := t.merges; ; remaining-- {
		if remaining <= 0 {
			res.Reason = StopBudgetExhausted
			break
		}
		if err := ctx.Err(); err != nil {
			res.Reason = StopCanceled
			t.log.Printf("canceled after %d merges", len(res.Merges))
			return res, err
		}
		iteration := len(res.Merges)
		tally, err := t.counter.Count(v)
		if err != nil {
			return res, fmt.Errorf("count pairs for merge %d: %w", iteration+1, err)
		}
		t.stats.Passes++
		t.stats.MaxPairs = max(t.stats.MaxPairs, tally.Len())
		best, ok := SelectBest(tally, t.minCount)
		if !ok {
			res.Reason = StopNoMorePairs
			break
		}
		changed := v.ApplyMerge(best.Pair)
		t.stats.Merges++
		t.stats.Changed += changed
		res.Merges = append(res.Merges, MergeRecord{
			Iteration: iteration,
			Left:      best.Left,
			Right:     best.Right,
			Merged:    best.Merged(),
			Count:     best.Count,
			Changed:   changed,
		})
		t.log.Printf("merge %d: %q + %q -> %q (count=%d, changed=%d)",
			iteration+1, best.Left, best.Right, best.Merged(), best.Count, changed)
	}

	t.log.Printf("stopped (%s) after %d merges, %d symbols remain", res.Reason, len(res.Merges), v.SymbolCount())
	return res, nil
}
