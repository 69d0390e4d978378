package bpe

import (
	"fmt"
	"iter"
	"math/bits"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// PairTally holds the weighted adjacent-pair counts of one counting pass.
type PairTally struct {
	counts map[PairKey]uint64
	syms   *symbolTable
}

// Len returns the number of distinct pairs.
func (t *PairTally) Len() int { return len(t.counts) }

// Count returns the weighted count of k.
func (t *PairTally) Count(k PairKey) uint64 { return t.counts[k] }

// All yields every pair and its count in no particular order.
func (t *PairTally) All() iter.Seq2[PairKey, uint64] {
	return func(yield func(PairKey, uint64) bool) {
		for k, n := range t.counts {
			if !yield(k, n) {
				return
			}
		}
	}
}

func (t *PairTally) candidate(k PairKey, n uint64) Candidate {
	return Candidate{Pair: k, Left: t.syms.String(k.Left), Right: t.syms.String(k.Right), Count: n}
}

// Top returns up to n candidates in selection order.
func (t *PairTally) Top(n int) []Candidate {
	out := make([]Candidate, 0, len(t.counts))
	for k, c := range t.counts {
		out = append(out, t.candidate(k, c))
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		switch {
		case a.before(b):
			return -1
		case b.before(a):
			return 1
		}
		return 0
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// PairCounter counts adjacent symbol pairs across a vocabulary, weighting each
// occurrence by the entry frequency.
type PairCounter struct {
	// Workers caps the goroutines used for one pass. Zero means GOMAXPROCS.
	Workers int
}

func (c PairCounter) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// Count tallies every adjacent pair of every trainable entry. The vocabulary
// is only read; it must not be mutated until Count returns.
func (c PairCounter) Count(v *Vocabulary) (*PairTally, error) {
	var (
		counts map[PairKey]uint64
		err    error
	)
	if w := c.workers(); shouldParallelCount(v.entries, w) {
		counts, err = countParallel(v.entries, w)
	} else {
		counts, err = countRange(v.entries)
	}
	if err != nil {
		return nil, err
	}
	return &PairTally{counts: counts, syms: v.syms}, nil
}

// countRange tallies entries into a fresh map.
func countRange(entries []Entry) (map[PairKey]uint64, error) {
	m := make(map[PairKey]uint64)
	for i := range entries {
		e := &entries[i]
		if e.invalid {
			continue
		}
		for j := 0; j+1 < len(e.symbols); j++ {
			if err := addCount(m, PairKey{e.symbols[j], e.symbols[j+1]}, e.freq); err != nil {
				return nil, fmt.Errorf("token %q: %w", e.token, err)
			}
		}
	}
	return m, nil
}

// countParallel splits entries into contiguous shards, tallies each shard in
// its own goroutine into a private map, and sums the partial maps once all
// workers are done. The result does not depend on the shard layout.
func countParallel(entries []Entry, workers int) (map[PairKey]uint64, error) {
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers <= 1 {
		return countRange(entries)
	}
	shard := (len(entries) + workers - 1) / workers
	partials := make([]map[PairKey]uint64, workers)
	var errOnce sync.Once
	var firstErr error
	var wg sync.WaitGroup
	for slot := 0; slot < workers; slot++ {
		lo := slot * shard
		if lo >= len(entries) {
			break
		}
		hi := min(lo+shard, len(entries))
		wg.Add(1)
		go func(slot int, part []Entry) {
			defer wg.Done()
			m, err := countRange(part)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			partials[slot] = m
		}(slot, entries[lo:hi])
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	out := partials[0]
	for _, part := range partials[1:] {
		for k, n := range part {
			if err := addCount(out, k, n); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func addCount(m map[PairKey]uint64, k PairKey, n uint64) error {
	sum, carry := bits.Add64(m[k], n, 0)
	if carry != 0 {
		return ErrCountOverflow
	}
	m[k] = sum
	return nil
}

const (
	parallelCountMinEntries = 64
	parallelCountMinSymbols = 4096
)

var parallelFlag struct {
	once    sync.Once
	enabled bool
}

// parallelCountEnabled honours BPE_COUNT_PARALLEL=0|false as a kill switch.
func parallelCountEnabled() bool {
	parallelFlag.once.Do(func() {
		v := strings.ToLower(os.Getenv("BPE_COUNT_PARALLEL"))
		parallelFlag.enabled = v != "0" && v != "false"
	})
	return parallelFlag.enabled
}

func shouldParallelCount(entries []Entry, workers int) bool {
	if workers < 2 || !parallelCountEnabled() {
		return false
	}
	if len(entries) < parallelCountMinEntries {
		return false
	}
	total := 0
	for i := range entries {
		total += len(entries[i].symbols)
		if total >= parallelCountMinSymbols {
			return true
		}
	}
	return false
}
