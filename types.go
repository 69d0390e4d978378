package bpe

import "fmt"

// PairKey is an ordered pair of adjacent symbols. Keys from the same
// Vocabulary are equal exactly when both symbol contents are equal.
type PairKey struct {
	Left  Symbol
	Right Symbol
}

// Candidate is a counted pair with its symbol contents resolved.
type Candidate struct {
	Pair  PairKey `json:"-"`
	Left  string  `json:"left"`
	Right string  `json:"right"`
	Count uint64  `json:"count"`
}

// Merged returns the content of the symbol produced by merging the pair.
func (c Candidate) Merged() string { return c.Left + c.Right }

// before reports whether c ranks ahead of o: higher count first, then the
// lexicographically smaller left symbol, then the smaller right symbol.
func (c Candidate) before(o Candidate) bool {
	if c.Count != o.Count {
		return c.Count > o.Count
	}
	if c.Left != o.Left {
		return c.Left < o.Left
	}
	return c.Right < o.Right
}

// MergeRecord describes one successful merge iteration.
type MergeRecord struct {
	Iteration int    `json:"iteration"`
	Left      string `json:"left"`
	Right     string `json:"right"`
	Merged    string `json:"merged"`
	Count     uint64 `json:"count"`
	// Changed is the number of entries rewritten by the merge.
	Changed int `json:"changed"`
}

// StopReason tells why a training run ended.
type StopReason int

// Terminal states of a training run. The zero value means the run has not
// stopped (or failed before reaching a terminal state).
const (
	StopBudgetExhausted StopReason = iota + 1
	StopNoMorePairs
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case 0:
		return "running"
	case StopBudgetExhausted:
		return "budget exhausted"
	case StopNoMorePairs:
		return "no more pairs"
	case StopCanceled:
		return "canceled"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// MarshalText renders the reason in its String form.
func (r StopReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Result is the outcome of a training run.
type Result struct {
	Reason StopReason    `json:"reason"`
	Merges []MergeRecord `json:"merges"`
}
