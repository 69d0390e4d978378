package bpe

import (
	"iter"
	"math"
	"slices"
	"unicode/utf8"
)

// DefaultMaxVocabSize bounds the number of distinct tokens a Vocabulary keeps.
const DefaultMaxVocabSize = 50000

// Entry is one vocabulary token together with its current segmentation.
type Entry struct {
	token   string
	symbols []Symbol
	freq    uint64
	invalid bool
}

// Token returns the original surface token.
func (e Entry) Token() string { return e.token }

// Frequency returns how many times the token was added.
func (e Entry) Frequency() uint64 { return e.freq }

// Len returns the number of symbols in the current segmentation.
func (e Entry) Len() int { return len(e.symbols) }

// Invalid reports whether the token was rejected as malformed UTF-8 when the
// vocabulary was split. Invalid entries take no part in training.
func (e Entry) Invalid() bool { return e.invalid }

// Vocabulary maps tokens to entries in insertion order. It is not safe for
// concurrent mutation; a Trainer owns it for the duration of a run.
type Vocabulary struct {
	syms    *symbolTable
	index   map[string]int
	entries []Entry
	maxSize int
	dropped uint64
	invalid int
	split   bool
}

// NewVocabulary returns an empty vocabulary holding at most maxSize distinct
// tokens. A maxSize of zero or less means no bound.
func NewVocabulary(maxSize int) *Vocabulary {
	return &Vocabulary{
		syms:    newSymbolTable(),
		index:   make(map[string]int),
		maxSize: maxSize,
	}
}

// BuildVocabulary adds every token yielded by tokens to a new vocabulary.
// Empty tokens are skipped.
func BuildVocabulary(tokens iter.Seq[string], maxSize int) (*Vocabulary, error) {
	v := NewVocabulary(maxSize)
	for tok := range tokens {
		if tok == "" {
			continue
		}
		if err := v.Add(tok); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Add records one occurrence of token. A known token has its frequency
// incremented. A new token is inserted with frequency 1 and a single symbol
// holding the whole token, unless the vocabulary is full, in which case the
// occurrence is dropped and counted by Dropped.
func (v *Vocabulary) Add(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if i, ok := v.index[token]; ok {
		e := &v.entries[i]
		if e.freq == math.MaxUint64 {
			return ErrCountOverflow
		}
		e.freq++
		return nil
	}
	if v.split {
		return ErrAlreadySplit
	}
	if v.maxSize > 0 && len(v.entries) >= v.maxSize {
		v.dropped++
		return nil
	}
	v.index[token] = len(v.entries)
	v.entries = append(v.entries, Entry{
		token:   token,
		symbols: []Symbol{v.syms.intern(token)},
		freq:    1,
	})
	return nil
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int { return len(v.entries) }

// Dropped returns the number of occurrences discarded because the vocabulary
// was full.
func (v *Vocabulary) Dropped() uint64 { return v.dropped }

// Invalid returns the number of entries flagged as malformed UTF-8.
func (v *Vocabulary) Invalid() int { return v.invalid }

// IsSplit reports whether ToSubwords has run.
func (v *Vocabulary) IsSplit() bool { return v.split }

// Entry returns a copy of the entry for token. Later calls to Add or
// ApplyMerge do not show through it.
func (v *Vocabulary) Entry(token string) (Entry, bool) {
	i, ok := v.index[token]
	if !ok {
		return Entry{}, false
	}
	e := v.entries[i]
	e.symbols = slices.Clone(e.symbols)
	return e, true
}

// Symbols returns the current segmentation of token as strings.
func (v *Vocabulary) Symbols(token string) ([]string, bool) {
	i, ok := v.index[token]
	if !ok {
		return nil, false
	}
	e := &v.entries[i]
	out := make([]string, len(e.symbols))
	for i, s := range e.symbols {
		out[i] = v.syms.String(s)
	}
	return out, true
}

// SymbolString returns the content of s.
func (v *Vocabulary) SymbolString(s Symbol) string { return v.syms.String(s) }

// Lookup returns the symbol holding content, if it has been interned.
func (v *Vocabulary) Lookup(content string) (Symbol, bool) {
	s, ok := v.syms.ids[content]
	return s, ok
}

// SymbolCount returns the total number of symbols across trainable entries.
func (v *Vocabulary) SymbolCount() int {
	n := 0
	for i := range v.entries {
		if !v.entries[i].invalid {
			n += len(v.entries[i].symbols)
		}
	}
	return n
}

// InvalidTokens returns the flagged tokens in insertion order.
func (v *Vocabulary) InvalidTokens() []string {
	var out []string
	for i := range v.entries {
		if v.entries[i].invalid {
			out = append(out, v.entries[i].token)
		}
	}
	return out
}

// live returns the number of entries that take part in training.
func (v *Vocabulary) live() int { return len(v.entries) - v.invalid }

// ToSubwords re-splits every entry into one symbol per codepoint. It may run
// only once: merged symbols are never split again, so a second call returns
// ErrAlreadySplit and leaves the vocabulary untouched. Tokens that are not
// valid UTF-8 are flagged rather than split; their number is returned.
func (v *Vocabulary) ToSubwords() (int, error) {
	if v.split {
		return 0, ErrAlreadySplit
	}
	skipped := 0
	for i := range v.entries {
		e := &v.entries[i]
		if !utf8.ValidString(e.token) {
			e.invalid = true
			skipped++
			continue
		}
		seq := make([]Symbol, 0, utf8.RuneCountInString(e.token))
		for _, r := range e.token {
			seq = append(seq, v.syms.intern(string(r)))
		}
		e.symbols = seq
	}
	v.invalid = skipped
	v.split = true
	return skipped, nil
}

// ApplyMerge replaces every non-overlapping occurrence of pair, scanning each
// entry left to right, with the concatenation of its two symbols. It returns
// the number of entries that changed.
func (v *Vocabulary) ApplyMerge(pair PairKey) int {
	if !v.syms.has(pair.Left) || !v.syms.has(pair.Right) {
		return 0
	}
	merged := v.syms.intern(v.syms.String(pair.Left) + v.syms.String(pair.Right))
	changed := 0
	for i := range v.entries {
		e := &v.entries[i]
		if e.invalid || !containsPair(e.symbols, pair) {
			continue
		}
		e.symbols = MergeSymbols(e.symbols[:0], e.symbols, pair, merged)
		changed++
	}
	return changed
}

// Snapshot yields (token, frequency) for every entry in insertion order. The
// token is rebuilt from the current symbols joined by a single space, so an
// unsplit entry yields its surface token. Flagged entries yield "". The
// sequence can be ranged over any number of times.
func (v *Vocabulary) Snapshot() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		var buf []byte
		for i := range v.entries {
			e := &v.entries[i]
			tok := ""
			if !e.invalid {
				buf = v.syms.appendJoined(buf[:0], e.symbols, ' ')
				tok = string(buf)
			}
			if !yield(tok, e.freq) {
				return
			}
		}
	}
}
