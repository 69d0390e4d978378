package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds one corpus line read by Scan.
const maxLineBytes = 16 << 20

// Pretokenizer turns raw text into the normalized words a vocabulary is
// built from.
type Pretokenizer struct {
	split Splitter
	norm  *Normalizer
}

// New builds a Pretokenizer from opts.
func New(opts Options) (*Pretokenizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var split Splitter
	switch opts.mode() {
	case ModeDelimiters:
		split = NewDelimiterSplitter(opts.Delimiters)
	case ModeWords:
		split = NewWordSplitter()
	case ModePattern:
		pattern := opts.Pattern
		if strings.EqualFold(pattern, "gpt4") {
			pattern = GPT4Pattern
		}
		s, err := NewPatternSplitter(pattern)
		if err != nil {
			return nil, err
		}
		split = s
	}
	n, err := NewNormalizer(opts.CaseFold, opts.Normalization, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Pretokenizer{split: split, norm: n}, nil
}

// Each calls fn with every non-empty normalized word of text, in order.
// An error from fn stops the walk and is returned as is.
func (p *Pretokenizer) Each(text string, fn func(word string) error) error {
	return p.split.Split(text, func(tok string) error {
		if w := p.norm.Normalize(tok); w != "" {
			return fn(w)
		}
		return nil
	})
}

// Words returns the words of text. On a split error, such as a pattern match
// timeout, it returns the words found so far with the error.
func (p *Pretokenizer) Words(text string) ([]string, error) {
	var out []string
	err := p.Each(text, func(w string) error {
		out = append(out, w)
		return nil
	})
	return out, err
}

// Scan reads r line by line and calls fn for every word. Line terminators
// never end up inside a word.
func (p *Pretokenizer) Scan(r io.Reader, fn func(word string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if err := p.Each(sc.Text(), fn); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read corpus line %d: %w", line+1, err)
	}
	return nil
}
