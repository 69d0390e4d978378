package tokenizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// GPT4Pattern is the GPT-4 pre-tokenization pattern. regexp2 has no
// possessive quantifiers, so atomic groups stand in for them.
const GPT4Pattern = `'(?i:[sdmt]|ll|ve|re)|(?>[^\r\n\p{L}\p{N}]?)\p{L}+|\p{N}{1,3}| ?(?>[^\s\p{L}\p{N}]+)[\r\n]*|\s*[\r\n]|\s+(?!\S)|\s+`

// patternMatchTimeout bounds a single match so a pathological pattern cannot
// hang a training run.
const patternMatchTimeout = 5 * time.Second

// Splitter emits the tokens of a text.
type Splitter interface {
	Split(text string, emit func(token string) error) error
}

type patternSplitter struct {
	re *regexp2.Regexp
}

// NewPatternSplitter compiles pattern with regexp2 (Perl/.NET syntax, so
// lookarounds and atomic groups work). Every match that is not pure
// whitespace becomes a token. regexp2 works on runes, so malformed bytes come
// back as U+FFFD.
func NewPatternSplitter(pattern string) (Splitter, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	re.MatchTimeout = patternMatchTimeout
	return &patternSplitter{re: re}, nil
}

func (p *patternSplitter) Split(text string, emit func(string) error) error {
	m, err := p.re.FindStringMatch(text)
	for m != nil {
		if tok := m.String(); strings.TrimSpace(tok) != "" {
			if err := emit(tok); err != nil {
				return err
			}
		}
		m, err = p.re.FindNextMatch(m)
	}
	return err
}

// segmentSplitter turns a Segmenter into a Splitter, dropping segments that
// keep returns false for.
type segmentSplitter struct {
	seg  Segmenter
	keep func(segment string) bool
}

func (s segmentSplitter) Split(text string, emit func(string) error) error {
	for i := 0; i < len(text); {
		end := s.seg.Next(text, i)
		if end <= i { // safety
			end = i + 1
		}
		if seg := text[i:end]; s.keep(seg) {
			if err := emit(seg); err != nil {
				return err
			}
		}
		i = end
	}
	return nil
}

// NewDelimiterSplitter emits the runs of text between delimiters.
func NewDelimiterSplitter(delims string) Splitter {
	seg := NewDelimiterSegmenter(delims).(*delimiterSegmenter)
	return segmentSplitter{seg: seg, keep: func(s string) bool {
		delim, _ := seg.isDelim(s, 0)
		return !delim
	}}
}

// NewWordSplitter emits the non-whitespace segments of NewWordSegmenter.
func NewWordSplitter() Splitter {
	return segmentSplitter{seg: NewWordSegmenter(), keep: func(s string) bool {
		return ruleWhitespace(s, 0) == 0
	}}
}
