package tokenizer

import (
	"errors"
	"testing"
)

func splitAll(t *testing.T, s Splitter, text string) []string {
	t.Helper()
	var out []string
	if err := s.Split(text, func(tok string) error {
		out = append(out, tok)
		return nil
	}); err != nil {
		t.Fatalf("split %q: %v", text, err)
	}
	return out
}

func TestPatternSplitterGPT4(t *testing.T) {
	s, err := NewPatternSplitter(GPT4Pattern)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got := splitAll(t, s, "Hello world's 123")
	checkSegments(t, "gpt4", got, []string{"Hello", " world", "'s", "123"})
}

func TestPatternSplitterDropsWhitespace(t *testing.T) {
	s, err := NewPatternSplitter(`\p{L}+|\p{N}+|\s+`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	checkSegments(t, "custom", splitAll(t, s, "ab  12\ncd"), []string{"ab", "12", "cd"})
}

func TestPatternSplitterInvalidPattern(t *testing.T) {
	if _, err := NewPatternSplitter("(unclosed"); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestSplitterStopsOnEmitError(t *testing.T) {
	stop := errors.New("stop")
	splitters := map[string]Splitter{
		"delimiters": NewDelimiterSplitter(DefaultDelimiters),
		"words":      NewWordSplitter(),
	}
	if p, err := NewPatternSplitter(`\S+`); err == nil {
		splitters["pattern"] = p
	} else {
		t.Fatalf("compile: %v", err)
	}
	for name, s := range splitters {
		calls := 0
		err := s.Split("a b c", func(string) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Fatalf("%s: err=%v calls=%d", name, err, calls)
		}
	}
}

func TestDelimiterSplitterDropsDelimiters(t *testing.T) {
	got := splitAll(t, NewDelimiterSplitter(DefaultDelimiters), "(Hi), there!\n")
	checkSegments(t, "delimiters", got, []string{"Hi", "there"})
}

func TestWordSplitterDropsWhitespace(t *testing.T) {
	got := splitAll(t, NewWordSplitter(), "  we'll see, 42 ")
	checkSegments(t, "words", got, []string{"we'll", "see", ",", "42"})
}
