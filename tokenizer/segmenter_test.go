package tokenizer

import "testing"

func TestDelimiterSegmenter(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect []string
	}{
		{
			name:   "words and punctuation",
			text:   "hello, world",
			expect: []string{"hello", ", ", "world"},
		},
		{
			name:   "leading and trailing delimiters",
			text:   "  (abc)\n",
			expect: []string{"  (", "abc", ")\n"},
		},
		{
			name:   "no delimiters",
			text:   "naïve",
			expect: []string{"naïve"},
		},
		{
			name:   "malformed byte stays in word",
			text:   "a\xff,b",
			expect: []string{"a\xff", ",", "b"},
		},
		{
			name:   "tabs and carriage returns",
			text:   "a\r\n\tb",
			expect: []string{"a", "\r\n\t", "b"},
		},
	}

	s := NewDelimiterSegmenter(DefaultDelimiters)
	for _, tc := range tests {
		checkSegments(t, tc.name, collectSegments(s, tc.text), tc.expect)
	}
}

func TestDelimiterSegmenterNonASCIIDelimiter(t *testing.T) {
	s := NewDelimiterSegmenter("·")
	checkSegments(t, "middle dot", collectSegments(s, "a·b··c"), []string{"a", "·", "b", "··", "c"})
}

func TestWordSegmenter(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect []string
	}{
		{
			name:   "letters and spaces",
			text:   "hello   world",
			expect: []string{"hello", "   ", "world"},
		},
		{
			name:   "numbers are one run",
			text:   "1234abc",
			expect: []string{"1234", "abc"},
		},
		{
			name:   "punctuation run",
			text:   "foo!!!/bar",
			expect: []string{"foo", "!!!/", "bar"},
		},
		{
			name:   "contraction",
			text:   "don't stop",
			expect: []string{"don't", " ", "stop"},
		},
		{
			name:   "quote before a word is not a contraction",
			text:   "it'sa",
			expect: []string{"it", "'", "sa"},
		},
		{
			name:   "unicode letters",
			text:   "héllo wörld",
			expect: []string{"héllo", " ", "wörld"},
		},
		{
			name:   "malformed byte",
			text:   "\xffab",
			expect: []string{"\xff", "ab"},
		},
	}

	s := NewWordSegmenter()
	for _, tc := range tests {
		checkSegments(t, tc.name, collectSegments(s, tc.text), tc.expect)
	}
}

func TestSegmentersCoverInput(t *testing.T) {
	inputs := []string{"", "a", "  ", "a,b.c", "x\xc3", "日本語 テキスト!", "a''b"}
	segs := []Segmenter{NewDelimiterSegmenter(DefaultDelimiters), NewWordSegmenter()}
	for _, s := range segs {
		for _, in := range inputs {
			joined := ""
			for _, part := range collectSegments(s, in) {
				joined += part
			}
			if joined != in {
				t.Fatalf("segments of %q rejoin to %q", in, joined)
			}
		}
	}
}

func checkSegments(t *testing.T, name string, segments, expect []string) {
	t.Helper()
	if len(segments) != len(expect) {
		t.Fatalf("%s: segment count %d want %d (%q)", name, len(segments), len(expect), segments)
	}
	for i := range segments {
		if segments[i] != expect[i] {
			t.Fatalf("%s: segment %d = %q want %q", name, i, segments[i], expect[i])
		}
	}
}

func collectSegments(seg Segmenter, text string) []string {
	var out []string
	for i := 0; i < len(text); {
		next := seg.Next(text, i)
		if next <= i {
			panic("segmenter did not advance")
		}
		out = append(out, text[i:next])
		i = next
	}
	return out
}
