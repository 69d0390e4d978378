package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// DefaultDelimiters are the characters that separate tokens by default.
const DefaultDelimiters = " .,!?;:()\n\r\t"

// Segmenter cuts text into consecutive segments.
// Next returns the end index (exclusive) of the segment starting at i.
type Segmenter interface{ Next(s string, i int) int }

// delimiterSegmenter alternates between runs of delimiter characters and runs
// of everything else.
type delimiterSegmenter struct {
	ascii [utf8.RuneSelf]bool
	other map[rune]struct{}
}

// NewDelimiterSegmenter returns a segmenter whose segments are maximal runs
// of either delimiter or non-delimiter runes. Malformed bytes never count as
// delimiters, so they stay inside the surrounding word.
func NewDelimiterSegmenter(delims string) Segmenter {
	d := &delimiterSegmenter{other: make(map[rune]struct{})}
	for _, r := range delims {
		if r < utf8.RuneSelf {
			d.ascii[r] = true
		} else {
			d.other[r] = struct{}{}
		}
	}
	return d
}

func (d *delimiterSegmenter) isDelim(s string, i int) (bool, int) {
	b := s[i]
	if b < utf8.RuneSelf {
		return d.ascii[b], 1
	}
	r, sz := utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError && sz == 1 {
		return false, 1
	}
	_, ok := d.other[r]
	return ok, sz
}

func (d *delimiterSegmenter) Next(s string, i int) int {
	if i >= len(s) {
		return i
	}
	first, sz := d.isDelim(s, i)
	j := i + sz
	for j < len(s) {
		delim, sz := d.isDelim(s, j)
		if delim != first {
			break
		}
		j += sz
	}
	return j
}

// wordSegmenter splits by Unicode class: letter runs (with an optional ASCII
// contraction such as 's or 'll), digit runs, whitespace runs, and runs of
// anything else.
type wordSegmenter struct{}

// NewWordSegmenter returns the Unicode class segmenter.
func NewWordSegmenter() Segmenter { return wordSegmenter{} }

func (wordSegmenter) Next(s string, i int) int {
	if i >= len(s) {
		return i
	}
	if end := ruleLettersWithContraction(s, i); end > i {
		return end
	}
	if end := ruleNumbers(s, i); end > i {
		return end
	}
	if end := ruleWhitespace(s, i); end > i {
		return end
	}
	if end := rulePunctRun(s, i); end > i {
		return end
	}
	// Fallback: single byte
	return i + 1
}

func decodeAt(s string, i int) (rune, int) {
	if b := s[i]; b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(s[i:])
}

func isL(r rune) bool     { return unicode.IsLetter(r) || unicode.IsMark(r) }
func isN(r rune) bool     { return unicode.IsNumber(r) }
func isSpace(r rune) bool { return unicode.IsSpace(r) }

func ruleLettersWithContraction(s string, i int) int {
	j := consumeLetterRun(s, i)
	if j == i {
		return i
	}
	if end := matchContraction(s, j); end > j {
		j = end
	}
	return j
}

func consumeLetterRun(s string, i int) int {
	j := i
	for j < len(s) {
		b := s[j]
		if b < utf8.RuneSelf {
			if !isASCIILetter(b) {
				break
			}
			j++
			continue
		}
		r, sz := utf8.DecodeRuneInString(s[j:])
		if !isL(r) {
			break
		}
		j += sz
	}
	return j
}

func matchContraction(s string, i int) int {
	if i >= len(s) || s[i] != '\'' {
		return i
	}
	for _, suf := range []string{"s", "t", "re", "ve", "m", "ll", "d"} {
		if hasCaseInsensitiveSuffixAt(s, i+1, suf) {
			end := i + 1 + len(suf)
			// 'stop is a quote followed by a word, not a contraction
			if end < len(s) && consumeLetterRun(s, end) > end {
				continue
			}
			return end
		}
	}
	return i
}

func hasCaseInsensitiveSuffixAt(s string, i int, suf string) bool {
	if i+len(suf) > len(s) {
		return false
	}
	for k := 0; k < len(suf); k++ {
		if s[i+k]|0x20 != suf[k]|0x20 {
			return false
		}
	}
	return true
}

func ruleNumbers(s string, i int) int {
	j := i
	for j < len(s) {
		r, sz := decodeAt(s, j)
		if !isN(r) {
			break
		}
		j += sz
	}
	return j
}

func ruleWhitespace(s string, i int) int {
	j := i
	for j < len(s) {
		b := s[j]
		if b < utf8.RuneSelf {
			if !isASCIISpace(b) {
				break
			}
			j++
			continue
		}
		r, sz := utf8.DecodeRuneInString(s[j:])
		if !isSpace(r) {
			break
		}
		j += sz
	}
	return j
}

func rulePunctRun(s string, i int) int {
	j := i
	for j < len(s) {
		r, sz := decodeAt(s, j)
		if isSpace(r) || isL(r) || isN(r) {
			break
		}
		j += sz
	}
	return j
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
