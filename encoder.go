package bpe

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

type mergeKey struct{ left, right string }

// Encoder segments new words with a learned merge list. A pair's rank is its
// position in the list; lower ranks merge first. An Encoder is safe for
// concurrent use.
type Encoder struct {
	ranks     map[mergeKey]int
	partsPool sync.Pool
}

// NewEncoder ranks records in order. A pair listed twice keeps its first rank.
func NewEncoder(records []MergeRecord) *Encoder {
	ranks := make(map[mergeKey]int, len(records))
	for i, r := range records {
		k := mergeKey{r.Left, r.Right}
		if _, ok := ranks[k]; !ok {
			ranks[k] = i
		}
	}
	return &Encoder{
		ranks:     ranks,
		partsPool: sync.Pool{New: func() any { b := make([]part, 0, 64); return &b }},
	}
}

// Len returns the number of distinct ranked pairs.
func (e *Encoder) Len() int { return len(e.ranks) }

// Encode splits word into codepoints and applies merges lowest rank first,
// leftmost occurrence first, until no ranked pair is left. For any word of
// the training vocabulary this reproduces the segmentation training left it
// in. A word that is not valid UTF-8 comes back whole.
func (e *Encoder) Encode(word string) []string {
	return e.AppendEncode(nil, word)
}

// AppendEncode appends the pieces of word to dst.
func (e *Encoder) AppendEncode(dst []string, word string) []string {
	if word == "" {
		return dst
	}
	if !utf8.ValidString(word) {
		return append(dst, word)
	}
	parts, release := e.acquireParts(len(word) + 1)
	defer release()
	parts = e.mergeParts(word, parts)
	for i := 0; i+1 < len(parts); i++ {
		dst = append(dst, word[parts[i].start:parts[i+1].start])
	}
	return dst
}

const noRank = math.MaxInt

type part struct {
	start int
	rank  int // rank of the pair starting at this part
}

func (e *Encoder) rankAt(word string, parts []part, i int) int {
	if i+2 >= len(parts) {
		return noRank
	}
	k := mergeKey{word[parts[i].start:parts[i+1].start], word[parts[i+1].start:parts[i+2].start]}
	if r, ok := e.ranks[k]; ok {
		return r
	}
	return noRank
}

func (e *Encoder) mergeParts(word string, parts []part) []part {
	for i := range word {
		parts = append(parts, part{start: i, rank: noRank})
	}
	parts = append(parts, part{start: len(word), rank: noRank})
	for i := range parts {
		parts[i].rank = e.rankAt(word, parts, i)
	}
	for {
		minIdx, minRank := -1, noRank
		for j := 0; j+1 < len(parts); j++ {
			if parts[j].rank < minRank {
				minIdx, minRank = j, parts[j].rank
			}
		}
		if minIdx < 0 {
			return parts
		}
		parts = append(parts[:minIdx+1], parts[minIdx+2:]...)
		parts[minIdx].rank = e.rankAt(word, parts, minIdx)
		if minIdx > 0 {
			parts[minIdx-1].rank = e.rankAt(word, parts, minIdx-1)
		}
	}
}

func (e *Encoder) acquireParts(capHint int) ([]part, func()) {
	p := e.partsPool.Get().(*[]part)
	if cap(*p) < capHint {
		buf := make([]part, 0, capHint)
		p = &buf
	}
	release := func() {
		if cap(*p) > 1<<12 {
			return
		}
		*p = (*p)[:0]
		e.partsPool.Put(p)
	}
	return (*p)[:0], release
}

// LoadMerges reads a merge list in the WriteMerges format. Comment and blank
// lines are skipped.
func LoadMerges(r io.Reader) ([]MergeRecord, error) {
	var out []MergeRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseMergeLine(line)
		if err != nil {
			return nil, fmt.Errorf("merges line %d: %w", lineNo, err)
		}
		rec.Iteration = len(out)
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseMergeLine(line string) (MergeRecord, error) {
	var fields [2]string
	rest := line
	for i := range fields {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return MergeRecord{}, fmt.Errorf("symbol %d: %w", i+1, err)
		}
		if fields[i], err = strconv.Unquote(q); err != nil {
			return MergeRecord{}, err
		}
		rest = strings.TrimLeft(rest[len(q):], " ")
	}
	count, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return MergeRecord{}, fmt.Errorf("count: %w", err)
	}
	return MergeRecord{
		Left:   fields[0],
		Right:  fields[1],
		Merged: fields[0] + fields[1],
		Count:  count,
	}, nil
}
