package bpe

import (
	"bufio"
	"io"
	"iter"
	"strconv"
	"unicode/utf8"
)

// DefaultPlaceholder stands in for tokens with no decodable surface form.
const DefaultPlaceholder = "[NULL]"

// OutputOptions controls the vocabulary listing format.
type OutputOptions struct {
	Delimiter   string `yaml:"delimiter"`
	Placeholder string `yaml:"placeholder"`
}

// DefaultOutputOptions returns tab-separated output with the [NULL]
// placeholder.
func DefaultOutputOptions() OutputOptions {
	return OutputOptions{Delimiter: "\t", Placeholder: DefaultPlaceholder}
}

// WriteVocab writes one "<token><delimiter><frequency>" line per item of
// snapshot, usually Vocabulary.Snapshot. Empty or malformed tokens are
// written as the placeholder.
func WriteVocab(w io.Writer, snapshot iter.Seq2[string, uint64], opts OutputOptions) error {
	if opts.Delimiter == "" {
		opts.Delimiter = "\t"
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	bw := bufio.NewWriter(w)
	var num []byte
	for tok, freq := range snapshot {
		if tok == "" || !utf8.ValidString(tok) {
			tok = opts.Placeholder
		}
		_, _ = bw.WriteString(tok)
		_, _ = bw.WriteString(opts.Delimiter)
		num = strconv.AppendUint(num[:0], freq, 10)
		num = append(num, '\n')
		if _, err := bw.Write(num); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMerges writes the merge log, one quoted "left" "right" count line per
// record in training order, after a version header.
//
//	# bpe-go merges v1
//	"a" "a" 3
//	"aa" "b" 2
func WriteMerges(w io.Writer, records []MergeRecord) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("# bpe-go merges v1\n")
	var line []byte
	for _, r := range records {
		line = strconv.AppendQuote(line[:0], r.Left)
		line = append(line, ' ')
		line = strconv.AppendQuote(line, r.Right)
		line = append(line, ' ')
		line = strconv.AppendUint(line, r.Count, 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
