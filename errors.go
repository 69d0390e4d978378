package bpe

import "errors"

var (
	// ErrAlreadySplit is returned when the vocabulary has already been split
	// into subword symbols.
	ErrAlreadySplit = errors.New("bpe: vocabulary already split into subwords")
	// ErrNotSplit is returned by Train for a vocabulary that was never split.
	ErrNotSplit = errors.New("bpe: vocabulary not split into subwords")
	// ErrEmptyToken rejects the empty token, which has no symbols.
	ErrEmptyToken = errors.New("bpe: empty token")
	// ErrCountOverflow reports a frequency or pair count that would not fit
	// in 64 bits.
	ErrCountOverflow = errors.New("bpe: count overflows uint64")
)
