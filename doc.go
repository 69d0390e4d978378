// Package bpe trains Byte Pair Encoding subword vocabularies.
//
// A Vocabulary is filled one token occurrence at a time, split into
// single-codepoint symbols, and then handed to a Trainer, which repeatedly
// counts adjacent symbol pairs (in parallel), picks the most frequent pair
// under a fixed tie-break order, and merges it everywhere until the merge
// budget runs out or no pair qualifies. Splitting raw text into tokens lives
// in the tokenizer subpackage.
package bpe
