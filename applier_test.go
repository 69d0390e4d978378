package bpe

import (
	"slices"
	"testing"
)

func TestMergeSymbols(t *testing.T) {
	const (
		a Symbol = 1
		b Symbol = 2
		m Symbol = 9
	)
	tests := []struct {
		name string
		pair PairKey
		in   []Symbol
		want []Symbol
	}{
		{"overlapping run merges left to right", PairKey{a, a}, []Symbol{a, a, a}, []Symbol{m, a}},
		{"even run", PairKey{a, a}, []Symbol{a, a, a, a}, []Symbol{m, m}},
		{"repeated pair", PairKey{a, b}, []Symbol{a, b, a, b}, []Symbol{m, m}},
		{"order matters", PairKey{a, b}, []Symbol{b, a}, []Symbol{b, a}},
		{"single symbol", PairKey{a, a}, []Symbol{a}, []Symbol{a}},
		{"empty", PairKey{a, b}, nil, nil},
		{"pair at end", PairKey{a, b}, []Symbol{b, b, a, b}, []Symbol{b, b, m}},
	}
	for _, tc := range tests {
		got := MergeSymbols(nil, tc.in, tc.pair, m)
		if !slices.Equal(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
		// In place over the same backing array.
		src := slices.Clone(tc.in)
		got = MergeSymbols(src[:0], src, tc.pair, m)
		if !slices.Equal(got, tc.want) {
			t.Fatalf("%s in place: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestContainsPair(t *testing.T) {
	seq := []Symbol{1, 2, 3}
	if !containsPair(seq, PairKey{2, 3}) {
		t.Fatalf("expected pair 2,3")
	}
	if containsPair(seq, PairKey{3, 2}) || containsPair(seq[:1], PairKey{1, 1}) {
		t.Fatalf("unexpected pair")
	}
}
