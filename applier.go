package bpe

// MergeSymbols appends src to dst with every occurrence of pair replaced by
// merged. The scan is greedy and left to right, and resumes after each merged
// pair, so occurrences never overlap: merging (a, a) in [a a a] yields
// [aa a]. dst may be src[:0]; the write position never passes the read
// position.
func MergeSymbols(dst, src []Symbol, pair PairKey, merged Symbol) []Symbol {
	i := 0
	for i < len(src) {
		if i+1 < len(src) && src[i] == pair.Left && src[i+1] == pair.Right {
			dst = append(dst, merged)
			i += 2
			continue
		}
		dst = append(dst, src[i])
		i++
	}
	return dst
}

// containsPair reports whether pair occurs in seq.
func containsPair(seq []Symbol, pair PairKey) bool {
	for i := 0; i+1 < len(seq); i++ {
		if seq[i] == pair.Left && seq[i+1] == pair.Right {
			return true
		}
	}
	return false
}
