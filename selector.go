package bpe

// DefaultMinPairCount is the smallest count a pair needs to be merged.
const DefaultMinPairCount = 1

// SelectBest returns the pair with the highest count in t. Ties go to the
// pair whose left symbol sorts first, then whose right symbol sorts first, so
// the choice never depends on map iteration order. It returns false when t is
// empty or the best count is below minCount.
func SelectBest(t *PairTally, minCount uint64) (Candidate, bool) {
	var best Candidate
	found := false
	for k, n := range t.counts {
		if found && n < best.Count {
			continue
		}
		c := t.candidate(k, n)
		if !found || c.before(best) {
			best = c
			found = true
		}
	}
	if !found || best.Count < minCount {
		return Candidate{}, false
	}
	return best, true
}
