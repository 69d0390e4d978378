package benchmarks

import (
	"fmt"
	"strings"
)

// LargeCorpus builds a synthetic corpus with a long-tailed word distribution,
// big enough to take the parallel counting path.
func LargeCorpus() string {
	base := strings.Fields("Lorem ipsum dolor sit amet, consectetur adipiscing elit. Vestibulum vulputate, " +
		"naïve café résumé Straße déjà-vu; lower lowest newer newest wider widest!")
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		for j, w := range base {
			// Rotating suffixes keep the vocabulary from collapsing to a few words.
			if (i+j)%7 == 0 {
				fmt.Fprintf(&sb, "%s%d ", w, i%97)
				continue
			}
			sb.WriteString(w)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
