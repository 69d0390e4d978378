package tokenizer

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer case-folds and Unicode-normalizes words. It is safe for
// concurrent use.
type Normalizer struct {
	mu    sync.Mutex
	t     transform.Transformer // nil when words pass through unchanged
	cache *lru.Cache
}

// NewNormalizer builds a normalizer. form is one of nfc, nfd, nfkc, nfkd or
// none (empty means none). cacheSize entries of recent results are kept; 0
// disables the cache.
func NewNormalizer(caseFold bool, form string, cacheSize int) (*Normalizer, error) {
	var chain []transform.Transformer
	if caseFold {
		chain = append(chain, cases.Fold())
	}
	f, ok, err := parseForm(form)
	if err != nil {
		return nil, err
	}
	if ok {
		chain = append(chain, f)
	}
	n := &Normalizer{}
	if len(chain) > 0 {
		n.t = transform.Chain(chain...)
	}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, err
		}
		n.cache = c
	}
	return n, nil
}

func parseForm(form string) (norm.Form, bool, error) {
	switch strings.ToLower(form) {
	case "", "none":
		return 0, false, nil
	case "nfc":
		return norm.NFC, true, nil
	case "nfd":
		return norm.NFD, true, nil
	case "nfkc":
		return norm.NFKC, true, nil
	case "nfkd":
		return norm.NFKD, true, nil
	}
	return 0, false, fmt.Errorf("unknown normalization form %q", form)
}

// Normalize returns the normalized form of word. Malformed UTF-8 is returned
// untouched so that later stages can flag it.
func (n *Normalizer) Normalize(word string) string {
	if n.t == nil || !utf8.ValidString(word) {
		return word
	}
	if n.cache != nil {
		if v, ok := n.cache.Get(word); ok {
			return v.(string)
		}
	}
	n.mu.Lock()
	out, _, err := transform.String(n.t, word)
	n.mu.Unlock()
	if err != nil {
		return word
	}
	if n.cache != nil {
		n.cache.Add(word, out)
	}
	return out
}
