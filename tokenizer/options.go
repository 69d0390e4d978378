package tokenizer

import "fmt"

// Split modes.
const (
	ModeDelimiters = "delimiters"
	ModeWords      = "words"
	ModePattern    = "pattern"
)

// DefaultCacheSize is the number of normalized words kept by default.
const DefaultCacheSize = 8192

// Options configures a Pretokenizer.
type Options struct {
	// Mode is delimiters, words or pattern. Empty means delimiters, or
	// pattern when Pattern is set.
	Mode string `yaml:"mode"`
	// Delimiters separate tokens in delimiters mode.
	Delimiters string `yaml:"delimiters"`
	// Pattern is a regexp2 pattern whose matches are the tokens in pattern
	// mode. "gpt4" selects GPT4Pattern.
	Pattern string `yaml:"pattern"`
	// CaseFold folds case (full Unicode folding, e.g. "ß" becomes "ss").
	CaseFold bool `yaml:"case_fold"`
	// Normalization is nfc, nfd, nfkc, nfkd or none.
	Normalization string `yaml:"normalization"`
	// CacheSize bounds the normalized-word cache; 0 disables it.
	CacheSize int `yaml:"cache_size"`
}

// DefaultOptions splits on DefaultDelimiters, folds case and applies NFC.
func DefaultOptions() Options {
	return Options{
		Mode:          ModeDelimiters,
		Delimiters:    DefaultDelimiters,
		CaseFold:      true,
		Normalization: "nfc",
		CacheSize:     DefaultCacheSize,
	}
}

func (o Options) mode() string {
	if o.Mode == "" && o.Pattern != "" {
		return ModePattern
	}
	if o.Mode == "" {
		return ModeDelimiters
	}
	return o.Mode
}

// Validate checks option values without compiling anything.
func (o Options) Validate() error {
	switch m := o.mode(); m {
	case ModeDelimiters:
		if o.Delimiters == "" {
			return fmt.Errorf("delimiters mode needs at least one delimiter")
		}
	case ModeWords:
	case ModePattern:
		if o.Pattern == "" {
			return fmt.Errorf("pattern mode needs a pattern")
		}
	default:
		return fmt.Errorf("unknown split mode %q", m)
	}
	if o.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", o.CacheSize)
	}
	if _, _, err := parseForm(o.Normalization); err != nil {
		return err
	}
	return nil
}
