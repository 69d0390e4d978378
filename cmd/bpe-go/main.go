package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	bpe "github.com/euforicio/bpe-go"
	"github.com/euforicio/bpe-go/tokenizer"
)

func die(err error) { fmt.Fprintln(os.Stderr, err); os.Exit(1) }

const usage = "bpe-go [train|vocab|pairs|encode] [flags] <source>"

// common holds the flags every subcommand understands.
type common struct {
	fs       *flag.FlagSet
	config   *string
	merges   *int
	maxVocab *int
	minCount *uint64
	workers  *int
	mode     *string
	quiet    *bool
}

func newCommon(name string) *common {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: bpe-go %s [flags] <source>\n", name)
		fs.PrintDefaults()
	}
	return &common{
		fs:       fs,
		config:   fs.String("config", "", "YAML config file"),
		merges:   fs.Int("merges", bpe.DefaultMerges, "merge budget"),
		maxVocab: fs.Int("max-vocab", bpe.DefaultMaxVocabSize, "maximum distinct tokens (0 = unbounded)"),
		minCount: fs.Uint64("min-count", bpe.DefaultMinPairCount, "minimum pair count to merge"),
		workers:  fs.Int("workers", 0, "counting goroutines (0 = GOMAXPROCS)"),
		mode:     fs.String("split", "", "pre-tokenizer mode (delimiters|words|pattern)"),
		quiet:    fs.Bool("q", false, "no progress logging"),
	}
}

// load resolves the config: file, then environment, then flags given on the
// command line.
func (c *common) load() (bpe.Config, string) {
	_ = c.fs.Parse(os.Args[2:])
	if c.fs.NArg() != 1 {
		c.fs.Usage()
		os.Exit(2)
	}
	cfg := bpe.DefaultConfig()
	if *c.config != "" {
		var err error
		if cfg, err = bpe.LoadConfig(*c.config); err != nil {
			die(err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		die(err)
	}
	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "merges":
			cfg.Merges = *c.merges
		case "max-vocab":
			cfg.MaxVocabSize = *c.maxVocab
		case "min-count":
			cfg.MinPairCount = *c.minCount
		case "workers":
			cfg.Workers = *c.workers
		case "split":
			cfg.Tokenizer.Mode = *c.mode
		}
	})
	if err := cfg.Validate(); err != nil {
		die(err)
	}
	return cfg, c.fs.Arg(0)
}

func (c *common) logger() *log.Logger {
	if *c.quiet {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "bpe-go: ", log.LstdFlags)
}

// buildVocabulary reads src through the configured pre-tokenizer.
func buildVocabulary(ctx context.Context, cfg bpe.Config, src string, logger *log.Logger) (*bpe.Vocabulary, error) {
	pre, err := tokenizer.New(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	rc, err := tokenizer.OpenCorpus(ctx, src)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	v := bpe.NewVocabulary(cfg.MaxVocabSize)
	if err := pre.Scan(rc, v.Add); err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	logger.Printf("read %s: %d distinct tokens", src, v.Len())
	if n := v.Dropped(); n > 0 {
		logger.Printf("vocabulary full at %d tokens, dropped %d occurrences", v.Len(), n)
	}
	return v, nil
}

func split(v *bpe.Vocabulary, logger *log.Logger) {
	n, err := v.ToSubwords()
	if err != nil {
		die(err)
	}
	if n > 0 {
		logger.Printf("skipped %d tokens that are not valid UTF-8", n)
	}
}

// create opens path for writing; "" and "-" mean stdout.
func create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeFile(path string, write func(io.Writer) error) error {
	w, err := create(path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Close()
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "train":
		c := newCommon("train")
		out := c.fs.String("o", "", "final vocabulary output (default stdout)")
		initOut := c.fs.String("init", "", "also write the vocabulary before merging")
		mergesOut := c.fs.String("merges-out", "", "merge list output")
		cfg, src := c.load()
		logger := c.logger()

		v, err := buildVocabulary(ctx, cfg, src, logger)
		if err != nil {
			die(err)
		}
		split(v, logger)
		if *initOut != "" {
			if err := writeFile(*initOut, func(w io.Writer) error {
				return bpe.WriteVocab(w, v.Snapshot(), cfg.Output)
			}); err != nil {
				die(err)
			}
		}
		tr, err := bpe.NewTrainer(cfg, logger)
		if err != nil {
			die(err)
		}
		res, trainErr := tr.Train(ctx, v)
		if res == nil {
			die(trainErr)
		}
		// A canceled run still leaves a consistent vocabulary worth keeping.
		if err := writeFile(*out, func(w io.Writer) error {
			return bpe.WriteVocab(w, v.Snapshot(), cfg.Output)
		}); err != nil {
			die(err)
		}
		if *mergesOut != "" {
			if err := writeFile(*mergesOut, func(w io.Writer) error {
				return bpe.WriteMerges(w, res.Merges)
			}); err != nil {
				die(err)
			}
		}
		st := tr.Stats()
		logger.Printf("%d merges in %d passes, %d entry rewrites", st.Merges, st.Passes, st.Changed)
		if trainErr != nil {
			if errors.Is(trainErr, context.Canceled) {
				os.Exit(130)
			}
			die(trainErr)
		}
	case "vocab":
		c := newCommon("vocab")
		out := c.fs.String("o", "", "vocabulary output (default stdout)")
		splitFirst := c.fs.Bool("split-symbols", true, "show tokens split into codepoints")
		cfg, src := c.load()
		logger := c.logger()
		v, err := buildVocabulary(ctx, cfg, src, logger)
		if err != nil {
			die(err)
		}
		if *splitFirst {
			split(v, logger)
		}
		if err := writeFile(*out, func(w io.Writer) error {
			return bpe.WriteVocab(w, v.Snapshot(), cfg.Output)
		}); err != nil {
			die(err)
		}
	case "pairs":
		c := newCommon("pairs")
		n := c.fs.Int("n", 20, "number of pairs to print (-1 = all)")
		cfg, src := c.load()
		logger := c.logger()
		v, err := buildVocabulary(ctx, cfg, src, logger)
		if err != nil {
			die(err)
		}
		split(v, logger)
		tally, err := bpe.PairCounter{Workers: cfg.Workers}.Count(v)
		if err != nil {
			die(err)
		}
		logger.Printf("%d distinct pairs", tally.Len())
		_ = json.NewEncoder(os.Stdout).Encode(tally.Top(*n))
	case "encode":
		c := newCommon("encode")
		mergesIn := c.fs.String("merges-in", "", "merge list written by train -merges-out")
		cfg, src := c.load()
		logger := c.logger()
		if *mergesIn == "" {
			die(errors.New("encode needs -merges-in"))
		}
		f, err := os.Open(*mergesIn)
		if err != nil {
			die(err)
		}
		records, err := bpe.LoadMerges(f)
		_ = f.Close()
		if err != nil {
			die(err)
		}
		enc := bpe.NewEncoder(records)
		logger.Printf("loaded %d merges from %s", enc.Len(), *mergesIn)
		pre, err := tokenizer.New(cfg.Tokenizer)
		if err != nil {
			die(err)
		}
		rc, err := tokenizer.OpenCorpus(ctx, src)
		if err != nil {
			die(err)
		}
		defer func() { _ = rc.Close() }()
		bw := bufio.NewWriter(os.Stdout)
		var pieces []string
		err = pre.Scan(rc, func(w string) error {
			pieces = enc.AppendEncode(pieces[:0], w)
			_, err := bw.WriteString(strings.Join(pieces, " ") + "\n")
			return err
		})
		if err != nil {
			die(err)
		}
		if err := bw.Flush(); err != nil {
			die(err)
		}
	default:
		fmt.Fprintln(os.Stderr, "unimplemented")
		os.Exit(2)
	}
}
