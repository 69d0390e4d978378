package tokenizer

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	_ "modernc.org/sqlite"
)

const (
	envCacheDir    = "BPE_CACHE_DIR"
	envOffline     = "BPE_OFFLINE"
	envHTTPTimeout = "BPE_HTTP_TIMEOUT" // seconds

	defaultCorpusQuery = "SELECT text FROM corpus"
)

// OpenCorpus opens a corpus source for reading:
//
//	-                              standard input
//	http://host/x.txt#sha256=<hex> downloaded once into the cache directory
//	sqlite:///path/db?query=<sql>  first column of every row, one row per line
//	anything else                  a local file path
//
// UTF-16 input with a byte order mark is decoded to UTF-8 and a UTF-8 BOM is
// dropped. Everything else is passed through byte for byte.
func OpenCorpus(ctx context.Context, src string) (io.ReadCloser, error) {
	rc, err := openRaw(ctx, src)
	if err != nil {
		return nil, err
	}
	return readCloser{
		Reader: transform.NewReader(rc, unicode.BOMOverride(transform.Nop)),
		Closer: rc,
	}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

func openRaw(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case src == "-":
		return io.NopCloser(os.Stdin), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		p, err := fetchCached(ctx, src)
		if err != nil {
			return nil, err
		}
		return os.Open(p)
	case strings.HasPrefix(src, "sqlite://"):
		return openSQLite(ctx, src)
	}
	return os.Open(src)
}

// resolveCacheDir respects BPE_CACHE_DIR or falls back to a predictable temp directory.
func resolveCacheDir() (string, error) {
	d := os.Getenv(envCacheDir)
	if d == "" {
		d = filepath.Join(os.TempDir(), "bpe-go-cache")
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

func httpTimeout() time.Duration {
	timeout := 30 * time.Second
	if v := os.Getenv(envHTTPTimeout); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			timeout = time.Duration(s) * time.Second
		}
	}
	return timeout
}

// cacheName is stable per URL (fragment excluded) and keeps the remote base
// name readable.
func cacheName(u *url.URL) string {
	key := *u
	key.Fragment = ""
	sum := sha256.Sum256([]byte(key.String()))
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		base = "corpus"
	}
	return hex.EncodeToString(sum[:8]) + "-" + base
}

func expectedSum(u *url.URL) string {
	if v, ok := strings.CutPrefix(u.Fragment, "sha256="); ok {
		return strings.ToLower(v)
	}
	return ""
}

func fetchCached(ctx context.Context, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse corpus url: %w", err)
	}
	dir, err := resolveCacheDir()
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, cacheName(u))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if os.Getenv(envOffline) == "1" {
		return "", fmt.Errorf("corpus %s not cached and %s=1; download it into %s or unset offline", raw, envOffline, dir)
	}
	fetch := *u
	fetch.Fragment = ""
	tmp := dest + ".part"
	sum, err := downloadToFile(ctx, fetch.String(), tmp)
	if err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("download %s: %w", fetch.String(), err)
	}
	if want := expectedSum(u); want != "" && sum != want {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("hash mismatch for %s: got %s want %s", fetch.String(), sum, want)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func downloadToFile(ctx context.Context, url, dest string) (string, error) {
	client := &http.Client{Timeout: httpTimeout()}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	return copyAndSum(f, resp.Body)
}

// copyAndSum copies r into f, closes f and returns the hex sha256 of the
// bytes written. A failed close is an error: the file may be incomplete.
func copyAndSum(f io.WriteCloser, r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close download: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// openSQLite streams the first column of every row of the query, one row per
// line. NULL rows are skipped.
func openSQLite(ctx context.Context, src string) (io.ReadCloser, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse sqlite source: %w", err)
	}
	dbPath := u.Host + u.Path
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite source %q has no database path", src)
	}
	query := u.Query().Get("query")
	if query == "" {
		query = defaultCorpusQuery
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("query %s: %w", dbPath, err)
	}
	pr, pw := io.Pipe()
	go func() {
		defer func() { _ = db.Close() }()
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var text sql.NullString
			if err := rows.Scan(&text); err != nil {
				pw.CloseWithError(err)
				return
			}
			if !text.Valid {
				continue
			}
			if _, err := io.WriteString(pw, text.String+"\n"); err != nil {
				return
			}
		}
		pw.CloseWithError(rows.Err())
	}()
	return pr, nil
}
