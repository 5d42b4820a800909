package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/erraggy/patchkit"
	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/fingerprint"
)

// listingInput represents the three ways a bytecode listing can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type listingInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a listing file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch a listing document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline listing document content (JSON or YAML)"`
}

// declarationsInput represents the two ways fingerprint declarations can be provided.
// Exactly one of File or Content must be set.
type declarationsInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a fingerprint declarations file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline fingerprint declarations (JSON or YAML)"`
}

// makeCacheKey creates a cache key for the given listing input.
func makeCacheKey(s listingInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return fmt.Sprintf("content:%s", hex.EncodeToString(h[:]))
	case s.URL != "":
		return fmt.Sprintf("url:%s", s.URL)
	default:
		return ""
	}
}

// resolve parses the listing from whichever input was provided, using the
// cache for file, URL, and content inputs.
func (s listingInput) resolve(ctx context.Context) (*bytecode.Program, error) {
	if n := countSet(s.File, s.URL, s.Content); n != 1 {
		return nil, fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", n)
	}

	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set PATCHKIT_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	// Determine cache key and TTL (skip when caching is disabled).
	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}

	if key != "" {
		if cached := listingCache.get(key); cached != nil {
			return cached, nil
		}
	}

	var (
		program *bytecode.Program
		err     error
	)
	switch {
	case s.File != "":
		program, err = bytecode.ParseListingFile(s.File)
	case s.URL != "":
		var data []byte
		data, err = fetchURL(ctx, s.URL)
		if err == nil {
			program, err = bytecode.ParseListing(data)
		}
	default:
		program, err = bytecode.ParseListing([]byte(s.Content))
	}
	if err != nil {
		return nil, err
	}

	if key != "" {
		listingCache.putWithTTL(key, program, ttl)
	}
	return program, nil
}

// fetchURL downloads a listing document. Private addresses are refused unless
// PATCHKIT_ALLOW_PRIVATE_IPS is set.
func fetchURL(ctx context.Context, url string) ([]byte, error) {
	client := http.DefaultClient
	if !cfg.AllowPrivateIPs {
		client = newSafeHTTPClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", patchkit.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, cfg.MaxInlineSize+1))
}

// resolve parses and builds the declared fingerprints. Every call returns new
// fingerprints, so resolution results are never shared between requests.
func (d declarationsInput) resolve() ([]*fingerprint.Fingerprint, error) {
	if n := countSet(d.File, d.Content); n != 1 {
		return nil, fmt.Errorf("exactly one of file or content must be provided (got %d)", n)
	}

	if d.File != "" {
		return fingerprint.ParseDeclarationsFile(d.File)
	}

	if int64(len(d.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes", len(d.Content), cfg.MaxInlineSize)
	}
	return fingerprint.ParseDeclarations([]byte(d.Content))
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
