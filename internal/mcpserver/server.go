// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes patchkit's read-only capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/patchkit"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `patchkit MCP server. Lists methods of bytecode listings and resolves fingerprints against them. It never modifies a listing.

Configuration: All defaults are configurable via PATCHKIT_* environment variables set in your MCP client config.

Key settings:
- PATCHKIT_CACHE_FILE_TTL (default: 15m): cache TTL for local listing files
- PATCHKIT_CACHE_URL_TTL (default: 5m): cache TTL for URL-fetched listings
- PATCHKIT_CACHE_ENABLED (default: true): disable listing caching entirely
- PATCHKIT_LIST_LIMIT (default: 100): default result limit for list_methods
- PATCHKIT_MATCH_USE_INDEX (default: true): use the string index when matching fingerprints
- PATCHKIT_MAX_INLINE_SIZE (default: 10MiB): maximum inline content size

Caching: Parsed listings are cached per session. File entries use path+mtime as key (auto-invalidated on change). Fingerprints are rebuilt on every call.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		listingCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "patchkit", Version: patchkit.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_methods",
		Description: "List the methods of a bytecode listing. Filter by class or method name (glob patterns with * and ?), return type prefix, or a string constant the method references. Returns summaries (class, name, descriptor, access, instruction count) by default, or instruction listings with detail=true. Use group_by (class or returns) to get distribution counts instead of individual items. Default limit is configurable via PATCHKIT_LIST_LIMIT.",
	}, handleListMethods)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "match_fingerprints",
		Description: "Resolve fingerprint declarations against a bytecode listing. Each fingerprint constrains return type, access flags, parameters, referenced strings, and an opcode pattern with an optional fuzzy threshold. Returns, per fingerprint, the first matching method with pattern location, tolerated mismatches, and string locations. Fingerprints that do not match are reported with found=false.",
	}, handleMatchFingerprints)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ListLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) []string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		for _, key := range keyFn(item) {
			counts[key]++
		}
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateGroupBy checks that group_by is a valid value and is not combined with detail.
func validateGroupBy(groupBy string, detail bool, allowed []string) error {
	if groupBy == "" {
		return nil
	}
	if detail {
		return fmt.Errorf("cannot use both group_by and detail")
	}
	for _, a := range allowed {
		if strings.EqualFold(groupBy, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid group_by value %q; valid values: %s", groupBy, strings.Join(allowed, ", "))
}

// validateGlobPattern checks whether a glob pattern is syntactically valid.
// Call this once before a filter loop so matchGlob never encounters an
// invalid pattern at match time.
func validateGlobPattern(pattern string) error {
	if pattern == "" || !strings.ContainsAny(pattern, "*?[") {
		return nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}

// matchGlob reports whether name matches pattern. A pattern without glob
// metacharacters must equal name exactly. An empty pattern matches everything.
func matchGlob(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return pattern == name
	}
	ok, _ := filepath.Match(pattern, name)
	return ok
}
