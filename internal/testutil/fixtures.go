// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/patchkit/bytecode"
	"go.yaml.in/yaml/v4"
)

// SampleListing is a two-class listing: Lapp/Gate; with a premium check and
// a reset method, and Lapp/Theme; with a color getter that also references
// the "premium" string.
const SampleListing = `classes:
  - type: Lapp/Gate;
    access: [public]
    methods:
      - name: isPremium
        returns: Z
        access: [public, static]
        instructions:
          - const-string v0, "premium"
          - invoke-static v0, Lapp/Store;->has(Ljava/lang/String;)Z
          - move-result v1
          - return v1
      - name: reset
        returns: V
        access: [public]
        instructions:
          - return-void
  - type: Lapp/Theme;
    methods:
      - name: color
        returns: Ljava/lang/String;
        access: [public]
        instructions:
          - const-string v0, "blue"
          - const-string v1, "premium"
          - return-object v0
`

// SampleDeclarations declares fingerprints against SampleListing: two that
// resolve (premium-check, theme-color) and one that never does (missing).
const SampleDeclarations = `fingerprints:
  - name: premium-check
    returns: Z
    access: [public, static]
    strings: [premium]
    opcodes: [const-string, invoke-static, move-result, return]
  - name: theme-color
    returns: Ljava/lang/String;
    strings: [blue]
  - name: missing
    strings: [not-in-listing]
`

// NewSampleProgram parses SampleListing, failing the test on error.
func NewSampleProgram(t *testing.T) *bytecode.Program {
	t.Helper()
	p, err := bytecode.ParseListing([]byte(SampleListing))
	if err != nil {
		t.Fatalf("failed to parse sample listing: %v", err)
	}
	return p
}

// WriteTempFile writes content to name inside a per-test temporary directory.
// Returns the path to the file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// WriteTempYAML marshals a document to YAML and writes it to a temporary file.
// Returns the path to the temporary file.
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal YAML: %v", err)
	}
	return WriteTempFile(t, "doc.yaml", string(data))
}

// WriteTempJSON marshals a document to JSON and writes it to a temporary file.
// Returns the path to the temporary file.
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return WriteTempFile(t, "doc.json", string(data))
}
