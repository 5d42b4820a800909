package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/patchkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

const testFingerprints = `fingerprints:
  - name: premium-check
    returns: Z
    strings: [premium]
    opcodes: [const-string, invoke-virtual, move-result, return]
    fuzzy: 1
  - name: missing
    strings: [nowhere]
`

// captureOutput redirects stdout and stderr for the duration of the test.
func captureOutput(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	origOut, origErr, origIn := stdout, stderr, stdin
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr, stdin = origOut, origErr, origIn })
	return out, errOut
}

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{FormatText, false},
		{FormatJSON, false},
		{FormatYAML, false},
		{"xml", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOutputStructured(t *testing.T) {
	out, _ := captureOutput(t)
	data := map[string]int{"count": 2}

	require.NoError(t, OutputStructured(data, FormatJSON))
	assert.JSONEq(t, `{"count": 2}`, out.String())

	out.Reset()
	require.NoError(t, OutputStructured(data, FormatYAML))
	assert.Equal(t, "count: 2\n\n", out.String())

	assert.Error(t, OutputStructured(data, FormatText))
}

func TestFormatInputPath(t *testing.T) {
	assert.Equal(t, "<stdin>", FormatInputPath(StdinFilePath))
	assert.Equal(t, "app.yaml", FormatInputPath("app.yaml"))
}

func TestRenderSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	RenderSummaryTable(&buf, []string{"A", "BB"}, [][]string{{"xxx", "y"}, {"z", "wwww"}}, false)
	assert.Equal(t, "A    BB\nxxx  y\nz    wwww\n", buf.String())

	buf.Reset()
	RenderSummaryTable(&buf, []string{"A", "BB"}, [][]string{{"xxx", "y"}}, true)
	assert.Equal(t, "xxx\ty\n", buf.String())

	buf.Reset()
	RenderSummaryTable(&buf, []string{"A"}, nil, false)
	assert.Empty(t, buf.String())
}

func TestSetupListFlags(t *testing.T) {
	fs, flags := SetupListFlags()
	assert.Equal(t, FormatText, flags.Format)
	assert.False(t, flags.Detail)

	require.NoError(t, fs.Parse([]string{"--class", "Lapp/*", "--returns", "Z", "--detail", "-q", "app.yaml"}))
	assert.Equal(t, "Lapp/*", flags.Class)
	assert.Equal(t, "Z", flags.Returns)
	assert.True(t, flags.Detail)
	assert.True(t, flags.Quiet)
	assert.Equal(t, "app.yaml", fs.Arg(0))
}

func TestHandleList_Text(t *testing.T) {
	out, errOut := captureOutput(t)
	path := testutil.WriteTempFile(t, "app.yaml", testutil.SampleListing)

	require.NoError(t, HandleList([]string{path}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "CLASS"))
	assert.Contains(t, lines[1], "Lapp/Gate;->isPremium()Z")
	assert.Contains(t, lines[1], "public static")
	assert.Contains(t, errOut.String(), "Classes: 2")
	assert.Contains(t, errOut.String(), "3 methods")
}

func TestHandleList_Filters(t *testing.T) {
	path := testutil.WriteTempFile(t, "app.yaml", testutil.SampleListing)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"class glob", []string{"--class", "Lapp/T*"}, []string{"color"}},
		{"name", []string{"--name", "reset"}, []string{"reset"}},
		{"returns", []string{"--returns", "Z"}, []string{"isPremium"}},
		{"none", []string{"--name", "absent"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := captureOutput(t)
			args := append(append([]string{"--format", "json"}, tt.args...), path)
			require.NoError(t, HandleList(args))

			var entries []MethodEntry
			require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
			var got []string
			for _, e := range entries {
				got = append(got, e.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleList_DetailYAMLFromStdin(t *testing.T) {
	out, _ := captureOutput(t)
	stdin = strings.NewReader(testutil.SampleListing)

	require.NoError(t, HandleList([]string{"--format", "yaml", "--detail", "--name", "color", "-"}))

	var entries []MethodEntry
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, []string{`const-string v0, "blue"`, `const-string v1, "premium"`, "return-object v0"}, entries[0].Instructions)
}

func TestHandleList_Errors(t *testing.T) {
	captureOutput(t)
	path := testutil.WriteTempFile(t, "app.yaml", testutil.SampleListing)
	bad := testutil.WriteTempFile(t, "bad.yaml", "classes: {broken")

	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"bad format", []string{"--format", "xml", path}},
		{"bad glob", []string{"--name", "[x", path}},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.yaml")}},
		{"invalid listing", []string{bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, HandleList(tt.args))
		})
	}
	assert.NoError(t, HandleList([]string{"--help"}))
}

func TestHandleMatch_Text(t *testing.T) {
	out, errOut := captureOutput(t)
	listing := testutil.WriteTempFile(t, "app.yaml", testutil.SampleListing)
	fps := testutil.WriteTempFile(t, "fps.yaml", testFingerprints)

	require.NoError(t, HandleMatch([]string{listing, fps}))
	assert.Contains(t, out.String(), "premium-check  true   Lapp/Gate;->isPremium()Z")
	assert.Contains(t, out.String(), "missing        false  -")
	assert.Contains(t, errOut.String(), "Warning: premium-check: pattern[1] expected invoke-virtual, found invoke-static at instruction 1")
}

func TestHandleMatch_Structured(t *testing.T) {
	out, _ := captureOutput(t)
	listing := testutil.WriteTempFile(t, "app.yaml", testutil.SampleListing)
	fps := testutil.WriteTempFile(t, "fps.yaml", testFingerprints)

	require.NoError(t, HandleMatch([]string{"--format", "json", "--no-index", listing, fps}))

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, true, entries[0]["found"])
	assert.Equal(t, "Lapp/Gate;->isPremium()Z", entries[0]["method"])
	pattern, ok := entries[0]["pattern"].(map[string]any)
	require.True(t, ok)
	warnings, ok := pattern["warnings"].([]any)
	require.True(t, ok)
	require.Len(t, warnings, 1)
	warning, ok := warnings[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "invoke-virtual", warning["expected"])
	assert.Equal(t, false, entries[1]["found"])
}

func TestHandleMatch_FoundOnlyAndStrict(t *testing.T) {
	out, _ := captureOutput(t)
	listing := testutil.WriteTempFile(t, "app.yaml", testutil.SampleListing)
	fps := testutil.WriteTempFile(t, "fps.yaml", testFingerprints)

	require.NoError(t, HandleMatch([]string{"--format", "json", "--found-only", listing, fps}))
	var entries []MatchEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	assert.Len(t, entries, 1)

	err := HandleMatch([]string{"-q", "--strict", listing, fps})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 fingerprints did not match: [missing]")
}

func TestHandleMatch_Errors(t *testing.T) {
	captureOutput(t)
	listing := testutil.WriteTempFile(t, "app.yaml", testutil.SampleListing)
	badFps := testutil.WriteTempFile(t, "bad.yaml", "fingerprints:\n  - opcodes: [bogus]\n")

	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"one arg", []string{listing}},
		{"fingerprints from stdin", []string{listing, "-"}},
		{"bad declarations", []string{listing, badFps}},
		{"bad format", []string{"--format", "toml", listing, badFps}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, HandleMatch(tt.args))
		})
	}
	assert.NoError(t, HandleMatch([]string{"-h"}))
}

func TestHandleMCP_Help(t *testing.T) {
	assert.NoError(t, HandleMCP([]string{"--help"}))
	assert.Error(t, HandleMCP([]string{"--bogus"}))
}
