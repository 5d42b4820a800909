package patcher

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/internal/testutil"
	"github.com/erraggy/patchkit/patch"
	"github.com/erraggy/patchkit/patcherrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runListing = `
classes:
  - type: Lapp/Gate;
    methods:
      - name: isPremium
        returns: Z
        access: [public, static]
        instructions:
          - const/4 v0, 0x0
          - return v0
`

// unlockPatch replaces the body of Lapp/Gate;->isPremium with a constant true.
func unlockPatch(t *testing.T) *patch.Patch {
	t.Helper()
	return patch.MustNew(
		patch.WithName("unlock"),
		patch.CompatibleWith("com.example.app", "1.0.0", "1.1.0"),
		patch.Execute(patch.OnBytecode(func(_ patch.Context, model bytecode.Model) error {
			c, err := model.Mutable("Lapp/Gate;")
			if err != nil {
				return err
			}
			m, _, ok := c.FindMethod("isPremium")
			if !ok {
				return errors.New("isPremium not found")
			}
			return m.ReplaceInstruction(0, bytecode.Instruction{
				Opcode:     bytecode.OpConst4,
				Registers:  []int{0},
				Literal:    1,
				HasLiteral: true,
			})
		})),
	)
}

func TestRunWithOptions_SourceValidation(t *testing.T) {
	prog, err := bytecode.ParseListing([]byte(runListing))
	require.NoError(t, err)

	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{
			name:    "no bytecode source",
			opts:    nil,
			wantErr: "must specify a bytecode source",
		},
		{
			name:    "two bytecode sources",
			opts:    []Option{WithProgram(prog), WithListingFile("app.yaml")},
			wantErr: "must specify exactly one bytecode source",
		},
		{
			name:    "two option sources",
			opts:    []Option{WithProgram(prog), WithOptionValues(OptionValues{}), WithOptionsFile("opts.yaml")},
			wantErr: "at most one option values source",
		},
		{
			name:    "nil program",
			opts:    []Option{WithProgram(nil)},
			wantErr: "program cannot be nil",
		},
		{
			name:    "empty listing path",
			opts:    []Option{WithListingFile("")},
			wantErr: "listing path cannot be empty",
		},
		{
			name:    "empty target package",
			opts:    []Option{WithProgram(prog), WithTarget("", "1.0.0")},
			wantErr: "target package cannot be empty",
		},
		{
			name:    "nil logger",
			opts:    []Option{WithProgram(prog), WithLogger(nil)},
			wantErr: "logger cannot be nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunWithOptions(tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "patcher: invalid options")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunWithOptions_ListingFile(t *testing.T) {
	path := testutil.WriteTempFile(t, "app.yaml", runListing)

	result, err := RunWithOptions(
		WithPatches(unlockPatch(t)),
		WithListingFile(path),
	)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.False(t, result.HasFailures())
	assert.Len(t, result.Succeeded(), 1)
	assert.Empty(t, result.Failed())

	require.True(t, result.Program.IsMutated("Lapp/Gate;"))
	c, ok := result.Program.Class("Lapp/Gate;")
	require.True(t, ok)
	assert.Equal(t, "const/4 v0, 1", c.Methods[0].Instructions[0].String())
}

func TestRunWithOptions_MissingListingFile(t *testing.T) {
	_, err := RunWithOptions(WithListingFile(filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, err)
	assert.ErrorIs(t, err, patcherrors.ErrParse)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunWithOptions_CycleIsReturned(t *testing.T) {
	prog, err := bytecode.NewProgram()
	require.NoError(t, err)

	var loop *patch.Patch
	loop = patch.MustNew(patch.WithName("loop"), patch.DependsOnLazy(func() []*patch.Patch {
		return []*patch.Patch{loop}
	}))

	_, err = RunWithOptions(WithPatches(loop), WithProgram(prog))
	assert.ErrorIs(t, err, patcherrors.ErrCyclicDependency)
}

func TestRunWithOptions_OptionsFile(t *testing.T) {
	prog, err := bytecode.NewProgram()
	require.NoError(t, err)

	var got string
	theme := patch.MustNew(
		patch.WithName("theme"),
		patch.WithOption(patch.OptionDecl{Key: "color", Required: true}),
		patch.Execute(func(ctx patch.Context) error {
			got = patch.ValueOr(ctx.Options(), "color", "")
			return nil
		}),
	)

	path := testutil.WriteTempFile(t, "options.yaml", "theme:\n  color: green\n")
	result, err := RunWithOptions(WithPatches(theme), WithProgram(prog), WithOptionsFile(path))
	require.NoError(t, err)
	assert.False(t, result.HasFailures())
	assert.Equal(t, "green", got)

	// Without values the required option fails the patch, not the run.
	result, err = RunWithOptions(WithPatches(theme), WithProgram(prog))
	require.NoError(t, err)
	require.Len(t, result.Failed(), 1)
	assert.ErrorIs(t, result.Failed()[0].Err, patcherrors.ErrOption)
}

func TestRunWithOptions_Target(t *testing.T) {
	prog, err := bytecode.ParseListing([]byte(runListing))
	require.NoError(t, err)

	universal := patch.MustNew(patch.WithName("universal"))
	unlock := unlockPatch(t)

	tests := []struct {
		name        string
		pkg         string
		version     string
		wantRun     []string
		wantSkipped int
	}{
		{"supported version", "com.example.app", "1.1.0", []string{"universal", "unlock"}, 0},
		{"unsupported version", "com.example.app", "2.0.0", []string{"universal"}, 1},
		{"other package", "com.example.other", "1.0.0", []string{"universal"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RunWithOptions(
				WithPatches(universal, unlock),
				WithProgram(prog),
				WithTarget(tt.pkg, tt.version),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRun, names(result.Results))
			assert.Len(t, result.Skipped, tt.wantSkipped)
		})
	}
}

func TestRunWithOptions_Resources(t *testing.T) {
	prog, err := bytecode.NewProgram()
	require.NoError(t, err)
	store := patch.NewMemoryResources(map[string][]byte{"res/values/strings.xml": []byte("<resources/>")})

	p := patch.MustNew(patch.WithName("rename"), patch.Execute(patch.OnResources(func(_ patch.Context, rs patch.ResourceStore) error {
		return rs.Put("res/values/app.xml", []byte("<app/>"))
	})))

	result, err := RunWithOptions(WithPatches(p), WithProgram(prog), WithResources(store))
	require.NoError(t, err)
	assert.False(t, result.HasFailures())
	assert.Equal(t, []string{"res/values/app.xml", "res/values/strings.xml"}, store.Paths())
}

func TestRunWithOptions_Logger(t *testing.T) {
	prog, err := bytecode.NewProgram()
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ok := patch.MustNew(patch.WithName("ok"))
	bad := patch.MustNew(patch.WithName("bad"), patch.Execute(func(patch.Context) error {
		return errors.New("broken")
	}))
	skipped := patch.MustNew(patch.WithName("skipped"), patch.CompatibleWith("com.example.other"))

	_, err = RunWithOptions(
		WithPatches(ok, bad, skipped),
		WithProgram(prog),
		WithTarget("com.example.app", "1.0.0"),
		WithLogger(logger),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "skipping incompatible patch")
	assert.Contains(t, out, "patch=skipped")
	assert.Contains(t, out, "dependency graph built")
	assert.Contains(t, out, "patch succeeded")
	assert.Contains(t, out, "patch failed")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "run complete")
	assert.Contains(t, out, "failed=1")
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debug("x")
	l.Info("x", "k", 1)
	l.Warn("x")
	l.Error("x")
	assert.Equal(t, NopLogger{}, l.With("k", "v"))
}

func TestSlogAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil))).With("run", "r1")
	l.Info("hello")
	assert.Contains(t, buf.String(), "run=r1")
	assert.Contains(t, buf.String(), "msg=hello")
}
