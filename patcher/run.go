package patcher

import (
	"fmt"
	"maps"

	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/internal/options"
	"github.com/erraggy/patchkit/patch"
)

// Option configures a RunWithOptions call.
type Option func(*runConfig) error

// runConfig holds configuration for one patch run.
type runConfig struct {
	patches []*patch.Patch

	// Bytecode model source (exactly one must be set)
	program     *bytecode.Program
	listingFile *string

	resources patch.ResourceStore

	// Option values source (at most one may be set)
	values      OptionValues
	optionsFile *string

	target *target
	logger Logger
}

type target struct {
	pkg     string
	version string
}

// WithPatches adds root patches to the run, in order.
func WithPatches(patches ...*patch.Patch) Option {
	return func(cfg *runConfig) error {
		cfg.patches = append(cfg.patches, patches...)
		return nil
	}
}

// WithProgram specifies an in-memory program as the bytecode model.
func WithProgram(p *bytecode.Program) Option {
	return func(cfg *runConfig) error {
		if p == nil {
			return fmt.Errorf("program cannot be nil")
		}
		cfg.program = p
		return nil
	}
}

// WithListingFile specifies a listing file as the bytecode model source.
func WithListingFile(path string) Option {
	return func(cfg *runConfig) error {
		if path == "" {
			return fmt.Errorf("listing path cannot be empty")
		}
		cfg.listingFile = &path
		return nil
	}
}

// WithResources supplies a resource store to the run.
func WithResources(store patch.ResourceStore) Option {
	return func(cfg *runConfig) error {
		cfg.resources = store
		return nil
	}
}

// WithOptionValues supplies option values keyed by patch name.
func WithOptionValues(values OptionValues) Option {
	return func(cfg *runConfig) error {
		if values == nil {
			return fmt.Errorf("option values cannot be nil")
		}
		cfg.values = values
		return nil
	}
}

// WithOptionsFile loads option values from a YAML or JSON file.
func WithOptionsFile(path string) Option {
	return func(cfg *runConfig) error {
		if path == "" {
			return fmt.Errorf("options path cannot be empty")
		}
		cfg.optionsFile = &path
		return nil
	}
}

// WithTarget restricts the run to root patches compatible with version of pkg.
// Incompatible roots are skipped. Without a target every root runs.
func WithTarget(pkg, version string) Option {
	return func(cfg *runConfig) error {
		if pkg == "" {
			return fmt.Errorf("target package cannot be empty")
		}
		cfg.target = &target{pkg: pkg, version: version}
		return nil
	}
}

// WithLogger sets the logger for run progress. The default discards output.
func WithLogger(l Logger) Option {
	return func(cfg *runConfig) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		cfg.logger = l
		return nil
	}
}

// applyOptions applies all options and returns the configuration.
func applyOptions(opts ...Option) (*runConfig, error) {
	cfg := &runConfig{logger: NopLogger{}}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := options.ValidateSingleInputSource(
		"must specify a bytecode source (use WithProgram or WithListingFile)",
		"must specify exactly one bytecode source",
		cfg.program != nil, cfg.listingFile != nil,
	); err != nil {
		return nil, err
	}

	if err := options.ValidateAtMostOneSource(
		"must specify at most one option values source (WithOptionValues or WithOptionsFile)",
		cfg.values != nil, cfg.optionsFile != nil,
	); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadInputs loads the program and option values from the configuration.
func loadInputs(cfg *runConfig) (*bytecode.Program, OptionValues, error) {
	prog := cfg.program
	if cfg.listingFile != nil {
		var err error
		prog, err = bytecode.ParseListingFile(*cfg.listingFile)
		if err != nil {
			return nil, nil, err
		}
	}

	values := maps.Clone(cfg.values)
	if cfg.optionsFile != nil {
		var err error
		values, err = ParseOptionValuesFile(*cfg.optionsFile)
		if err != nil {
			return nil, nil, err
		}
	}
	return prog, values, nil
}

// RunResult is the outcome of RunWithOptions.
type RunResult struct {
	// Results holds one result per attempted patch, in attempt order.
	Results []Result
	// Skipped lists root patches not compatible with the target.
	Skipped []*patch.Patch
	// Program is the bytecode model after the run.
	Program *bytecode.Program
}

// Succeeded returns the results without an error.
func (r *RunResult) Succeeded() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the results with an error.
func (r *RunResult) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// HasFailures reports whether any result carries an error.
func (r *RunResult) HasFailures() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return true
		}
	}
	return false
}

// RunWithOptions runs patches against a bytecode model using functional options.
//
// Patch failures are reported in RunResult, not as an error. The returned
// error covers invalid options, unreadable inputs, and an invalid dependency
// graph, all detected before any patch runs.
//
// Example:
//
//	result, err := patcher.RunWithOptions(
//	    patcher.WithPatches(unlock, theme),
//	    patcher.WithListingFile("app.yaml"),
//	    patcher.WithOptionsFile("options.yaml"),
//	    patcher.WithTarget("com.example.app", "1.3.0"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, res := range result.Failed() {
//	    fmt.Println(res.Patch, res.Err)
//	}
func RunWithOptions(opts ...Option) (*RunResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("patcher: invalid options: %w", err)
	}

	prog, values, err := loadInputs(cfg)
	if err != nil {
		return nil, err
	}

	log := cfg.logger
	out := &RunResult{Program: prog}

	roots := make([]*patch.Patch, 0, len(cfg.patches))
	for _, p := range cfg.patches {
		if cfg.target != nil && p != nil && !p.IsCompatible(cfg.target.pkg, cfg.target.version) {
			log.Warn("skipping incompatible patch", "patch", p.String(), "package", cfg.target.pkg, "version", cfg.target.version)
			out.Skipped = append(out.Skipped, p)
			continue
		}
		roots = append(roots, p)
	}

	g, err := NewGraph(roots...)
	if err != nil {
		return nil, err
	}
	log.Debug("dependency graph built", "roots", len(g.Roots()), "patches", g.Len())

	exec := NewExecutor(g,
		WithCapabilities(patch.Capabilities{Bytecode: prog, Resources: cfg.resources}),
		WithValues(values),
	)
	for res := range exec.Run() {
		if res.Err != nil {
			log.Error("patch failed", "patch", res.Patch.String(), "state", res.State.String(), "error", res.Err)
		} else {
			log.Info("patch succeeded", "patch", res.Patch.String(), "state", res.State.String())
		}
		out.Results = append(out.Results, res)
	}

	log.Info("run complete",
		"succeeded", len(out.Succeeded()),
		"failed", len(out.Failed()),
		"skipped", len(out.Skipped),
		"mutated_classes", len(prog.MutatedClasses()),
	)
	return out, nil
}
