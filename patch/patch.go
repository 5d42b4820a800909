package patch

import (
	"fmt"
	"slices"
)

// ExecuteFunc is a patch's execute callback.
type ExecuteFunc func(ctx Context) error

// FinalizeFunc is a patch's finalize callback.
type FinalizeFunc func(ctx Context) error

// Patch is a unit of transformation with ordered dependencies and two
// phases: execute, then finalize once every patch in the run has executed.
//
// A Patch is immutable after New returns. Per-run state lives in the executor,
// so one Patch can take part in any number of runs.
type Patch struct {
	name        string
	description string

	dependencies []*Patch
	lazyDeps     []func() []*Patch

	execute  ExecuteFunc
	finalize FinalizeFunc

	compatibility []Compatibility
	options       []OptionDecl
	optionIndex   map[string]int
}

// Compatibility declares one package a patch supports.
type Compatibility struct {
	// Package is the package (application) identifier.
	Package string `yaml:"package" json:"package"`
	// Versions lists the supported versions. Empty means every version.
	Versions []string `yaml:"versions,omitempty" json:"versions,omitempty"`
}

// New creates a Patch from options.
func New(opts ...Option) (*Patch, error) {
	p := &Patch{optionIndex: make(map[string]int)}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// MustNew is like New but panics on error.
// It is intended for package-level patch declarations.
func MustNew(opts ...Option) *Patch {
	p, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the patch name, which may be empty.
func (p *Patch) Name() string {
	return p.name
}

// Description returns the patch description.
func (p *Patch) Description() string {
	return p.description
}

// String returns the patch name, or an identifying placeholder when unnamed.
func (p *Patch) String() string {
	if p.name != "" {
		return p.name
	}
	return fmt.Sprintf("<unnamed patch %p>", p)
}

// Dependencies returns the patch's dependencies in declared order with
// duplicates removed. Lazily declared dependencies are evaluated on each call
// and follow the eagerly declared ones.
func (p *Patch) Dependencies() []*Patch {
	deps := slices.Clone(p.dependencies)
	for _, fn := range p.lazyDeps {
		for _, d := range fn() {
			if d == nil || !slices.Contains(deps, d) {
				deps = append(deps, d)
			}
		}
	}
	return deps
}

// HasExecute reports whether an execute callback is set.
func (p *Patch) HasExecute() bool {
	return p.execute != nil
}

// HasFinalize reports whether a finalize callback is set.
func (p *Patch) HasFinalize() bool {
	return p.finalize != nil
}

// RunExecute invokes the execute callback. A patch without one succeeds.
func (p *Patch) RunExecute(ctx Context) error {
	if p.execute == nil {
		return nil
	}
	return p.execute(ctx)
}

// RunFinalize invokes the finalize callback. A patch without one succeeds.
func (p *Patch) RunFinalize(ctx Context) error {
	if p.finalize == nil {
		return nil
	}
	return p.finalize(ctx)
}

// Compatibility returns the declared compatible packages.
func (p *Patch) Compatibility() []Compatibility {
	out := make([]Compatibility, len(p.compatibility))
	for i, c := range p.compatibility {
		out[i] = Compatibility{Package: c.Package, Versions: slices.Clone(c.Versions)}
	}
	return out
}

// IsUniversal reports whether the patch declares no compatible packages.
func (p *Patch) IsUniversal() bool {
	return len(p.compatibility) == 0
}

// IsCompatible reports whether the patch applies to version of pkg.
// A universal patch is compatible with everything. Otherwise pkg must be
// declared, and if that declaration lists versions, version must be one of them.
func (p *Patch) IsCompatible(pkg, version string) bool {
	if p.IsUniversal() {
		return true
	}
	for _, c := range p.compatibility {
		if c.Package != pkg {
			continue
		}
		if len(c.Versions) == 0 || slices.Contains(c.Versions, version) {
			return true
		}
	}
	return false
}

// Options returns the declared options in declaration order.
func (p *Patch) Options() []OptionDecl {
	return slices.Clone(p.options)
}

// Option returns the declared option for key.
func (p *Patch) Option(key string) (OptionDecl, bool) {
	i, ok := p.optionIndex[key]
	if !ok {
		return OptionDecl{}, false
	}
	return p.options[i], true
}

// Values binds raw option values to the patch's declarations.
// The map is copied.
func (p *Patch) Values(raw map[string]any) Values {
	set := make(map[string]any, len(raw))
	for k, v := range raw {
		set[k] = v
	}
	return Values{patch: p.name, decls: p.options, set: set}
}
