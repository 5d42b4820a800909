package patch

import (
	"fmt"
	"slices"

	"github.com/erraggy/patchkit/patcherrors"
)

// Option configures a Patch during construction.
type Option func(*Patch) error

// WithName sets the patch name.
func WithName(name string) Option {
	return func(p *Patch) error {
		p.name = name
		return nil
	}
}

// WithDescription sets a human-readable description.
func WithDescription(desc string) Option {
	return func(p *Patch) error {
		p.description = desc
		return nil
	}
}

// DependsOn appends dependencies in order. A patch already listed is skipped.
func DependsOn(deps ...*Patch) Option {
	return func(p *Patch) error {
		for i, d := range deps {
			if d == nil {
				return &patcherrors.ConfigError{
					Option:  "dependencies",
					Message: fmt.Sprintf("dependency %d of %s is nil", i, p),
				}
			}
			if !slices.Contains(p.dependencies, d) {
				p.dependencies = append(p.dependencies, d)
			}
		}
		return nil
	}
}

// DependsOnLazy declares dependencies that are looked up when the dependency
// graph is built, so a patch can refer to one that is assigned after it.
func DependsOnLazy(fn func() []*Patch) Option {
	return func(p *Patch) error {
		if fn == nil {
			return &patcherrors.ConfigError{Option: "dependencies", Message: "lazy dependency function is nil"}
		}
		p.lazyDeps = append(p.lazyDeps, fn)
		return nil
	}
}

// Execute sets the execute callback.
func Execute(fn ExecuteFunc) Option {
	return func(p *Patch) error {
		p.execute = fn
		return nil
	}
}

// Finalize sets the finalize callback. It runs after every patch in the run
// has executed, in reverse execution order, and only if this patch's execute
// succeeded.
func Finalize(fn FinalizeFunc) Option {
	return func(p *Patch) error {
		p.finalize = fn
		return nil
	}
}

// CompatibleWith declares a supported package. Without versions every
// version of the package is supported.
func CompatibleWith(pkg string, versions ...string) Option {
	return func(p *Patch) error {
		if pkg == "" {
			return &patcherrors.ConfigError{Option: "compatibility", Message: "package name cannot be empty"}
		}
		p.compatibility = append(p.compatibility, Compatibility{Package: pkg, Versions: slices.Clone(versions)})
		return nil
	}
}

// WithOption declares a patch option. Keys must be non-empty and unique.
func WithOption(decl OptionDecl) Option {
	return func(p *Patch) error {
		if decl.Key == "" {
			return &patcherrors.ConfigError{Option: "options", Message: "option key cannot be empty"}
		}
		if _, exists := p.optionIndex[decl.Key]; exists {
			return &patcherrors.ConfigError{
				Option:  "options",
				Value:   decl.Key,
				Message: "duplicate option key",
			}
		}
		p.optionIndex[decl.Key] = len(p.options)
		p.options = append(p.options, decl)
		return nil
	}
}
