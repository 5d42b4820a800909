package fingerprint

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/patcherrors"
)

// CustomPredicate is the last check applied to a candidate method.
type CustomPredicate func(m *bytecode.Method, c *bytecode.Class) bool

// Fingerprint is a declarative description of a method, used to locate it
// without relying on names.
//
// Every declared property must hold for a method to match. Properties that
// are not declared are not checked. The first successful match is stored on
// the Fingerprint and returned by every later resolution.
type Fingerprint struct {
	name string

	returnType    string
	hasReturnType bool

	accessFlags bytecode.AccessFlags
	hasAccess   bool

	parameters    []string
	hasParameters bool

	strings []string
	opcodes []bytecode.Opcode
	fuzzy   int
	filters []InstructionFilter
	custom  CustomPredicate

	// match is written once, on the first successful resolution.
	match *Match
}

// Option configures a Fingerprint.
type Option func(*Fingerprint) error

// New creates a Fingerprint from options.
func New(opts ...Option) (*Fingerprint, error) {
	fp := &Fingerprint{}
	for _, opt := range opts {
		if err := opt(fp); err != nil {
			return nil, err
		}
	}
	return fp, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Fingerprint {
	fp, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return fp
}

// WithName sets the name used in diagnostics and errors.
func WithName(name string) Option {
	return func(fp *Fingerprint) error {
		fp.name = name
		return nil
	}
}

// WithReturnType requires the method's return type descriptor to start with prefix.
// A prefix such as "L" matches any object return type.
func WithReturnType(prefix string) Option {
	return func(fp *Fingerprint) error {
		fp.returnType = prefix
		fp.hasReturnType = true
		return nil
	}
}

// WithAccessFlags requires the method's access flags to equal flags exactly.
func WithAccessFlags(flags bytecode.AccessFlags) Option {
	return func(fp *Fingerprint) error {
		fp.accessFlags = flags
		fp.hasAccess = true
		return nil
	}
}

// WithParameters requires the method's parameter type descriptors to equal
// params exactly and in order. Calling it with no arguments requires a
// method without parameters.
func WithParameters(params ...string) Option {
	return func(fp *Fingerprint) error {
		fp.parameters = slices.Clone(params)
		fp.hasParameters = true
		return nil
	}
}

// WithStrings requires each string to appear as a distinct string-constant
// reference in the method. A string listed twice needs two occurrences.
func WithStrings(strs ...string) Option {
	return func(fp *Fingerprint) error {
		fp.strings = append(fp.strings, strs...)
		return nil
	}
}

// WithOpcodes requires the opcode pattern to appear as a contiguous run of
// the method's instructions. bytecode.OpAny matches any opcode.
func WithOpcodes(ops ...bytecode.Opcode) Option {
	return func(fp *Fingerprint) error {
		fp.opcodes = slices.Clone(ops)
		return nil
	}
}

// WithFuzzyThreshold sets how many non-wildcard opcode mismatches a pattern
// match tolerates. The default is 0.
func WithFuzzyThreshold(n int) Option {
	return func(fp *Fingerprint) error {
		if n < 0 {
			return &patcherrors.ConfigError{
				Option:  "fuzzy threshold",
				Value:   n,
				Message: "must not be negative",
			}
		}
		fp.fuzzy = n
		return nil
	}
}

// WithInstructionFilters requires instructions satisfying each filter, in
// order, at strictly increasing indices of the method body.
func WithInstructionFilters(filters ...InstructionFilter) Option {
	return func(fp *Fingerprint) error {
		for i, f := range filters {
			if f == nil {
				return &patcherrors.ConfigError{
					Option:  fmt.Sprintf("instruction filter %d", i),
					Message: "filter cannot be nil",
				}
			}
		}
		fp.filters = append(fp.filters, filters...)
		return nil
	}
}

// WithCustom adds a predicate evaluated after every declared check passes.
func WithCustom(p CustomPredicate) Option {
	return func(fp *Fingerprint) error {
		fp.custom = p
		return nil
	}
}

// Name returns the fingerprint name.
func (fp *Fingerprint) Name() string {
	return fp.name
}

// Opcodes returns a copy of the opcode pattern.
func (fp *Fingerprint) Opcodes() []bytecode.Opcode {
	return slices.Clone(fp.opcodes)
}

// Strings returns a copy of the required strings.
func (fp *Fingerprint) Strings() []string {
	return slices.Clone(fp.strings)
}

// FuzzyThreshold returns the tolerated opcode mismatch count.
func (fp *Fingerprint) FuzzyThreshold() int {
	return fp.fuzzy
}

// String returns a short description of the declared properties.
func (fp *Fingerprint) String() string {
	var parts []string
	if fp.name != "" {
		parts = append(parts, fp.name)
	}
	if fp.hasReturnType {
		parts = append(parts, "returns="+fp.returnType)
	}
	if fp.hasAccess {
		parts = append(parts, "access="+fp.accessFlags.String())
	}
	if fp.hasParameters {
		parts = append(parts, "params=("+strings.Join(fp.parameters, "")+")")
	}
	if len(fp.strings) > 0 {
		parts = append(parts, fmt.Sprintf("strings=%q", fp.strings))
	}
	if len(fp.opcodes) > 0 {
		parts = append(parts, fmt.Sprintf("opcodes=%d", len(fp.opcodes)))
	}
	if fp.fuzzy > 0 {
		parts = append(parts, fmt.Sprintf("fuzzy=%d", fp.fuzzy))
	}
	return "fingerprint{" + strings.Join(parts, " ") + "}"
}

// Match returns the stored match, or nil if the fingerprint has not resolved.
func (fp *Fingerprint) Match() *Match {
	return fp.match
}

// RequireMatch returns the stored match, or a *patcherrors.MatchNotFoundError
// if the fingerprint has not resolved.
func (fp *Fingerprint) RequireMatch() (*Match, error) {
	if fp.match == nil {
		return nil, &patcherrors.MatchNotFoundError{Fingerprint: fp.name}
	}
	return fp.match, nil
}

// Resolved reports whether a match is stored.
func (fp *Fingerprint) Resolved() bool {
	return fp.match != nil
}

func (fp *Fingerprint) store(m *Match) {
	if fp.match == nil {
		fp.match = m
	}
}
