package fingerprint

import (
	"slices"
	"strings"

	"github.com/erraggy/patchkit/bytecode"
)

// Resolver scans classes for the first method matching a Fingerprint.
//
// Classes are scanned in slice order and methods in declaration order. The
// first method satisfying every declared check wins and is stored on the
// Fingerprint; later resolutions return the stored match without scanning.
// No match is not an error and is not stored, so a later call scans again.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	model    bytecode.Model
	useIndex bool
	index    *stringIndex
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithModel attaches a model to matches found by Resolve, ResolveClass and
// ResolveMethod so that Match.MutableClass works.
func WithModel(model bytecode.Model) ResolverOption {
	return func(r *Resolver) {
		r.model = model
	}
}

// WithStringIndex enables an index from string constants to methods.
// Fingerprints declaring strings then scan only methods referencing the
// first declared string, still in enumeration order.
//
// The index is rebuilt when the scanned class set changes. Edits made through
// an existing writable handle are not detected; call Reset after them.
func WithStringIndex() ResolverOption {
	return func(r *Resolver) {
		r.useIndex = true
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reset discards the string index.
func (r *Resolver) Reset() {
	r.index = nil
}

// Resolve returns the first method in classes matching fp.
func (r *Resolver) Resolve(fp *Fingerprint, classes []*bytecode.Class) (*Match, bool) {
	return r.resolve(fp, classes, r.model)
}

// ResolveModel returns the first method in model.Classes() matching fp.
// The match can reach writable handles through model.
func (r *Resolver) ResolveModel(fp *Fingerprint, model bytecode.Model) (*Match, bool) {
	if fp.match != nil {
		return fp.match, true
	}
	return r.resolve(fp, model.Classes(), model)
}

// ResolveClass returns the first method of c matching fp.
func (r *Resolver) ResolveClass(fp *Fingerprint, c *bytecode.Class) (*Match, bool) {
	if fp.match != nil {
		return fp.match, true
	}
	for i := range c.Methods {
		if m, ok := fp.matchMethod(c, i, r.model); ok {
			fp.store(m)
			return m, true
		}
	}
	return nil, false
}

// ResolveMethod reports whether method, declared by c, matches fp.
func (r *Resolver) ResolveMethod(fp *Fingerprint, c *bytecode.Class, method *bytecode.Method) (*Match, bool) {
	if fp.match != nil {
		return fp.match, true
	}
	i := slices.Index(c.Methods, method)
	if i < 0 {
		return nil, false
	}
	m, ok := fp.matchMethod(c, i, r.model)
	if ok {
		fp.store(m)
	}
	return m, ok
}

func (r *Resolver) resolve(fp *Fingerprint, classes []*bytecode.Class, model bytecode.Model) (*Match, bool) {
	if fp.match != nil {
		return fp.match, true
	}

	if r.useIndex && len(fp.strings) > 0 {
		idx := r.indexFor(classes)
		for _, ref := range idx.byString[fp.strings[0]] {
			if m, ok := fp.matchMethod(classes[ref.class], ref.method, model); ok {
				fp.store(m)
				return m, true
			}
		}
		return nil, false
	}

	for _, c := range classes {
		for i := range c.Methods {
			if m, ok := fp.matchMethod(c, i, model); ok {
				fp.store(m)
				return m, true
			}
		}
	}
	return nil, false
}

func (r *Resolver) indexFor(classes []*bytecode.Class) *stringIndex {
	if r.index == nil || !slices.Equal(r.index.classes, classes) {
		r.index = buildStringIndex(classes)
	}
	return r.index
}

// Resolve resolves fp against model with a default Resolver.
func (fp *Fingerprint) Resolve(model bytecode.Model) (*Match, bool) {
	return NewResolver().ResolveModel(fp, model)
}

// matchMethod applies every declared check to c.Methods[idx] in a fixed order:
// return type, access flags, parameters, strings, opcode pattern, instruction
// filters, then the custom predicate.
func (fp *Fingerprint) matchMethod(c *bytecode.Class, idx int, model bytecode.Model) (*Match, bool) {
	method := c.Methods[idx]

	if fp.hasReturnType && !strings.HasPrefix(method.ReturnType, fp.returnType) {
		return nil, false
	}
	if fp.hasAccess && method.AccessFlags != fp.accessFlags {
		return nil, false
	}
	if fp.hasParameters && !slices.Equal(method.Parameters, fp.parameters) {
		return nil, false
	}

	var stringMatches []StringMatch
	if len(fp.strings) > 0 {
		var ok bool
		if stringMatches, ok = matchStrings(fp.strings, method.Strings()); !ok {
			return nil, false
		}
	}

	var pm *PatternMatch
	if len(fp.opcodes) > 0 {
		var ok bool
		if pm, ok = newPatternMatcher(fp.opcodes, fp.fuzzy).match(method.Instructions); !ok {
			return nil, false
		}
	}

	var filterIndices []int
	if len(fp.filters) > 0 {
		fm := filterMatcher(fp.filters)
		if !fm.Match(method.Instructions) {
			return nil, false
		}
		filterIndices = fm.Indices()
	}

	if fp.custom != nil && !fp.custom(method, c) {
		return nil, false
	}

	return &Match{
		Class:         c,
		Method:        method,
		MethodIndex:   idx,
		PatternMatch:  pm,
		StringMatches: stringMatches,
		FilterIndices: filterIndices,
		model:         model,
	}, true
}

// matchStrings pairs each wanted string with a distinct reference, taking the
// earliest unused occurrence.
func matchStrings(want []string, refs []bytecode.StringRef) ([]StringMatch, bool) {
	used := make([]bool, len(refs))
	matches := make([]StringMatch, 0, len(want))
	for _, s := range want {
		found := false
		for i, ref := range refs {
			if !used[i] && ref.Value == s {
				used[i] = true
				matches = append(matches, StringMatch{String: s, Index: ref.Index})
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return matches, true
}

type methodRef struct {
	class  int
	method int
}

type stringIndex struct {
	classes  []*bytecode.Class
	byString map[string][]methodRef
}

func buildStringIndex(classes []*bytecode.Class) *stringIndex {
	idx := &stringIndex{
		classes:  slices.Clone(classes),
		byString: make(map[string][]methodRef),
	}
	for ci, c := range classes {
		for mi, m := range c.Methods {
			seen := make(map[string]bool)
			for _, ref := range m.Strings() {
				if seen[ref.Value] {
					continue
				}
				seen[ref.Value] = true
				idx.byString[ref.Value] = append(idx.byString[ref.Value], methodRef{class: ci, method: mi})
			}
		}
	}
	return idx
}
