package bytecode

import (
	"fmt"
	"slices"
)

// Model is the bytecode model a patch run operates on.
//
// Classes enumerate in a deterministic order. Mutable returns a writable
// handle for a class: the first call for a type creates the handle, and every
// later call in the same run returns that same handle. Once a handle exists,
// Classes and Class report the handle in place of the original.
type Model interface {
	// Classes returns all classes in enumeration order.
	Classes() []*Class
	// Class looks up a class by type descriptor.
	Class(typ string) (*Class, bool)
	// Mutable returns the writable handle for the class with the given type.
	Mutable(typ string) (*Class, error)
}

// Program is an in-memory Model with copy-on-write class handles.
//
// Program is not safe for concurrent use.
type Program struct {
	classes []*Class
	byType  map[string]int
	mutable map[string]*Class
}

// Ensure Program implements Model at compile time.
var _ Model = (*Program)(nil)

// NewProgram creates a program from classes in enumeration order.
// Class types must be non-empty and unique.
func NewProgram(classes ...*Class) (*Program, error) {
	p := &Program{
		byType:  make(map[string]int, len(classes)),
		mutable: make(map[string]*Class),
	}
	for _, c := range classes {
		if err := p.insert(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Program) insert(c *Class) error {
	if c == nil {
		return fmt.Errorf("bytecode: nil class")
	}
	if c.Type == "" {
		return fmt.Errorf("bytecode: class type cannot be empty")
	}
	if _, exists := p.byType[c.Type]; exists {
		return fmt.Errorf("bytecode: duplicate class %s", c.Type)
	}
	for _, m := range c.Methods {
		if m.DefiningClass == "" {
			m.DefiningClass = c.Type
		}
	}
	p.byType[c.Type] = len(p.classes)
	p.classes = append(p.classes, c)
	return nil
}

// Classes returns all classes in enumeration order.
// The returned slice is a copy; the classes are shared.
func (p *Program) Classes() []*Class {
	return slices.Clone(p.classes)
}

// Class looks up a class by type descriptor.
func (p *Program) Class(typ string) (*Class, bool) {
	idx, ok := p.byType[typ]
	if !ok {
		return nil, false
	}
	return p.classes[idx], true
}

// Mutable returns the writable handle for typ, cloning the class on first use.
func (p *Program) Mutable(typ string) (*Class, error) {
	if handle, ok := p.mutable[typ]; ok {
		return handle, nil
	}
	idx, ok := p.byType[typ]
	if !ok {
		return nil, fmt.Errorf("bytecode: class %s not found", typ)
	}
	handle := p.classes[idx].clone()
	p.classes[idx] = handle
	p.mutable[typ] = handle
	return handle, nil
}

// AddClass appends a new class. Added classes are writable and count as mutated.
func (p *Program) AddClass(c *Class) error {
	if err := p.insert(c); err != nil {
		return err
	}
	p.mutable[c.Type] = c
	return nil
}

// IsMutated reports whether a writable handle exists for typ.
func (p *Program) IsMutated(typ string) bool {
	_, ok := p.mutable[typ]
	return ok
}

// MutatedClasses returns the classes with writable handles in enumeration order.
func (p *Program) MutatedClasses() []*Class {
	var out []*Class
	for _, c := range p.classes {
		if p.IsMutated(c.Type) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of classes.
func (p *Program) Len() int {
	return len(p.classes)
}
