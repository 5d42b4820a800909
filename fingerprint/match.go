package fingerprint

import (
	"fmt"

	"github.com/erraggy/patchkit/bytecode"
)

// Match is a resolved fingerprint.
type Match struct {
	// Class is the class containing the matched method, as seen at resolution.
	Class *bytecode.Class
	// Method is the matched method, as seen at resolution.
	Method *bytecode.Method
	// MethodIndex is the index of Method in Class.Methods.
	MethodIndex int
	// PatternMatch is the opcode pattern location, nil when no pattern was declared.
	PatternMatch *PatternMatch
	// StringMatches pairs each declared string with the instruction that
	// referenced it, in declaration order.
	StringMatches []StringMatch
	// FilterIndices holds the instruction index matched by each instruction
	// filter, in declaration order.
	FilterIndices []int

	model bytecode.Model
}

// StringMatch is one required string and the instruction index of its occurrence.
type StringMatch struct {
	String string `json:"string" yaml:"string"`
	Index  int    `json:"index" yaml:"index"`
}

// PatternMatch locates an opcode pattern within a method body.
type PatternMatch struct {
	// StartIndex is the instruction index of the first pattern slot.
	StartIndex int `json:"startIndex" yaml:"startIndex"`
	// EndIndex is the instruction index of the last pattern slot (inclusive).
	EndIndex int `json:"endIndex" yaml:"endIndex"`
	// Warnings lists the mismatches absorbed by the fuzzy threshold.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Warning records one opcode mismatch tolerated by fuzzy matching.
type Warning struct {
	Expected         bytecode.Opcode `json:"expected" yaml:"expected"`
	Actual           bytecode.Opcode `json:"actual" yaml:"actual"`
	InstructionIndex int             `json:"instructionIndex" yaml:"instructionIndex"`
	PatternIndex     int             `json:"patternIndex" yaml:"patternIndex"`
}

// String returns a human-readable description of the mismatch.
func (w Warning) String() string {
	return fmt.Sprintf("pattern[%d] expected %s, found %s at instruction %d",
		w.PatternIndex, w.Expected, w.Actual, w.InstructionIndex)
}

// Descriptor returns the matched method's full reference.
func (m *Match) Descriptor() string {
	return m.Method.Descriptor()
}

// MutableClass returns the writable handle of the matched class.
// It requires a match resolved against a bytecode.Model.
func (m *Match) MutableClass() (*bytecode.Class, error) {
	if m.model == nil {
		return nil, fmt.Errorf("fingerprint: match for %s was not resolved against a model", m.Class.Type)
	}
	return m.model.Mutable(m.Class.Type)
}

// MutableMethod returns the matched method inside the writable class handle.
func (m *Match) MutableMethod() (*bytecode.Method, error) {
	cls, err := m.MutableClass()
	if err != nil {
		return nil, err
	}
	if m.MethodIndex >= len(cls.Methods) || cls.Methods[m.MethodIndex].Name != m.Method.Name {
		return nil, fmt.Errorf("fingerprint: method %s moved in %s", m.Method.Name, cls.Type)
	}
	return cls.Methods[m.MethodIndex], nil
}
