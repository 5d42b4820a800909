package bytecode

import (
	"fmt"
	"slices"
	"strings"
)

// Method is a method of a class together with its instruction stream.
type Method struct {
	// DefiningClass is the type descriptor of the owning class.
	DefiningClass string
	// Name is the method name. It may be obfuscated.
	Name string
	// ReturnType is the return type descriptor (e.g., "V", "Ljava/lang/String;").
	ReturnType string
	// Parameters are the parameter type descriptors in declaration order.
	Parameters []string
	// AccessFlags are the method's modifiers.
	AccessFlags AccessFlags
	// Instructions is the method body. Empty for abstract and native methods.
	Instructions []Instruction
}

// StringRef is one string constant referenced by a method.
type StringRef struct {
	// Value is the string constant.
	Value string
	// Index is the index of the referencing instruction.
	Index int
}

// Strings returns the method's string-constant references in instruction order.
// Duplicates are preserved.
func (m *Method) Strings() []StringRef {
	var refs []StringRef
	for i, insn := range m.Instructions {
		if s, ok := insn.StringReference(); ok {
			refs = append(refs, StringRef{Value: s, Index: i})
		}
	}
	return refs
}

// Opcodes returns the opcode of each instruction in order.
func (m *Method) Opcodes() []Opcode {
	ops := make([]Opcode, len(m.Instructions))
	for i, insn := range m.Instructions {
		ops[i] = insn.Opcode
	}
	return ops
}

// Descriptor returns the full method reference, e.g. "Lcom/a/B;->c(IZ)V".
func (m *Method) Descriptor() string {
	return fmt.Sprintf("%s->%s(%s)%s", m.DefiningClass, m.Name, strings.Join(m.Parameters, ""), m.ReturnType)
}

// AddInstructions inserts insns before index. An index equal to the
// instruction count appends.
func (m *Method) AddInstructions(index int, insns ...Instruction) error {
	if index < 0 || index > len(m.Instructions) {
		return fmt.Errorf("bytecode: insert index %d out of range [0, %d] in %s", index, len(m.Instructions), m.Descriptor())
	}
	m.Instructions = slices.Insert(m.Instructions, index, insns...)
	return nil
}

// RemoveInstructions deletes count instructions starting at index.
func (m *Method) RemoveInstructions(index, count int) error {
	if count < 0 || index < 0 || index+count > len(m.Instructions) {
		return fmt.Errorf("bytecode: remove range [%d, %d) out of range in %s", index, index+count, m.Descriptor())
	}
	m.Instructions = slices.Delete(m.Instructions, index, index+count)
	return nil
}

// ReplaceInstruction overwrites the instruction at index.
func (m *Method) ReplaceInstruction(index int, insn Instruction) error {
	if index < 0 || index >= len(m.Instructions) {
		return fmt.Errorf("bytecode: replace index %d out of range in %s", index, m.Descriptor())
	}
	m.Instructions[index] = insn
	return nil
}

// clone returns a deep copy of the method.
func (m *Method) clone() *Method {
	c := *m
	c.Parameters = slices.Clone(m.Parameters)
	c.Instructions = make([]Instruction, len(m.Instructions))
	for i, insn := range m.Instructions {
		c.Instructions[i] = insn.clone()
	}
	return &c
}
