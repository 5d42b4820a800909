package fingerprint

import (
	"slices"
	"strings"

	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/sequence"
)

// InstructionFilter tests one instruction of a method body at its index.
type InstructionFilter func(insn bytecode.Instruction, index int) bool

// OpcodeIs matches an instruction with any of the given opcodes.
func OpcodeIs(ops ...bytecode.Opcode) InstructionFilter {
	return func(insn bytecode.Instruction, _ int) bool {
		return slices.Contains(ops, insn.Opcode)
	}
}

// StringEquals matches an instruction loading the string constant s.
func StringEquals(s string) InstructionFilter {
	return func(insn bytecode.Instruction, _ int) bool {
		ref, ok := insn.StringReference()
		return ok && ref == s
	}
}

// StringContains matches an instruction loading a string constant containing sub.
func StringContains(sub string) InstructionFilter {
	return func(insn bytecode.Instruction, _ int) bool {
		ref, ok := insn.StringReference()
		return ok && strings.Contains(ref, sub)
	}
}

// LiteralEquals matches an instruction whose literal operand equals v.
func LiteralEquals(v int64) InstructionFilter {
	return func(insn bytecode.Instruction, _ int) bool {
		return insn.HasLiteral && insn.Literal == v
	}
}

// MethodCall matches an invoke instruction calling name on definingClass.
// An empty definingClass matches any class, and an empty name matches any method.
func MethodCall(definingClass, name string) InstructionFilter {
	return func(insn bytecode.Instruction, _ int) bool {
		if !insn.Opcode.IsInvoke() {
			return false
		}
		cls, rest, ok := strings.Cut(insn.Reference, "->")
		if !ok {
			return false
		}
		method, _, _ := strings.Cut(rest, "(")
		return (definingClass == "" || cls == definingClass) && (name == "" || method == name)
	}
}

// FieldAccess matches a field instruction referencing field name of any class,
// or of definingClass when it is non-empty.
func FieldAccess(definingClass, name string) InstructionFilter {
	return func(insn bytecode.Instruction, _ int) bool {
		if insn.Opcode.Reference() != bytecode.RefField {
			return false
		}
		cls, rest, ok := strings.Cut(insn.Reference, "->")
		if !ok {
			return false
		}
		field, _, _ := strings.Cut(rest, ":")
		return (definingClass == "" || cls == definingClass) && field == name
	}
}

// filterMatcher runs filters in order as free slots over a method body.
func filterMatcher(filters []InstructionFilter) *sequence.Matcher[bytecode.Instruction] {
	slots := make([]sequence.Slot[bytecode.Instruction], len(filters))
	for i, f := range filters {
		slots[i] = sequence.Free(sequence.Predicate[bytecode.Instruction](f))
	}
	return sequence.MustNew(slots...)
}
