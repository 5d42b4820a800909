package fingerprint

import (
	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/sequence"
)

// patternMatcher matches an opcode pattern as a contiguous run of
// instructions, absorbing up to threshold non-wildcard mismatches.
type patternMatcher struct {
	pattern   []bytecode.Opcode
	threshold int

	// per-attempt state shared by the slot predicates
	start    int
	budget   int
	warnings []Warning

	m *sequence.Matcher[bytecode.Instruction]
}

func newPatternMatcher(pattern []bytecode.Opcode, threshold int) *patternMatcher {
	pm := &patternMatcher{pattern: pattern, threshold: threshold}
	slots := make([]sequence.Slot[bytecode.Instruction], len(pattern))
	for k := range pattern {
		if k == 0 {
			slots[k] = sequence.Head(pm.slotPredicate(k))
		} else {
			slots[k] = sequence.AfterWithin(1, 1, pm.slotPredicate(k))
		}
	}
	// Slots are well-formed by construction.
	pm.m = sequence.MustNew(slots...)
	return pm
}

func (pm *patternMatcher) slotPredicate(k int) sequence.Predicate[bytecode.Instruction] {
	return func(insn bytecode.Instruction, index int) bool {
		expected := pm.pattern[k]
		if expected == bytecode.OpAny || insn.Opcode == expected {
			return true
		}
		if pm.budget == 0 {
			return false
		}
		pm.budget--
		pm.warnings = append(pm.warnings, Warning{
			Expected:         expected,
			Actual:           insn.Opcode,
			InstructionIndex: pm.start + index,
			PatternIndex:     k,
		})
		return true
	}
}

// match returns the first start index at which the pattern matches.
func (pm *patternMatcher) match(insns []bytecode.Instruction) (*PatternMatch, bool) {
	n := len(pm.pattern)
	if n == 0 || n > len(insns) {
		return nil, false
	}
	for s := 0; s <= len(insns)-n; s++ {
		pm.start = s
		pm.budget = pm.threshold
		pm.warnings = nil
		if pm.m.Match(insns[s:]) {
			return &PatternMatch{
				StartIndex: s,
				EndIndex:   s + n - 1,
				Warnings:   pm.warnings,
			}, true
		}
	}
	return nil, false
}

// MatchPattern locates pattern within insns, tolerating up to threshold
// non-wildcard opcode mismatches. Each tolerated mismatch is reported as a
// Warning. The earliest matching start index wins.
func MatchPattern(pattern []bytecode.Opcode, insns []bytecode.Instruction, threshold int) (*PatternMatch, bool) {
	return newPatternMatcher(pattern, max(threshold, 0)).match(insns)
}
