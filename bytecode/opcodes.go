package bytecode

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Opcode is the operation code of one instruction.
// Values follow the Dalvik instruction set encoding.
type Opcode uint16

const (
	// ========================================================================
	// Moves and returns (0x00-0x11)
	// ========================================================================

	OpNop              Opcode = 0x00
	OpMove             Opcode = 0x01
	OpMoveObject       Opcode = 0x07
	OpMoveResult       Opcode = 0x0a
	OpMoveResultWide   Opcode = 0x0b
	OpMoveResultObject Opcode = 0x0c
	OpMoveException    Opcode = 0x0d
	OpReturnVoid       Opcode = 0x0e
	OpReturn           Opcode = 0x0f
	OpReturnWide       Opcode = 0x10
	OpReturnObject     Opcode = 0x11

	// ========================================================================
	// Constants (0x12-0x1c)
	// ========================================================================

	OpConst4           Opcode = 0x12
	OpConst16          Opcode = 0x13
	OpConst            Opcode = 0x14
	OpConstString      Opcode = 0x1a
	OpConstStringJumbo Opcode = 0x1b
	OpConstClass       Opcode = 0x1c

	// ========================================================================
	// Objects and arrays (0x1f-0x27)
	// ========================================================================

	OpCheckCast   Opcode = 0x1f
	OpInstanceOf  Opcode = 0x20
	OpArrayLength Opcode = 0x21
	OpNewInstance Opcode = 0x22
	OpNewArray    Opcode = 0x23
	OpThrow       Opcode = 0x27

	// ========================================================================
	// Control flow (0x28-0x3d)
	// ========================================================================

	OpGoto         Opcode = 0x28
	OpPackedSwitch Opcode = 0x2b
	OpSparseSwitch Opcode = 0x2c
	OpIfEq         Opcode = 0x32
	OpIfNe         Opcode = 0x33
	OpIfLt         Opcode = 0x34
	OpIfGe         Opcode = 0x35
	OpIfGt         Opcode = 0x36
	OpIfLe         Opcode = 0x37
	OpIfEqz        Opcode = 0x38
	OpIfNez        Opcode = 0x39
	OpIfLtz        Opcode = 0x3a
	OpIfGez        Opcode = 0x3b
	OpIfGtz        Opcode = 0x3c
	OpIfLez        Opcode = 0x3d

	// ========================================================================
	// Array, instance and static field access (0x44-0x69)
	// ========================================================================

	OpAget        Opcode = 0x44
	OpAgetObject  Opcode = 0x46
	OpAput        Opcode = 0x4b
	OpAputObject  Opcode = 0x4d
	OpIget        Opcode = 0x52
	OpIgetObject  Opcode = 0x54
	OpIgetBoolean Opcode = 0x55
	OpIput        Opcode = 0x59
	OpIputObject  Opcode = 0x5b
	OpIputBoolean Opcode = 0x5c
	OpSget        Opcode = 0x60
	OpSgetObject  Opcode = 0x62
	OpSgetBoolean Opcode = 0x63
	OpSput        Opcode = 0x67
	OpSputObject  Opcode = 0x69

	// ========================================================================
	// Invocations (0x6e-0x77)
	// ========================================================================

	OpInvokeVirtual      Opcode = 0x6e
	OpInvokeSuper        Opcode = 0x6f
	OpInvokeDirect       Opcode = 0x70
	OpInvokeStatic       Opcode = 0x71
	OpInvokeInterface    Opcode = 0x72
	OpInvokeVirtualRange Opcode = 0x74
	OpInvokeStaticRange  Opcode = 0x77

	// ========================================================================
	// Arithmetic (0x90-0xd8)
	// ========================================================================

	OpAddInt     Opcode = 0x90
	OpSubInt     Opcode = 0x91
	OpAddIntLit8 Opcode = 0xd8

	// OpAny is not an instruction. In opcode patterns it matches any opcode.
	OpAny Opcode = 0xffff
)

// ReferenceKind classifies what an instruction's Reference operand names.
type ReferenceKind int

const (
	// RefNone means the instruction carries no reference operand.
	RefNone ReferenceKind = iota
	// RefString means the reference is a string constant.
	RefString
	// RefType means the reference is a type descriptor.
	RefType
	// RefField means the reference is a field descriptor.
	RefField
	// RefMethod means the reference is a method descriptor.
	RefMethod
)

// String returns a short name for the reference kind.
func (k ReferenceKind) String() string {
	switch k {
	case RefNone:
		return "none"
	case RefString:
		return "string"
	case RefType:
		return "type"
	case RefField:
		return "field"
	case RefMethod:
		return "method"
	default:
		return fmt.Sprintf("ReferenceKind(%d)", int(k))
	}
}

// OpcodeInfo provides metadata about each opcode.
type OpcodeInfo struct {
	Name      string        // Smali mnemonic
	Reference ReferenceKind // Kind of reference operand, if any
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Moves and returns
	OpNop:              {"nop", RefNone},
	OpMove:             {"move", RefNone},
	OpMoveObject:       {"move-object", RefNone},
	OpMoveResult:       {"move-result", RefNone},
	OpMoveResultWide:   {"move-result-wide", RefNone},
	OpMoveResultObject: {"move-result-object", RefNone},
	OpMoveException:    {"move-exception", RefNone},
	OpReturnVoid:       {"return-void", RefNone},
	OpReturn:           {"return", RefNone},
	OpReturnWide:       {"return-wide", RefNone},
	OpReturnObject:     {"return-object", RefNone},

	// Constants
	OpConst4:           {"const/4", RefNone},
	OpConst16:          {"const/16", RefNone},
	OpConst:            {"const", RefNone},
	OpConstString:      {"const-string", RefString},
	OpConstStringJumbo: {"const-string/jumbo", RefString},
	OpConstClass:       {"const-class", RefType},

	// Objects and arrays
	OpCheckCast:   {"check-cast", RefType},
	OpInstanceOf:  {"instance-of", RefType},
	OpArrayLength: {"array-length", RefNone},
	OpNewInstance: {"new-instance", RefType},
	OpNewArray:    {"new-array", RefType},
	OpThrow:       {"throw", RefNone},

	// Control flow
	OpGoto:         {"goto", RefNone},
	OpPackedSwitch: {"packed-switch", RefNone},
	OpSparseSwitch: {"sparse-switch", RefNone},
	OpIfEq:         {"if-eq", RefNone},
	OpIfNe:         {"if-ne", RefNone},
	OpIfLt:         {"if-lt", RefNone},
	OpIfGe:         {"if-ge", RefNone},
	OpIfGt:         {"if-gt", RefNone},
	OpIfLe:         {"if-le", RefNone},
	OpIfEqz:        {"if-eqz", RefNone},
	OpIfNez:        {"if-nez", RefNone},
	OpIfLtz:        {"if-ltz", RefNone},
	OpIfGez:        {"if-gez", RefNone},
	OpIfGtz:        {"if-gtz", RefNone},
	OpIfLez:        {"if-lez", RefNone},

	// Field access
	OpAget:        {"aget", RefNone},
	OpAgetObject:  {"aget-object", RefNone},
	OpAput:        {"aput", RefNone},
	OpAputObject:  {"aput-object", RefNone},
	OpIget:        {"iget", RefField},
	OpIgetObject:  {"iget-object", RefField},
	OpIgetBoolean: {"iget-boolean", RefField},
	OpIput:        {"iput", RefField},
	OpIputObject:  {"iput-object", RefField},
	OpIputBoolean: {"iput-boolean", RefField},
	OpSget:        {"sget", RefField},
	OpSgetObject:  {"sget-object", RefField},
	OpSgetBoolean: {"sget-boolean", RefField},
	OpSput:        {"sput", RefField},
	OpSputObject:  {"sput-object", RefField},

	// Invocations
	OpInvokeVirtual:      {"invoke-virtual", RefMethod},
	OpInvokeSuper:        {"invoke-super", RefMethod},
	OpInvokeDirect:       {"invoke-direct", RefMethod},
	OpInvokeStatic:       {"invoke-static", RefMethod},
	OpInvokeInterface:    {"invoke-interface", RefMethod},
	OpInvokeVirtualRange: {"invoke-virtual/range", RefMethod},
	OpInvokeStaticRange:  {"invoke-static/range", RefMethod},

	// Arithmetic
	OpAddInt:     {"add-int", RefNone},
	OpSubInt:     {"sub-int", RefNone},
	OpAddIntLit8: {"add-int/lit8", RefNone},
}

// wildcardMnemonic is how OpAny is spelled in listings and declarations.
const wildcardMnemonic = "*"

// opcodeByMnemonic maps case-folded mnemonics back to opcodes.
var opcodeByMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[foldName(info.Name)] = op
	}
	return m
}()

// foldName case-folds a mnemonic or flag name for lookup.
// A Caser is stateful, so each call gets its own.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo with name "UNKNOWN(0x..)" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	if op == OpAny {
		return OpcodeInfo{Name: wildcardMnemonic}
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", uint16(op))}
}

// String returns the smali mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Reference returns the kind of reference operand the opcode carries.
func (op Opcode) Reference() ReferenceKind {
	return GetOpcodeInfo(op).Reference
}

// IsKnown reports whether op is a defined instruction opcode.
func (op Opcode) IsKnown() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// IsInvoke returns true if this opcode invokes a method.
func (op Opcode) IsInvoke() bool {
	return op.Reference() == RefMethod
}

// IsBranch returns true if this opcode is a conditional or unconditional jump.
func (op Opcode) IsBranch() bool {
	return op == OpGoto || (op >= OpIfEq && op <= OpIfLez)
}

// IsReturn returns true if this opcode returns from the method.
func (op Opcode) IsReturn() bool {
	return op >= OpReturnVoid && op <= OpReturnObject
}

// ParseOpcode looks up an opcode by mnemonic, ignoring case.
// The wildcard mnemonic "*" yields OpAny.
func ParseOpcode(name string) (Opcode, error) {
	name = strings.TrimSpace(name)
	if name == wildcardMnemonic {
		return OpAny, nil
	}
	if op, ok := opcodeByMnemonic[foldName(name)]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("bytecode: unknown opcode %q", name)
}

// AllOpcodes returns all defined opcodes in ascending order.
// OpAny is not included.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}

// MarshalText encodes the opcode as its mnemonic.
func (op Opcode) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText decodes a mnemonic, ignoring case.
func (op *Opcode) UnmarshalText(text []byte) error {
	parsed, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
