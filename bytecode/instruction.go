package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction is one decoded instruction of a method body.
type Instruction struct {
	// Opcode is the operation code.
	Opcode Opcode
	// Registers lists the register operands in encoding order.
	Registers []int
	// Literal is the immediate operand (constant value or branch offset).
	Literal int64
	// HasLiteral distinguishes a zero literal from no literal.
	HasLiteral bool
	// Reference is the string constant, type, field, or method the
	// instruction refers to. Its meaning follows Opcode.Reference().
	Reference string
}

// NewInstruction builds an instruction with register operands only.
func NewInstruction(op Opcode, registers ...int) Instruction {
	return Instruction{Opcode: op, Registers: registers}
}

// StringReference returns the string constant loaded by the instruction.
func (i Instruction) StringReference() (string, bool) {
	if i.Opcode.Reference() != RefString {
		return "", false
	}
	return i.Reference, true
}

// String renders the instruction in listing syntax, e.g.
// `const-string v0, "hello"` or `invoke-virtual v1, Lcom/a/B;->c()V`.
func (i Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Opcode.String())

	operands := make([]string, 0, len(i.Registers)+2)
	for _, r := range i.Registers {
		operands = append(operands, "v"+strconv.Itoa(r))
	}
	if i.HasLiteral {
		operands = append(operands, strconv.FormatInt(i.Literal, 10))
	}
	if i.Reference != "" || i.Opcode.Reference() == RefString {
		if i.Opcode.Reference() == RefString {
			operands = append(operands, strconv.Quote(i.Reference))
		} else {
			operands = append(operands, i.Reference)
		}
	}

	if len(operands) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(operands, ", "))
	}
	return b.String()
}

// clone returns a copy that shares no slices with i.
func (i Instruction) clone() Instruction {
	if i.Registers != nil {
		i.Registers = append([]int(nil), i.Registers...)
	}
	return i
}

// ParseInstruction parses the listing syntax produced by Instruction.String.
//
// Operands are comma separated. `vN` is a register, a quoted operand is a
// string reference, an integer (decimal or 0x hex) is the literal, and any
// other operand is a type, field, or method reference.
func ParseInstruction(text string) (Instruction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Instruction{}, fmt.Errorf("bytecode: empty instruction")
	}

	mnemonic, rest, _ := strings.Cut(text, " ")
	op, err := ParseOpcode(mnemonic)
	if err != nil {
		return Instruction{}, err
	}
	if op == OpAny {
		return Instruction{}, fmt.Errorf("bytecode: wildcard is not an instruction")
	}

	insn := Instruction{Opcode: op}
	operands, err := splitOperands(rest)
	if err != nil {
		return Instruction{}, fmt.Errorf("bytecode: %s: %w", mnemonic, err)
	}

	for _, operand := range operands {
		switch {
		case strings.HasPrefix(operand, `"`):
			s, err := strconv.Unquote(operand)
			if err != nil {
				return Instruction{}, fmt.Errorf("bytecode: %s: invalid string operand %s", mnemonic, operand)
			}
			insn.Reference = s
		case isRegister(operand):
			n, _ := strconv.Atoi(operand[1:])
			insn.Registers = append(insn.Registers, n)
		default:
			if n, err := strconv.ParseInt(operand, 0, 64); err == nil {
				insn.Literal = n
				insn.HasLiteral = true
				continue
			}
			insn.Reference = operand
		}
	}

	return insn, nil
}

func isRegister(operand string) bool {
	if len(operand) < 2 || operand[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(operand[1:])
	return err == nil
}

// splitOperands splits on commas outside quoted strings.
func splitOperands(s string) ([]string, error) {
	var operands []string
	var cur strings.Builder
	inQuote := false
	escaped := false

	flush := func() {
		if v := strings.TrimSpace(cur.String()); v != "" {
			operands = append(operands, v)
		}
		cur.Reset()
	}

	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated string operand")
	}
	flush()
	return operands, nil
}
