package ir

// Instruction is one of the eight source characters the language recognizes.
type Instruction byte

const (
	OpRight  Instruction = '>'
	OpLeft   Instruction = '<'
	OpInc    Instruction = '+'
	OpDec    Instruction = '-'
	OpOutput Instruction = '.'
	OpInput  Instruction = ','
	OpLoop   Instruction = '['
	OpEnd    Instruction = ']'
)

// Alphabet lists every instruction character in canonical order.
const Alphabet = "><+-.,[]"

// IsInstruction reports whether c is one of the eight instruction characters.
func IsInstruction(c byte) bool {
	switch Instruction(c) {
	case OpRight, OpLeft, OpInc, OpDec, OpOutput, OpInput, OpLoop, OpEnd:
		return true
	}
	return false
}

// String returns the instruction as its source character.
func (i Instruction) String() string {
	return string(rune(i))
}

// Name returns a human-readable name for diagnostics.
func (i Instruction) Name() string {
	switch i {
	case OpRight:
		return "move-right"
	case OpLeft:
		return "move-left"
	case OpInc:
		return "increment"
	case OpDec:
		return "decrement"
	case OpOutput:
		return "output"
	case OpInput:
		return "input"
	case OpLoop:
		return "loop-open"
	case OpEnd:
		return "loop-close"
	default:
		return "unknown"
	}
}
