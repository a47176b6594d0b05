package ir

// Program is cleaned source whose brackets have been validated.
//
// Code contains only instruction characters. ID is the content-addressed
// identity of Code (see ProgramID) and is stable across runs and machines.
type Program struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// NewProgram builds a Program for already-cleaned code.
func NewProgram(code string) (Program, error) {
	id, err := ProgramID(code)
	if err != nil {
		return Program{}, err
	}
	return Program{ID: id, Code: code}, nil
}

// Len returns the number of instructions.
func (p Program) Len() int {
	return len(p.Code)
}

// At returns the instruction at index i.
func (p Program) At(i int) Instruction {
	return Instruction(p.Code[i])
}
