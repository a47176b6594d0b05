package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/bfi/internal/compiler"
	"github.com/roach88/bfi/internal/ir"
)

// State is the execution state of a Session.
type State int

const (
	// StateIdle is a session that has not run anything since creation or Reset.
	StateIdle State = iota
	// StateRunning is set while Process executes instructions.
	StateRunning
	// StateHalted means the last run reached the end of its code.
	StateHalted
	// StateFaulted means the last run stopped on an error.
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats describes the last Process call.
type Stats struct {
	Steps      int `json:"steps"`       // instructions executed
	Reads      int `json:"reads"`       // ',' executed
	Writes     int `json:"writes"`      // '.' executed
	MaxPointer int `json:"max_pointer"` // highest pointer reached in the session
}

// Session owns a tape and its pointer across any number of Process calls.
//
// The tape and pointer persist between calls, which is what an interactive
// shell needs: each line continues where the previous one left off.
type Session struct {
	cfg     Config
	tape    *Tape
	pointer int
	state   State
	stats   Stats
	logger  *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger used for per-run diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a session with a zeroed tape and the pointer at 0.
func NewSession(cfg Config, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	tape, err := NewTape(cfg.TapeSize, cfg.CellBits)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:    cfg,
		tape:   tape,
		state:  StateIdle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Tape returns a copy of every cell.
func (s *Session) Tape() []int {
	return s.tape.Snapshot()
}

// UsedTape returns cells 0 through the highest position the pointer has
// reached in this session.
func (s *Session) UsedTape() []int {
	last := max(s.pointer, s.stats.MaxPointer)
	return s.tape.Snapshot()[:last+1]
}

// Pointer returns the tape pointer.
func (s *Session) Pointer() int {
	return s.pointer
}

// Cell returns the value of the cell under the pointer.
func (s *Session) Cell() int {
	return s.tape.Get(s.pointer)
}

// Capacity returns the tape size.
func (s *Session) Capacity() int {
	return s.tape.Len()
}

// State returns the state after the last Process call.
func (s *Session) State() State {
	return s.state
}

// Stats returns counters for the last Process call.
func (s *Session) Stats() Stats {
	return s.stats
}

// Reset zeroes the tape, moves the pointer to 0 and returns to StateIdle.
func (s *Session) Reset() {
	s.tape.Clear()
	s.pointer = 0
	s.state = StateIdle
	s.stats = Stats{}
}

// Process runs cleaned code against the session tape.
//
// Brackets are validated before the first instruction; a mismatch is
// returned as *compiler.BracketMismatch with the tape, pointer and state
// untouched. During the run, errors from out and in are returned unchanged,
// and the reject bounds policy and step limit fault with *OutOfBoundsError
// and *StepsExceededError. Characters that are not instructions are skipped.
//
// A nil out or in is allowed only for code that never uses it; otherwise
// ErrNoOutput or ErrNoInput is returned before execution.
//
// Reaching the end of code halts the run and returns nil.
func (s *Session) Process(code string, out Output, in Input) error {
	table, err := compiler.BuildJumpTable(code)
	if err != nil {
		return err
	}
	if out == nil && strings.IndexByte(code, byte(ir.OpOutput)) >= 0 {
		return ErrNoOutput
	}
	if in == nil && strings.IndexByte(code, byte(ir.OpInput)) >= 0 {
		return ErrNoInput
	}

	s.state = StateRunning
	s.stats = Stats{MaxPointer: s.stats.MaxPointer}
	quota := newStepQuota(s.cfg.MaxSteps)

	err = s.execute(code, table, quota, out, in)
	s.stats.Steps = quota.executed()
	if err != nil {
		s.state = StateFaulted
		s.logger.Debug("run faulted",
			"error", err,
			"pointer", s.pointer,
			"cell", s.Cell(),
			"steps", s.stats.Steps)
		return err
	}

	s.state = StateHalted
	s.logger.Debug("run halted",
		"instructions", len(code),
		"steps", s.stats.Steps,
		"pointer", s.pointer)
	return nil
}

func (s *Session) execute(code string, table *compiler.JumpTable, quota *stepQuota, out Output, in Input) error {
	ip := 0
	for ip < len(code) {
		op := ir.Instruction(code[ip])
		if !ir.IsInstruction(code[ip]) {
			ip++
			continue
		}
		if err := quota.check(ip); err != nil {
			return err
		}

		switch op {
		case ir.OpRight:
			if err := s.move(1, ip, op); err != nil {
				return err
			}
		case ir.OpLeft:
			if err := s.move(-1, ip, op); err != nil {
				return err
			}
		case ir.OpInc:
			s.tape.Add(s.pointer, 1)
		case ir.OpDec:
			s.tape.Add(s.pointer, -1)
		case ir.OpOutput:
			s.stats.Writes++
			if err := out.Write(s.tape.Get(s.pointer)); err != nil {
				return err
			}
		case ir.OpInput:
			s.stats.Reads++
			v, err := in.Read()
			if err != nil {
				return err
			}
			s.tape.Set(s.pointer, v)
		case ir.OpLoop:
			if s.tape.Get(s.pointer) == 0 {
				end, _ := table.Match(ip)
				ip = end + 1
				continue
			}
		case ir.OpEnd:
			if s.tape.Get(s.pointer) != 0 {
				start, _ := table.Match(ip)
				ip = start + 1
				continue
			}
		}
		ip++
	}
	return nil
}

// move shifts the pointer by delta under the configured bounds policy.
func (s *Session) move(delta, ip int, op ir.Instruction) error {
	next := s.pointer + delta
	size := s.tape.Len()

	if next < 0 || next >= size {
		if s.cfg.Bounds == BoundsWrap {
			next = ((next % size) + size) % size
		} else {
			return &OutOfBoundsError{
				Pointer:     next,
				Last:        s.pointer,
				Cell:        s.tape.Get(s.pointer),
				Instruction: ip,
				Op:          op,
				TapeSize:    size,
			}
		}
	}

	s.pointer = next
	if next > s.stats.MaxPointer {
		s.stats.MaxPointer = next
	}
	return nil
}

// Run cleans source without a length limit and processes it on a fresh
// session built from cfg. The session is returned even when the run fails so
// the caller can inspect the tape.
func Run(source string, cfg Config, out Output, in Input, opts ...SessionOption) (*Session, error) {
	s, err := NewSession(cfg, opts...)
	if err != nil {
		return nil, err
	}
	cleaned := compiler.Clean(source, 0)
	return s, s.Process(cleaned.Code, out, in)
}
