// Package repl implements the interactive bfi shell.
//
// Each line is either a shell command or program text. Program text runs
// against one persistent session, so the tape and pointer carry over from
// line to line until the user types reset.
//
// Commands:
//
//	input <fmt>    select the input preset (ascii, decimal, latin1)
//	output <fmt>   select the output preset
//	buffer [n]     print the used tape, or the first n cells
//	index          print the pointer
//	reset          zero the tape and pointer
//	help           list commands and instructions
//	q, quit        leave the shell
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/bfi/internal/compiler"
	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
	"github.com/roach88/bfi/internal/store"
)

// DefaultPrompt is shown before every command line.
const DefaultPrompt = "bf$ "

// HelpText is printed by the help command.
const HelpText = `Instructions:
  >   move the pointer right
  <   move the pointer left
  +   increment the cell under the pointer
  -   decrement the cell under the pointer
  .   output the cell under the pointer
  ,   read one value into the cell under the pointer
  [   skip past the matching ] if the cell is zero
  ]   jump back past the matching [ if the cell is not zero

Commands:
  input <fmt>    select the input format (ascii, decimal, latin1)
  output <fmt>   select the output format
  buffer [n]     print the used tape, or the first n cells
  index          print the pointer position
  reset          zero the tape and move the pointer to 0
  help           print this message
  q, quit        leave the shell

Any other line is run as a program against the current tape.`

// Shell is an interactive session.
type Shell struct {
	session *engine.Session
	lines   ioport.LineReader
	out     io.Writer

	prompt    string
	inFormat  ioport.Preset
	outFormat ioport.Preset
	eof       ioport.EOFPolicy
	separator string

	logger  *slog.Logger
	history *store.Store
	ids     engine.RunIDGenerator
}

// Option configures a Shell.
type Option func(*Shell)

// WithPrompt replaces DefaultPrompt.
func WithPrompt(prompt string) Option {
	return func(s *Shell) {
		s.prompt = prompt
	}
}

// WithEOF sets the end-of-input policy for program input.
func WithEOF(p ioport.EOFPolicy) Option {
	return func(s *Shell) {
		s.eof = p
	}
}

// WithSeparator sets the decimal output separator.
func WithSeparator(sep string) Option {
	return func(s *Shell) {
		s.separator = sep
	}
}

// WithLogger sets the logger for session lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = l
	}
}

// WithHistory records every program line in st.
func WithHistory(st *store.Store, ids engine.RunIDGenerator) Option {
	return func(s *Shell) {
		s.history = st
		s.ids = ids
	}
}

// New creates a shell over session. Lines are read from lines; program
// output and command replies go to out.
func New(session *engine.Session, lines ioport.LineReader, out io.Writer, opts ...Option) *Shell {
	ascii, _ := ioport.Lookup(ioport.ASCII)
	s := &Shell{
		session:   session,
		lines:     lines,
		out:       out,
		prompt:    DefaultPrompt,
		inFormat:  ascii,
		outFormat: ascii,
		logger:    slog.Default(),
		ids:       engine.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetInput selects the input preset by name.
func (s *Shell) SetInput(name string) error {
	p, err := ioport.Lookup(name)
	if err != nil {
		return err
	}
	s.inFormat = p
	return nil
}

// SetOutput selects the output preset by name.
func (s *Shell) SetOutput(name string) error {
	p, err := ioport.Lookup(name)
	if err != nil {
		return err
	}
	s.outFormat = p
	return nil
}

// Run reads and handles lines until quit or the end of input.
// Ctrl-C abandons the current line. Program faults are printed and the
// session is kept; only line reader failures are returned.
func (s *Shell) Run(ctx context.Context) error {
	s.logger.Debug("shell started",
		"tape_size", s.session.Capacity(),
		"input", s.inFormat.Name,
		"output", s.outFormat.Name)
	defer s.logger.Debug("shell stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.lines.ReadLine(s.prompt)
		switch {
		case errors.Is(err, ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out)
			return nil
		case err != nil:
			return fmt.Errorf("read line: %w", err)
		}

		if quit := s.Handle(ctx, line); quit {
			return nil
		}
	}
}

// Handle processes one line and reports whether the shell should exit.
func (s *Shell) Handle(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "q", "quit":
		return true
	case "help":
		fmt.Fprintln(s.out, HelpText)
	case "input":
		s.selectFormat(args, s.SetInput, s.inFormat.Name)
	case "output":
		s.selectFormat(args, s.SetOutput, s.outFormat.Name)
	case "buffer":
		s.printBuffer(args)
	case "index":
		fmt.Fprintln(s.out, s.session.Pointer())
	case "reset":
		s.session.Reset()
		s.logger.Debug("session reset")
		fmt.Fprintln(s.out, "tape cleared")
	default:
		s.runProgram(ctx, line)
	}
	return false
}

func (s *Shell) selectFormat(args []string, set func(string) error, current string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, current)
		return
	}
	if err := set(args[0]); err != nil {
		fmt.Fprintln(s.out, err)
	}
}

func (s *Shell) printBuffer(args []string) {
	cells := s.session.UsedTape()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			fmt.Fprintf(s.out, "invalid buffer length %q\n", args[0])
			return
		}
		n = min(n, s.session.Capacity())
		cells = s.session.Tape()[:n]
	}
	fmt.Fprintln(s.out, cells)
}

// runProgram executes one line of program text.
func (s *Shell) runProgram(ctx context.Context, line string) {
	cleaned := compiler.Clean(line, 0)
	if cleaned.Code == "" {
		fmt.Fprintf(s.out, "unknown command %q (type help)\n", strings.Fields(line)[0])
		return
	}

	tracker := &lastByteWriter{w: s.out}
	var values []int
	rendered := s.outFormat.NewOutput(tracker, ioport.OutputOptions{Separator: s.separator})
	out := engine.OutputFunc(func(v int) error {
		values = append(values, v)
		return rendered.Write(v)
	})
	in := s.inFormat.NewInput(ioport.NewLineSource(s.lines), ioport.InputOptions{EOF: s.eof})

	err := s.session.Process(cleaned.Code, out, in)
	if tracker.n > 0 && tracker.last != '\n' {
		fmt.Fprintln(s.out)
	}
	if err != nil {
		fmt.Fprintf(s.out, "error: %v (pointer %d, cell %d)\n", err, s.session.Pointer(), s.session.Cell())
	}

	s.record(ctx, cleaned.Code, values, err)
}

func (s *Shell) record(ctx context.Context, code string, values []int, runErr error) {
	if s.history == nil {
		return
	}
	run := store.NewRun(s.session, code, store.Outcome{
		ID:           s.ids.Generate(),
		Origin:       store.OriginREPL,
		InputFormat:  s.inFormat.Name,
		OutputFormat: s.outFormat.Name,
		Output:       values,
		Err:          runErr,
	})
	if _, err := s.history.WriteRun(ctx, run); err != nil {
		s.logger.Warn("failed to record run", "error", err)
	}
}

// lastByteWriter remembers the last byte written so the shell can end
// program output with a newline before the next prompt.
type lastByteWriter struct {
	w    io.Writer
	n    int
	last byte
}

func (t *lastByteWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.n += n
		t.last = p[n-1]
	}
	return n, err
}
