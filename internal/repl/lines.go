package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// ErrInterrupt is returned by a LineReader when the user pressed Ctrl-C.
var ErrInterrupt = errors.New("interrupted")

// ReadlineReader reads lines from a terminal with editing and history.
type ReadlineReader struct {
	rl *readline.Instance
}

// NewReadline opens the terminal. An empty historyFile disables history.
func NewReadline(prompt, historyFile string) (*ReadlineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: historyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return &ReadlineReader{rl: rl}, nil
}

// ReadLine shows prompt and returns the next line.
func (r *ReadlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	return line, err
}

// Close restores the terminal.
func (r *ReadlineReader) Close() error {
	return r.rl.Close()
}

// ScannerReader reads lines from a plain stream, for pipes and tests.
type ScannerReader struct {
	scanner *bufio.Scanner
	prompts io.Writer
}

// NewScannerReader reads from r and writes prompts to prompts, which may be
// nil to suppress them.
func NewScannerReader(r io.Reader, prompts io.Writer) *ScannerReader {
	return &ScannerReader{scanner: bufio.NewScanner(r), prompts: prompts}
}

// ReadLine writes prompt and returns the next line without its newline.
// io.EOF is returned when the stream ends.
func (r *ScannerReader) ReadLine(prompt string) (string, error) {
	if r.prompts != nil {
		fmt.Fprint(r.prompts, prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}
