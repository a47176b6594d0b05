package ioport

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Source is where preset inputs read from.
type Source interface {
	// ReadRune returns the next character.
	ReadRune() (rune, error)
	// ReadByte returns the next raw byte.
	ReadByte() (byte, error)
	// ReadToken returns the next whitespace-delimited token.
	ReadToken() (string, error)
}

// StreamSource reads values from a byte stream.
type StreamSource struct {
	r *bufio.Reader
}

// NewStreamSource wraps r. Reads are buffered, so r should not be read by
// anything else afterwards.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: bufio.NewReader(r)}
}

// ReadRune returns the next UTF-8 character. Invalid encodings yield
// utf8.RuneError, matching bufio.Reader.
func (s *StreamSource) ReadRune() (rune, error) {
	r, _, err := s.r.ReadRune()
	return r, err
}

// ReadByte returns the next byte.
func (s *StreamSource) ReadByte() (byte, error) {
	return s.r.ReadByte()
}

// ReadToken skips leading whitespace and returns the following run of
// non-space characters. io.EOF is returned only when no token remains.
func (s *StreamSource) ReadToken() (string, error) {
	var b strings.Builder
	for {
		r, _, err := s.r.ReadRune()
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if unicode.IsSpace(r) {
			if b.Len() > 0 {
				return b.String(), nil
			}
			continue
		}
		b.WriteRune(r)
	}
}

// LineReader reads one line of user input after showing prompt.
// The returned line has no trailing newline.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Prompts shown by LineSource.
const (
	PromptRune    = "ascii: "
	PromptByte    = "latin1: "
	PromptDecimal = "decimal: "
)

// LineSource asks for one line per value.
//
// Only the first character of a line is used for ReadRune and ReadByte; an
// empty line stands for a newline character. ReadToken uses the trimmed line.
type LineSource struct {
	lines LineReader
}

// NewLineSource creates a prompting source.
func NewLineSource(lines LineReader) *LineSource {
	return &LineSource{lines: lines}
}

// ReadRune prompts and returns the first character of the line.
func (s *LineSource) ReadRune() (rune, error) {
	line, err := s.lines.ReadLine(PromptRune)
	if err != nil {
		return 0, err
	}
	return firstRune(line), nil
}

// ReadByte prompts and returns the first character of the line, which must
// fit in one byte.
func (s *LineSource) ReadByte() (byte, error) {
	line, err := s.lines.ReadLine(PromptByte)
	if err != nil {
		return 0, err
	}
	r := firstRune(line)
	if r > 0xFF {
		return 0, &EncodingError{Preset: "latin1", Value: int(r)}
	}
	return byte(r), nil
}

// ReadToken prompts and returns the trimmed line.
func (s *LineSource) ReadToken() (string, error) {
	line, err := s.lines.ReadLine(PromptDecimal)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func firstRune(line string) rune {
	if line == "" {
		return '\n'
	}
	r, _ := utf8.DecodeRuneInString(line)
	return r
}
