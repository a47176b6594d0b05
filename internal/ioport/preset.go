package ioport

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/roach88/bfi/internal/engine"
)

// EOFPolicy decides what an input returns once its source is exhausted.
type EOFPolicy int

const (
	// EOFZero stores 0.
	EOFZero EOFPolicy = iota
	// EOFMinusOne stores -1, which wraps to the cell maximum.
	EOFMinusOne
	// EOFError fails the run with io.EOF.
	EOFError
)

func (p EOFPolicy) String() string {
	switch p {
	case EOFZero:
		return "zero"
	case EOFMinusOne:
		return "minus-one"
	case EOFError:
		return "error"
	default:
		return fmt.Sprintf("EOFPolicy(%d)", int(p))
	}
}

// ParseEOFPolicy converts "zero", "minus-one" or "error" into an EOFPolicy.
func ParseEOFPolicy(s string) (EOFPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return EOFZero, nil
	case "minus-one", "-1":
		return EOFMinusOne, nil
	case "error":
		return EOFError, nil
	default:
		return EOFZero, fmt.Errorf("invalid eof policy %q: must be zero, minus-one or error", s)
	}
}

// InputOptions configures a preset input.
type InputOptions struct {
	EOF EOFPolicy
}

// OutputOptions configures a preset output.
type OutputOptions struct {
	// Separator follows every decimal literal. Empty means DefaultSeparator.
	Separator string
}

// DefaultSeparator ends every value written by the decimal output.
const DefaultSeparator = "\n"

// Preset bundles a matching input and output constructor.
type Preset struct {
	Name        string
	Description string

	newInput  func(src Source, opts InputOptions) engine.Input
	newOutput func(w io.Writer, opts OutputOptions) engine.Output
}

// NewInput builds the preset's input over src.
func (p Preset) NewInput(src Source, opts InputOptions) engine.Input {
	return p.newInput(src, opts)
}

// NewOutput builds the preset's output writing to w.
func (p Preset) NewOutput(w io.Writer, opts OutputOptions) engine.Output {
	return p.newOutput(w, opts)
}

// Preset names.
const (
	ASCII   = "ascii"
	Decimal = "decimal"
	Latin1  = "latin1"
)

var presets = map[string]Preset{
	ASCII: {
		Name:        ASCII,
		Description: "cell value as a character code point",
		newInput:    newASCIIInput,
		newOutput:   newASCIIOutput,
	},
	Decimal: {
		Name:        Decimal,
		Description: "cell value as a base-10 literal",
		newInput:    newDecimalInput,
		newOutput:   newDecimalOutput,
	},
	Latin1: {
		Name:        Latin1,
		Description: "cell value as one ISO-8859-1 byte",
		newInput:    newLatin1Input,
		newOutput:   newLatin1Output,
	},
}

// Lookup returns the preset called name.
// Unknown names fail with *FormatError, which matches ErrFormatNotAvailable.
func Lookup(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, &FormatError{Name: name}
	}
	return p, nil
}

// Names lists every preset name in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// onEOF applies the EOF policy to a read error.
func onEOF(err error, policy EOFPolicy) (int, error) {
	if !errors.Is(err, io.EOF) {
		return 0, err
	}
	switch policy {
	case EOFMinusOne:
		return -1, nil
	case EOFError:
		return 0, err
	default:
		return 0, nil
	}
}

func newASCIIInput(src Source, opts InputOptions) engine.Input {
	return engine.InputFunc(func() (int, error) {
		r, err := src.ReadRune()
		if err != nil {
			return onEOF(err, opts.EOF)
		}
		return int(r), nil
	})
}

func newASCIIOutput(w io.Writer, _ OutputOptions) engine.Output {
	buf := make([]byte, 0, utf8.UTFMax)
	return engine.OutputFunc(func(v int) error {
		r := rune(v)
		if v < 0 || v > utf8.MaxRune || !utf8.ValidRune(r) {
			r = utf8.RuneError
		}
		buf = utf8.AppendRune(buf[:0], r)
		_, err := w.Write(buf)
		return err
	})
}

func newDecimalInput(src Source, opts InputOptions) engine.Input {
	return engine.InputFunc(func() (int, error) {
		tok, err := src.ReadToken()
		if err != nil {
			return onEOF(err, opts.EOF)
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, &ParseError{Token: tok, Err: err}
		}
		return n, nil
	})
}

func newDecimalOutput(w io.Writer, opts OutputOptions) engine.Output {
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	var buf []byte
	return engine.OutputFunc(func(v int) error {
		buf = strconv.AppendInt(buf[:0], int64(v), 10)
		buf = append(buf, sep...)
		_, err := w.Write(buf)
		return err
	})
}

func newLatin1Input(src Source, opts InputOptions) engine.Input {
	return engine.InputFunc(func() (int, error) {
		b, err := src.ReadByte()
		if err != nil {
			return onEOF(err, opts.EOF)
		}
		return int(charmap.ISO8859_1.DecodeByte(b)), nil
	})
}

func newLatin1Output(w io.Writer, _ OutputOptions) engine.Output {
	var one [1]byte
	return engine.OutputFunc(func(v int) error {
		if v < 0 || v > 0xFF {
			return &EncodingError{Preset: Latin1, Value: v}
		}
		b, ok := charmap.ISO8859_1.EncodeRune(rune(v))
		if !ok {
			return &EncodingError{Preset: Latin1, Value: v}
		}
		one[0] = b
		_, err := w.Write(one[:])
		return err
	})
}
