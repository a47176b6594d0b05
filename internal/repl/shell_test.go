package repl

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
	"github.com/roach88/bfi/internal/store"
	"github.com/roach88/bfi/internal/testutil"
)

// transcript runs the shell over the given lines and returns everything it
// printed. Prompts are not echoed.
func transcript(t *testing.T, lines []string, opts ...Option) (string, *engine.Session) {
	t.Helper()

	session, err := engine.NewSession(engine.DefaultConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	in := NewScannerReader(strings.NewReader(strings.Join(lines, "\n")+"\n"), nil)
	sh := New(session, in, &out, opts...)
	require.NoError(t, sh.Run(context.Background()))
	return out.String(), session
}

func TestShell_HelloWorld(t *testing.T) {
	out, _ := transcript(t, []string{testutil.HelloWorldCode, "q"})
	assert.Equal(t, testutil.HelloWorldText, out)
}

func TestShell_OutputEndsWithNewline(t *testing.T) {
	out, _ := transcript(t, []string{"++++++++[>++++++++<-]>+.", "q"})
	assert.Equal(t, "A\n", out)
}

func TestShell_TapePersistsBetweenLines(t *testing.T) {
	out, session := transcript(t, []string{"+++", ">++", "buffer", "index", "buffer 4", "q"})

	assert.Equal(t, "[3 2]\n1\n[3 2 0 0]\n", out)
	assert.Equal(t, 1, session.Pointer())
}

func TestShell_Reset(t *testing.T) {
	out, session := transcript(t, []string{"+++>+", "reset", "buffer", "index", "q"})

	assert.Equal(t, "tape cleared\n[0]\n0\n", out)
	assert.Equal(t, 0, session.Cell())
}

func TestShell_Formats(t *testing.T) {
	t.Run("decimal output", func(t *testing.T) {
		out, _ := transcript(t, []string{"output decimal", "+++++.", "q"})
		assert.Equal(t, "5\n", out)
	})

	t.Run("decimal input prompts per value", func(t *testing.T) {
		out, _ := transcript(t, []string{"input decimal", "output decimal", ",+.", "41", "q"})
		assert.Equal(t, "42\n", out)
	})

	t.Run("ascii input uses first character", func(t *testing.T) {
		out, _ := transcript(t, []string{",.", "xyz", "q"})
		assert.Equal(t, "x\n", out)
	})

	t.Run("show current", func(t *testing.T) {
		out, _ := transcript(t, []string{"input", "output latin1", "output", "q"})
		assert.Equal(t, "ascii\nlatin1\n", out)
	})

	t.Run("unknown format keeps current", func(t *testing.T) {
		out, _ := transcript(t, []string{"input hex", "input", "q"})
		assert.Contains(t, out, "'hex' format not available")
		assert.True(t, strings.HasSuffix(out, "ascii\n"), "output: %q", out)
	})
}

func TestShell_Separator(t *testing.T) {
	out, _ := transcript(t, []string{"output decimal", "+.+.", "q"}, WithSeparator(","))
	assert.Equal(t, "1,2,\n", out)
}

func TestShell_FaultKeepsSession(t *testing.T) {
	out, session := transcript(t, []string{"+", "<<", "index", "+", "buffer", "q"})

	assert.Contains(t, out, "error: [E301] pointer out of bounds")
	assert.Contains(t, out, "(pointer 0, cell 1)")
	assert.True(t, strings.HasSuffix(out, "0\n[2]\n"), "output: %q", out)
	assert.Equal(t, engine.StateHalted, session.State())
}

func TestShell_BracketMismatch(t *testing.T) {
	out, session := transcript(t, []string{"+++", "[", "+]", "buffer", "q"})

	assert.Contains(t, out, "error: [E201] unmatched '['")
	assert.Contains(t, out, "error: [E202] unmatched ']'")
	assert.True(t, strings.HasSuffix(out, "[3]\n"), "tape untouched: %q", out)
	assert.Equal(t, 3, session.Cell())
}

func TestShell_EOFPolicy(t *testing.T) {
	session, err := engine.NewSession(engine.DefaultConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	in := NewScannerReader(strings.NewReader(","), nil)
	sh := New(session, in, &out, WithEOF(ioport.EOFError))
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "error: EOF")
}

func TestShell_UnknownCommand(t *testing.T) {
	out, _ := transcript(t, []string{"hello", "", "   ", "q"})
	assert.Equal(t, "unknown command \"hello\" (type help)\n", out)
}

func TestShell_Help(t *testing.T) {
	out, _ := transcript(t, []string{"help", "quit"})
	assert.Equal(t, HelpText+"\n", out)
}

func TestShell_EndOfInput(t *testing.T) {
	out, _ := transcript(t, []string{"+"})
	assert.Equal(t, "\n", out)
}

type interruptingReader struct {
	calls int
}

func (r *interruptingReader) ReadLine(string) (string, error) {
	r.calls++
	switch r.calls {
	case 1:
		return "", ErrInterrupt
	case 2:
		return "index", nil
	default:
		return "", io.EOF
	}
}

func TestShell_InterruptContinues(t *testing.T) {
	session, err := engine.NewSession(engine.DefaultConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	lines := &interruptingReader{}
	require.NoError(t, New(session, lines, &out).Run(context.Background()))

	assert.Equal(t, 3, lines.calls)
	assert.Equal(t, "0\n\n", out.String())
}

func TestShell_CancelledContext(t *testing.T) {
	session, err := engine.NewSession(engine.DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = New(session, NewScannerReader(strings.NewReader("+\n"), nil), io.Discard).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShell_Prompts(t *testing.T) {
	session, err := engine.NewSession(engine.DefaultConfig())
	require.NoError(t, err)

	var out bytes.Buffer
	in := NewScannerReader(strings.NewReader(",.\nA\nq\n"), &out)
	require.NoError(t, New(session, in, &out, WithPrompt("> ")).Run(context.Background()))

	assert.Equal(t, "> "+ioport.PromptRune+"A\n> ", out.String())
}

func TestShell_RecordsHistory(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, session := transcript(t, []string{"output decimal", "++.", "<", "help", "q"},
		WithHistory(st, testutil.NewSequentialIDGenerator("run")))
	assert.Equal(t, 2, session.Cell())

	runs, err := st.ListRuns(context.Background(), store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-0001", runs[0].ID)
	assert.Equal(t, store.StatusHalted, runs[0].Status)
	assert.Equal(t, []int{2}, runs[0].Output)
	assert.Equal(t, "decimal", runs[0].OutputFormat)
	assert.Equal(t, store.OriginREPL, runs[0].Origin)

	assert.Equal(t, "run-0002", runs[1].ID)
	assert.Equal(t, store.StatusFaulted, runs[1].Status)
	assert.Equal(t, engine.ErrCodeOutOfBounds, runs[1].ErrorCode)
}
