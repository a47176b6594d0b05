package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfi/internal/ir"
	"github.com/roach88/bfi/internal/testutil"
)

func TestCompile_HelloWorld(t *testing.T) {
	prog, cleaned, err := Compile(testutil.HelloWorldSource, 0)
	require.NoError(t, err)

	assert.Equal(t, testutil.HelloWorldCode, prog.Code)
	assert.Equal(t, ir.MustProgramID(testutil.HelloWorldCode), prog.ID)
	assert.False(t, cleaned.Truncated)
}

func TestCompile_SameCodeSameID(t *testing.T) {
	a, _, err := Compile("+ comment [-]", 0)
	require.NoError(t, err)
	b, _, err := Compile("+[\n-\n]", 0)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
}

func TestCompile_BracketMismatch(t *testing.T) {
	prog, cleaned, err := Compile("loop [ +", 0)
	require.Error(t, err)

	assert.True(t, IsBracketMismatch(err))
	assert.Empty(t, prog.Code)
	assert.Equal(t, "[+", cleaned.Code)
}

func TestCompile_TruncationCanUnbalance(t *testing.T) {
	// Cutting at capacity 2 drops the closing bracket.
	_, cleaned, err := Compile("+[-]", 2)
	require.Error(t, err)

	assert.True(t, cleaned.Truncated)
	assert.Equal(t, 2, cleaned.Dropped)

	wrapped := fmt.Errorf("load: %w", err)
	var bm *BracketMismatch
	require.ErrorAs(t, wrapped, &bm)
	assert.Equal(t, UnmatchedOpen, bm.Kind)
	assert.Equal(t, 1, bm.Position)
}
