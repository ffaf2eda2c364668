package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

func TestNewDrawsWithinRange(t *testing.T) {
	require.Equal(t, Min, New(fixedSource(0)).Target())
	require.Equal(t, Max, New(fixedSource(Max-Min)).Target())

	for i := 0; i < 500; i++ {
		g := New(nil)
		require.GreaterOrEqual(t, g.Target(), Min)
		require.LessOrEqual(t, g.Target(), Max)
		require.Equal(t, StatusActive, g.Status())
	}
}

func TestGuessClassification(t *testing.T) {
	g := NewWithTarget(42)

	require.Equal(t, Lower, g.Guess("50"))
	require.Equal(t, Higher, g.Guess("30"))
	require.Equal(t, Higher, g.Guess(" 9 "))
	require.Equal(t, Lower, g.Guess("100"))
	require.Equal(t, 4, g.Guesses())
	require.False(t, g.Over())

	require.Equal(t, Won, g.Guess("42"))
	require.Equal(t, StatusWon, g.Status())
	require.Equal(t, 5, g.Guesses())
	require.Equal(t, 42, g.Target())
}

func TestGuessUsesNumericComparison(t *testing.T) {
	// "9" sorts after "42" as a string but is numerically smaller.
	g := NewWithTarget(42)
	require.Equal(t, Higher, g.Guess("9"))

	g = NewWithTarget(9)
	require.Equal(t, Lower, g.Guess("10"))
}

func TestInvalidGuessesDoNotChangeState(t *testing.T) {
	g := NewWithTarget(42)
	for _, text := range []string{"abc", "", "0", "101", "-5", "4.2", "42abc", "forty-two"} {
		require.Equal(t, Invalid, g.Guess(text), "text %q", text)
	}
	require.Equal(t, 0, g.Guesses())
	require.Equal(t, StatusActive, g.Status())
	require.Equal(t, 42, g.Target())
}

func TestQuitRevealsTarget(t *testing.T) {
	g := NewWithTarget(42)
	require.Equal(t, Quit, g.Guess("QUIT "))
	require.Equal(t, StatusQuit, g.Status())
	require.True(t, g.Over())
	require.Equal(t, 42, g.Target())

	// finished games keep their verdict
	require.Equal(t, Quit, g.Guess("42"))
}

func TestNewWithTargetRejectsOutOfRange(t *testing.T) {
	require.Panics(t, func() { NewWithTarget(0) })
	require.Panics(t, func() { NewWithTarget(101) })
}
