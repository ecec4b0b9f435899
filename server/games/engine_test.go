package games

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireState(t *testing.T, e *Engine, low, high, guess, count int) {
	t.Helper()
	l, h := e.Bounds()
	require.Equal(t, low, l, "low")
	require.Equal(t, high, h, "high")
	require.Equal(t, guess, e.CurrentGuess(), "guess")
	require.Equal(t, count, e.GuessCount(), "guess count")
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	requireState(t, e, 1, 100, 50, 1)
	require.False(t, e.Converged())
}

func TestEngine_GuessHigher(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.GuessHigher())
	requireState(t, e, 51, 100, 75, 2)
}

func TestEngine_GuessLower(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.GuessLower())
	requireState(t, e, 1, 49, 25, 2)
}

func TestEngine_AlwaysHigher(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	want := []int{75, 88, 94, 97, 99, 100}
	for i, g := range want {
		require.NoError(t, e.GuessHigher(), "call %d", i+1)
		require.Equal(t, g, e.CurrentGuess(), "call %d", i+1)
	}
	require.True(t, e.Converged())

	// The seventh "higher" has nowhere left to go.
	err := e.GuessHigher()
	require.ErrorIs(t, err, ErrRangeExhausted)
	requireState(t, e, 100, 100, 100, 7)
}

func TestEngine_AlwaysLower(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	for _, g := range []int{25, 12, 6, 3, 1} {
		require.NoError(t, e.GuessLower())
		require.Equal(t, g, e.CurrentGuess())
	}
	requireState(t, e, 1, 2, 1, 6)

	require.ErrorIs(t, e.GuessLower(), ErrRangeExhausted)
	requireState(t, e, 1, 2, 1, 6)

	require.NoError(t, e.GuessHigher())
	requireState(t, e, 2, 2, 2, 7)
	require.ErrorIs(t, e.GuessHigher(), ErrRangeExhausted)
	require.ErrorIs(t, e.GuessLower(), ErrRangeExhausted)
}

func TestEngine_Reset(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.GuessHigher())
	require.NoError(t, e.GuessLower())
	e.Reset()
	requireState(t, e, 1, 100, 50, 1)
}

func TestEngine_QueriesAreIdempotent(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.GuessLower())
	for i := 0; i < 3; i++ {
		require.Equal(t, 25, e.CurrentGuess())
		require.Equal(t, 2, e.GuessCount())
	}
}

// Every number in range is found within seven guesses.
func TestEngine_FindsEveryNumber(t *testing.T) {
	t.Parallel()

	for target := MinNumber; target <= MaxNumber; target++ {
		e := NewEngine()
		for e.CurrentGuess() != target {
			var err error
			if e.CurrentGuess() < target {
				err = e.GuessHigher()
			} else {
				err = e.GuessLower()
			}
			require.NoError(t, err, "target %d", target)
		}
		require.LessOrEqual(t, e.GuessCount(), 7, "target %d", target)
	}
}

func TestEngine_NarrowingInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for game := 0; game < 200; game++ {
		e := NewEngine()
		for step := 0; step < 10; step++ {
			oldLow, oldHigh := e.Bounds()
			oldGuess, oldCount := e.CurrentGuess(), e.GuessCount()

			higher := rng.Intn(2) == 0
			var err error
			if higher {
				err = e.GuessHigher()
			} else {
				err = e.GuessLower()
			}

			low, high := e.Bounds()
			if err != nil {
				require.ErrorIs(t, err, ErrRangeExhausted)
				requireState(t, e, oldLow, oldHigh, oldGuess, oldCount)
				continue
			}

			if higher {
				require.Greater(t, low, oldGuess)
				require.Equal(t, oldHigh, high)
			} else {
				require.Less(t, high, oldGuess)
				require.Equal(t, oldLow, low)
			}
			require.Less(t, high-low, oldHigh-oldLow)
			require.Equal(t, oldCount+1, e.GuessCount())

			require.LessOrEqual(t, MinNumber, low)
			require.LessOrEqual(t, low, e.CurrentGuess())
			require.LessOrEqual(t, e.CurrentGuess(), high)
			require.LessOrEqual(t, high, MaxNumber)
		}
	}
}
