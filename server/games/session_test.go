package games

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_Messages(t *testing.T) {
	t.Parallel()

	s := NewSession()
	require.Equal(t, "My guess is 50", s.Message())

	require.NoError(t, s.Higher())
	require.NoError(t, s.Lower())
	require.Equal(t, "My guess is 62", s.Message())

	require.NoError(t, s.Correct())
	require.True(t, s.Solved())
	require.Equal(t, "I guessed 62 in 3 guesses.", s.Message())
}

func TestSession_NoFeedbackAfterCorrect(t *testing.T) {
	t.Parallel()

	s := NewSession()
	require.NoError(t, s.Correct())

	require.ErrorIs(t, s.Higher(), ErrSolved)
	require.ErrorIs(t, s.Lower(), ErrSolved)
	require.ErrorIs(t, s.Correct(), ErrSolved)
	require.Equal(t, "I guessed 50 in 1 guesses.", s.Message())
}

func TestSession_Snapshot(t *testing.T) {
	t.Parallel()

	s := NewSession()
	require.NoError(t, s.Lower())

	require.Equal(t, State{
		Prompt:  Prompt,
		Guess:   25,
		Guesses: 2,
		Low:     1,
		High:    49,
		Message: "My guess is 25",
	}, s.Snapshot())
}
