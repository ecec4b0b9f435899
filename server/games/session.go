package games

import (
	"errors"
	"fmt"
)

// ErrSolved is returned for feedback given after the player confirmed the guess.
var ErrSolved = errors.New("game already solved")

// Prompt is shown to the player when a game starts.
const Prompt = "Think of a number between 1-100."

// State is what a front end renders for a session.
type State struct {
	Prompt    string `json:"prompt"`
	Guess     int    `json:"guess"`
	Guesses   int    `json:"guesses"`
	Low       int    `json:"low"`
	High      int    `json:"high"`
	Converged bool   `json:"converged"`
	Solved    bool   `json:"solved"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// Session is one game: an engine plus whether the player has said "correct".
// A solved session accepts no more feedback; start a new one to play again.
type Session struct {
	engine *Engine
	solved bool
}

// NewSession starts a game at the first guess.
func NewSession() *Session {
	return &Session{engine: NewEngine()}
}

// Higher tells the engine the number is above the current guess.
func (s *Session) Higher() error {
	if s.solved {
		return fmt.Errorf("higher: %w", ErrSolved)
	}
	return s.engine.GuessHigher()
}

// Lower tells the engine the number is below the current guess.
func (s *Session) Lower() error {
	if s.solved {
		return fmt.Errorf("lower: %w", ErrSolved)
	}
	return s.engine.GuessLower()
}

// Correct ends the session.
func (s *Session) Correct() error {
	if s.solved {
		return fmt.Errorf("correct: %w", ErrSolved)
	}
	s.solved = true
	return nil
}

// Solved reports whether the player has confirmed a guess.
func (s *Session) Solved() bool { return s.solved }

// Message is the text describing the current guess, or the final summary.
func (s *Session) Message() string {
	if s.solved {
		return fmt.Sprintf("I guessed %d in %d guesses.", s.engine.CurrentGuess(), s.engine.GuessCount())
	}
	return fmt.Sprintf("My guess is %d", s.engine.CurrentGuess())
}

// Snapshot returns the session as a front end renders it.
func (s *Session) Snapshot() State {
	low, high := s.engine.Bounds()
	return State{
		Prompt:    Prompt,
		Guess:     s.engine.CurrentGuess(),
		Guesses:   s.engine.GuessCount(),
		Low:       low,
		High:      high,
		Converged: s.engine.Converged(),
		Solved:    s.solved,
		Message:   s.Message(),
	}
}
