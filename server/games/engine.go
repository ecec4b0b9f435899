package games

import (
	"errors"
	"fmt"
)

// The range of numbers the player may think of.
const (
	MinNumber = 1
	MaxNumber = 100
)

// ErrRangeExhausted is returned when feedback would empty the candidate range.
var ErrRangeExhausted = errors.New("range exhausted")

// Engine guesses a number by binary search over [MinNumber, MaxNumber].
// It is not safe for concurrent use.
type Engine struct {
	// low and high are the inclusive bounds of the remaining candidates.
	low  int
	high int

	guess      int
	numGuesses int
}

// NewEngine returns an engine holding its first guess.
func NewEngine() *Engine {
	e := &Engine{}
	e.Reset()
	return e
}

// Reset starts the search over.
func (e *Engine) Reset() {
	e.low = MinNumber
	e.high = MaxNumber
	e.numGuesses = 1
	e.update()
}

// GuessHigher narrows the range to the numbers above the current guess.
func (e *Engine) GuessHigher() error {
	if e.guess >= e.high {
		return fmt.Errorf("guess higher than %d: %w", e.guess, ErrRangeExhausted)
	}
	e.low = e.guess + 1
	e.numGuesses++
	e.update()
	return nil
}

// GuessLower narrows the range to the numbers below the current guess.
func (e *Engine) GuessLower() error {
	if e.guess <= e.low {
		return fmt.Errorf("guess lower than %d: %w", e.guess, ErrRangeExhausted)
	}
	e.high = e.guess - 1
	e.numGuesses++
	e.update()
	return nil
}

// CurrentGuess returns the number the engine is guessing.
func (e *Engine) CurrentGuess() int { return e.guess }

// GuessCount returns how many guesses have been made, the first one included.
func (e *Engine) GuessCount() int { return e.numGuesses }

// Bounds returns the inclusive range the number must be in.
func (e *Engine) Bounds() (low, high int) { return e.low, e.high }

// Converged reports whether only one candidate is left.
func (e *Engine) Converged() bool { return e.low == e.high }

// update recomputes the guess as the floor midpoint of the bounds.
func (e *Engine) update() {
	e.guess = e.low + (e.high-e.low)/2
}
