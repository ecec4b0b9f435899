package games

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTimeout is how long a session is kept without any action.
const DefaultIdleTimeout = 30 * time.Minute

var (
	// ErrNoSession is returned for feedback from a player with no game running.
	ErrNoSession = errors.New("no game in progress")
	// ErrUnknownAction is returned for messages that are not a known action.
	ErrUnknownAction = errors.New("unknown action")
)

// Action is a single thing a player can do.
type Action string

const (
	ActionStart   Action = "start"
	ActionState   Action = "state"
	ActionHigher  Action = "higher"
	ActionLower   Action = "lower"
	ActionCorrect Action = "correct"
)

// Request is the message a player sends.
type Request struct {
	Action Action `json:"action"`
}

// HiLo is a Game.
// The player thinks of an integer between 1 and 100.
// The computer guesses until the player says it is correct.
// After each guess the player tells it whether the number is higher or lower.
type HiLo struct {
	logger *slog.Logger

	// idleTimeout is how long a player may stay silent before their session is dropped.
	idleTimeout time.Duration
	now         func() time.Time

	// mu guards sessions and every engine call made through them.
	mu       sync.Mutex
	sessions map[string]*player
}

// player is a session and when its owner last sent an action.
type player struct {
	session  *Session
	lastSeen time.Time
}

// initialize a game of HiLo
// A non-positive idleTimeout means DefaultIdleTimeout.
func NewHilo(logger *slog.Logger, idleTimeout time.Duration) *HiLo {
	if logger == nil {
		logger = slog.Default()
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &HiLo{
		logger:      logger,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*player),
	}
}

// HandleMsg applies one action for usrid and returns the encoded State.
// On failure the reply still describes the session and carries the error text.
func (h *HiLo) HandleMsg(usrid string, msg []byte) ([]byte, error) {
	h.logger.Debug("HiLo received a message", "user", usrid, "msg", string(msg))

	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		err = fmt.Errorf("decode request: %w", ErrUnknownAction)
		return encodeState(State{Error: err.Error()}), err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.expire(now)
	s, err := h.apply(usrid, req.Action)
	if p, ok := h.sessions[usrid]; ok {
		p.lastSeen = now
	}
	state := State{}
	if s != nil {
		state = s.Snapshot()
	}
	if err != nil {
		h.logger.Info("HiLo rejected action", "user", usrid, "action", req.Action, "err", err)
		state.Error = err.Error()
	}
	return encodeState(state), err
}

// apply runs action against the user's session, which it returns when there is one.
func (h *HiLo) apply(usrid string, action Action) (*Session, error) {
	var s *Session
	if p, ok := h.sessions[usrid]; ok {
		s = p.session
	}
	switch action {
	case ActionStart:
		s = NewSession()
		h.sessions[usrid] = &player{session: s}
		h.logger.Info("HiLo started a game", "user", usrid)
		return s, nil
	case ActionState:
		if s == nil {
			s = NewSession()
			h.sessions[usrid] = &player{session: s}
		}
		return s, nil
	case ActionHigher, ActionLower, ActionCorrect:
	default:
		return s, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}

	if s == nil {
		return nil, fmt.Errorf("%s: %w", action, ErrNoSession)
	}
	var err error
	switch action {
	case ActionHigher:
		err = s.Higher()
	case ActionLower:
		err = s.Lower()
	case ActionCorrect:
		err = s.Correct()
		if err == nil {
			h.logger.Info("HiLo game solved", "user", usrid, "guess", s.engine.CurrentGuess(), "guesses", s.engine.GuessCount())
		}
	}
	return s, err
}

// expire drops the sessions nobody has played since idleTimeout before now.
func (h *HiLo) expire(now time.Time) {
	for usrid, p := range h.sessions {
		if now.Sub(p.lastSeen) > h.idleTimeout {
			h.logger.Debug("HiLo session expired", "user", usrid)
			delete(h.sessions, usrid)
		}
	}
}

// Leave discards the user's session.
func (h *HiLo) Leave(usrid string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, usrid)
}

func encodeState(s State) []byte {
	// State has only plain fields; Marshal cannot fail.
	b, _ := json.Marshal(s)
	return b
}
