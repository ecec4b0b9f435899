package main

import (
	"context"
	"embed"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/coder/websocket"
	"github.com/fransk/guessing-game/server/games"
)

//go:embed web
var webFS embed.FS

// gameServer routes player actions to a Game and fans the replies out
// to every connection watching the same player.
type gameServer struct {
	// subscriberMessageBuffer controls the max number
	// of messages that can be queued for a subscriber
	// before it is kicked.
	//
	// Defaults to 16.
	subscriberMessageBuffer int

	// publishLimiter controls the rate limit applied to the publish endpoint.
	//
	// Defaults to one publish every 100ms with a burst of 8.
	publishLimiter *rate.Limiter

	logger *slog.Logger

	// serveMux routes the various endpoints to the appropriate handler.
	serveMux http.ServeMux

	subscribersMu sync.Mutex
	subscribers   map[*subscriber]struct{}

	// game is the currently loaded game
	game Game
}

// newGameServer constructs a gameServer with the defaults.
func newGameServer(game Game, logger *slog.Logger) *gameServer {
	if logger == nil {
		logger = slog.Default()
	}
	cs := &gameServer{
		subscriberMessageBuffer: 16,
		logger:                  logger,
		subscribers:             make(map[*subscriber]struct{}),
		publishLimiter:          rate.NewLimiter(rate.Every(time.Millisecond*100), 8),
		game:                    game,
	}
	web, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	cs.serveMux.Handle("/", http.FileServer(http.FS(web)))
	cs.serveMux.HandleFunc("/subscribe", cs.subscribeHandler)
	cs.serveMux.HandleFunc("/publish", cs.publishHandler)

	return cs
}

// subscriber represents a subscriber.
// Messages are sent on the msgs channel and if the client
// cannot keep up with the messages, closeSlow is called.
type subscriber struct {
	id        string
	msgs      chan []byte
	closeSlow func()
}

func (cs *gameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cs.serveMux.ServeHTTP(w, r)
}

// playerID identifies whose game a request is about.
func playerID(r *http.Request) string {
	if id := r.URL.Query().Get("session"); id != "" {
		return id
	}
	return r.RemoteAddr
}

// subscribeHandler accepts the WebSocket connection, then plays every
// message it reads and sends the player's updates back.
func (cs *gameServer) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	cs.logger.Debug("subscribe handler called", "remote", r.RemoteAddr)
	err := cs.subscribe(w, r)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		cs.logger.Warn("subscriber failed", "remote", r.RemoteAddr, "err", err)
		return
	}
}

// publishHandler reads one action from the request body with a limit of 8192 bytes,
// plays it for the player named by the session parameter and replies with the resulting state.
func (cs *gameServer) publishHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	body := http.MaxBytesReader(w, r.Body, 8192)
	msg, err := io.ReadAll(body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}

	// Without a keep-alive connection RemoteAddr changes between requests.
	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, "missing session parameter", http.StatusBadRequest)
		return
	}
	reply, err := cs.game.HandleMsg(id, msg)

	// update the player's other connections
	cs.publish(id, reply)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	w.Write(reply)
}

// statusFor maps a game error to the HTTP status reported to the player.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusAccepted
	case errors.Is(err, games.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, games.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, games.ErrRangeExhausted), errors.Is(err, games.ErrSolved):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// subscribe subscribes the given WebSocket to the player's updates.
// It creates a subscriber with a buffered msgs chan to give some room to slower
// connections and then registers the subscriber. It then listens for all messages
// and writes them to the WebSocket. If the context is cancelled or
// an error occurs, it returns and deletes the subscription.
func (cs *gameServer) subscribe(w http.ResponseWriter, r *http.Request) error {
	var mu sync.Mutex
	var c *websocket.Conn
	var closed bool
	s := &subscriber{
		id:   playerID(r),
		msgs: make(chan []byte, cs.subscriberMessageBuffer),
		closeSlow: func() {
			cs.logger.Info("closing slow subscriber", "remote", r.RemoteAddr)
			mu.Lock()
			defer mu.Unlock()
			closed = true
			if c != nil {
				c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
			}
		},
	}
	cs.addSubscriber(s)
	defer cs.deleteSubscriber(s)

	c2, err := websocket.Accept(w, r, nil)
	if err != nil {
		return err
	}
	mu.Lock()
	if closed {
		mu.Unlock()
		return net.ErrClosed
	}
	c = c2
	mu.Unlock()
	defer c.CloseNow()

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute*60)
	defer cancel()

	l := rate.NewLimiter(rate.Every(time.Millisecond*100), 10)
	go func() {
		cs.listen(ctx, s.id, c, l)
		cancel()
	}()

	for {
		select {
		case msg := <-s.msgs:
			err := writeTimeout(ctx, time.Second*5, c, msg)
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// listen plays every message read from c until the connection fails.
func (cs *gameServer) listen(ctx context.Context, id string, c *websocket.Conn, l *rate.Limiter) error {
	for {
		err := cs.play(ctx, id, c, l)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return nil
		}
		if err != nil {
			cs.logger.Debug("stopped listening", "player", id, "err", err)
			return err
		}
	}
}

func (cs *gameServer) play(ctx context.Context, id string, c *websocket.Conn, l *rate.Limiter) error {
	err := l.Wait(ctx)
	if err != nil {
		return err
	}

	typ, body, err := c.Reader(ctx)
	if err != nil {
		return err
	}

	msg, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	cs.logger.Debug("message received", "player", id, "type", typ, "msg", string(msg))

	// send the message to the game; rejected actions still get a reply
	reply, err := cs.game.HandleMsg(id, msg)
	if err != nil {
		cs.logger.Debug("action rejected", "player", id, "err", err)
	}

	// update the player's connections
	cs.publish(id, reply)

	return nil
}

// publish publishes the msg to all subscribers of player id.
// It never blocks and so messages to slow subscribers
// are dropped.
func (cs *gameServer) publish(id string, msg []byte) {
	cs.publishLimiter.Wait(context.Background())

	cs.subscribersMu.Lock()
	defer cs.subscribersMu.Unlock()

	for s := range cs.subscribers {
		if s.id != id {
			continue
		}
		select {
		case s.msgs <- msg:
		default:
			go s.closeSlow()
		}
	}
}

// addSubscriber registers a subscriber.
func (cs *gameServer) addSubscriber(s *subscriber) {
	cs.subscribersMu.Lock()
	cs.subscribers[s] = struct{}{}
	cs.subscribersMu.Unlock()
}

// deleteSubscriber deletes the given subscriber. When it was the player's
// last connection the player's game is discarded.
func (cs *gameServer) deleteSubscriber(s *subscriber) {
	cs.subscribersMu.Lock()
	delete(cs.subscribers, s)
	last := true
	for other := range cs.subscribers {
		if other.id == s.id {
			last = false
			break
		}
	}
	cs.subscribersMu.Unlock()

	if last {
		cs.game.Leave(s.id)
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, msg)
}
