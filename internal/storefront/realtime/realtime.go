// Package realtime subscribes to the storefront push channel. The server
// speaks the cable protocol: JSON frames over a websocket, with a welcome
// handshake, keepalive pings, and per-channel subscribe confirmations.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/session"
)

// State is the lifecycle of a Subscription.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

var (
	// ErrRejected is reported when the server refuses the subscription.
	ErrRejected = errors.New("subscription rejected")
	// ErrDisconnected is reported when the connection ends before or after
	// confirmation.
	ErrDisconnected = errors.New("realtime connection closed")
)

const (
	frameWelcome  = "welcome"
	framePing     = "ping"
	frameConfirm  = "confirm_subscription"
	frameReject   = "reject_subscription"
	frameDisconn  = "disconnect"
	commandSub    = "subscribe"
	commandUnsub  = "unsubscribe"
	pendingLimit  = 64
	closeDeadline = time.Second
)

type frame struct {
	Type       string          `json:"type,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	Message    json.RawMessage `json:"message,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Reconnect  *bool           `json:"reconnect,omitempty"`
}

type command struct {
	Command    string `json:"command"`
	Identifier string `json:"identifier"`
}

// Message is one data frame delivered on a subscription.
type Message struct {
	Identifier string
	Data       json.RawMessage
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Data, v)
}

// Handler receives data messages in arrival order.
type Handler func(Message)

// Channel dials the push endpoint.
type Channel struct {
	url    string
	tokens session.TokenSource
	dialer *websocket.Dialer
}

// New returns a Channel for the websocket endpoint rawURL.
func New(rawURL string, tokens session.TokenSource) *Channel {
	return &Channel{
		url:    rawURL,
		tokens: tokens,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

// URLFromBase derives the push endpoint from the REST base URL:
// http(s)://host/path becomes ws(s)://host/path/cable.
func URLFromBase(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/cable"
	u.RawQuery = ""
	return u.String(), nil
}

// Identifier builds the subscription key sent to the server.
func Identifier(channel string, params map[string]any) (string, error) {
	key := make(map[string]any, len(params)+1)
	for k, v := range params {
		key[k] = v
	}
	key["channel"] = channel
	data, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("failed to encode channel identifier: %w", err)
	}
	return string(data), nil
}

// Subscribe connects and subscribes to channel. It returns once the socket
// is open; confirmation arrives asynchronously (see Ready). Cancelling ctx
// unsubscribes.
func (c *Channel) Subscribe(ctx context.Context, channel string, params map[string]any) (*Subscription, error) {
	if strings.TrimSpace(channel) == "" {
		return nil, fmt.Errorf("channel cannot be empty")
	}
	identifier, err := Identifier(channel, params)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid realtime URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("token", token)
	endpoint.RawQuery = query.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	logger := log.FromContext(ctx)
	conn, resp, err := c.dialer.DialContext(ctx, endpoint.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("realtime dial failed: %w", err)
	}

	sub := &Subscription{
		conn:       conn,
		identifier: identifier,
		logger:     logger.With(slog.String("channel", channel)),
		state:      StateConnecting,
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
	}
	sub.stopAfter = context.AfterFunc(ctx, sub.Unsubscribe)

	go sub.readLoop()
	return sub, nil
}

// Subscription is one live channel subscription.
type Subscription struct {
	conn       *websocket.Conn
	identifier string
	logger     *slog.Logger
	stopAfter  func() bool

	writeMu sync.Mutex

	mu        sync.Mutex
	state     State
	err       error
	handler   Handler
	pending   []Message
	closing   bool
	readyOnce sync.Once
	ready     chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// OnMessage installs handler. Messages that arrived before a handler was set
// are delivered first.
func (s *Subscription) OnMessage(handler Handler) {
	s.mu.Lock()
	s.handler = handler
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if handler == nil {
		return
	}
	for _, msg := range pending {
		handler(msg)
	}
}

// State returns the current lifecycle state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns why the subscription ended, if it did.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Identifier returns the subscription key.
func (s *Subscription) Identifier() string {
	return s.identifier
}

// Ready waits for the server to confirm or reject the subscription.
func (s *Subscription) Ready(ctx context.Context) error {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConnected {
		return nil
	}
	return s.err
}

// Done is closed when the read loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe leaves the channel, closes the socket, and waits for the read
// loop to exit. It is safe to call more than once but must not be called
// from a Handler.
func (s *Subscription) Unsubscribe() {
	s.closeOnce.Do(func() {
		if s.stopAfter != nil {
			s.stopAfter()
		}

		s.mu.Lock()
		s.closing = true
		connected := s.state == StateConnected
		s.mu.Unlock()

		s.writeMu.Lock()
		if connected {
			_ = s.conn.WriteJSON(command{Command: commandUnsub, Identifier: s.identifier})
		}
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeDeadline))
		s.writeMu.Unlock()

		_ = s.conn.Close()
		<-s.done
		s.logger.Debug("realtime subscription closed")
	})
}

func (s *Subscription) readLoop() {
	defer close(s.done)
	defer s.markReady()

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			s.finish(StateDisconnected, s.readError(err))
			return
		}

		switch f.Type {
		case frameWelcome:
			if err := s.write(command{Command: commandSub, Identifier: s.identifier}); err != nil {
				s.finish(StateDisconnected, fmt.Errorf("%w: subscribe failed: %v", ErrDisconnected, err))
				_ = s.conn.Close()
				return
			}
		case framePing:
		case frameConfirm:
			if f.Identifier != s.identifier {
				continue
			}
			s.setState(StateConnected)
			s.logger.Debug("realtime subscription confirmed")
			s.markReady()
		case frameReject:
			if f.Identifier != s.identifier {
				continue
			}
			s.finish(StateRejected, ErrRejected)
			s.logger.Warn("realtime subscription rejected")
			_ = s.conn.Close()
			return
		case frameDisconn:
			s.finish(StateDisconnected, fmt.Errorf("%w: %s", ErrDisconnected, orDefault(f.Reason, "server closed connection")))
			_ = s.conn.Close()
			return
		case "":
			if f.Identifier == s.identifier && len(f.Message) > 0 {
				s.deliver(Message{Identifier: f.Identifier, Data: f.Message})
			}
		default:
			s.logger.Log(context.Background(), log.LevelTrace, "ignoring realtime frame", slog.String("type", f.Type))
		}
	}
}

func (s *Subscription) readError(err error) error {
	s.mu.Lock()
	closing := s.closing
	s.mu.Unlock()
	if closing || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDisconnected, err)
}

func (s *Subscription) deliver(msg Message) {
	s.mu.Lock()
	handler := s.handler
	if handler == nil {
		if len(s.pending) < pendingLimit {
			s.pending = append(s.pending, msg)
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	handler(msg)
}

func (s *Subscription) write(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *Subscription) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// finish records the terminal state. A rejection is never overwritten.
func (s *Subscription) finish(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRejected {
		return
	}
	s.state = state
	if err != nil && s.err == nil {
		s.err = err
	}
	if s.err == nil && state == StateDisconnected {
		s.err = ErrDisconnected
	}
}

func (s *Subscription) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
