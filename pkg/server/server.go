// Package server exposes paced reply delivery over a WebSocket.
//
// Clients send JSON frames:
//
//	{"type": "message", "chat_type": "person", "chat_id": "u1", "text": "关闭分段"}
//	{"type": "reply",   "chat_type": "person", "chat_id": "u1", "text": "你好！再见！"}
//
// A message frame is checked for the split toggle commands and answered
// with a command_reply frame when it is one. A reply frame is delivered as
// a sequence of fragment frames followed by a done frame, paced by the
// typing dispatcher, or as a single passthrough frame when splitting is
// disabled for the chat or the reply is not split.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/haivivi/splittyping/pkg/chatstate"
	"github.com/haivivi/splittyping/pkg/typing"
)

// DefaultHistorySize is the number of recent deliveries kept for
// GET /v1/deliveries.
const DefaultHistorySize = 64

// Server handles WebSocket clients.
type Server struct {
	states     *chatstate.Store
	dispatcher *typing.Dispatcher
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	history    *history

	mu     sync.Mutex
	conns  map[*conn]struct{}
	closed bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHistorySize sets how many recent deliveries are kept.
func WithHistorySize(n int) Option {
	return func(s *Server) { s.history = newHistory(n) }
}

// New returns a Server using states for toggle state and d for delivery.
func New(states *chatstate.Store, d *typing.Dispatcher, opts ...Option) *Server {
	s := &Server{
		states:     states,
		dispatcher: d,
		logger:     slog.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		history: newHistory(DefaultHistorySize),
		conns:   make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler:
//
//	GET /ws              WebSocket endpoint
//	GET /healthz         liveness probe
//	GET /v1/chats        stored chat states
//	GET /v1/deliveries   recent deliveries, oldest first
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /v1/chats", s.handleChats)
	mux.HandleFunc("GET /v1/deliveries", s.handleDeliveries)
	return mux
}

// Close closes every open WebSocket connection. Handlers return once their
// in-flight deliveries are canceled.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.conns {
		c.ws.Close()
	}
	return nil
}

func (s *Server) track(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("server: upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &conn{ws: ws}
	if !s.track(c) {
		ws.Close()
		return
	}
	s.logger.Info("server: client connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		s.untrack(c)
		ws.Close()
		s.logger.Info("server: client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		var f Frame
		if err := ws.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("server: read frame", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
		if f.ChatID == "" {
			c.writeError(&f, errors.New("chat_id is required"))
			continue
		}
		switch f.Type {
		case TypeMessage:
			s.handleMessage(ctx, c, &f)
		case TypeReply:
			// The turn is reserved on the read loop so replies to one chat
			// go out in arrival order.
			turn := s.dispatcher.Reserve(f.chat())
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer turn.Release()
				s.handleReply(ctx, c, &f, turn)
			}()
		default:
			c.writeError(&f, errors.New("unknown frame type "+f.Type))
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, c *conn, f *Frame) {
	reply, handled, err := s.states.HandleCommand(ctx, f.chat(), f.Text)
	if err != nil {
		s.logger.Error("server: handle command", "chat", f.chat().String(), "error", err)
		c.writeError(f, err)
		return
	}
	if !handled {
		return
	}
	out := f.replyTo(TypeCommandReply)
	out.Text = reply
	c.write(out)
}

func (s *Server) handleReply(ctx context.Context, c *conn, f *Frame, turn *typing.Turn) {
	chat := turn.Chat()
	enabled, err := s.states.Enabled(ctx, chat)
	if err != nil {
		s.logger.Error("server: read chat state", "chat", chat.String(), "error", err)
		c.writeError(f, err)
		return
	}
	if !enabled {
		s.passthrough(ctx, c, f, turn)
		return
	}

	dl, err := s.dispatcher.DeliverTurn(ctx, turn, c, f.Text)
	if errors.Is(err, typing.ErrNotSplit) {
		s.passthrough(ctx, c, f, turn)
		return
	}
	if dl != nil {
		s.history.add(*dl)
	}
	if err != nil {
		if ctx.Err() == nil {
			c.writeError(f, err)
		}
		return
	}
	done := f.replyTo(TypeDone)
	done.DeliveryID = dl.ID
	done.Total = len(dl.Fragments)
	c.write(done)
}

// passthrough sends the reply unmodified once earlier replies to the chat
// are done.
func (s *Server) passthrough(ctx context.Context, c *conn, f *Frame, turn *typing.Turn) {
	if err := turn.Wait(ctx); err != nil {
		return
	}
	c.passthrough(f)
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	recs, err := s.states.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []chatstate.Record{}
	}
	writeJSON(w, recs)
}

func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.history.list())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// conn serializes writes to one WebSocket connection and sends delivery
// fragments to it.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

var _ typing.Sender = (*conn)(nil)

func (c *conn) write(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(f)
}

func (c *conn) writeError(f *Frame, err error) {
	out := f.replyTo(TypeError)
	out.Error = err.Error()
	_ = c.write(out)
}

func (c *conn) passthrough(f *Frame) {
	out := f.replyTo(TypePassthrough)
	out.Text = f.Text
	_ = c.write(out)
}

// Send writes a fragment frame.
func (c *conn) Send(_ context.Context, chat chatstate.ChatID, step typing.Step) error {
	f := Frame{ChatType: chat.Type, ChatID: chat.ID}
	out := f.replyTo(TypeFragment)
	out.Text = step.Text
	out.Index = step.Index
	out.Total = step.Total
	return c.write(out)
}
