// Package chatstate tracks whether split delivery is enabled for each chat.
//
// Chats are enabled on first contact and toggled by two chat commands:
// "开启分段" turns splitting on and "关闭分段" turns it off. State is kept in
// a [kv.Store] so it survives restarts when a persistent backend is used.
package chatstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/splittyping/pkg/kv"
)

// Chat commands and their replies.
const (
	CommandEnable  = "开启分段"
	CommandDisable = "关闭分段"

	ReplyEnabled  = "已开启分段发送模式"
	ReplyDisabled = "已关闭分段发送模式"
)

// Chat types.
const (
	TypePerson = "person"
	TypeGroup  = "group"
)

// ChatID identifies a conversation. Type keeps person and group
// identifiers from colliding.
type ChatID struct {
	Type string `json:"chat_type" msgpack:"type"`
	ID   string `json:"chat_id" msgpack:"id"`
}

// Key returns the "type_id" form of the chat identifier.
func (c ChatID) Key() string {
	return c.Type + "_" + c.ID
}

func (c ChatID) String() string {
	return c.Key()
}

// Record is the stored state of one chat.
type Record struct {
	Chat      ChatID    `json:"chat" msgpack:"chat"`
	Enabled   bool      `json:"enabled" msgpack:"enabled"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
}

var keyPrefix = kv.Key{"chat"}

func recordKey(c ChatID) kv.Key {
	return kv.Key{"chat", c.Type, c.ID}
}

// Store reads and writes per-chat split state.
type Store struct {
	kv  kv.Store
	now func() time.Time

	// mu serializes read-modify-write sequences such as EnsureDefault.
	mu sync.Mutex
}

// New returns a Store backed by s.
func New(s kv.Store) *Store {
	return &Store{kv: s, now: time.Now}
}

// Get returns the stored record for c. Unknown chats return a zero record
// with ok false.
func (s *Store) Get(ctx context.Context, c ChatID) (rec Record, ok bool, err error) {
	data, err := s.kv.Get(ctx, recordKey(c))
	if errors.Is(err, kv.ErrNotFound) {
		return Record{Chat: c}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("chatstate: get %s: %w", c, err)
	}
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("chatstate: decode %s: %w", c, err)
	}
	return rec, true, nil
}

// Enabled reports whether splitting is on for c. Unknown chats are off.
func (s *Store) Enabled(ctx context.Context, c ChatID) (bool, error) {
	rec, _, err := s.Get(ctx, c)
	return rec.Enabled, err
}

// EnsureDefault enables splitting for c if the chat has no stored state.
// Existing state, including an explicit disable, is left unchanged.
func (s *Store) EnsureDefault(ctx context.Context, c ChatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.Get(ctx, c)
	if err != nil || ok {
		return err
	}
	return s.put(ctx, c, true)
}

// Enable turns splitting on for c.
func (s *Store) Enable(ctx context.Context, c ChatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, c, true)
}

// Disable turns splitting off for c.
func (s *Store) Disable(ctx context.Context, c ChatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, c, false)
}

func (s *Store) put(ctx context.Context, c ChatID, enabled bool) error {
	data, err := msgpack.Marshal(&Record{Chat: c, Enabled: enabled, UpdatedAt: s.now()})
	if err != nil {
		return fmt.Errorf("chatstate: encode %s: %w", c, err)
	}
	if err := s.kv.Set(ctx, recordKey(c), data); err != nil {
		return fmt.Errorf("chatstate: set %s: %w", c, err)
	}
	return nil
}

// List returns every stored record.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var recs []Record
	for e, err := range s.kv.List(ctx, keyPrefix) {
		if err != nil {
			return nil, fmt.Errorf("chatstate: list: %w", err)
		}
		var rec Record
		if err := msgpack.Unmarshal(e.Value, &rec); err != nil {
			return nil, fmt.Errorf("chatstate: decode %s: %w", e.Key, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// HandleCommand processes a chat message as a possible toggle command.
// Every message first enables the chat if it has no stored state. If msg is
// a command, the state is updated and the reply to send back is returned
// with handled set.
func (s *Store) HandleCommand(ctx context.Context, c ChatID, msg string) (reply string, handled bool, err error) {
	if err := s.EnsureDefault(ctx, c); err != nil {
		return "", false, err
	}
	switch strings.TrimSpace(msg) {
	case CommandEnable:
		if err := s.Enable(ctx, c); err != nil {
			return "", false, err
		}
		slog.Info("chatstate: split enabled", "chat", c.Key())
		return ReplyEnabled, true, nil
	case CommandDisable:
		if err := s.Disable(ctx, c); err != nil {
			return "", false, err
		}
		slog.Info("chatstate: split disabled", "chat", c.Key())
		return ReplyDisabled, true, nil
	}
	return "", false, nil
}
