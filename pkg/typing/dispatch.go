package typing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/haivivi/splittyping/pkg/chatstate"
)

// Sender delivers one fragment to a chat.
type Sender interface {
	Send(ctx context.Context, chat chatstate.ChatID, step Step) error
}

// SenderFunc adapts a function to a Sender.
type SenderFunc func(ctx context.Context, chat chatstate.ChatID, step Step) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, chat chatstate.ChatID, step Step) error {
	return f(ctx, chat, step)
}

// Delivery describes a completed (or aborted) paced delivery.
type Delivery struct {
	ID        string           `json:"id"`
	Chat      chatstate.ChatID `json:"chat"`
	Fragments []string         `json:"fragments"`
	Sent      int              `json:"sent"`
	Started   time.Time        `json:"started"`
	Finished  time.Time        `json:"finished"`
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithSleep replaces the context-aware wait used between steps.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) { d.sleep = sleep }
}

// Dispatcher sends paced replies. Deliveries to the same chat are
// serialized in the order their turns were reserved; deliveries to
// different chats run independently.
type Dispatcher struct {
	planner *Planner
	sender  Sender
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time

	mu    sync.Mutex
	chats map[string]*chatQueue // only chats with a held turn
}

type chatQueue struct {
	waiting []*Turn
}

// NewDispatcher returns a Dispatcher planning with p and sending through s.
// s may be nil if only DeliverTo and DeliverTurn are used.
func NewDispatcher(p *Planner, s Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		planner: p,
		sender:  s,
		logger:  slog.Default(),
		sleep:   sleepContext,
		now:     time.Now,
		chats:   make(map[string]*chatQueue),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Planner returns the planner used by d.
func (d *Dispatcher) Planner() *Planner {
	return d.planner
}

// Deliver plans text and sends its fragments to chat through the
// dispatcher's Sender. See DeliverTo.
func (d *Dispatcher) Deliver(ctx context.Context, chat chatstate.ChatID, text string) (*Delivery, error) {
	return d.DeliverTo(ctx, d.sender, chat, text)
}

// DeliverTo plans text and sends its fragments to chat through s with
// typing pacing. It reserves a turn for chat and releases it on return. See
// DeliverTurn.
func (d *Dispatcher) DeliverTo(ctx context.Context, s Sender, chat chatstate.ChatID, text string) (*Delivery, error) {
	t := d.Reserve(chat)
	defer t.Release()
	return d.DeliverTurn(ctx, t, s, text)
}

// DeliverTurn plans text and sends its fragments to the turn's chat through
// s. Per-chat ordering is shared with every other delivery of the
// dispatcher regardless of the Sender used.
//
// It returns ErrNotSplit without waiting or sending anything if the reply
// should go out unmodified; the caller may then Wait on t and send it as a
// single message. Otherwise it waits for the turn, then sends each
// fragment, waits its typing time and, except after the last one, the
// segment pause. On a send or context error the partial Delivery is
// returned with the error. The caller still owns t and must Release it.
func (d *Dispatcher) DeliverTurn(ctx context.Context, t *Turn, s Sender, text string) (*Delivery, error) {
	sched, err := d.planner.Plan(text)
	if err != nil {
		return nil, err
	}
	if err := t.Wait(ctx); err != nil {
		return nil, err
	}

	chat := t.chat
	dl := &Delivery{
		ID:        uuid.NewString(),
		Chat:      chat,
		Fragments: sched.Fragments(),
		Started:   d.now(),
	}
	d.logger.Info("typing: delivery started", "id", dl.ID, "chat", chat.String(), "fragments", sched.Len())

	err = d.run(ctx, s, dl, sched)
	dl.Finished = d.now()
	if err != nil {
		d.logger.Warn("typing: delivery aborted", "id", dl.ID, "chat", chat.String(), "sent", dl.Sent, "error", err)
		return dl, err
	}
	d.logger.Info("typing: delivery finished", "id", dl.ID, "chat", chat.String(), "elapsed", dl.Finished.Sub(dl.Started))
	return dl, nil
}

func (d *Dispatcher) run(ctx context.Context, s Sender, dl *Delivery, sched *Schedule) error {
	for {
		step, err := sched.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Send(ctx, dl.Chat, step); err != nil {
			return fmt.Errorf("typing: send fragment %d/%d: %w", step.Index, step.Total, err)
		}
		dl.Sent++
		d.logger.Debug("typing: fragment sent", "id", dl.ID, "index", step.Index, "total", step.Total, "typing", step.Typing)

		if err := d.sleep(ctx, step.Typing+step.Pause); err != nil {
			return err
		}
	}
}

// Turn is a place in a chat's delivery queue. Turns of one chat are
// granted one at a time in the order they were reserved.
type Turn struct {
	d     *Dispatcher
	chat  chatstate.ChatID
	ready chan struct{} // closed under d.mu when the turn is granted
	done  bool          // guarded by d.mu
}

// Reserve queues a turn for chat without blocking. The caller must Release
// the turn, whether or not it was granted.
func (d *Dispatcher) Reserve(chat chatstate.ChatID) *Turn {
	t := &Turn{d: d, chat: chat, ready: make(chan struct{})}
	key := chat.Key()

	d.mu.Lock()
	defer d.mu.Unlock()
	if q, ok := d.chats[key]; ok {
		q.waiting = append(q.waiting, t)
		return t
	}
	d.chats[key] = &chatQueue{}
	close(t.ready)
	return t
}

// Chat returns the chat the turn belongs to.
func (t *Turn) Chat() chatstate.ChatID {
	return t.chat
}

// Wait blocks until the turn is granted or ctx is done.
func (t *Turn) Wait(ctx context.Context) error {
	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release hands a granted turn to the next waiter, or leaves the queue if
// the turn was never granted. It is safe to call more than once.
func (t *Turn) Release() {
	d := t.d
	key := t.chat.Key()

	d.mu.Lock()
	defer d.mu.Unlock()
	if t.done {
		return
	}
	t.done = true

	q := d.chats[key]
	select {
	case <-t.ready:
	default:
		q.waiting = slices.DeleteFunc(q.waiting, func(w *Turn) bool { return w == t })
		return
	}
	if len(q.waiting) == 0 {
		delete(d.chats, key)
		return
	}
	next := q.waiting[0]
	q.waiting = q.waiting[1:]
	close(next.ready)
}

// queued reports the number of chats with a held turn.
func (d *Dispatcher) queued() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.chats)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
