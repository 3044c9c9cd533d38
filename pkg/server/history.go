package server

import (
	"sync"

	"github.com/haivivi/splittyping/pkg/typing"
)

// history keeps the most recent deliveries, overwriting the oldest once
// full.
type history struct {
	mu   sync.Mutex
	buf  []typing.Delivery
	head int64
	tail int64
}

func newHistory(size int) *history {
	return &history{buf: make([]typing.Delivery, max(size, 1))}
}

func (h *history) add(d typing.Delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.tail%int64(len(h.buf))] = d
	h.tail++
	if h.tail-h.head > int64(len(h.buf)) {
		h.head++
	}
}

// list returns the buffered deliveries, oldest first.
func (h *history) list() []typing.Delivery {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]typing.Delivery, 0, h.tail-h.head)
	for i := h.head; i < h.tail; i++ {
		out = append(out, h.buf[i%int64(len(h.buf))])
	}
	return out
}
