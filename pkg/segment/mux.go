package segment

import (
	"fmt"

	"github.com/haivivi/splittyping/pkg/trie"
)

// DefaultMux is the default segmenter multiplexer. It has the rule-based
// strategy registered under "default" and the separator strategy under
// "simple".
var DefaultMux = NewMuxFromConfig(Config{})

// NewMuxFromConfig returns a Mux with both strategies configured by cfg,
// registered under their mode names.
func NewMuxFromConfig(cfg Config) *Mux {
	cfg = cfg.WithDefaults()
	m := NewMux()
	if err := m.Handle(string(ModeRule), NewRule(cfg.MaxRunLength)); err != nil {
		panic(err)
	}
	if err := m.Handle(string(ModeSeparator), NewSeparator(cfg.Separators, cfg.StripSuffixes...)); err != nil {
		panic(err)
	}
	return m
}

// Handle registers a segmenter for the given name to the default mux.
func Handle(name string, s Segmenter) error {
	return DefaultMux.Handle(name, s)
}

// Get returns the segmenter registered for the given name from the default mux.
func Get(name string) (Segmenter, error) {
	return DefaultMux.Get(name)
}

// Mux is a named registry of [Segmenter] implementations.
//
// Registration is not synchronized; register segmenters during
// initialization and only read afterwards.
type Mux struct {
	mux *trie.Trie[Segmenter]
}

// NewMux creates a new empty segmenter multiplexer.
func NewMux() *Mux {
	return &Mux{
		mux: trie.New[Segmenter](),
	}
}

// Handle registers a segmenter under name.
// Returns an error if a segmenter is already registered for the name.
func (m *Mux) Handle(name string, s Segmenter) error {
	if name == "" {
		return fmt.Errorf("segment: empty segmenter name")
	}
	return m.mux.Set(name, func(ptr *Segmenter, existed bool) error {
		if existed {
			return fmt.Errorf("segment: segmenter already registered for %s", name)
		}
		*ptr = s
		return nil
	})
}

// Get returns the segmenter registered under name.
func (m *Mux) Get(name string) (Segmenter, error) {
	s, ok := m.mux.GetValue(name)
	if !ok || s == nil {
		return nil, fmt.Errorf("segment: segmenter not found for %s", name)
	}
	return s, nil
}

// Segment runs the segmenter registered under name on text.
func (m *Mux) Segment(name, text string) ([]string, error) {
	s, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return s.Segment(text), nil
}

// Names returns the registered names in lexicographic order.
func (m *Mux) Names() []string {
	var names []string
	m.mux.Walk(func(name string, _ Segmenter) {
		names = append(names, name)
	})
	return names
}
