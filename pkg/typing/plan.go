package typing

import (
	"time"

	"github.com/rivo/uniseg"
	"google.golang.org/api/iterator"

	"github.com/haivivi/splittyping/pkg/segment"
)

// Step is one paced message of a Schedule.
type Step struct {
	// Index is the 1-based position of the step.
	Index int `json:"index"`
	// Total is the number of steps in the schedule.
	Total int `json:"total"`
	// Text is the fragment to send.
	Text string `json:"text"`
	// Typing is the time spent after sending the fragment.
	Typing time.Duration `json:"typing"`
	// Pause is the extra wait before the next fragment; zero on the last step.
	Pause time.Duration `json:"pause"`
}

// Schedule is an ordered sequence of steps.
type Schedule struct {
	steps []Step
	pos   int
}

// Next returns the next step. Returns iterator.Done when no more steps are
// available.
func (s *Schedule) Next() (Step, error) {
	if s.pos >= len(s.steps) {
		return Step{}, iterator.Done
	}
	st := s.steps[s.pos]
	s.pos++
	return st, nil
}

// Len returns the number of steps.
func (s *Schedule) Len() int {
	return len(s.steps)
}

// Steps returns a copy of all steps regardless of iteration position.
func (s *Schedule) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Fragments returns the text of every step.
func (s *Schedule) Fragments() []string {
	out := make([]string, len(s.steps))
	for i, st := range s.steps {
		out[i] = st.Text
	}
	return out
}

// Duration returns the total typing and pause time of the schedule.
func (s *Schedule) Duration() time.Duration {
	var d time.Duration
	for _, st := range s.steps {
		d += st.Typing + st.Pause
	}
	return d
}

// Planner builds schedules. It is safe for concurrent use.
type Planner struct {
	cfg       Config
	segmenter segment.Segmenter
}

// NewPlanner returns a Planner for cfg.
func NewPlanner(cfg Config) *Planner {
	cfg = cfg.WithDefaults()
	return &Planner{
		cfg:       cfg,
		segmenter: segment.New(cfg.Segment),
	}
}

// Config returns the effective configuration.
func (p *Planner) Config() Config {
	return p.cfg
}

// Plan segments text and computes its schedule. It returns ErrNotSplit if
// text is too long to split or yields no fragments.
func (p *Planner) Plan(text string) (*Schedule, error) {
	if max := p.cfg.MaxSegmentLength; max > 0 && len([]rune(text)) > max {
		return nil, ErrNotSplit
	}
	frags := p.segmenter.Segment(text)
	if len(frags) == 0 {
		return nil, ErrNotSplit
	}

	steps := make([]Step, len(frags))
	for i, f := range frags {
		steps[i] = Step{
			Index:  i + 1,
			Total:  len(frags),
			Text:   f,
			Typing: p.typingDelay(f),
		}
		if i < len(frags)-1 && p.cfg.SegmentPause > 0 {
			steps[i].Pause = p.cfg.SegmentPause
		}
	}
	return &Schedule{steps: steps}, nil
}

func (p *Planner) typingDelay(frag string) time.Duration {
	if p.cfg.CharDelay <= 0 {
		return 0
	}
	d := time.Duration(uniseg.GraphemeClusterCount(frag)) * p.cfg.CharDelay
	if max := p.cfg.SegmentDelayMax; max > 0 && d > max {
		d = max
	}
	return d
}
