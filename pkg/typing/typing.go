// Package typing turns a generated reply into a paced sequence of chat
// messages that imitates a person typing.
//
// A [Planner] segments the reply and computes a [Schedule]: one [Step] per
// fragment with the time spent "typing" it and the pause before the next
// fragment. A [Dispatcher] walks schedules through a [Sender], allowing only
// one delivery at a time per chat.
package typing

import (
	"errors"
	"time"

	"github.com/haivivi/splittyping/pkg/segment"
)

// Defaults for Config.
const (
	DefaultCharDelay        = 100 * time.Millisecond
	DefaultSegmentPause     = 500 * time.Millisecond
	DefaultSegmentDelayMax  = 10 * time.Second
	DefaultMaxSegmentLength = 50
)

// ErrNotSplit is returned when a reply should be sent unmodified: it is
// longer than Config.MaxSegmentLength or segmentation produced nothing.
var ErrNotSplit = errors.New("typing: reply not split")

// Config configures pacing.
type Config struct {
	// CharDelay is the typing time per character (grapheme cluster).
	// Zero selects DefaultCharDelay; a negative value disables typing time.
	CharDelay time.Duration `json:"char_delay" yaml:"char_delay"`

	// SegmentPause is the pause between fragments.
	// Zero selects DefaultSegmentPause; a negative value disables pauses.
	SegmentPause time.Duration `json:"segment_pause" yaml:"segment_pause"`

	// SegmentDelayMax caps the typing time of one fragment.
	// Zero selects DefaultSegmentDelayMax; a negative value removes the cap.
	SegmentDelayMax time.Duration `json:"segment_delay_max" yaml:"segment_delay_max"`

	// MaxSegmentLength is the longest reply, in characters, that is split.
	// Longer replies return ErrNotSplit. Zero selects
	// DefaultMaxSegmentLength; a negative value removes the limit.
	MaxSegmentLength int `json:"max_segment_length" yaml:"max_segment_length"`

	// Segment selects and configures the segmentation strategy.
	Segment segment.Config `json:"segment" yaml:"segment"`
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.CharDelay == 0 {
		c.CharDelay = DefaultCharDelay
	}
	if c.SegmentPause == 0 {
		c.SegmentPause = DefaultSegmentPause
	}
	if c.SegmentDelayMax == 0 {
		c.SegmentDelayMax = DefaultSegmentDelayMax
	}
	if c.MaxSegmentLength == 0 {
		c.MaxSegmentLength = DefaultMaxSegmentLength
	}
	c.Segment = c.Segment.WithDefaults()
	return c
}
