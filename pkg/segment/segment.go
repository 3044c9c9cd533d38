// Package segment splits a complete block of generated text into an ordered
// sequence of short fragments that, delivered one at a time with pauses,
// mimic human typing cadence.
//
// Two strategies implement [Segmenter]:
//   - [RuleSegmenter] scans the text once, classifying punctuation into
//     tiers and tracking nested quote/bracket spans to decide where a
//     "breath" boundary falls.
//   - [SeparatorSegmenter] splits only on literal separator substrings
//     (newline by default).
//
// # Usage
//
//	frags := segment.SegmentRule("你好！（兴奋地说）我今天很高兴……", 17)
//	// ["你好！", "（兴奋地说）我今天很高兴……"]
//
//	s := segment.New(segment.Config{Mode: segment.ModeSeparator})
//	frags = s.Segment("a\nb\n") // ["a", "b"]
//
// Segmenters hold only immutable tables and configuration; all scan state
// is local to a single Segment call, so one instance may be shared across
// goroutines.
package segment

import (
	"fmt"
	"strings"
)

// DefaultMaxRunLength is the default length threshold, in characters, that
// gates splitting on intermediate-tier punctuation.
const DefaultMaxRunLength = 17

// Segmenter splits text into an ordered sequence of trimmed, non-empty
// fragments.
type Segmenter interface {
	Segment(text string) []string
}

// Mode selects a segmentation strategy.
type Mode string

const (
	// ModeRule selects the punctuation/bracket-aware RuleSegmenter.
	ModeRule Mode = "default"
	// ModeSeparator selects the SeparatorSegmenter.
	ModeSeparator Mode = "simple"
)

// ParseMode parses a raw mode name. It accepts "default" or "rule" for
// ModeRule and "simple" or "separator" for ModeSeparator. The empty string
// parses as ModeRule.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default", "rule":
		return ModeRule, nil
	case "simple", "separator":
		return ModeSeparator, nil
	}
	return "", fmt.Errorf("segment: unknown mode %q", raw)
}

// DefaultSeparators returns the default separator list used by
// SeparatorSegmenter.
func DefaultSeparators() []string {
	return []string{"\n"}
}

// DefaultStripSuffixes returns the default trailing punctuation removed from
// each separator-mode fragment, in the order it is stripped.
func DefaultStripSuffixes() []string {
	return []string{"。", "，"}
}

// Config configures segmenter construction.
type Config struct {
	// Mode selects the strategy. Defaults to ModeRule.
	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// MaxRunLength is the character count a fragment must exceed before
	// intermediate punctuation (commas, single ellipsis dot) may end it.
	// Defaults to DefaultMaxRunLength.
	MaxRunLength int `json:"max_run_length,omitempty" yaml:"max_run_length,omitempty"`

	// Separators are the literal substrings SeparatorSegmenter splits on.
	// A nil slice means DefaultSeparators; an empty non-nil slice means
	// no separators at all.
	Separators []string `json:"separators,omitempty" yaml:"separators,omitempty"`

	// StripSuffixes is the trailing punctuation removed from separator-mode
	// fragments. A nil slice means DefaultStripSuffixes.
	StripSuffixes []string `json:"strip_suffixes,omitempty" yaml:"strip_suffixes,omitempty"`
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeRule
	}
	if c.MaxRunLength <= 0 {
		c.MaxRunLength = DefaultMaxRunLength
	}
	if c.Separators == nil {
		c.Separators = DefaultSeparators()
	}
	if c.StripSuffixes == nil {
		c.StripSuffixes = DefaultStripSuffixes()
	}
	return c
}

// New returns the Segmenter registered under cfg.Mode in a Mux built from
// cfg. Unknown modes fall back to the rule-based strategy.
func New(cfg Config) Segmenter {
	cfg = cfg.WithDefaults()
	s, err := NewMuxFromConfig(cfg).Get(string(cfg.Mode))
	if err != nil {
		return NewRule(cfg.MaxRunLength)
	}
	return s
}

// SegmentRule splits text with the rule-based strategy. A non-positive
// maxRunLength selects DefaultMaxRunLength.
func SegmentRule(text string, maxRunLength int) []string {
	if maxRunLength <= 0 || maxRunLength == DefaultMaxRunLength {
		return defaultRule.Segment(text)
	}
	return NewRule(maxRunLength).Segment(text)
}

// SegmentSeparator splits text on the given literal separators. A nil
// slice selects DefaultSeparators; an empty non-nil slice disables
// splitting.
func SegmentSeparator(text string, separators []string) []string {
	if separators == nil {
		separators = DefaultSeparators()
	}
	return NewSeparator(separators).Segment(text)
}

var defaultRule = NewRule(DefaultMaxRunLength)
