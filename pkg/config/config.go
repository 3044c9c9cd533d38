// Package config loads and saves the splittyping settings file.
//
// The file is YAML with three sections:
//
//	typing_settings:
//	  char_delay: 0.1          # seconds per character
//	  segment_pause: 0.5       # seconds between fragments
//	  segment_delay_max: 10    # cap on one fragment's typing time
//	  max_segment_length: 50   # longer replies are sent unsplit
//	  split_mode: default      # default | simple
//	segment:
//	  max_run_length: 17
//	  separators: ["\n"]
//	  strip_suffixes: ["。", "，"]
//	state:
//	  dir: ""                  # badger directory; empty keeps state in memory
//	  in_memory: false
//	server:
//	  addr: ":8080"
//
// Durations accept a number of seconds or a duration string ("500ms").
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/splittyping/pkg/jsontime"
	"github.com/haivivi/splittyping/pkg/kv"
	"github.com/haivivi/splittyping/pkg/segment"
	"github.com/haivivi/splittyping/pkg/typing"
)

// DefaultAddr is the default listen address of the WebSocket server.
const DefaultAddr = ":8080"

// Config is the settings file.
type Config struct {
	Typing  TypingSettings  `json:"typing_settings" yaml:"typing_settings"`
	Segment SegmentSettings `json:"segment" yaml:"segment"`
	State   StateSettings   `json:"state" yaml:"state"`
	Server  ServerSettings  `json:"server" yaml:"server"`

	path string
}

// TypingSettings controls pacing.
type TypingSettings struct {
	CharDelay        jsontime.Seconds `json:"char_delay" yaml:"char_delay"`
	SegmentPause     jsontime.Seconds `json:"segment_pause" yaml:"segment_pause"`
	SegmentDelayMax  jsontime.Seconds `json:"segment_delay_max" yaml:"segment_delay_max"`
	MaxSegmentLength int              `json:"max_segment_length" yaml:"max_segment_length"`
	SplitMode        string           `json:"split_mode" yaml:"split_mode"`
}

// SegmentSettings configures the segmentation strategies.
type SegmentSettings struct {
	MaxRunLength  int     `json:"max_run_length" yaml:"max_run_length"`
	Separators    Strings `json:"separators" yaml:"separators"`
	StripSuffixes Strings `json:"strip_suffixes" yaml:"strip_suffixes"`
}

// Strings is a string list written as a flow sequence of double-quoted
// scalars, so items such as "\n" keep their exact value in the file.
type Strings []string

var _ yaml.BytesMarshaler = Strings(nil)

// MarshalYAML implements yaml.BytesMarshaler.
func (s Strings) MarshalYAML() ([]byte, error) {
	items := make([]string, len(s))
	for i, v := range s {
		items[i] = strconv.Quote(v)
	}
	return []byte("[" + strings.Join(items, ", ") + "]"), nil
}

// StateSettings selects the chat state backend.
type StateSettings struct {
	// Dir is the badger directory. Empty keeps state in process memory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// InMemory runs badger without disk persistence.
	InMemory bool `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`
}

// ServerSettings configures the WebSocket server.
type ServerSettings struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns the default settings.
func Default() *Config {
	return &Config{
		Typing: TypingSettings{
			CharDelay:        jsontime.Seconds(typing.DefaultCharDelay),
			SegmentPause:     jsontime.Seconds(typing.DefaultSegmentPause),
			SegmentDelayMax:  jsontime.Seconds(typing.DefaultSegmentDelayMax),
			MaxSegmentLength: typing.DefaultMaxSegmentLength,
			SplitMode:        string(segment.ModeRule),
		},
		Segment: SegmentSettings{
			MaxRunLength:  segment.DefaultMaxRunLength,
			Separators:    segment.DefaultSeparators(),
			StripSuffixes: segment.DefaultStripSuffixes(),
		},
		Server: ServerSettings{
			Addr: DefaultAddr,
		},
	}
}

// Load reads the settings file at path. Fields absent from the file keep
// their defaults; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	c.path = path
	return nil
}

// Path returns the file the settings were loaded from or saved to.
func (c *Config) Path() string {
	return c.path
}

// Validate rejects negative delays and lengths and unknown split modes.
func (c *Config) Validate() error {
	t := c.Typing
	for _, d := range []struct {
		name string
		v    jsontime.Seconds
	}{
		{"char_delay", t.CharDelay},
		{"segment_pause", t.SegmentPause},
		{"segment_delay_max", t.SegmentDelayMax},
	} {
		if d.v < 0 {
			return fmt.Errorf("typing_settings.%s must not be negative, got %v", d.name, d.v)
		}
	}
	if t.MaxSegmentLength < 0 {
		return fmt.Errorf("typing_settings.max_segment_length must not be negative, got %d", t.MaxSegmentLength)
	}
	if _, err := segment.ParseMode(t.SplitMode); err != nil {
		return fmt.Errorf("typing_settings.split_mode: %w", err)
	}
	if c.Segment.MaxRunLength < 0 {
		return fmt.Errorf("segment.max_run_length must not be negative, got %d", c.Segment.MaxRunLength)
	}
	if c.State.Dir != "" && c.State.InMemory {
		return errors.New("state.dir and state.in_memory are mutually exclusive")
	}
	return nil
}

// SegmentConfig converts the settings to a segment.Config.
func (c *Config) SegmentConfig() segment.Config {
	mode, err := segment.ParseMode(c.Typing.SplitMode)
	if err != nil {
		mode = segment.ModeRule
	}
	return segment.Config{
		Mode:          mode,
		MaxRunLength:  c.Segment.MaxRunLength,
		Separators:    c.Segment.Separators,
		StripSuffixes: c.Segment.StripSuffixes,
	}
}

// TypingConfig converts the settings to a typing.Config. Zero values in the
// file disable the corresponding wait or limit.
func (c *Config) TypingConfig() typing.Config {
	maxLen := c.Typing.MaxSegmentLength
	if maxLen == 0 {
		maxLen = -1
	}
	return typing.Config{
		CharDelay:        disableZero(c.Typing.CharDelay.Duration()),
		SegmentPause:     disableZero(c.Typing.SegmentPause.Duration()),
		SegmentDelayMax:  disableZero(c.Typing.SegmentDelayMax.Duration()),
		MaxSegmentLength: maxLen,
		Segment:          c.SegmentConfig(),
	}
}

// disableZero maps zero to the negative value typing uses for "disabled";
// typing reads zero as "use the default".
func disableZero(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// OpenStore opens the chat state store selected by the state section.
func (c *Config) OpenStore(logger *slog.Logger) (kv.Store, error) {
	if !c.State.InMemory && c.State.Dir == "" {
		return kv.NewMemory(), nil
	}
	if c.State.Dir != "" {
		if err := os.MkdirAll(c.State.Dir, 0755); err != nil {
			return nil, fmt.Errorf("config: create state directory: %w", err)
		}
	}
	db, err := kv.NewBadger(kv.BadgerOptions{
		Dir:      c.State.Dir,
		InMemory: c.State.InMemory,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
