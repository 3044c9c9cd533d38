package jsontime

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Seconds is a time.Duration that serializes as a number of seconds.
//
// When marshaling it outputs a float (0.1 for 100ms). When unmarshaling it
// accepts a number of seconds or a duration string such as "1.5s".
// It supports both JSON and YAML (goccy/go-yaml).
type Seconds time.Duration

// FromSeconds returns the Seconds value for a float number of seconds.
func FromSeconds(s float64) Seconds {
	return Seconds(math.Round(s * float64(time.Second)))
}

// Duration returns the underlying time.Duration value.
func (s Seconds) Duration() time.Duration {
	return time.Duration(s)
}

// Float returns the value in seconds.
func (s Seconds) Float() float64 {
	return time.Duration(s).Seconds()
}

// String returns the duration formatted as a string.
func (s Seconds) String() string {
	return time.Duration(s).String()
}

// MarshalJSON implements json.Marshaler.
func (s Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Float())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return s.set(v)
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (s Seconds) MarshalYAML() (any, error) {
	return s.Float(), nil
}

// UnmarshalYAML implements yaml.InterfaceUnmarshaler.
func (s *Seconds) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	return s.set(v)
}

func (s *Seconds) set(v any) error {
	switch v := v.(type) {
	case nil:
		return nil
	case float64:
		*s = FromSeconds(v)
	case float32:
		*s = FromSeconds(float64(v))
	case int:
		*s = FromSeconds(float64(v))
	case int64:
		*s = FromSeconds(float64(v))
	case uint64:
		*s = FromSeconds(float64(v))
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("jsontime: invalid duration %q: %w", v, err)
		}
		*s = Seconds(d)
	default:
		return fmt.Errorf("jsontime: invalid duration value %v (%T)", v, v)
	}
	return nil
}
