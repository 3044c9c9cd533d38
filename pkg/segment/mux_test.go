package segment

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type upperSegmenter struct{}

func (upperSegmenter) Segment(text string) []string {
	return []string{strings.ToUpper(text)}
}

func TestMux(t *testing.T) {
	m := NewMux()
	if err := m.Handle("upper", upperSegmenter{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if err := m.Handle("upper", upperSegmenter{}); err == nil {
		t.Error("duplicate Handle should fail")
	}
	if err := m.Handle("", upperSegmenter{}); err == nil {
		t.Error("empty name should fail")
	}

	got, err := m.Segment("upper", "abc")
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if diff := cmp.Diff([]string{"ABC"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.Get("missing"); err == nil {
		t.Error("Get(missing) should fail")
	}
	if _, err := m.Segment("up", "abc"); err == nil {
		t.Error("prefix of a registered name should not match")
	}
}

func TestDefaultMux(t *testing.T) {
	if diff := cmp.Diff([]string{"default", "simple"}, DefaultMux.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	s, err := Get("default")
	if err != nil {
		t.Fatalf("Get(default): %v", err)
	}
	if diff := cmp.Diff([]string{"你好！", "再见"}, s.Segment("你好！再见")); diff != "" {
		t.Errorf("default mismatch (-want +got):\n%s", diff)
	}

	got, err := DefaultMux.Segment("simple", "你好！\n再见。")
	if err != nil {
		t.Fatalf("Segment(simple): %v", err)
	}
	if diff := cmp.Diff([]string{"你好！", "再见"}, got); diff != "" {
		t.Errorf("simple mismatch (-want +got):\n%s", diff)
	}
}

func TestNewMuxFromConfig(t *testing.T) {
	m := NewMuxFromConfig(Config{MaxRunLength: 5, Separators: []string{"||"}})

	rule, err := m.Get(string(ModeRule))
	if err != nil {
		t.Fatalf("Get(%s): %v", ModeRule, err)
	}
	if got := rule.(*RuleSegmenter).MaxRunLength(); got != 5 {
		t.Errorf("rule MaxRunLength = %d; want 5", got)
	}

	got, err := m.Segment(string(ModeSeparator), "一。||二\n三")
	if err != nil {
		t.Fatalf("Segment(%s): %v", ModeSeparator, err)
	}
	if diff := cmp.Diff([]string{"一", "二\n三"}, got); diff != "" {
		t.Errorf("separator mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_SelectsByMode(t *testing.T) {
	if _, ok := New(Config{}).(*RuleSegmenter); !ok {
		t.Errorf("New(default mode) = %T; want *RuleSegmenter", New(Config{}))
	}
	s := New(Config{Mode: ModeSeparator, Separators: []string{"/"}})
	if diff := cmp.Diff([]string{"a", "b"}, s.Segment("a/b")); diff != "" {
		t.Errorf("separator mismatch (-want +got):\n%s", diff)
	}
	if _, ok := New(Config{Mode: "fancy"}).(*RuleSegmenter); !ok {
		t.Error("New(unknown mode) should fall back to *RuleSegmenter")
	}
}
