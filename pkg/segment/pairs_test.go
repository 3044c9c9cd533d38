package segment

import "testing"

func TestPairTable_Bidirectional(t *testing.T) {
	pt := mustPairTable(DefaultPairs)
	for o, c := range DefaultPairs {
		if !pt.IsOpen(o) {
			t.Errorf("IsOpen(%q) = false", o)
		}
		if !pt.IsClose(c) {
			t.Errorf("IsClose(%q) = false", c)
		}
		if got, ok := pt.MatchingOpen(c); !ok || got != o {
			t.Errorf("MatchingOpen(%q) = %q, %v; want %q", c, got, ok, o)
		}
		if got, ok := pt.MatchingClose(o); !ok || got != c {
			t.Errorf("MatchingClose(%q) = %q, %v; want %q", o, got, ok, c)
		}
	}
	if pt.IsOpen('a') || pt.IsClose('a') {
		t.Error("'a' should be neither open nor close")
	}
	if !pt.IsSymmetric('"') || pt.IsSymmetric('（') {
		t.Error("IsSymmetric misclassifies quotes or brackets")
	}
}

func TestNewPairTable_Invalid(t *testing.T) {
	if _, err := NewPairTable(map[rune]rune{'(': ')', '[': ')'}); err == nil {
		t.Error("shared close token should fail")
	}
	if _, err := NewPairTable(map[rune]rune{'<': '>', '>': ']'}); err == nil {
		t.Error("token used as open and close of different pairs should fail")
	}
}

func TestDelimiterTracker(t *testing.T) {
	d := NewDelimiterTracker(mustPairTable(DefaultPairs))

	d.Push('x') // not an open token
	if d.Depth() != 0 {
		t.Fatalf("Depth after non-open push = %d; want 0", d.Depth())
	}

	d.Push('（')
	d.Push('「')
	d.Push('【')
	if d.Depth() != 3 {
		t.Fatalf("Depth = %d; want 3", d.Depth())
	}

	// Unmatched close leaves the stack alone.
	if n := d.ResolveClose('》'); n != 0 || d.Depth() != 3 {
		t.Errorf("ResolveClose(》) = %d, depth %d; want 0, 3", n, d.Depth())
	}
	// Not a close token at all.
	if n := d.ResolveClose('a'); n != 0 {
		t.Errorf("ResolveClose(a) = %d; want 0", n)
	}

	// Closing the outer bracket discards everything above it.
	if n := d.ResolveClose('）'); n != 3 || d.Depth() != 0 {
		t.Errorf("ResolveClose(）) = %d, depth %d; want 3, 0", n, d.Depth())
	}

	d.Push('（')
	d.Push('（')
	if n := d.ResolveClose('）'); n != 1 || d.Depth() != 1 {
		t.Errorf("ResolveClose(）) on nested = %d, depth %d; want 1, 1", n, d.Depth())
	}
	d.Clear()
	if d.Depth() != 0 {
		t.Errorf("Depth after Clear = %d; want 0", d.Depth())
	}
}

func TestDelimiterTracker_Observe(t *testing.T) {
	d := NewDelimiterTracker(mustPairTable(DefaultPairs))

	steps := []struct {
		r      rune
		closed int
		depth  int
	}{
		{'他', 0, 0},
		{'"', 0, 1},  // opens
		{'（', 0, 2}, // opens
		{'"', 2, 0},  // closes the quote and the bracket above it
		{'）', 0, 0}, // unmatched close
		{'\'', 0, 1},
		{'\'', 1, 0},
	}
	for i, s := range steps {
		if got := d.Observe(s.r); got != s.closed {
			t.Errorf("step %d Observe(%q) = %d; want %d", i, s.r, got, s.closed)
		}
		if d.Depth() != s.depth {
			t.Errorf("step %d depth = %d; want %d", i, d.Depth(), s.depth)
		}
	}
}
