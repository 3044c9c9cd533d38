package segment

import "fmt"

// DefaultPairs is the open→close table of quote and bracket tokens tracked
// by the rule engine. Straight quotes map to themselves.
var DefaultPairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'‘':  '’',
	'“':  '”',
	'(':  ')',
	'（':  '）',
	'[':  ']',
	'【':  '】',
	'{':  '}',
	'《':  '》',
	'「':  '」',
	'『':  '』',
}

// PairTable is a bidirectional open↔close token mapping. The reverse
// direction is derived from the forward table at construction.
type PairTable struct {
	close map[rune]rune // open -> close
	open  map[rune]rune // close -> open
}

// NewPairTable builds a PairTable from an open→close mapping. It fails if
// two open tokens share a close token, or if a token is used as the open
// side of one pair and the close side of another.
func NewPairTable(pairs map[rune]rune) (*PairTable, error) {
	t := &PairTable{
		close: make(map[rune]rune, len(pairs)),
		open:  make(map[rune]rune, len(pairs)),
	}
	for o, c := range pairs {
		if prev, ok := t.open[c]; ok {
			return nil, fmt.Errorf("segment: close token %q shared by %q and %q", c, prev, o)
		}
		t.close[o] = c
		t.open[c] = o
	}
	for o, c := range pairs {
		if o == c {
			continue
		}
		if other, ok := t.open[o]; ok {
			return nil, fmt.Errorf("segment: token %q opens %q and closes %q", o, c, other)
		}
	}
	return t, nil
}

func mustPairTable(pairs map[rune]rune) *PairTable {
	t, err := NewPairTable(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// IsOpen reports whether r is an open token.
func (t *PairTable) IsOpen(r rune) bool {
	_, ok := t.close[r]
	return ok
}

// IsClose reports whether r is a close token.
func (t *PairTable) IsClose(r rune) bool {
	_, ok := t.open[r]
	return ok
}

// IsSymmetric reports whether r is both the open and close token of one
// pair, like a straight quote.
func (t *PairTable) IsSymmetric(r rune) bool {
	c, ok := t.close[r]
	return ok && c == r
}

// MatchingOpen returns the open token for a close token.
func (t *PairTable) MatchingOpen(close rune) (rune, bool) {
	o, ok := t.open[close]
	return o, ok
}

// MatchingClose returns the close token for an open token.
func (t *PairTable) MatchingClose(open rune) (rune, bool) {
	c, ok := t.close[open]
	return c, ok
}

// DelimiterTracker is the stack of currently open quote/bracket tokens,
// most recent last.
type DelimiterTracker struct {
	pairs *PairTable
	stack []rune
}

// NewDelimiterTracker returns an empty tracker over the given pair table.
func NewDelimiterTracker(pairs *PairTable) *DelimiterTracker {
	return &DelimiterTracker{pairs: pairs}
}

// Push appends an open token to the stack. Tokens that are not open
// tokens are ignored.
func (d *DelimiterTracker) Push(r rune) {
	if d.pairs.IsOpen(r) {
		d.stack = append(d.stack, r)
	}
}

// ResolveClose searches the stack top-down for the open token matching the
// close token r. If found, that entry and every entry above it are removed
// and the number removed is returned. Otherwise the stack is unchanged and
// zero is returned.
func (d *DelimiterTracker) ResolveClose(r rune) int {
	target, ok := d.pairs.MatchingOpen(r)
	if !ok {
		return 0
	}
	for i := len(d.stack) - 1; i >= 0; i-- {
		if d.stack[i] == target {
			n := len(d.stack) - i
			d.stack = d.stack[:i]
			return n
		}
	}
	return 0
}

// Observe feeds one character to the tracker and returns the number of
// entries removed by a close, or zero. A symmetric token closes an open
// instance of itself if one is on the stack and opens a new span otherwise.
func (d *DelimiterTracker) Observe(r rune) int {
	switch {
	case d.pairs.IsSymmetric(r):
		if n := d.ResolveClose(r); n > 0 {
			return n
		}
		d.Push(r)
	case d.pairs.IsOpen(r):
		d.Push(r)
	case d.pairs.IsClose(r):
		return d.ResolveClose(r)
	}
	return 0
}

// Depth returns the stack size. A positive depth means the scan position is
// inside an unresolved span.
func (d *DelimiterTracker) Depth() int {
	return len(d.stack)
}

// Clear empties the stack.
func (d *DelimiterTracker) Clear() {
	d.stack = d.stack[:0]
}
