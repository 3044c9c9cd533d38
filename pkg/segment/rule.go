package segment

import (
	"strings"
)

var _ Segmenter = (*RuleSegmenter)(nil)

// RuleSegmenter is the punctuation- and bracket-aware segmentation engine.
//
// It scans adjacent character pairs once. For each position the rules below
// are evaluated in order and the first match decides the action:
//
//  1. must-continue: the next token is must-terminate; keep the current
//     character so the terminator is decided on the next step.
//  2. must-terminate: a must-terminate token ends here and no span is
//     open; end the fragment here.
//  3. absorb: inside a punctuation run or an open span; keep the character.
//     If a new span opens after one already completed in this fragment, the
//     fragment ends before the opener.
//  4. span-open: a new span opens after one already completed in this
//     fragment; the fragment ends before the opener.
//  5. intermediate: an intermediate token or the end of a long punctuation
//     run; end the fragment only once it exceeds the length threshold.
//  6. terminate: a terminate-tier token; end the fragment here.
//  7. default: keep the character.
//
// The final character is always appended and committed. Commas, the CJK
// comma and full stop and the ASCII semicolon are dropped rather than kept
// when they end a fragment.
type RuleSegmenter struct {
	maxRunLength int
	classifier   *Classifier
	pairs        *PairTable
}

// NewRule returns a RuleSegmenter with the default token and pair tables.
// A non-positive maxRunLength selects DefaultMaxRunLength.
func NewRule(maxRunLength int) *RuleSegmenter {
	return NewRuleWith(maxRunLength, DefaultClassifier(), mustPairTable(DefaultPairs))
}

// NewRuleWith returns a RuleSegmenter using custom tables.
func NewRuleWith(maxRunLength int, classifier *Classifier, pairs *PairTable) *RuleSegmenter {
	if maxRunLength <= 0 {
		maxRunLength = DefaultMaxRunLength
	}
	return &RuleSegmenter{
		maxRunLength: maxRunLength,
		classifier:   classifier,
		pairs:        pairs,
	}
}

// MaxRunLength returns the intermediate-split length threshold.
func (s *RuleSegmenter) MaxRunLength() int {
	return s.maxRunLength
}

// Segment splits text into fragments. It never fails: blank text yields no
// fragments and a single non-space character yields itself.
func (s *RuleSegmenter) Segment(text string) []string {
	rs := []rune(text)
	switch {
	case strings.TrimSpace(text) == "":
		return []string{}
	case len(rs) == 1:
		return []string{text}
	}

	sc := &scan{
		rs:    rs,
		stack: NewDelimiterTracker(s.pairs),
	}
	for i := 0; i < len(rs)-1; i++ {
		m := s.mark(sc, i)
		d := decide(&m)
		s.apply(sc, &m, d)
	}
	sc.commitBreak(rs[len(rs)-1])

	out := make([]string, 0, len(sc.segments))
	for _, seg := range sc.segments {
		if strings.TrimSpace(seg) != "" {
			out = append(out, seg)
		}
	}
	return out
}

// scan is the mutable state of one Segment call.
type scan struct {
	rs       []rune
	buf      []rune
	segments []string
	run      int // adjacent punctuation/symbol pairs seen in this fragment
	pairs    int // spans completed in this fragment
	stack    *DelimiterTracker
}

// commit moves the trimmed buffer to the finalized list and clears the
// buffer and the delimiter stack.
func (sc *scan) commit() {
	if seg := strings.TrimSpace(string(sc.buf)); seg != "" {
		sc.segments = append(sc.segments, seg)
	}
	sc.buf = sc.buf[:0]
	sc.stack.Clear()
}

// commitBreak ends the fragment at r, dropping r if it is a separator.
func (sc *scan) commitBreak(r rune) {
	if !isDropped(r) {
		sc.buf = append(sc.buf, r)
	}
	sc.commit()
}

func (sc *scan) resetCounters() {
	sc.run = 0
	sc.pairs = 0
}

func isDropped(r rune) bool {
	switch r {
	case ',', '，', '。', ';':
		return true
	}
	return false
}

// marks are the per-position conditions the rules are evaluated against.
type marks struct {
	char rune

	mustContinue  bool // a must-terminate token starts at the next position
	mustTerminate bool // a must-terminate token ends at this position
	continuous    bool // this and the next character are punctuation/symbols
	inSpan        bool // the delimiter stack is non-empty
	spanOpen      bool // a new span opens after a completed one
	opened        bool // this character pushed onto the delimiter stack
	intermediate  bool
	terminate     bool
	overThreshold bool // the buffer including this character exceeds the threshold
	longRun       bool // at least three punctuation pairs in this fragment
}

// mark computes the conditions at position i and applies the side
// classification updates: counters and the delimiter stack.
func (s *RuleSegmenter) mark(sc *scan, i int) marks {
	r, next := sc.rs[i], sc.rs[i+1]
	m := marks{char: r}

	m.mustContinue = s.classifier.StartsWith(sc.rs, i+1, TierMustTerminate)
	m.mustTerminate = s.classifier.EndsWith(sc.rs, i, TierMustTerminate)

	if sc.pairs > 0 && s.pairs.IsOpen(r) {
		if c, _ := s.pairs.MatchingClose(r); s.classifier.TierOf(c) != TierNone {
			m.spanOpen = true
			sc.resetCounters()
		}
	}

	depth := sc.stack.Depth()
	if closed := sc.stack.Observe(r); closed > 0 {
		sc.pairs++
	}
	m.opened = sc.stack.Depth() > depth
	m.inSpan = sc.stack.Depth() > 0

	if IsPunctOrSymbol(r) && IsPunctOrSymbol(next) {
		m.continuous = true
		sc.run++
	} else if sc.run > 3 {
		m.intermediate = true
	}
	switch s.classifier.TierOf(r) {
	case TierIntermediate:
		m.intermediate = true
	case TierTerminate:
		m.terminate = true
	}

	m.overThreshold = len(sc.buf)+1 > s.maxRunLength
	m.longRun = sc.run >= 3
	return m
}

// action is what the scan does with the current character.
type action int

const (
	actAppend       action = iota // keep the character, no boundary
	actBreak                      // end the fragment at the character
	actCommitBefore               // end the fragment, start the next with the character
	actAppendCommit               // keep the character, then end the fragment
)

// ruleID names the rule that produced a decision.
type ruleID int

const (
	ruleMustContinue ruleID = iota + 1
	ruleMustTerminate
	ruleAbsorb
	ruleSpanOpen
	ruleIntermediate
	ruleTerminate
	ruleDefault
)

func (r ruleID) String() string {
	switch r {
	case ruleMustContinue:
		return "must-continue"
	case ruleMustTerminate:
		return "must-terminate"
	case ruleAbsorb:
		return "absorb"
	case ruleSpanOpen:
		return "span-open"
	case ruleIntermediate:
		return "intermediate"
	case ruleTerminate:
		return "terminate"
	case ruleDefault:
		return "default"
	}
	return "unknown"
}

type decision struct {
	rule   ruleID
	action action
}

type rule struct {
	id     ruleID
	match  func(m *marks) bool
	action func(m *marks) action
}

func always(a action) func(*marks) action {
	return func(*marks) action { return a }
}

// rules are evaluated top to bottom; the first match wins.
var rules = []rule{
	{
		id:     ruleMustContinue,
		match:  func(m *marks) bool { return m.mustContinue },
		action: always(actAppend),
	},
	{
		id:     ruleMustTerminate,
		match:  func(m *marks) bool { return m.mustTerminate && !m.inSpan },
		action: always(actBreak),
	},
	{
		id:    ruleAbsorb,
		match: func(m *marks) bool { return m.continuous || m.inSpan },
		action: func(m *marks) action {
			if m.spanOpen {
				return actCommitBefore
			}
			return actAppend
		},
	},
	{
		id:     ruleSpanOpen,
		match:  func(m *marks) bool { return m.spanOpen },
		action: always(actCommitBefore),
	},
	{
		id:    ruleIntermediate,
		match: func(m *marks) bool { return m.intermediate },
		action: func(m *marks) action {
			switch {
			case !m.overThreshold:
				return actAppend
			case m.longRun:
				return actAppendCommit
			}
			return actBreak
		},
	},
	{
		id:     ruleTerminate,
		match:  func(m *marks) bool { return m.terminate },
		action: always(actBreak),
	},
}

func decide(m *marks) decision {
	for _, r := range rules {
		if r.match(m) {
			return decision{rule: r.id, action: r.action(m)}
		}
	}
	return decision{rule: ruleDefault, action: actAppend}
}

func (s *RuleSegmenter) apply(sc *scan, m *marks, d decision) {
	switch d.action {
	case actAppend:
		sc.buf = append(sc.buf, m.char)
	case actBreak:
		sc.commitBreak(m.char)
		sc.resetCounters()
	case actCommitBefore:
		sc.commit()
		if m.opened {
			sc.stack.Push(m.char)
		}
		sc.buf = append(sc.buf, m.char)
	case actAppendCommit:
		sc.buf = append(sc.buf, m.char)
		sc.commit()
		sc.resetCounters()
	}
}
