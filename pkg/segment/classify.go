package segment

import (
	"fmt"
	"slices"
	"unicode"

	"github.com/haivivi/splittyping/pkg/trie"
)

// Tier is the boundary strength of a punctuation token.
type Tier int

const (
	// TierNone tokens never cause a boundary on their own.
	TierNone Tier = iota
	// TierIntermediate tokens end a fragment only once it exceeds the
	// length threshold.
	TierIntermediate
	// TierTerminate tokens end a fragment unless inside an open span.
	TierTerminate
	// TierMustTerminate tokens end a fragment unless inside an open span,
	// with precedence over every other rule.
	TierMustTerminate
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierIntermediate:
		return "intermediate"
	case TierTerminate:
		return "terminate"
	case TierMustTerminate:
		return "must-terminate"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// DefaultTokens lists the punctuation tokens of each tier. Tokens may span
// more than one code point, like the CJK ellipsis "……".
var DefaultTokens = map[Tier][]string{
	TierMustTerminate: {"。", "!", "！", "?", "？", "……", "\n"},
	TierTerminate:     {"」", "』", "；", ";"},
	TierIntermediate:  {",", "，", "…", "）"},
}

// Classifier assigns punctuation tiers to characters and multi-codepoint
// tokens. It is immutable after construction.
type Classifier struct {
	single   map[rune]Tier
	forward  *trie.Trie[Tier] // tokens, for matches starting at a position
	backward *trie.Trie[Tier] // reversed tokens, for matches ending at a position
	window   int
}

// NewClassifier builds a Classifier from per-tier token lists. A token may
// belong to only one tier.
func NewClassifier(tokens map[Tier][]string) (*Classifier, error) {
	c := &Classifier{
		single:   make(map[rune]Tier),
		forward:  trie.New[Tier](),
		backward: trie.New[Tier](),
	}
	tiers := []Tier{TierMustTerminate, TierTerminate, TierIntermediate}
	for _, tier := range tiers {
		for _, tok := range tokens[tier] {
			rs := []rune(tok)
			if len(rs) == 0 {
				return nil, fmt.Errorf("segment: empty %s token", tier)
			}
			err := c.forward.Set(tok, func(ptr *Tier, existed bool) error {
				if existed {
					return fmt.Errorf("segment: token %q is both %s and %s", tok, *ptr, tier)
				}
				*ptr = tier
				return nil
			})
			if err != nil {
				return nil, err
			}
			rev := slices.Clone(rs)
			slices.Reverse(rev)
			if err := c.backward.SetValue(string(rev), tier); err != nil {
				return nil, err
			}
			if len(rs) == 1 {
				c.single[rs[0]] = tier
			}
		}
	}
	c.window = c.forward.MaxKeyLen()
	return c, nil
}

// DefaultClassifier returns a Classifier over DefaultTokens.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultTokens)
	if err != nil {
		panic(err)
	}
	return c
}

// TierOf returns the tier of a single character.
func (c *Classifier) TierOf(r rune) Tier {
	return c.single[r]
}

// EndsWith reports whether a token of the given tier ends at rs[i].
func (c *Classifier) EndsWith(rs []rune, i int, tier Tier) bool {
	if i < 0 || i >= len(rs) {
		return false
	}
	lo := max(0, i-c.window+1)
	win := make([]rune, 0, i-lo+1)
	for k := i; k >= lo; k-- {
		win = append(win, rs[k])
	}
	for _, t := range c.backward.Prefixes(win) {
		if t == tier {
			return true
		}
	}
	return false
}

// StartsWith reports whether a token of the given tier starts at rs[j].
func (c *Classifier) StartsWith(rs []rune, j int, tier Tier) bool {
	if j < 0 || j >= len(rs) {
		return false
	}
	hi := min(len(rs), j+c.window)
	for _, t := range c.forward.Prefixes(rs[j:hi]) {
		if t == tier {
			return true
		}
	}
	return false
}

// IsPunctOrSymbol reports whether r is in a Unicode punctuation (P*) or
// symbol (S*) general category.
func IsPunctOrSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
