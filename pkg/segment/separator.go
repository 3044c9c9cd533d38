package segment

import "strings"

var _ Segmenter = (*SeparatorSegmenter)(nil)

// SeparatorSegmenter splits text only on literal separator substrings.
type SeparatorSegmenter struct {
	separators    []string
	stripSuffixes []string
}

// NewSeparator returns a SeparatorSegmenter splitting on the given
// separators. Each separator is an exact substring; where several match at
// the same position the earlier one in the list wins. Empty separators are
// ignored. stripSuffixes defaults to DefaultStripSuffixes when omitted.
func NewSeparator(separators []string, stripSuffixes ...string) *SeparatorSegmenter {
	s := &SeparatorSegmenter{}
	for _, sep := range separators {
		if sep != "" {
			s.separators = append(s.separators, sep)
		}
	}
	if len(stripSuffixes) == 0 {
		stripSuffixes = DefaultStripSuffixes()
	}
	s.stripSuffixes = stripSuffixes
	return s
}

// Segment splits text on the separators, then strips trailing punctuation
// and surrounding whitespace from each piece and drops empty pieces.
//
// With no separators the whole text is one fragment with trailing full
// stops removed.
func (s *SeparatorSegmenter) Segment(text string) []string {
	if len(s.separators) == 0 {
		if frag := strings.TrimSpace(trimAll(text, "。")); frag != "" {
			return []string{frag}
		}
		return []string{}
	}

	pieces := s.split(text)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		for _, suf := range s.stripSuffixes {
			p = trimAll(p, suf)
		}
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *SeparatorSegmenter) split(text string) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(text); {
		sep := s.separatorAt(text[i:])
		if sep == "" {
			i++
			continue
		}
		pieces = append(pieces, text[start:i])
		i += len(sep)
		start = i
	}
	return append(pieces, text[start:])
}

func (s *SeparatorSegmenter) separatorAt(text string) string {
	for _, sep := range s.separators {
		if strings.HasPrefix(text, sep) {
			return sep
		}
	}
	return ""
}

// trimAll removes every trailing repetition of suffix.
func trimAll(s, suffix string) string {
	if suffix == "" {
		return s
	}
	for strings.HasSuffix(s, suffix) {
		s = s[:len(s)-len(suffix)]
	}
	return s
}
