package segment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSegmentSeparator(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		separators []string
		want       []string
	}{
		{
			name:  "default newline",
			input: "a\nb\n",
			want:  []string{"a", "b"},
		},
		{
			name:       "explicit newline",
			input:      "a\nb\n",
			separators: []string{"\n"},
			want:       []string{"a", "b"},
		},
		{
			name:       "no separators strips full stops",
			input:      "只有句号。",
			separators: []string{},
			want:       []string{"只有句号"},
		},
		{
			name:       "no separators blank input",
			input:      "。。",
			separators: []string{},
			want:       []string{},
		},
		{
			name:  "trailing stop then comma stripped",
			input: "第一句，。\n 第二句。。\n\n第三句，",
			want:  []string{"第一句", "第二句", "第三句"},
		},
		{
			name:  "whitespace is trimmed after punctuation",
			input: "第一句。 \n第二句",
			want:  []string{"第一句。", "第二句"},
		},
		{
			name:       "multi-character separators are literal",
			input:      "a||b|c||",
			separators: []string{"||"},
			want:       []string{"a", "b|c"},
		},
		{
			name:       "alternatives",
			input:      "一。二！三\n四",
			separators: []string{"！", "\n"},
			want:       []string{"一。二", "三", "四"},
		},
		{
			name:       "regexp metacharacters are not special",
			input:      "a.b.c",
			separators: []string{"."},
			want:       []string{"a", "b", "c"},
		},
		{
			name:       "first listed separator wins at a position",
			input:      "a--b",
			separators: []string{"-", "--"},
			want:       []string{"a", "b"},
		},
		{
			name:       "empty separator ignored",
			input:      "ab\ncd",
			separators: []string{"", "\n"},
			want:       []string{"ab", "cd"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SegmentSeparator(tc.input, tc.separators)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("SegmentSeparator(%q, %q) mismatch (-want +got):\n%s", tc.input, tc.separators, diff)
			}
		})
	}
}

func TestSeparatorSegmenter_CustomStrip(t *testing.T) {
	s := NewSeparator([]string{"\n"}, "!", "~")
	got := s.Segment("好的~!\n再见!!。")
	want := []string{"好的", "再见!!。"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
