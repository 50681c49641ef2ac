package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSummary = `# Summary

[Introduction](intro.md)

- [Getting Started](start/README.md)
    - [Installation](start/install.md)
    - [Draft section]()
- [Usage](usage.md)

---

# Reference

- [Config](reference/config.md)
    - [Options](reference/options%20and%20flags.md)

[Contributors](contributors.md)
`

func TestParseSummary(t *testing.T) {
	s, err := ParseSummary([]byte(sampleSummary))
	require.NoError(t, err)

	require.Equal(t, "Summary", s.Title)

	require.Len(t, s.PrefixChapters, 1)
	intro := s.PrefixChapters[0].Link
	require.Equal(t, "Introduction", intro.Name)
	require.Equal(t, "intro.md", *intro.Location)
	require.Nil(t, intro.Number)

	// start, usage, separator, part title, config
	require.Len(t, s.NumberedChapters, 5)

	start := s.NumberedChapters[0].Link
	require.Equal(t, SectionNumber{1}, start.Number)
	require.Len(t, start.NestedItems, 2)
	require.Equal(t, SectionNumber{1, 1}, start.NestedItems[0].Link.Number)
	draft := start.NestedItems[1].Link
	require.Nil(t, draft.Location)
	require.Equal(t, SectionNumber{1, 2}, draft.Number)

	require.Equal(t, SectionNumber{2}, s.NumberedChapters[1].Link.Number)
	require.Equal(t, KindSeparator, s.NumberedChapters[2].Kind)
	require.Equal(t, KindPartTitle, s.NumberedChapters[3].Kind)
	require.Equal(t, "Reference", s.NumberedChapters[3].PartTitle)

	config := s.NumberedChapters[4].Link
	require.Equal(t, SectionNumber{3}, config.Number, "numbering continues across parts")
	require.Equal(t, "reference/options and flags.md", *config.NestedItems[0].Link.Location)

	require.Len(t, s.SuffixChapters, 1)
	require.Equal(t, "Contributors", s.SuffixChapters[0].Link.Name)
}

func TestParseSummary_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"list after suffix", "- [A](a.md)\n\n[B](b.md)\n\n- [C](c.md)\n"},
		{"part after suffix", "- [A](a.md)\n\n[B](b.md)\n\n# Part\n"},
		{"item without link", "- [A](a.md)\n- plain text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSummary([]byte(tt.src))
			require.Error(t, err)
		})
	}
}

func TestSectionNumberString(t *testing.T) {
	tests := []struct {
		in   SectionNumber
		want string
	}{
		{nil, ""},
		{SectionNumber{1}, "1."},
		{SectionNumber{2, 3, 4}, "2.3.4."},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("SectionNumber(%v).String() = %q; want %q", []int(tt.in), got, tt.want)
		}
	}
}
