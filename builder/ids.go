package builder

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
)

// idSet hands out unique manifest ids. Ids must be XML names, so they are
// slugs of the entry path with a letter prefix where needed.
type idSet struct {
	used map[string]bool
}

func newIDSet(reserved ...string) *idSet {
	s := &idSet{used: make(map[string]bool)}
	for _, id := range reserved {
		s.used[id] = true
	}
	return s
}

// forPath returns a fresh id derived from an archive path.
func (s *idSet) forPath(p string) string {
	base, err := slug.Normalize(p)
	if err != nil || base == "" {
		base = "item"
	}
	base = xmlName(base)

	id := base
	for n := 2; s.used[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	s.used[id] = true
	return id
}

// xmlName replaces characters not allowed in an XML name and makes sure
// the result starts with a letter.
func xmlName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	out := sb.String()
	if out == "" || !isLetter(out[0]) {
		out = "id-" + out
	}
	return out
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
