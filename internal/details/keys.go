package details

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key builds the cache key for one feature lookup. The readable part is
// sanitized and truncated; the xxhash suffix keeps distinct identities
// distinct after sanitization.
func Key(source, viewerID string, includeGeom bool) string {
	geom := 0
	if includeGeom {
		geom = 1
	}
	raw := fmt.Sprintf("%s|%s|%d", source, viewerID, geom)

	const maxTextLen = 120
	text := sanitizeForKey(strings.TrimSpace(source)) + ":" + sanitizeForKey(strings.TrimSpace(viewerID))
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}

	sum := xxhash.Sum64String(raw)
	return fmt.Sprintf("details:%s:geom=%d:f=%016x", text, geom, sum)
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '.':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
