package completion

import "strings"

// Score rates candidate against the typed word, case-insensitively:
//
//	word empty     base
//	exact match    100
//	prefix match   95
//	substring      min(base+5, 85)
//	otherwise      base-10, not below 0
func Score(candidate, word string, base int) int {
	if word == "" {
		return clamp(base)
	}

	c := strings.ToLower(candidate)
	w := strings.ToLower(word)
	switch {
	case c == w:
		return 100
	case strings.HasPrefix(c, w):
		return 95
	case strings.Contains(c, w):
		return min(base+5, 85)
	}
	return clamp(base - 10)
}

// hasPrefixFold reports whether s starts with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
