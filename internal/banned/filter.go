// Package banned implements the denylist filter applied to usernames and
// nicknames at registration.
package banned

import "strings"

var separators = strings.NewReplacer(".", "", "_", "", "-", "")

// Normalize lower-cases s and strips the separator characters people use
// to dodge the filter ("a.d.m.i.n" -> "admin").
func Normalize(s string) string {
	return separators.Replace(strings.ToLower(s))
}

// Filter holds the normalized denylists. Construct once from config and
// share freely; it is immutable after New.
type Filter struct {
	usernames []string
	nicknames []string
}

func New(usernames, nicknames []string) *Filter {
	return &Filter{
		usernames: normalizeAll(usernames),
		nicknames: normalizeAll(nicknames),
	}
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Username reports whether the candidate contains a banned username word.
// Matching is plain substring containment on normalized forms, so short
// banned fragments can false-positive on longer innocent names. That is the
// intended behavior: erring toward rejection is acceptable for handles.
func (f *Filter) Username(candidate string) bool {
	return contains(Normalize(candidate), f.usernames)
}

// Nickname reports whether the candidate contains a banned nickname word.
func (f *Filter) Nickname(candidate string) bool {
	return contains(Normalize(candidate), f.nicknames)
}

func contains(normalized string, words []string) bool {
	for _, w := range words {
		if strings.Contains(normalized, w) {
			return true
		}
	}
	return false
}
