// Package danger decides whether a single user message describes immediate
// physical danger. It is a fixed, case-insensitive regular expression table
// that favours recall over precision.
package danger

import "regexp"

type compiled struct {
	name string
	re   *regexp.Regexp
}

var table = compile(Patterns)

func compile(patterns []Pattern) []compiled {
	out := make([]compiled, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, compiled{name: p.Name, re: regexp.MustCompile(`(?i)` + p.Expr)})
	}
	return out
}

// IsImmediateDanger reports whether any pattern matches text.
func IsImmediateDanger(text string) bool {
	_, ok := Match(text)
	return ok
}

// Match returns the name of the first pattern that matches text.
func Match(text string) (string, bool) {
	for _, c := range table {
		if c.re.MatchString(text) {
			return c.name, true
		}
	}
	return "", false
}
