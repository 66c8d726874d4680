package compiler

import (
	"regexp"
	"strings"
)

// regexMeta are the characters that make a string argument read as a regular
// expression rather than a format name ("email", "date-time", "int64").
const regexMeta = `^$*+?()[]{}|\`

// pattern reports whether v is a regular expression and returns it without
// "/.../" delimiters. Results are memoised per compiler.
func (c *Compiler) pattern(v string) (string, bool) {
	body, delimited := stripSlashes(v)
	if ok, hit := c.patterns.Get(v); hit {
		return body, ok
	}
	ok := isPattern(body, delimited)
	c.patterns.Add(v, ok)
	return body, ok
}

func isPattern(body string, delimited bool) bool {
	if !delimited && !strings.ContainsAny(body, regexMeta) {
		return false
	}
	_, err := regexp.Compile(body)
	return err == nil
}

func stripSlashes(v string) (string, bool) {
	if len(v) >= 2 && strings.HasPrefix(v, "/") && strings.HasSuffix(v, "/") {
		return v[1 : len(v)-1], true
	}
	return v, false
}
