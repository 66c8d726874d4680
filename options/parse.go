// Package options parses the "- key: value" constraint lines embedded in
// annotation descriptions.
//
//	@param {string} query.name.required - filter by name
//	 - minLength: 3
//	 - anyOf:
//	 - pattern: ^[a-z]+$
//	 - pattern: ^[0-9]+$
//
// Constraint keywords are coerced and collected per keyword. Composition
// keywords (allOf, anyOf, oneOf, not) open a nested set that receives the
// constraints declared after them. The collected values are then flattened
// into a schema fragment.
//
// Keyword lines may also be written without bullets, one per line:
//
//	@param {integer} query.limit - page size
//	 minimum: 1
//	 maximum: 100
//
// An unbulleted line starts a new segment only when it opens with a known
// keyword, so wrapped prose and multi-line literals stay in their segment.
package options

import (
	"regexp"
	"strings"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/schema"
)

var (
	bulletRe = regexp.MustCompile(`(?m)^[ \t]*-[ \t]+`)
	keyRe    = regexp.MustCompile(`(?s)^([A-Za-z$][\w$]*)[ \t]*:[ \t]*(.*)$`)
	lineRe   = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z$][\w$]*)[ \t]*:`)
)

// Options is the structured result of one description.
type Options struct {
	// In is the "in:" location, validated. Empty when absent.
	In string
	// Required is nil, a bool, or a list of property names.
	Required any
	// Description is the prose left after removing keyword lines.
	Description string
	// Values holds object keywords verbatim (including In and Required).
	Values map[string]string
	// Schema is the constraint and composition fragment. Never nil.
	Schema *schema.Schema
}

// IsRequired reports whether "required: true" was declared.
func (o *Options) IsRequired() bool {
	if o == nil {
		return false
	}
	b, _ := o.Required.(bool)
	return b
}

// Enum returns the declared enum list.
func (o *Options) Enum() []any {
	if o == nil || o.Schema == nil {
		return nil
	}
	return o.Schema.Enum
}

// Format returns the declared format.
func (o *Options) Format() string {
	if o == nil || o.Schema == nil {
		return ""
	}
	return o.Schema.Format
}

// accumulator collects coerced constraint values of one level in declaration order.
type accumulator struct {
	order  []string
	values map[string][]any
}

func (a *accumulator) add(key string, v any) {
	if a.values == nil {
		a.values = make(map[string][]any)
	}
	if _, seen := a.values[key]; !seen {
		a.order = append(a.order, key)
	}
	a.values[key] = append(a.values[key], v)
}

// state is the fold state. level is the single open composition slot.
type state struct {
	top         accumulator
	nested      map[Composition]*accumulator
	nestedOrder []Composition
	level       Composition
	values      map[string]string
	description string
}

// Parse parses one description into Options.
func Parse(desc string) (*Options, error) {
	st := &state{values: map[string]string{}}
	for _, seg := range Segments(desc) {
		if err := st.feed(seg); err != nil {
			return nil, err
		}
	}
	return st.construct()
}

// Segments splits a description on leading dash bullets and on lines that
// start with a keyword. Text before the first bullet is a segment of its own.
// Segments are trimmed; empty ones are dropped.
func Segments(desc string) []string {
	var out []string
	for _, b := range bulletRe.Split(desc, -1) {
		for _, s := range keywordLines(b) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// keywordLines cuts seg before every line after the first that opens with a
// known keyword.
func keywordLines(seg string) []string {
	var out []string
	start := 0
	for _, m := range lineRe.FindAllStringSubmatchIndex(seg, -1) {
		key := seg[m[2]:m[3]]
		if m[0] == 0 || !(IsObjectKeyword(key) || IsScalarKeyword(key)) {
			continue
		}
		out = append(out, seg[start:m[0]])
		start = m[0]
	}
	return append(out, seg[start:])
}

func (st *state) feed(seg string) error {
	m := keyRe.FindStringSubmatch(seg)
	if m == nil {
		st.description = seg
		return nil
	}
	key, raw := m[1], strings.TrimSpace(m[2])
	switch {
	case IsObjectKeyword(key):
		return st.object(key, raw)
	case IsScalarKeyword(key):
		v, err := scalarKeywords[key](raw)
		if err != nil {
			return oasdoc.Errorf(oasdoc.CodeMalformedLiteral, raw, "%s: %v", key, err)
		}
		st.current().add(key, v)
	}
	// Unknown "key:" segments are dropped.
	return nil
}

func (st *state) object(key, raw string) error {
	if c, ok := composition(key); ok {
		if st.nested == nil {
			st.nested = make(map[Composition]*accumulator)
		}
		if _, open := st.nested[c]; !open {
			st.nested[c] = &accumulator{}
			st.nestedOrder = append(st.nestedOrder, c)
		}
		st.level = c
		return nil
	}
	switch key {
	case "in":
		if _, err := ParseLocation(raw); err != nil {
			return err
		}
	case "description":
		st.description = raw
	}
	st.values[key] = raw
	return nil
}

func (st *state) current() *accumulator {
	if st.level == "" {
		return &st.top
	}
	return st.nested[st.level]
}
