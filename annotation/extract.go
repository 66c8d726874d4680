// Package annotation extracts annotation records from "/** ... */" comment
// blocks. Each block carrying at least one "@tag" line becomes one Record, the
// ordered tag stream documenting one routine.
package annotation

import (
	"regexp"
	"strings"

	"github.com/reoring/oasdoc/typeexpr"
)

var (
	blockRe = regexp.MustCompile(`(?s)/\*\*(.*?)\*/`)
	tagRe   = regexp.MustCompile(`^@([A-Za-z][\w-]*)\s*(.*)$`)
	starRe  = regexp.MustCompile(`^\s*\*? ?`)
)

// namedTags are the titles whose first word after the type is a name.
var namedTags = map[string]bool{
	"param":    true,
	"headers":  true,
	"header":   true,
	"property": true,
}

// Tag is one "@title {type} name description" entry.
type Tag struct {
	Title       string
	Description string
	Name        string
	// RawType is the text between the braces, "" when the tag has no type.
	RawType string
	// Type is the parsed RawType. nil when absent or when parsing failed.
	Type typeexpr.Node
	// TypeErr records a RawType that failed to parse.
	TypeErr error
}

// Record is the annotation stream of one comment block.
type Record struct {
	Description string
	Tags        []Tag
	// Line is the 1-based line of the block opening in the source.
	Line int
}

// Tag returns the first tag titled title.
func (r Record) Tag(title string) (Tag, bool) {
	for _, t := range r.Tags {
		if t.Title == title {
			return t, true
		}
	}
	return Tag{}, false
}

// Extract returns the records of src in source order.
func Extract(src string) []Record {
	var out []Record
	for _, loc := range blockRe.FindAllStringSubmatchIndex(src, -1) {
		body := src[loc[2]:loc[3]]
		rec := parseBlock(body)
		if len(rec.Tags) == 0 {
			continue
		}
		rec.Line = strings.Count(src[:loc[0]], "\n") + 1
		out = append(out, rec)
	}
	return out
}

func parseBlock(body string) Record {
	var (
		rec  Record
		desc []string
		cur  *Tag
		buf  []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Description = strings.TrimSpace(strings.Join(buf, "\n"))
		rec.Tags = append(rec.Tags, *cur)
		cur, buf = nil, nil
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(starRe.ReplaceAllString(line, ""), " \t\r")
		if m := tagRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			t, rest := parseTag(m[1], m[2])
			cur, buf = &t, []string{rest}
			continue
		}
		if cur != nil {
			buf = append(buf, line)
			continue
		}
		desc = append(desc, line)
	}
	flush()
	rec.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	return rec
}

// parseTag splits the text after "@title" into type, name and the start of the description.
func parseTag(title, rest string) (Tag, string) {
	t := Tag{Title: title}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") {
		if end := matchingBrace(rest); end > 0 {
			t.RawType = strings.TrimSpace(rest[1:end])
			rest = strings.TrimSpace(rest[end+1:])
			if t.RawType != "" {
				t.Type, t.TypeErr = typeexpr.Parse(t.RawType)
			}
		}
	}
	if namedTags[title] && rest != "" {
		name, after, _ := strings.Cut(rest, " ")
		t.Name = name
		rest = strings.TrimSpace(after)
	}
	return t, rest
}

// matchingBrace returns the index of the brace closing s[0], or -1.
func matchingBrace(s string) int {
	depth := 0
	inQuote := rune(0)
	for i, r := range s {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			}
		case r == '"' || r == '\'':
			inQuote = r
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
