package options_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/options"
)

// normalize marshals v to JSON and unmarshals back into interface{} to remove ordering effects.
func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	_ = json.Unmarshal(b, &out)
	return out
}

func mustParse(t *testing.T, desc string) *options.Options {
	t.Helper()
	o, err := options.Parse(desc)
	if err != nil {
		t.Fatalf("parse %q: %v", desc, err)
	}
	return o
}

func assertSchema(t *testing.T, o *options.Options, want map[string]any) {
	t.Helper()
	got := normalize(o.Schema)
	if !reflect.DeepEqual(got, normalize(want)) {
		t.Fatalf("schema mismatch\n got=%v\nwant=%v", got, normalize(want))
	}
}

func TestSegments_SplitOnDashBullets(t *testing.T) {
	got := options.Segments("- filter by name\n - minLength: 3\n\t-  maxLength: 10\n-5 is not a bullet")
	want := []string{"filter by name", "minLength: 3", "maxLength: 10\n-5 is not a bullet"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %#v", got)
	}
	if got := options.Segments("plain text"); !reflect.DeepEqual(got, []string{"plain text"}) {
		t.Fatalf("plain = %#v", got)
	}
	if got := options.Segments("  \n "); got != nil {
		t.Fatalf("blank = %#v", got)
	}
}

func TestSegments_UnbulletedKeywordLines(t *testing.T) {
	got := options.Segments("page size\n minimum: 1\nmaximum: 100\nNote: wrapped\nprose")
	want := []string{"page size", "minimum: 1", "maximum: 100\nNote: wrapped\nprose"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %#v", got)
	}

	o := mustParse(t, "minimum: 5\nminimum: 1")
	assertSchema(t, o, map[string]any{"anyOf": []any{
		map[string]any{"minimum": 5},
		map[string]any{"minimum": 1},
	}})
}

func TestParse_DescriptionIsLastProseSegment(t *testing.T) {
	o := mustParse(t, "- first words\n- minLength: 2\n- last words")
	if o.Description != "last words" {
		t.Fatalf("description = %q", o.Description)
	}
	assertSchema(t, o, map[string]any{"minLength": 2})
}

func TestParse_UnknownKeySegmentsAreDropped(t *testing.T) {
	o := mustParse(t, "- the filter\n- colour: blue")
	if o.Description != "the filter" {
		t.Fatalf("description = %q", o.Description)
	}
	assertSchema(t, o, map[string]any{})
}

func TestParse_ScalarCoercions(t *testing.T) {
	o := mustParse(t, `- title: Name
- format: email
- pattern: ^[a-z]+$
- enum: ['a', "b", 3]
- minimum: 1.5
- maximum: 10
- exclusiveMinimum:
- exclusiveMaximum: false
- multipleOf: 0.5
- minLength: 1
- maxLength: 64
- minItems: 0
- maxItems: 5
- minProperties: 1
- maxProperties: 9
- uniqueItems:`)
	assertSchema(t, o, map[string]any{
		"title":            "Name",
		"format":           "email",
		"pattern":          "^[a-z]+$",
		"enum":             []any{"a", "b", 3},
		"minimum":          1.5,
		"maximum":          10,
		"exclusiveMinimum": true,
		"exclusiveMaximum": false,
		"multipleOf":       0.5,
		"minLength":        1,
		"maxLength":        64,
		"minItems":         0,
		"maxItems":         5,
		"minProperties":    1,
		"maxProperties":    9,
		"uniqueItems":      true,
	})
	if got := o.Format(); got != "email" {
		t.Fatalf("Format() = %q", got)
	}
	if got := o.Enum(); len(got) != 3 {
		t.Fatalf("Enum() = %v", got)
	}
}

func TestParse_RepeatedKeywordPromotesToAnyOf(t *testing.T) {
	o := mustParse(t, "- minimum: 5\n- minimum: 1")
	assertSchema(t, o, map[string]any{
		"anyOf": []any{
			map[string]any{"minimum": 5},
			map[string]any{"minimum": 1},
		},
	})
}

func TestParse_CompositionNestsFollowingConstraints(t *testing.T) {
	o := mustParse(t, `- maxLength: 20
- oneOf:
- pattern: ^[a-z]+$
- pattern: ^[0-9]+$
- minLength: 2`)
	assertSchema(t, o, map[string]any{
		"maxLength": 20,
		"oneOf": []any{
			map[string]any{"minLength": 2},
			map[string]any{"pattern": "^[a-z]+$"},
			map[string]any{"pattern": "^[0-9]+$"},
		},
	})
}

func TestParse_RepeatedTopLevelGoesToOpenComposition(t *testing.T) {
	o := mustParse(t, `- minimum: 1
- minimum: 2
- allOf:
- maximum: 9`)
	assertSchema(t, o, map[string]any{
		"allOf": []any{
			map[string]any{"minimum": 1},
			map[string]any{"minimum": 2},
			map[string]any{"maximum": 9},
		},
	})
}

func TestParse_NotAndSwitchingLevels(t *testing.T) {
	o := mustParse(t, `- not:
- enum: ['admin']
- anyOf:
- format: email
- format: uuid
- not:
- maxLength: 3`)
	assertSchema(t, o, map[string]any{
		"not": map[string]any{"enum": []any{"admin"}, "maxLength": 3},
		"anyOf": []any{
			map[string]any{"format": "email"},
			map[string]any{"format": "uuid"},
		},
	})
}

func TestParse_ObjectKeywords(t *testing.T) {
	o := mustParse(t, `- the user
- in: query
- required: true
- deprecated:
- nullable: true
- readOnly: false
- example: {'id': 1}
- discriminator: kind
- externalDocs: https://example.com/docs
- xml: {'name': 'user', 'wrapped': true}`)
	if o.In != "query" || !o.IsRequired() {
		t.Fatalf("in=%q required=%v", o.In, o.Required)
	}
	if o.Values["externalDocs"] != "https://example.com/docs" {
		t.Fatalf("verbatim value lost: %v", o.Values)
	}
	assertSchema(t, o, map[string]any{
		"deprecated":    true,
		"nullable":      true,
		"example":       map[string]any{"id": 1},
		"discriminator": map[string]any{"propertyName": "kind"},
		"externalDocs":  map[string]any{"url": "https://example.com/docs"},
		"xml":           map[string]any{"name": "user", "wrapped": true},
	})
}

func TestParse_RequiredNameList(t *testing.T) {
	o := mustParse(t, "- required: ['id', 'name']")
	if o.IsRequired() {
		t.Fatalf("a name list is not a boolean flag")
	}
	assertSchema(t, o, map[string]any{"required": []any{"id", "name"}})
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		desc string
		want error
	}{
		{"- in: cookie", oasdoc.ErrInvalidLocation},
		{"- required: [oops", oasdoc.ErrMalformedLiteral},
		{"- required: 3", oasdoc.ErrMalformedLiteral},
		{"- enum: a, b", oasdoc.ErrMalformedLiteral},
		{"- minimum: five", oasdoc.ErrMalformedLiteral},
		{"- maxLength: 2.5", oasdoc.ErrMalformedLiteral},
		{"- uniqueItems: maybe", oasdoc.ErrMalformedLiteral},
		{"- allOf:\n- minItems: x", oasdoc.ErrMalformedLiteral},
	}
	for _, tc := range cases {
		_, err := options.Parse(tc.desc)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.desc, tc.want, err)
		}
	}
}

func TestParseLocation(t *testing.T) {
	for _, loc := range []string{"query", "path", "body", "headers"} {
		if _, err := options.ParseLocation(loc); err != nil {
			t.Fatalf("%s: %v", loc, err)
		}
	}
	if _, err := options.ParseLocation("header"); !errors.Is(err, oasdoc.ErrInvalidLocation) {
		t.Fatalf("expected invalid_location, got %v", err)
	}
}
