package oas_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/oasdoc/oas"
	"github.com/reoring/oasdoc/schema"
)

func fragment() oas.Paths {
	p := oas.Paths{}
	p.Set("/users", "GET", &oas.Operation{Tags: []string{"users"}, Responses: map[string]*oas.Response{}})
	p.Set("/users/{id}", "delete", &oas.Operation{Tags: []string{"users"}, Responses: map[string]*oas.Response{}})
	return p
}

func TestPaths_MergeIsIdempotent(t *testing.T) {
	once := oas.Paths{}
	once.Merge(fragment())

	twice := oas.Paths{}
	twice.Merge(fragment())
	twice.Merge(fragment())

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merging twice differs from once\nonce=%v\ntwice=%v", once, twice)
	}
	if ops := twice["/users"].Operations(); len(ops) != 1 {
		t.Fatalf("methods duplicated: %v", ops)
	}
}

func TestPaths_MergeUnionsMethodsOfSameURI(t *testing.T) {
	p := oas.Paths{}
	p.Merge(fragment())

	other := oas.Paths{}
	other.Set("/users", "post", &oas.Operation{Summary: "create"})
	p.Merge(other)

	if _, ok := p.Get("/users", "get"); !ok {
		t.Fatalf("get lost after merge")
	}
	if op, ok := p.Get("/users", "POST"); !ok || op.Summary != "create" {
		t.Fatalf("post not merged: %v", op)
	}
}

func TestPaths_RejectsUnknownMethod(t *testing.T) {
	p := oas.Paths{}
	if p.Set("/users", "FETCH", &oas.Operation{}) {
		t.Fatalf("unknown method stored")
	}
	if len(p) != 0 {
		t.Fatalf("path item created for unknown method: %v", p)
	}
}

func TestDecode_KeepsPathLevelFields(t *testing.T) {
	src := `
openapi: 3.0.3
info: {title: Base, version: "1"}
paths:
  /items/{id}:
    summary: one item
    parameters:
      - {name: id, in: path, required: true, schema: {type: string}}
    get:
      responses:
        "200": {description: ok}
`
	doc, err := oas.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	item := doc.Paths["/items/{id}"]
	if item == nil || item.Summary != "one item" || len(item.Parameters) != 1 || item.Parameters[0].Name != "id" {
		t.Fatalf("path item = %+v", item)
	}
	if _, ok := doc.Paths.Get("/items/{id}", "GET"); !ok {
		t.Fatalf("operation lost")
	}

	merged := oas.Paths{}
	merged.Merge(doc.Paths)
	merged.Set("/items/{id}", "delete", &oas.Operation{Summary: "remove"})
	if got := merged["/items/{id}"]; len(got.Parameters) != 1 || len(got.Operations()) != 2 {
		t.Fatalf("merge dropped path-level fields: %+v", got)
	}
	if doc.Paths["/items/{id}"].Delete != nil {
		t.Fatalf("merge mutated its source")
	}
}

func TestCatalog_FirstOccurrenceWins(t *testing.T) {
	c := oas.NewCatalog()
	if !c.Add(oas.Tag{Name: "foo", Description: "A"}) {
		t.Fatalf("first add must succeed")
	}
	if c.Add(oas.Tag{Name: "foo", Description: "B"}) {
		t.Fatalf("second add must be ignored")
	}
	c.Add(oas.Tag{Name: "bar"})

	got := c.Tags()
	want := []oas.Tag{{Name: "foo", Description: "A"}, {Name: "bar"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tags = %v", got)
	}

	other := oas.NewCatalog()
	other.Add(oas.Tag{Name: "bar", Description: "ignored"})
	other.Add(oas.Tag{Name: "baz"})
	c.Merge(other)
	if c.Len() != 3 {
		t.Fatalf("len = %d", c.Len())
	}
	if tag, _ := c.Lookup("bar"); tag.Description != "" {
		t.Fatalf("bar overwritten: %v", tag)
	}
}

func sampleDocument() *oas.Document {
	p := oas.Paths{}
	p.Set("/users", "get", &oas.Operation{
		Tags: []string{"users"},
		Parameters: []*oas.Parameter{
			{Name: "name", In: "query", Required: true, Schema: &schema.Schema{Type: "string"}},
		},
		Responses: map[string]*oas.Response{
			"200": {Description: "OK", Content: map[string]*oas.MediaType{
				"application/json": {Schema: &schema.Schema{Type: "array", Items: schema.Ref("User")}},
			}},
		},
	})
	return &oas.Document{
		OpenAPI: oas.Version,
		Info:    oas.Info{Title: "Users", Version: "1.0.0"},
		Tags:    []oas.Tag{{Name: "users"}},
		Paths:   p,
		Components: &oas.Components{Schemas: map[string]*schema.Schema{
			"User": {Type: "object", Properties: map[string]*schema.Schema{"id": {Type: "integer"}}},
		}},
	}
}

func TestEncode_JSONAndYAMLDecodeBack(t *testing.T) {
	for _, format := range []string{oas.FormatJSON, oas.FormatYAML} {
		var buf bytes.Buffer
		if err := oas.Encode(&buf, sampleDocument(), format); err != nil {
			t.Fatalf("%s encode: %v", format, err)
		}
		if !strings.Contains(buf.String(), "#/components/schemas/User") {
			t.Fatalf("%s output lacks ref:\n%s", format, buf.String())
		}
		doc, err := oas.Decode(&buf)
		if err != nil {
			t.Fatalf("%s decode: %v", format, err)
		}
		op, ok := doc.Paths.Get("/users", "get")
		if !ok || op.Parameters[0].Name != "name" || !op.Parameters[0].Required {
			t.Fatalf("%s: operation lost: %+v", format, op)
		}
		if doc.Components.Schemas["User"].Properties["id"].Type != "integer" {
			t.Fatalf("%s: components lost", format)
		}
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	if err := oas.Encode(&bytes.Buffer{}, sampleDocument(), "toml"); err == nil {
		t.Fatalf("expected error")
	}
	if oas.FormatFromPath("out/api.YML") != oas.FormatYAML || oas.FormatFromPath("api.json") != oas.FormatJSON {
		t.Fatalf("format inference broken")
	}
}
