package models_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/models"
	"github.com/reoring/oasdoc/schema"
)

const userYAML = `
User:
  id: {type: INTEGER, primaryKey: true}
  email: {type: STRING(128), allowNull: false, description: login}
  role: {type: ENUM, values: [admin, member], defaultValue: member}
  tags: {type: ARRAY, subtype: STRING}
  nickname: STRING
  bio: {type: TEXT, allowNull: true}
Team:
  uuid: UUIDV4
  window: {type: RANGE, subtype: DATE}
`

func normalize(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestParse_OrderAndKinds(t *testing.T) {
	ms, err := models.Parse("user.yaml", []byte(userYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ms) != 2 || ms[0].Name != "User" || ms[1].Name != "Team" {
		t.Fatalf("models = %+v", ms)
	}
	user := ms[0].Schema
	if !reflect.DeepEqual(user.Required, []string{"id", "email"}) {
		t.Fatalf("required = %v", user.Required)
	}

	cases := map[string]string{
		"id":       `{"type":"integer","format":"int32","readOnly":true}`,
		"email":    `{"description":"login","type":"string","maxLength":128}`,
		"role":     `{"type":"string","enum":["admin","member"],"default":"member"}`,
		"tags":     `{"type":"array","items":{"type":"string"}}`,
		"nickname": `{"type":"string"}`,
		"bio":      `{"type":"string","nullable":true}`,
	}
	for field, want := range cases {
		if got := normalize(t, user.Properties[field]); got != want {
			t.Errorf("%s = %s, want %s", field, got, want)
		}
	}

	team := ms[1].Schema
	if got := normalize(t, team.Properties["uuid"]); got != `{"type":"string","format":"uuid"}` {
		t.Errorf("uuid = %s", got)
	}
	if got := normalize(t, team.Properties["window"]); got != `{"type":"array","items":{"type":"string","format":"date-time"},"minItems":2,"maxItems":2}` {
		t.Errorf("window = %s", got)
	}
}

func TestParse_JSONInput(t *testing.T) {
	ms, err := models.Parse("pet.json", []byte(`{"Pet": {"name": {"type": "STRING", "maxLength": 20}, "weight": "DOUBLE"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := normalize(t, ms[0].Schema); got != `{"type":"object","properties":{"name":{"type":"string","maxLength":20},"weight":{"type":"number","format":"double"}}}` {
		t.Fatalf("pet = %s", got)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unknown attribute", "User:\n  id: {type: INTEGER, primary: true}\n"},
		{"missing type", "User:\n  id: {allowNull: false}\n"},
		{"bad model name", "\"9lives\":\n  id: INTEGER\n"},
		{"wrong attribute type", "User:\n  id: {type: INTEGER, allowNull: maybe}\n"},
		{"unknown kind", "User:\n  id: GEOMETRY\n"},
		{"not yaml", "User: [\n"},
	}
	for _, tc := range cases {
		_, err := models.Parse("bad.yaml", []byte(tc.src))
		if !errors.Is(err, oasdoc.ErrMalformedLiteral) {
			t.Errorf("%s: want malformed_literal, got %v", tc.name, err)
		}
	}
}

func TestLoadFiles_RegistersInFileOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.json")
	if err := os.WriteFile(a, []byte("Zebra:\n  id: INTEGER\nApple:\n  id: INTEGER\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(`{"Mango": {"id": "INTEGER"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := schema.NewRegistry()
	if err := models.LoadFiles(reg, a, b); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"Zebra", "Apple", "Mango"}) {
		t.Fatalf("names = %v", got)
	}

	if err := models.LoadFiles(reg, b); err == nil {
		t.Fatalf("expected duplicate model error")
	}
	if err := models.LoadFiles(schema.NewRegistry(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestField_SubtypesResolveThroughKinds(t *testing.T) {
	s, err := models.Field{Name: "total", Type: "VIRTUAL", Subtype: "INTEGER"}.Schema()
	if err != nil {
		t.Fatalf("virtual: %v", err)
	}
	if got := normalize(t, s); got != `{"type":"integer","format":"int32","readOnly":true}` {
		t.Fatalf("virtual = %s", got)
	}

	s, err = models.Field{Name: "flags", Type: "array", Subtype: "BOOLEAN"}.Schema()
	if err != nil {
		t.Fatalf("array: %v", err)
	}
	if got := normalize(t, s); got != `{"type":"array","items":{"type":"boolean"}}` {
		t.Fatalf("array = %s", got)
	}

	_, err = models.Field{Name: "area", Type: "ARRAY", Subtype: "GEOMETRY"}.Schema()
	if !errors.Is(err, oasdoc.ErrMalformedLiteral) {
		t.Fatalf("unknown subtype: want malformed_literal, got %v", err)
	}
}
