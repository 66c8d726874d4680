// Package models loads model definitions (model name -> column metadata)
// from YAML or JSON files and compiles them into the schema registry.
//
//	User:
//	  id: {type: INTEGER, primaryKey: true}
//	  email: {type: STRING(128), allowNull: false}
//	  role: {type: ENUM, values: [admin, member]}
//	  nickname: STRING
//
// Files are validated against an embedded JSON Schema before compilation.
// Registry order follows file order, then declaration order.
package models

import (
	_ "embed"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/schema"
)

//go:embed models.schema.json
var definitionSchema string

var validator = jsonschema.MustCompileString("mem:///models.schema.json", definitionSchema)

// Model is one compiled model definition.
type Model struct {
	Name   string
	Schema *schema.Schema
}

// Parse compiles the definitions in data. name is used in error messages.
func Parse(name string, data []byte) ([]Model, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, oasdoc.Wrap(oasdoc.CodeMalformedLiteral, name, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if err := validate(doc); err != nil {
		return nil, oasdoc.Wrap(oasdoc.CodeMalformedLiteral, name, err)
	}

	out := make([]Model, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		fields, err := decodeFields(doc.Content[i+1])
		if err != nil {
			return nil, oasdoc.Wrap(oasdoc.CodeMalformedLiteral, name, err)
		}
		s, err := Build(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: model %s: %w", name, doc.Content[i].Value, err)
		}
		out = append(out, Model{Name: doc.Content[i].Value, Schema: s})
	}
	return out, nil
}

// Load reads and compiles one definition file.
func Load(path string) ([]Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// LoadFiles registers the models of every path into reg, in order. A model
// name defined twice is an error.
func LoadFiles(reg *schema.Registry, paths ...string) error {
	for _, p := range paths {
		ms, err := Load(p)
		if err != nil {
			return err
		}
		for _, m := range ms {
			if err := reg.Add(m.Name, m.Schema); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}
	}
	return nil
}

// decodeFields reads one model's columns keeping declaration order. A scalar
// value is shorthand for {type: <value>}.
func decodeFields(n *yaml.Node) ([]Field, error) {
	fields := make([]Field, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var f Field
		v := n.Content[i+1]
		if v.Kind == yaml.ScalarNode {
			f.Type = v.Value
		} else if err := v.Decode(&f); err != nil {
			return nil, err
		}
		f.Name = n.Content[i].Value
		fields = append(fields, f)
	}
	return fields, nil
}

// validate checks doc against the definition schema. The YAML tree is
// normalised through JSON so numbers and maps have the shapes the validator expects.
func validate(doc *yaml.Node) error {
	var raw any
	if err := doc.Decode(&raw); err != nil {
		return err
	}
	b, err := json.Marshal(normalizeValue(raw))
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return validator.Validate(v)
}

func normalizeMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeValue(vv)
		}
		return out
	}
	return nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return normalizeMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	}
	return v
}
