package models

import (
	"strconv"
	"strings"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/schema"
)

// Field is one column of a model definition.
type Field struct {
	Name        string   `yaml:"-"`
	Type        string   `yaml:"type"`
	AllowNull   *bool    `yaml:"allowNull"`
	PrimaryKey  bool     `yaml:"primaryKey"`
	MaxLength   *int     `yaml:"maxLength"`
	Values      []string `yaml:"values"`
	Subtype     string   `yaml:"subtype"`
	Description string   `yaml:"description"`
	Default     any      `yaml:"defaultValue"`
	Example     any      `yaml:"example"`
}

type kindFunc func(f Field) (*schema.Schema, error)

// kinds maps a column kind to its schema. It is filled in init because
// ARRAY, RANGE and VIRTUAL resolve their subtype through Field.Schema.
var kinds map[string]kindFunc

func init() {
	kinds = map[string]kindFunc{
		"STRING":    str(""),
		"CHAR":      str(""),
		"TEXT":      str(""),
		"CITEXT":    str(""),
		"UUID":      str("uuid"),
		"UUIDV1":    str("uuid"),
		"UUIDV4":    str("uuid"),
		"INET":      str("ipv4"),
		"DATE":      str("date-time"),
		"DATEONLY":  str("date"),
		"TIME":      str("time"),
		"BLOB":      str("binary"),
		"TINYINT":   num("integer", "int32"),
		"SMALLINT":  num("integer", "int32"),
		"MEDIUMINT": num("integer", "int32"),
		"INTEGER":   num("integer", "int32"),
		"BIGINT":    num("integer", "int64"),
		"FLOAT":     num("number", "float"),
		"REAL":      num("number", "float"),
		"DOUBLE":    num("number", "double"),
		"DECIMAL":   num("number", ""),
		"BOOLEAN":   fixed(&schema.Schema{Type: "boolean"}),
		"JSON":      fixed(&schema.Schema{Type: "object"}),
		"JSONB":     fixed(&schema.Schema{Type: "object"}),
		"VIRTUAL":   virtual,
		"ENUM":      enum,
		"ARRAY":     array,
		"RANGE":     rangeOf,
	}
}

func str(format string) kindFunc {
	return fixed(&schema.Schema{Type: "string", Format: format})
}

func num(typ, format string) kindFunc {
	return fixed(&schema.Schema{Type: typ, Format: format})
}

func fixed(s *schema.Schema) kindFunc {
	return func(Field) (*schema.Schema, error) { return s.Clone(), nil }
}

func enum(f Field) (*schema.Schema, error) {
	s := &schema.Schema{Type: "string"}
	for _, v := range f.Values {
		s.Enum = append(s.Enum, v)
	}
	return s, nil
}

func array(f Field) (*schema.Schema, error) {
	items, err := sub(f)
	if err != nil {
		return nil, err
	}
	return &schema.Schema{Type: "array", Items: items}, nil
}

// rangeOf is a [lower, upper] pair.
func rangeOf(f Field) (*schema.Schema, error) {
	s, err := array(f)
	if err != nil {
		return nil, err
	}
	s.MinItems, s.MaxItems = ptr(2), ptr(2)
	return s, nil
}

// virtual columns are computed and never written.
func virtual(f Field) (*schema.Schema, error) {
	s, err := sub(f)
	if err != nil {
		return nil, err
	}
	s.ReadOnly = true
	return s, nil
}

func sub(f Field) (*schema.Schema, error) {
	if f.Subtype == "" {
		return &schema.Schema{}, nil
	}
	return Field{Name: f.Name, Type: f.Subtype, Values: f.Values}.Schema()
}

// Schema converts f into a property schema.
func (f Field) Schema() (*schema.Schema, error) {
	kind, size := parseKind(f.Type)
	build, ok := kinds[kind]
	if !ok {
		return nil, oasdoc.Errorf(oasdoc.CodeMalformedLiteral, f.Type, "unknown kind for field %q", f.Name)
	}
	s, err := build(f)
	if err != nil {
		return nil, err
	}
	if s.Type == "string" && s.Format == "" && size > 0 {
		s.MaxLength = ptr(size)
	}
	if f.MaxLength != nil {
		s.MaxLength = ptr(*f.MaxLength)
	}
	if f.AllowNull != nil && *f.AllowNull {
		s.Nullable = true
	}
	if f.PrimaryKey {
		s.ReadOnly = true
	}
	s.Description = f.Description
	s.Default = f.Default
	s.Example = f.Example
	return s, nil
}

// required reports whether the column rejects null.
func (f Field) required() bool {
	if f.AllowNull != nil {
		return !*f.AllowNull
	}
	return f.PrimaryKey
}

// Build compiles an ordered field list into an object schema.
func Build(fields []Field) (*schema.Schema, error) {
	out := &schema.Schema{Type: "object", Properties: make(map[string]*schema.Schema, len(fields))}
	for _, f := range fields {
		s, err := f.Schema()
		if err != nil {
			return nil, err
		}
		out.Properties[f.Name] = s
		if f.required() {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out, nil
}

// parseKind splits "STRING(64)" into ("STRING", 64). Only the first size is kept.
func parseKind(t string) (string, int) {
	t = strings.ToUpper(strings.TrimSpace(t))
	name, args, ok := strings.Cut(t, "(")
	if !ok {
		return name, 0
	}
	first, _, _ := strings.Cut(strings.TrimSuffix(args, ")"), ",")
	n, _ := strconv.Atoi(strings.TrimSpace(first))
	return name, n
}

func ptr[T any](v T) *T { return &v }
