package schema

import "reflect"

// RefPrefix is the JSON pointer prefix of registered models in the output document.
const RefPrefix = "#/components/schemas/"

// Schema is the OpenAPI 3.0 schema object emitted for models, parameters and responses.
// Only the keywords the annotation grammar can produce are modelled.
type Schema struct {
	Ref string `json:"$ref,omitempty" yaml:"$ref,omitempty"`

	// Core
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string `json:"format,omitempty" yaml:"format,omitempty"`
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum        []any  `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Example     any    `json:"example,omitempty" yaml:"example,omitempty"`

	// Flags
	Nullable   bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	ReadOnly   bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	WriteOnly  bool `json:"writeOnly,omitempty" yaml:"writeOnly,omitempty"`
	Deprecated bool `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`

	// Numeric
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum *bool    `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *bool    `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`

	// String
	MinLength *int `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`

	// Object
	Properties    map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required      []string           `json:"required,omitempty" yaml:"required,omitempty"`
	MinProperties *int               `json:"minProperties,omitempty" yaml:"minProperties,omitempty"`
	MaxProperties *int               `json:"maxProperties,omitempty" yaml:"maxProperties,omitempty"`
	Discriminator *Discriminator     `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems *bool   `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`

	// Composition
	OneOf []*Schema `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	Not   *Schema   `json:"not,omitempty" yaml:"not,omitempty"`

	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
	XML          *XML          `json:"xml,omitempty" yaml:"xml,omitempty"`
}

// Discriminator is the OpenAPI discriminator object.
type Discriminator struct {
	PropertyName string            `json:"propertyName" yaml:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// ExternalDocs points at documentation outside the document.
type ExternalDocs struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url" yaml:"url"`
}

// XML carries XML serialisation hints.
type XML struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Attribute bool   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Wrapped   bool   `json:"wrapped,omitempty" yaml:"wrapped,omitempty"`
}

// Ref returns a schema that points at a registered model.
func Ref(model string) *Schema { return &Schema{Ref: RefPrefix + model} }

// PropertyRef returns a schema that points at one property of a registered model.
func PropertyRef(model, property string) *Schema {
	return &Schema{Ref: RefPrefix + model + "/properties/" + property}
}

// IsZero reports whether s is nil or carries no keyword at all.
func (s *Schema) IsZero() bool {
	return s == nil || reflect.ValueOf(*s).IsZero()
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Enum != nil {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v.Clone()
		}
	}
	out.Items = s.Items.Clone()
	out.Not = s.Not.Clone()
	out.OneOf = cloneAll(s.OneOf)
	out.AnyOf = cloneAll(s.AnyOf)
	out.AllOf = cloneAll(s.AllOf)
	if s.Discriminator != nil {
		d := *s.Discriminator
		out.Discriminator = &d
	}
	if s.ExternalDocs != nil {
		e := *s.ExternalDocs
		out.ExternalDocs = &e
	}
	if s.XML != nil {
		x := *s.XML
		out.XML = &x
	}
	return &out
}

func cloneAll(in []*Schema) []*Schema {
	if in == nil {
		return nil
	}
	out := make([]*Schema, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
