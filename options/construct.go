package options

import (
	"fmt"
	"strings"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/schema"
)

// construct flattens the accumulated state into Options.
func (st *state) construct() (*Options, error) {
	frag := &schema.Schema{}

	// Top-level singles are hoisted; repeated keywords become alternatives
	// in the open composition, anyOf when none (or "not") is open.
	singles, multiples := split(&st.top)
	if err := apply(frag, singles); err != nil {
		return nil, err
	}
	if len(multiples) > 0 {
		target := st.level
		if target == "" || target == Not {
			target = AnyOf
		}
		alts, err := each(multiples)
		if err != nil {
			return nil, err
		}
		appendTo(frag, target, alts...)
	}

	for _, c := range st.nestedOrder {
		acc := st.nested[c]
		if c == Not {
			s, err := buildNot(acc)
			if err != nil {
				return nil, err
			}
			frag.Not = s
			continue
		}
		list, err := buildList(acc)
		if err != nil {
			return nil, err
		}
		appendTo(frag, c, list...)
	}

	opts := &Options{
		In:          st.values["in"],
		Description: st.description,
		Values:      st.values,
		Schema:      frag,
	}
	if raw, ok := st.values["required"]; ok {
		req, err := parseRequired(raw)
		if err != nil {
			return nil, err
		}
		opts.Required = req
		if names, ok := req.([]string); ok {
			frag.Required = names
		}
	}
	applyObjectKeywords(frag, st.values)
	return opts, nil
}

type entry struct {
	key string
	val any
}

// split separates keywords declared once from those declared several times.
// Multiples are returned one entry per value, in declaration order.
func split(acc *accumulator) (singles, multiples []entry) {
	for _, k := range acc.order {
		vs := acc.values[k]
		if len(vs) == 1 {
			singles = append(singles, entry{k, vs[0]})
			continue
		}
		for _, v := range vs {
			multiples = append(multiples, entry{k, v})
		}
	}
	return singles, multiples
}

func apply(s *schema.Schema, es []entry) error {
	for _, e := range es {
		if err := setConstraint(s, e.key, e.val); err != nil {
			return err
		}
	}
	return nil
}

// each turns entries into single-keyword schemas.
func each(es []entry) ([]*schema.Schema, error) {
	out := make([]*schema.Schema, len(es))
	for i, e := range es {
		out[i] = &schema.Schema{}
		if err := setConstraint(out[i], e.key, e.val); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendTo(s *schema.Schema, c Composition, items ...*schema.Schema) {
	for _, item := range items {
		switch c {
		case AllOf:
			s.AllOf = append(s.AllOf, item)
		case OneOf:
			s.OneOf = append(s.OneOf, item)
		default:
			s.AnyOf = append(s.AnyOf, item)
		}
	}
}

// buildList constructs an allOf/anyOf/oneOf container: hoisted singles as one
// schema, then one schema per repeated value.
func buildList(acc *accumulator) ([]*schema.Schema, error) {
	singles, multiples := split(acc)
	var out []*schema.Schema
	if len(singles) > 0 {
		s := &schema.Schema{}
		if err := apply(s, singles); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	alts, err := each(multiples)
	if err != nil {
		return nil, err
	}
	return append(out, alts...), nil
}

// buildNot constructs the single schema of a "not" container. Repeated values
// become its anyOf.
func buildNot(acc *accumulator) (*schema.Schema, error) {
	singles, multiples := split(acc)
	s := &schema.Schema{}
	if err := apply(s, singles); err != nil {
		return nil, err
	}
	alts, err := each(multiples)
	if err != nil {
		return nil, err
	}
	appendTo(s, AnyOf, alts...)
	return s, nil
}

func setConstraint(s *schema.Schema, key string, v any) error {
	switch key {
	case "title":
		s.Title = v.(string)
	case "format":
		s.Format = v.(string)
	case "pattern":
		s.Pattern = v.(string)
	case "enum":
		s.Enum = v.([]any)
	case "minimum":
		s.Minimum = ptr(v.(float64))
	case "maximum":
		s.Maximum = ptr(v.(float64))
	case "multipleOf":
		s.MultipleOf = ptr(v.(float64))
	case "exclusiveMinimum":
		s.ExclusiveMinimum = ptr(v.(bool))
	case "exclusiveMaximum":
		s.ExclusiveMaximum = ptr(v.(bool))
	case "uniqueItems":
		s.UniqueItems = ptr(v.(bool))
	case "minLength":
		s.MinLength = ptr(v.(int))
	case "maxLength":
		s.MaxLength = ptr(v.(int))
	case "minItems":
		s.MinItems = ptr(v.(int))
	case "maxItems":
		s.MaxItems = ptr(v.(int))
	case "minProperties":
		s.MinProperties = ptr(v.(int))
	case "maxProperties":
		s.MaxProperties = ptr(v.(int))
	default:
		return fmt.Errorf("options: unsupported constraint %q", key)
	}
	return nil
}

// applyObjectKeywords copies the verbatim keywords that have a schema
// counterpart. description is left to the caller.
func applyObjectKeywords(s *schema.Schema, values map[string]string) {
	for key, raw := range values {
		switch key {
		case "deprecated":
			s.Deprecated = truthy(raw)
		case "nullable":
			s.Nullable = truthy(raw)
		case "readOnly":
			s.ReadOnly = truthy(raw)
		case "writeOnly":
			s.WriteOnly = truthy(raw)
		case "example":
			s.Example = literalOrString(raw)
		case "discriminator":
			d := &schema.Discriminator{}
			if !isObjectLiteral(raw) || decodeLiteral(raw, d) != nil {
				d = &schema.Discriminator{PropertyName: raw}
			}
			s.Discriminator = d
		case "externalDocs":
			e := &schema.ExternalDocs{}
			if !isObjectLiteral(raw) || decodeLiteral(raw, e) != nil {
				e = &schema.ExternalDocs{URL: raw}
			}
			s.ExternalDocs = e
		case "xml":
			x := &schema.XML{}
			if !isObjectLiteral(raw) || decodeLiteral(raw, x) != nil {
				x = &schema.XML{Name: raw}
			}
			s.XML = x
		}
	}
}

// parseRequired accepts a JSON bool or a JSON list of names. A valueless
// "required:" means true.
func parseRequired(raw string) (any, error) {
	if raw == "" {
		return true, nil
	}
	var v any
	if err := decodeLiteral(raw, &v); err != nil {
		return nil, oasdoc.Wrap(oasdoc.CodeMalformedLiteral, raw, fmt.Errorf("required: %w", err))
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case []any:
		names := make([]string, 0, len(t))
		for _, n := range t {
			s, ok := n.(string)
			if !ok {
				return nil, oasdoc.Errorf(oasdoc.CodeMalformedLiteral, raw, "required: list entries must be strings")
			}
			names = append(names, s)
		}
		return names, nil
	}
	return nil, oasdoc.Errorf(oasdoc.CodeMalformedLiteral, raw, "required: expected a boolean or a list of names")
}

func literalOrString(raw string) any {
	var v any
	if err := decodeLiteral(raw, &v); err == nil {
		return v
	}
	return raw
}

func isObjectLiteral(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "{")
}

func ptr[T any](v T) *T { return &v }
