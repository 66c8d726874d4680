package compiler

import (
	"github.com/imdario/mergo"

	"github.com/reoring/oasdoc/options"
	"github.com/reoring/oasdoc/schema"
)

// MergeOptions returns a copy of s with the options fragment (constraints,
// compositions, flags, example...) filled into the keywords s leaves empty.
// Keywords already set on s win, except compositions: allOf lists are
// concatenated, and when both sides carry an anyOf, oneOf or not the result
// is allOf [s, fragment]. $ref schemas are returned unchanged since siblings
// of $ref are ignored by OpenAPI 3.0 consumers.
func MergeOptions(s *schema.Schema, opts *options.Options) (*schema.Schema, error) {
	if s == nil {
		return nil, nil
	}
	if opts == nil || opts.Schema.IsZero() || s.Ref != "" {
		return s, nil
	}
	out := s.Clone()
	frag := opts.Schema.Clone()
	if len(out.AllOf) > 0 && len(frag.AllOf) > 0 {
		out.AllOf = append(out.AllOf, frag.AllOf...)
		frag.AllOf = nil
	}
	if collides(out, frag) {
		return &schema.Schema{AllOf: []*schema.Schema{out, frag}}, nil
	}
	if err := mergo.Merge(out, *frag); err != nil {
		return nil, err
	}
	return out, nil
}

// collides reports whether a and b both use a composition that cannot be
// combined in place.
func collides(a, b *schema.Schema) bool {
	return len(a.AnyOf) > 0 && len(b.AnyOf) > 0 ||
		len(a.OneOf) > 0 && len(b.OneOf) > 0 ||
		a.Not != nil && b.Not != nil
}
