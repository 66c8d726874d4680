// Package compiler turns type-expression ASTs into OpenAPI schemas.
//
// Model references resolve against a read-only schema.Registry handed to New;
// nothing is global, so independent runs can compile side by side.
package compiler

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/options"
	"github.com/reoring/oasdoc/schema"
	"github.com/reoring/oasdoc/typeexpr"
)

const patternCacheSize = 512

// primitives are the names that compile to a bare {type: name}.
var primitives = map[string]string{
	"string":  "string",
	"number":  "number",
	"integer": "integer",
	"boolean": "boolean",
	"String":  "string",
	"Number":  "number",
	"Integer": "integer",
	"Boolean": "boolean",
}

// Compiler compiles type expressions against one schema registry.
type Compiler struct {
	registry *schema.Registry
	patterns *lru.Cache[string, bool]
}

// New returns a Compiler resolving model names against reg. reg may be nil
// when no models are known.
func New(reg *schema.Registry) *Compiler {
	if reg == nil {
		reg = schema.NewRegistry()
	}
	cache, err := lru.New[string, bool](patternCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &Compiler{registry: reg, patterns: cache}
}

// Compile compiles n, the type of field, into a schema. opts supplies the
// enum list and format for bare Enum/Date/File nodes and may be nil.
// The options fragment itself is not merged; see MergeOptions.
func (c *Compiler) Compile(n typeexpr.Node, field string, opts *options.Options) (*schema.Schema, error) {
	return c.compile(n, field, opts, nil)
}

func (c *Compiler) compile(n typeexpr.Node, field string, opts *options.Options, args []typeexpr.Node) (*schema.Schema, error) {
	switch t := n.(type) {
	case *typeexpr.Literal:
		return &schema.Schema{Type: "string", Enum: []any{t.Value}}, nil
	case *typeexpr.Name:
		return c.compileName(t, args)
	case *typeexpr.Array:
		return c.compileArray(field, opts, args)
	case *typeexpr.Object:
		return c.compileObject(opts, args)
	case *typeexpr.Enum:
		return compileEnum(opts, args)
	case *typeexpr.Date:
		return compileFormats(opts, args)
	case *typeexpr.File:
		return compileFormats(opts, args)
	case *typeexpr.Optional:
		return c.compile(t.Elem, field, opts, args)
	case *typeexpr.Application:
		return c.compile(t.Base, field, opts, t.Args)
	case *typeexpr.Union:
		return c.compileUnion(t, field, opts)
	case *typeexpr.Any:
		return anySchema(), nil
	case *typeexpr.Null:
		return &schema.Schema{Nullable: true}, nil
	case *typeexpr.Field:
		return nil, oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, t.String(), "\"key: type\" pairs are only valid as object members")
	case nil:
		return nil, oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, field, "missing type expression")
	}
	return nil, oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, n.String(), "unsupported node kind %s", n.Kind())
}

func (c *Compiler) compileName(n *typeexpr.Name, args []typeexpr.Node) (*schema.Schema, error) {
	if prim, ok := primitives[n.Name]; ok {
		switch {
		case prim == "string" && len(args) > 0:
			return c.compileStringArgs(args)
		case (prim == "integer" || prim == "number") && len(args) == 1:
			f, err := argText(args[0])
			if err != nil {
				return nil, err
			}
			return &schema.Schema{Type: prim, Format: f}, nil
		}
		return &schema.Schema{Type: prim}, nil
	}
	return c.resolve(n)
}

// resolve turns "Model" or "Model.property" into a $ref.
func (c *Compiler) resolve(n *typeexpr.Name) (*schema.Schema, error) {
	model, prop, hasProp := strings.Cut(n.Name, ".")
	s, ok := c.registry.Lookup(model)
	if !ok {
		return nil, oasdoc.Errorf(oasdoc.CodeUnknownModel, model, "model is not registered")
	}
	if !hasProp {
		return schema.Ref(model), nil
	}
	if _, ok := s.Properties[prop]; !ok {
		return nil, oasdoc.Errorf(oasdoc.CodeUnknownModelProperty, n.Name, "model %s has no property %q", model, prop)
	}
	return schema.PropertyRef(model, prop), nil
}

// compileStringArgs classifies each argument as a pattern or a format.
func (c *Compiler) compileStringArgs(args []typeexpr.Node) (*schema.Schema, error) {
	variants := make([]*schema.Schema, 0, len(args))
	for _, a := range args {
		v, err := argText(a)
		if err != nil {
			return nil, err
		}
		s := &schema.Schema{Type: "string"}
		if re, ok := c.pattern(v); ok {
			s.Pattern = re
		} else {
			s.Format = v
		}
		variants = append(variants, s)
	}
	if len(variants) == 1 {
		return variants[0], nil
	}
	return &schema.Schema{OneOf: variants}, nil
}

func (c *Compiler) compileArray(field string, opts *options.Options, args []typeexpr.Node) (*schema.Schema, error) {
	items := make([]*schema.Schema, 0, len(args))
	for _, a := range args {
		s, err := c.compile(a, field, opts, nil)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	switch len(items) {
	case 0:
		return &schema.Schema{Type: "array", Items: &schema.Schema{}}, nil
	case 1:
		return &schema.Schema{Type: "array", Items: items[0]}, nil
	}
	return &schema.Schema{Type: "array", Items: &schema.Schema{AnyOf: items}}, nil
}

func (c *Compiler) compileObject(opts *options.Options, args []typeexpr.Node) (*schema.Schema, error) {
	s := &schema.Schema{Type: "object"}
	for _, a := range args {
		f, ok := a.(*typeexpr.Field)
		if !ok {
			return nil, oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, a.String(), "object members must be \"key: type\"")
		}
		ps, err := c.compile(f.Value, f.Key, opts, nil)
		if err != nil {
			return nil, err
		}
		if s.Properties == nil {
			s.Properties = make(map[string]*schema.Schema, len(args))
		}
		s.Properties[f.Key] = ps
	}
	return s, nil
}

func compileEnum(opts *options.Options, args []typeexpr.Node) (*schema.Schema, error) {
	s := &schema.Schema{Type: "string"}
	if len(args) == 0 {
		s.Enum = opts.Enum()
		return s, nil
	}
	for _, a := range args {
		v, err := argText(a)
		if err != nil {
			return nil, err
		}
		s.Enum = append(s.Enum, v)
	}
	return s, nil
}

// compileFormats handles Date and File: string schemas that differ only by format.
func compileFormats(opts *options.Options, args []typeexpr.Node) (*schema.Schema, error) {
	if len(args) == 0 {
		return &schema.Schema{Type: "string", Format: opts.Format()}, nil
	}
	s := &schema.Schema{}
	for _, a := range args {
		f, err := argText(a)
		if err != nil {
			return nil, err
		}
		s.AnyOf = append(s.AnyOf, &schema.Schema{Type: "string", Format: f})
	}
	return s, nil
}

func (c *Compiler) compileUnion(u *typeexpr.Union, field string, opts *options.Options) (*schema.Schema, error) {
	nullable := false
	var elems []typeexpr.Node
	for _, e := range u.Elems {
		if _, ok := e.(*typeexpr.Null); ok {
			nullable = true
			continue
		}
		elems = append(elems, e)
	}
	switch len(elems) {
	case 0:
		return &schema.Schema{Nullable: true}, nil
	case 1:
		s, err := c.compile(elems[0], field, opts, nil)
		if err != nil {
			return nil, err
		}
		if nullable {
			s.Nullable = true
		}
		return s, nil
	}
	out := &schema.Schema{Nullable: nullable}
	for _, e := range elems {
		s, err := c.compile(e, field, opts, nil)
		if err != nil {
			return nil, err
		}
		out.AnyOf = append(out.AnyOf, s)
	}
	return out, nil
}

// anySchema is the catch-all for "*".
func anySchema() *schema.Schema {
	return &schema.Schema{
		Nullable: true,
		AnyOf: []*schema.Schema{
			{Type: "string"},
			{Type: "number"},
			{Type: "integer"},
			{Type: "boolean"},
			{Type: "array", Items: &schema.Schema{}},
			{Type: "object"},
		},
	}
}

// argText reads a type argument used as a plain value (enum member, format, pattern).
func argText(n typeexpr.Node) (string, error) {
	switch t := n.(type) {
	case *typeexpr.Literal:
		return t.Value, nil
	case *typeexpr.Name:
		return t.Name, nil
	}
	return "", oasdoc.Errorf(oasdoc.CodeInvalidTypeExpression, n.String(), "expected a literal argument")
}
