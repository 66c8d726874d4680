package assembler

import (
	"net/http"
	"strings"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/annotation"
	"github.com/reoring/oasdoc/compiler"
	"github.com/reoring/oasdoc/oas"
	"github.com/reoring/oasdoc/options"
	"github.com/reoring/oasdoc/schema"
	"github.com/reoring/oasdoc/typeexpr"
)

const (
	defaultMethod    = "get"
	defaultGroup     = "default"
	defaultMediaType = "application/json"
)

// stream is the per-record state. op is nil until the route tag is seen.
type stream struct {
	compiler *compiler.Compiler
	rec      annotation.Record

	method, uri string
	group       oas.Tag
	produces    []string
	consumes    []string

	op *oas.Operation
	// body is the whole-body schema from a bare "body" param.
	body *schema.Schema
	// fields collects "body.<field>" params.
	fields *schema.Schema
	// bodyRequired is set when any body param is required.
	bodyRequired bool
}

func (s *stream) route() string {
	if s.op == nil {
		return ""
	}
	return s.method + " " + s.uri
}

// open handles the route tag: "<METHOD> <URI>".
func (s *stream) open(t annotation.Tag) {
	parts := strings.Fields(t.Description)
	s.method, s.uri = defaultMethod, ""
	switch len(parts) {
	case 0:
	case 1:
		if isMethod(parts[0]) {
			s.method = strings.ToLower(parts[0])
		} else {
			s.uri = parts[0]
		}
	default:
		s.method, s.uri = strings.ToLower(parts[0]), parts[1]
	}

	s.group = oas.Tag{Name: defaultGroup}
	if g, ok := s.rec.Tag("group"); ok {
		name, desc, _ := strings.Cut(g.Description, " - ")
		if name = strings.TrimSpace(name); name != "" {
			s.group = oas.Tag{Name: name, Description: strings.TrimSpace(desc)}
		}
	}
	s.produces = s.mediaTypes("produces")
	s.consumes = s.mediaTypes("consumes")

	s.op = &oas.Operation{
		Tags:        []string{s.group.Name},
		Description: s.rec.Description,
		Parameters:  []*oas.Parameter{},
		RequestBody: &oas.RequestBody{Content: map[string]*oas.MediaType{}},
		Responses:   map[string]*oas.Response{},
	}
}

// mediaTypes collects every media type listed by tags titled title, in order.
// produces and consumes apply to the whole operation wherever they appear.
func (s *stream) mediaTypes(title string) []string {
	var out []string
	for _, t := range s.rec.Tags {
		if t.Title != title {
			continue
		}
		out = append(out, strings.FieldsFunc(t.Description, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' })...)
	}
	if len(out) == 0 {
		return []string{defaultMediaType}
	}
	return out
}

func (s *stream) apply(t annotation.Tag) error {
	switch t.Title {
	case "param":
		return s.param(t)
	case "returns", "return":
		return s.returns(t)
	case "operationId":
		if f := strings.Fields(t.Description); len(f) > 0 {
			s.op.OperationID = f[0]
		}
	case "summary":
		s.op.Summary = t.Description
	case "security":
		s.security(t)
	case "deprecated":
		s.op.Deprecated = true
	}
	return nil
}

// param handles "@param {type} <location>.<field>[.required] - description".
func (s *stream) param(t annotation.Tag) error {
	if t.TypeErr != nil {
		return t.TypeErr
	}
	opts, err := options.Parse(t.Description)
	if err != nil {
		return err
	}
	loc, field, required := splitParamName(t.Name)
	if opts.In != "" {
		if _, err := options.ParseLocation(loc); err != nil {
			// "@param {T} name - in: query" carries no location prefix.
			field = joinField(loc, field)
		}
		loc = opts.In
	}
	if loc, err = options.ParseLocation(loc); err != nil {
		return err
	}

	node := t.Type
	if node == nil {
		node = &typeexpr.Name{Name: "string"}
	}
	_, optional := typeexpr.Unwrap(node)
	required = (required || opts.IsRequired()) && !optional

	sch, err := s.compile(node, field, opts)
	if err != nil {
		return err
	}

	switch loc {
	case options.LocationBody:
		s.addBody(field, sch, required)
		if field == "" && opts.Description != "" {
			s.op.RequestBody.Description = opts.Description
		}
		return nil
	case options.LocationPath:
		required = true
	case options.LocationHeaders:
		loc = "header"
	}
	if field == "" {
		return oasdoc.Errorf(oasdoc.CodeInvalidLocation, t.Name, "%s parameter needs a name", loc)
	}
	s.setParameter(&oas.Parameter{
		Name:        field,
		In:          loc,
		Description: opts.Description,
		Required:    required,
		Deprecated:  truthy(opts.Values, "deprecated"),
		Schema:      sch,
	})
	return nil
}

// compile compiles node and merges the options fragment into the result.
func (s *stream) compile(node typeexpr.Node, field string, opts *options.Options) (*schema.Schema, error) {
	sch, err := s.compiler.Compile(node, field, opts)
	if err != nil {
		return nil, err
	}
	return compiler.MergeOptions(sch, opts)
}

// setParameter appends p, replacing an earlier parameter with the same name and location.
func (s *stream) setParameter(p *oas.Parameter) {
	for i, old := range s.op.Parameters {
		if old.Name == p.Name && old.In == p.In {
			s.op.Parameters[i] = p
			return
		}
	}
	s.op.Parameters = append(s.op.Parameters, p)
}

func (s *stream) addBody(field string, sch *schema.Schema, required bool) {
	if required {
		s.bodyRequired = true
	}
	if field == "" {
		s.body = sch
		return
	}
	if s.fields == nil {
		s.fields = &schema.Schema{Type: "object", Properties: map[string]*schema.Schema{}}
	}
	s.fields.Properties[field] = sch
	if required && !contains(s.fields.Required, field) {
		s.fields.Required = append(s.fields.Required, field)
	}
}

// returns handles "@returns {type} <key> - description" and the matching
// "@headers {type} <key>.<Header> - description" tags.
func (s *stream) returns(t annotation.Tag) error {
	if t.TypeErr != nil {
		return t.TypeErr
	}
	key, rest, _ := strings.Cut(t.Description, " - ")
	key = strings.TrimSpace(key)
	if key == "" {
		key = "default"
	}
	opts, err := options.Parse(rest)
	if err != nil {
		return err
	}
	resp := &oas.Response{Description: opts.Description}
	if resp.Description == "" {
		resp.Description = statusText(key)
	}

	headers, err := s.headers(key)
	if err != nil {
		return err
	}
	if len(headers) > 0 {
		resp.Headers = headers
	}

	if t.Type != nil {
		sch, err := s.compile(t.Type, key, opts)
		if err != nil {
			return err
		}
		resp.Content = map[string]*oas.MediaType{}
		for _, mt := range s.produces {
			resp.Content[mt] = &oas.MediaType{Schema: sch}
		}
	}
	s.op.Responses[key] = resp
	return nil
}

func (s *stream) headers(key string) (map[string]*oas.Header, error) {
	out := map[string]*oas.Header{}
	for _, t := range s.rec.Tags {
		if t.Title != "headers" && t.Title != "header" {
			continue
		}
		status, name, ok := strings.Cut(t.Name, ".")
		if !ok || status != key || name == "" {
			continue
		}
		if t.TypeErr != nil {
			return nil, t.TypeErr
		}
		opts, err := options.Parse(t.Description)
		if err != nil {
			return nil, err
		}
		h := &oas.Header{Description: opts.Description}
		if t.Type != nil {
			if h.Schema, err = s.compile(t.Type, name, opts); err != nil {
				return nil, err
			}
		}
		out[name] = h
	}
	return out, nil
}

// security handles "@security Name[, Other]"; names in one tag are required together.
func (s *stream) security(t annotation.Tag) {
	names := strings.FieldsFunc(t.Description, func(r rune) bool { return r == ',' || r == ' ' })
	if len(names) == 0 {
		return
	}
	req := map[string][]string{}
	for _, n := range names {
		req[n] = []string{}
	}
	s.op.Security = append(s.op.Security, req)
}

// finish completes the operation: the request body is built from the body
// params, or dropped when there are none.
func (s *stream) finish() *oas.Operation {
	var body *schema.Schema
	switch {
	case s.body != nil && s.fields != nil:
		body = &schema.Schema{AllOf: []*schema.Schema{s.body, s.fields}}
	case s.body != nil:
		body = s.body
	case s.fields != nil:
		body = s.fields
	}
	if body == nil {
		s.op.RequestBody = nil
		return s.op
	}
	for _, mt := range s.consumes {
		s.op.RequestBody.Content[mt] = &oas.MediaType{Schema: body}
	}
	s.op.RequestBody.Required = s.bodyRequired
	return s.op
}

// splitParamName splits "<location>.<field>[.required]".
func splitParamName(name string) (loc, field string, required bool) {
	parts := strings.Split(name, ".")
	if n := len(parts); n > 1 && parts[n-1] == "required" {
		required = true
		parts = parts[:n-1]
	}
	return parts[0], strings.Join(parts[1:], "."), required
}

func joinField(a, b string) string {
	if b == "" {
		return a
	}
	return a + "." + b
}

func isMethod(s string) bool {
	switch strings.ToUpper(s) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func statusText(key string) string {
	code := 0
	for _, r := range key {
		if r < '0' || r > '9' {
			return ""
		}
		code = code*10 + int(r-'0')
	}
	return http.StatusText(code)
}

func truthy(values map[string]string, key string) bool {
	v, ok := values[key]
	return ok && (v == "" || v == "true")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
