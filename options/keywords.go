package options

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	oasdoc "github.com/reoring/oasdoc"
)

// Composition is one of the nesting keywords.
type Composition string

const (
	AllOf Composition = "allOf"
	AnyOf Composition = "anyOf"
	OneOf Composition = "oneOf"
	Not   Composition = "not"
)

// Parameter locations accepted by "in:" and by param names.
const (
	LocationQuery   = "query"
	LocationPath    = "path"
	LocationBody    = "body"
	LocationHeaders = "headers"
)

// objectKeywords are stored verbatim, without coercion.
var objectKeywords = map[string]bool{
	"in":            true,
	"description":   true,
	"not":           true,
	"deprecated":    true,
	"discriminator": true,
	"example":       true,
	"externalDocs":  true,
	"nullable":      true,
	"readOnly":      true,
	"writeOnly":     true,
	"xml":           true,
	"required":      true,
	"oneOf":         true,
	"allOf":         true,
	"anyOf":         true,
}

type coercer func(raw string) (any, error)

// scalarKeywords are the constraint keywords and their value coercion.
var scalarKeywords = map[string]coercer{
	"title":            asString,
	"format":           asString,
	"pattern":          asString,
	"enum":             asJSONArray,
	"minimum":          asNumber,
	"maximum":          asNumber,
	"exclusiveMinimum": asFlag,
	"exclusiveMaximum": asFlag,
	"multipleOf":       asNumber,
	"minLength":        asInt,
	"maxLength":        asInt,
	"minItems":         asInt,
	"maxItems":         asInt,
	"minProperties":    asInt,
	"maxProperties":    asInt,
	"uniqueItems":      asFlag,
}

// IsObjectKeyword reports whether key is stored verbatim.
func IsObjectKeyword(key string) bool { return objectKeywords[key] }

// IsScalarKeyword reports whether key is a coerced constraint keyword.
func IsScalarKeyword(key string) bool {
	_, ok := scalarKeywords[key]
	return ok
}

// ParseLocation validates a parameter location.
func ParseLocation(s string) (string, error) {
	switch s {
	case LocationQuery, LocationPath, LocationBody, LocationHeaders:
		return s, nil
	}
	return "", oasdoc.Errorf(oasdoc.CodeInvalidLocation, s, "location must be one of query, path, body, headers")
}

func composition(key string) (Composition, bool) {
	switch c := Composition(key); c {
	case AllOf, AnyOf, OneOf, Not:
		return c, true
	}
	return "", false
}

func asString(raw string) (any, error) { return raw, nil }

func asNumber(raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func asInt(raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func asFlag(raw string) (any, error) {
	if raw == "" {
		return true, nil
	}
	return strconv.ParseBool(raw)
}

func asJSONArray(raw string) (any, error) {
	var out []any
	if err := decodeLiteral(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeLiteral decodes a JSON literal, accepting single quotes in place of
// double quotes ("['a', 'b']").
func decodeLiteral(raw string, v any) error {
	return json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), v)
}

func truthy(raw string) bool {
	return raw == "" || strings.EqualFold(raw, "true")
}
