package oas

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromPath infers the output format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode writes doc to w as indented JSON or YAML.
func Encode(w io.Writer, doc *Document, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("oas: encode json: %w", err)
		}
		b = append(b, '\n')
		_, err = w.Write(b)
		return err
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("oas: encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("oas: unknown format %q (want json or yaml)", format)
}

// Decode reads a JSON or YAML document. YAML is a superset of JSON, so YAML
// decoding is used for both.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("oas: decode: %w", err)
	}
	if doc.Paths == nil {
		doc.Paths = Paths{}
	}
	return &doc, nil
}
