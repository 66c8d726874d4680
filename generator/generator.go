// Package generator runs one generation: it validates the configuration,
// loads the model registry, assembles every annotated file and returns the
// finished document together with the streams that were skipped.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/annotation"
	"github.com/reoring/oasdoc/assembler"
	"github.com/reoring/oasdoc/compiler"
	"github.com/reoring/oasdoc/internal/config"
	"github.com/reoring/oasdoc/models"
	"github.com/reoring/oasdoc/oas"
	"github.com/reoring/oasdoc/schema"
)

// Result is the outcome of a run.
type Result struct {
	Document *oas.Document
	// Files are the processed sources, relative to the base directory.
	Files []string
	// Diagnostics lists the annotation streams that were skipped.
	Diagnostics oasdoc.Diagnostics
}

// Run executes a generation. A MissingConfiguration error is returned before
// any file is read. Per-stream failures do not fail the run; they are reported
// in Result.Diagnostics.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	files, err := Files(cfg.BaseDir, cfg.Files)
	if err != nil {
		return nil, err
	}

	modelFiles, err := Files(cfg.BaseDir, cfg.Models)
	if err != nil {
		return nil, err
	}
	reg := schema.NewRegistry()
	if err := models.LoadFiles(reg, resolve(cfg.BaseDir, modelFiles)...); err != nil {
		return nil, err
	}
	reg.Seal()

	asm := assembler.New(compiler.New(reg))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(anchor(cfg.BaseDir, f))
		if err != nil {
			return nil, err
		}
		asm.AddFile(f, annotation.Extract(string(src)))
	}

	doc := asm.Document(oas.Info{
		Title:       cfg.Info.Title,
		Version:     cfg.Info.Version,
		Description: cfg.Info.Description,
	})
	if cfg.OpenAPIVersion != "" {
		doc.OpenAPI = cfg.OpenAPIVersion
	}
	doc.Servers = cfg.ServerList()
	doc.Components = components(reg, cfg.SecuritySchemes)

	if cfg.Base != "" {
		base, err := loadBase(anchor(cfg.BaseDir, cfg.Base))
		if err != nil {
			return nil, err
		}
		doc = overlay(base, doc)
	}
	return &Result{Document: doc, Files: files, Diagnostics: asm.Diagnostics()}, nil
}

// Files expands the doublestar patterns under baseDir into a de-duplicated
// list of file paths relative to baseDir, sorted per pattern. A pattern
// without wildcards must match an existing file.
func Files(baseDir string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.Glob(anchor(baseDir, p))
		if err != nil {
			return nil, fmt.Errorf("generator: pattern %q: %w", p, err)
		}
		if len(matches) == 0 && !strings.ContainsAny(p, "*?[{") {
			return nil, fmt.Errorf("generator: %s: %w", p, os.ErrNotExist)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if fi, err := os.Stat(m); err != nil || fi.IsDir() {
				continue
			}
			rel := m
			if !filepath.IsAbs(p) {
				if r, err := filepath.Rel(baseDir, m); err == nil {
					rel = r
				}
			}
			rel = filepath.ToSlash(rel)
			if !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
		}
	}
	return out, nil
}

func resolve(baseDir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, anchor(baseDir, p))
	}
	return out
}

// anchor makes a relative path relative to baseDir.
func anchor(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func components(reg *schema.Registry, schemes map[string]*oas.SecurityScheme) *oas.Components {
	c := &oas.Components{Schemas: reg.Schemas()}
	if len(schemes) > 0 {
		c.SecuritySchemes = make(map[string]*oas.SecurityScheme, len(schemes))
		for k, v := range schemes {
			c.SecuritySchemes[k] = v
		}
	}
	if c.Schemas == nil && c.SecuritySchemes == nil {
		return nil
	}
	return c
}

func loadBase(path string) (*oas.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := oas.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// overlay merges gen over base. Generated operations, schemas and security
// schemes replace base entries with the same key; base tags keep their
// position and description.
func overlay(base, gen *oas.Document) *oas.Document {
	out := *gen
	paths := oas.Paths{}
	paths.Merge(base.Paths)
	paths.Merge(gen.Paths)
	out.Paths = paths

	tags := oas.NewCatalog()
	for _, t := range base.Tags {
		tags.Add(t)
	}
	for _, t := range gen.Tags {
		tags.Add(t)
	}
	out.Tags = tags.Tags()

	if len(out.Servers) == 0 {
		out.Servers = base.Servers
	}
	if out.Info.Description == "" {
		out.Info.Description = base.Info.Description
	}

	if base.Components != nil {
		c := &oas.Components{
			Schemas:         map[string]*schema.Schema{},
			SecuritySchemes: map[string]*oas.SecurityScheme{},
		}
		for _, src := range []*oas.Components{base.Components, gen.Components} {
			if src == nil {
				continue
			}
			for k, v := range src.Schemas {
				c.Schemas[k] = v
			}
			for k, v := range src.SecuritySchemes {
				c.SecuritySchemes[k] = v
			}
		}
		if len(c.Schemas) == 0 {
			c.Schemas = nil
		}
		if len(c.SecuritySchemes) == 0 {
			c.SecuritySchemes = nil
		}
		out.Components = c
	}
	return &out
}
