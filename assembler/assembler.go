// Package assembler turns annotation records into OpenAPI path items.
//
// Each record is one annotation stream. A stream is assembled into its own
// fragment and merged into the document only when it succeeds, so a bad
// annotation is reported as a diagnostic and never leaves a half-built
// operation behind.
package assembler

import (
	"fmt"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/annotation"
	"github.com/reoring/oasdoc/compiler"
	"github.com/reoring/oasdoc/oas"
)

// Fragment is the output of one annotation stream.
type Fragment struct {
	// Route is "<method> <uri>", empty when the stream had no route tag.
	Route string
	Paths oas.Paths
	Tags  *oas.Catalog
}

// Assembler accumulates fragments across files. It is not safe for concurrent use.
type Assembler struct {
	compiler *compiler.Compiler
	paths    oas.Paths
	tags     *oas.Catalog
	diags    oasdoc.Diagnostics
}

// New returns an assembler resolving model references through c.
func New(c *compiler.Compiler) *Assembler {
	if c == nil {
		c = compiler.New(nil)
	}
	return &Assembler{compiler: c, paths: oas.Paths{}, tags: oas.NewCatalog()}
}

// AddFile assembles every record of file in order. Failed streams are
// recorded as diagnostics. It returns the number of streams that failed.
func (a *Assembler) AddFile(file string, recs []annotation.Record) int {
	failed := 0
	for i, rec := range recs {
		frag, err := a.Stream(rec)
		if err != nil {
			a.diags = append(a.diags, oasdoc.Diagnostic{File: file, Stream: i, Route: frag.Route, Err: err})
			failed++
			continue
		}
		a.Merge(frag)
	}
	return failed
}

// Merge folds a fragment into the accumulated document.
func (a *Assembler) Merge(f *Fragment) {
	if f == nil {
		return
	}
	a.paths.Merge(f.Paths)
	a.tags.Merge(f.Tags)
}

// Stream assembles one annotation stream without touching the accumulated
// document. On error the returned fragment carries only the route, for reporting.
func (a *Assembler) Stream(rec annotation.Record) (*Fragment, error) {
	s := &stream{compiler: a.compiler, rec: rec}
	for _, t := range rec.Tags {
		if s.op == nil {
			if t.Title == "route" {
				s.open(t)
			}
			continue
		}
		if err := s.apply(t); err != nil {
			return &Fragment{Route: s.route()}, fmt.Errorf("@%s %s: %w", t.Title, t.Name, err)
		}
	}
	frag := &Fragment{Paths: oas.Paths{}, Tags: oas.NewCatalog()}
	if s.op == nil {
		return frag, nil
	}
	frag.Route = s.route()
	if !frag.Paths.Set(s.uri, s.method, s.finish()) {
		return &Fragment{Route: frag.Route}, oasdoc.Errorf(oasdoc.CodeMalformedLiteral, s.method, "@route: unsupported HTTP method")
	}
	frag.Tags.Add(s.group)
	return frag, nil
}

// Paths returns the accumulated paths.
func (a *Assembler) Paths() oas.Paths { return a.paths }

// Tags returns the tag catalog in first-registration order.
func (a *Assembler) Tags() []oas.Tag { return a.tags.Tags() }

// Diagnostics returns the streams skipped so far.
func (a *Assembler) Diagnostics() oasdoc.Diagnostics { return a.diags }

// Document returns the assembled document. Components are left to the caller.
func (a *Assembler) Document(info oas.Info) *oas.Document {
	return &oas.Document{
		OpenAPI: oas.Version,
		Info:    info,
		Tags:    a.Tags(),
		Paths:   a.paths,
	}
}
