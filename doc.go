// Package oasdoc compiles route annotations and model definitions into an
// OpenAPI 3 document.
//
// The root package only holds the error model shared by every stage. The work
// is split across sub-packages:
//
//   - schema: the schema object and the run-scoped model registry
//   - typeexpr: the type-expression AST ("User[]", "(string|null)", "Enum<'a','b'>") and its parser
//   - options: the "- key: value" constraint grammar found in annotation descriptions
//   - compiler: type expression + options -> schema, resolving model references against a schema.Registry
//   - annotation: "/** ... */" blocks -> annotation records
//   - assembler: annotation records -> paths and tags, one isolated stream per documented routine
//   - models: YAML/JSON model definitions -> registry entries
//   - oas: the document model, its merge rules and encoding
//   - generator: one full run (config, file enumeration, models, assembly)
//
// Typical usage:
//
//	reg := schema.NewRegistry()
//	if err := models.LoadFiles(reg, "models.yaml"); err != nil {
//	    return err
//	}
//	reg.Seal()
//	asm := assembler.New(compiler.New(reg))
//	asm.AddFile("routes.js", annotation.Extract(src))
//	doc := asm.Document(oas.Info{Title: "API", Version: "1.0.0"})
//
// Errors carry a stable code (see the Code* constants). Per-routine failures
// are collected as Diagnostics instead of aborting the run.
package oasdoc
