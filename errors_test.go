package oasdoc_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	oasdoc "github.com/reoring/oasdoc"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := oasdoc.Errorf(oasdoc.CodeUnknownModel, "Pet", "model not registered")
	wrapped := fmt.Errorf("param query.pet: %w", err)

	if !errors.Is(wrapped, oasdoc.ErrUnknownModel) {
		t.Fatalf("expected errors.Is to match unknown_model: %v", wrapped)
	}
	if errors.Is(wrapped, oasdoc.ErrUnknownModelProperty) {
		t.Fatalf("unknown_model must not match unknown_model_property")
	}
	if got := oasdoc.CodeOf(wrapped); got != oasdoc.CodeUnknownModel {
		t.Fatalf("CodeOf = %q", got)
	}
	if got := err.Error(); got != `unknown_model "Pet": model not registered` {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("invalid character")
	err := oasdoc.Wrap(oasdoc.CodeMalformedLiteral, "[1,", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost")
	}
	if oasdoc.CodeOf(nil) != "" {
		t.Fatalf("nil error must have no code")
	}
}

func TestDiagnostics_ErrorSummarizesFirstThree(t *testing.T) {
	var ds oasdoc.Diagnostics
	for i := 0; i < 5; i++ {
		ds = append(ds, oasdoc.Diagnostic{File: "a.js", Stream: i, Err: oasdoc.ErrUnknownModel})
	}
	msg := ds.Error()
	if strings.Count(msg, "a.js#") != 3 {
		t.Fatalf("expected three entries shown: %s", msg)
	}
	if !strings.Contains(msg, "(total 5)") {
		t.Fatalf("expected total suffix: %s", msg)
	}

	var err error = ds
	got, ok := oasdoc.AsDiagnostics(fmt.Errorf("run: %w", err))
	if !ok || len(got) != 5 {
		t.Fatalf("AsDiagnostics failed: %v %v", ok, got)
	}
	if !errors.Is(got[0], oasdoc.ErrUnknownModel) {
		t.Fatalf("diagnostic must unwrap to its error")
	}
}
