package oasdoc

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts so callers can switch on them).
const (
	CodeInvalidLocation       = "invalid_location"
	CodeMalformedLiteral      = "malformed_literal"
	CodeUnknownModel          = "unknown_model"
	CodeUnknownModelProperty  = "unknown_model_property"
	CodeInvalidTypeExpression = "invalid_type_expression"
	// Fatal for a whole run.
	CodeMissingConfiguration = "missing_configuration"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrInvalidLocation       = &Error{Code: CodeInvalidLocation}
	ErrMalformedLiteral      = &Error{Code: CodeMalformedLiteral}
	ErrUnknownModel          = &Error{Code: CodeUnknownModel}
	ErrUnknownModelProperty  = &Error{Code: CodeUnknownModelProperty}
	ErrInvalidTypeExpression = &Error{Code: CodeInvalidTypeExpression}
	ErrMissingConfiguration  = &Error{Code: CodeMissingConfiguration}
)

// Error is a coded failure raised while compiling annotations.
type Error struct {
	Code    string // One of the codes listed above.
	Message string
	// Subject is the offending input when known (a location, model name, literal...).
	Subject string
	Cause   error
}

// Errorf builds an *Error with a formatted message.
func Errorf(code, subject, format string, args ...any) *Error {
	return &Error{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that records cause.
func Wrap(code, subject string, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Code: code, Subject: subject, Message: msg, Cause: cause}
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if e.Subject != "" {
		fmt.Fprintf(b, " %q", e.Subject)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Diagnostic records one annotation stream that failed and was skipped.
type Diagnostic struct {
	File   string // source file the stream came from ("" when unknown)
	Stream int    // zero-based index of the stream within File
	Route  string // "<method> <uri>" when the route tag had been read
	Err    error
}

func (d Diagnostic) Error() string {
	b := &strings.Builder{}
	if d.File != "" {
		fmt.Fprintf(b, "%s#%d", d.File, d.Stream)
	} else {
		fmt.Fprintf(b, "#%d", d.Stream)
	}
	if d.Route != "" {
		fmt.Fprintf(b, " (%s)", d.Route)
	}
	fmt.Fprintf(b, ": %v", d.Err)
	return b.String()
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics is a collection of skipped streams that implements error.
type Diagnostics []Diagnostic

// Error summarizes the first few diagnostics.
func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(ds)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ds[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsDiagnostics extracts Diagnostics from an error using errors.As internally.
func AsDiagnostics(err error) (Diagnostics, bool) {
	if err == nil {
		return nil, false
	}
	var ds Diagnostics
	if errors.As(err, &ds) {
		return ds, true
	}
	return nil, false
}
