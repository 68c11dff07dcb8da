// Package ast is the contract between the declaration extractor and a C
// parsing engine. It mirrors the small slice of a compiler's cursor/type API
// the extractor needs, so any engine that can produce these views can drive
// extraction.
package ast

import (
	"context"
	"fmt"
)

// ErrorCode is the top-level outcome of parsing one file.
type ErrorCode int

const (
	ErrorSuccess ErrorCode = iota
	ErrorFailure
	ErrorCrashed
	ErrorInvalidArguments
	ErrorASTRead
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorSuccess:
		return "success"
	case ErrorFailure:
		return "failure"
	case ErrorCrashed:
		return "crashed"
	case ErrorInvalidArguments:
		return "invalid arguments"
	case ErrorASTRead:
		return "AST read error"
	}
	return fmt.Sprintf("error code %d", int(c))
}

type Severity int

const (
	SeverityIgnored Severity = iota
	SeverityNote
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal error"
	}
	return "ignored"
}

// Diagnostic is one message produced while parsing.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Column   int
	Message  string
}

// String formats the diagnostic the way compilers print it:
// "file:line:col: severity: message".
func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// ParseOptions are handed through to the engine unchanged.
type ParseOptions struct {
	// IncludeComments asks the engine to keep documentation comments on
	// cursors. It never changes which declarations are reported.
	IncludeComments bool
}

// Index is a parsing context shared by every translation unit parsed in one
// extraction run. It must be disposed after all of its translation units.
type Index interface {
	Parse(ctx context.Context, path string, args []string, opts ParseOptions) (TranslationUnit, ErrorCode)
	Dispose()
}

// TranslationUnit is one parsed source file.
type TranslationUnit interface {
	Cursor() Cursor
	Diagnostics() []Diagnostic
	Dispose()
}

// Cursor is a handle to one AST node.
type Cursor interface {
	Kind() CursorKind
	Spelling() string
	Type() Type
	IsInSystemHeader() bool
	// Children returns the node's immediate children in source order.
	Children() []Cursor

	// ResultType is the return type of a function declaration.
	ResultType() Type
	// TypedefUnderlyingType is the aliased type of a typedef declaration.
	TypedefUnderlyingType() Type
	// EnumIntegerType is the backing integer type of an enum declaration.
	EnumIntegerType() Type
	// EnumConstantValue and EnumConstantUnsignedValue read an enumerator's
	// value in either signedness.
	EnumConstantValue() int64
	EnumConstantUnsignedValue() uint64
	// RawComment is the documentation comment attached to the declaration,
	// when the engine was asked to keep comments.
	RawComment() string
}

// Type describes a compiler type.
type Type interface {
	Kind() TypeKind
	Spelling() string
	// CanonicalType strips typedefs and other sugar.
	CanonicalType() Type
	PointeeType() Type
	ResultType() Type
	// ArraySize is the element count of a constant array, or -1.
	ArraySize() int64
}
