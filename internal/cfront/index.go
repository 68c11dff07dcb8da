// Package cfront is a C parsing frontend built on tree-sitter. It expands
// includes and conditional blocks, resolves types and enumerator values, and
// exposes the result through the engine contract in internal/ast.
package cfront

import (
	"context"

	"github.com/jward/cdecl/internal/ast"
)

// Index is a parsing context for one extraction run.
type Index struct {
	disposed bool
}

var _ ast.Index = (*Index)(nil)

// NewIndex returns a fresh parsing context.
func NewIndex() ast.Index {
	return &Index{}
}

// Parse expands and parses the file at path. The returned translation unit
// is never nil; on failure it carries the diagnostics explaining why.
func (x *Index) Parse(ctx context.Context, path string, args []string, opts ast.ParseOptions) (ast.TranslationUnit, ast.ErrorCode) {
	if x.disposed {
		return &TranslationUnit{diags: []ast.Diagnostic{{
			Severity: ast.SeverityFatal,
			File:     path,
			Message:  "parse requested on a disposed index",
		}}}, ast.ErrorInvalidArguments
	}

	o, diags, ok := parseArgs(args)
	if !ok {
		return &TranslationUnit{diags: diags}, ast.ErrorInvalidArguments
	}

	b := newBuilder(ctx, o, opts)
	b.diags = diags
	code := b.build(path)
	return &TranslationUnit{root: b.root, diags: b.diags}, code
}

func (x *Index) Dispose() {
	x.disposed = true
}

// TranslationUnit holds one expanded file.
type TranslationUnit struct {
	root  *cursor
	diags []ast.Diagnostic
}

var _ ast.TranslationUnit = (*TranslationUnit)(nil)

// Cursor returns the translation unit root. After Dispose the root is
// empty.
func (tu *TranslationUnit) Cursor() ast.Cursor {
	if tu.root == nil {
		return &cursor{kind: ast.CursorTranslationUnit}
	}
	return tu.root
}

func (tu *TranslationUnit) Diagnostics() []ast.Diagnostic {
	return tu.diags
}

func (tu *TranslationUnit) Dispose() {
	tu.root = nil
}
