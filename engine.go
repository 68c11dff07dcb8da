package cdecl

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jward/cdecl/internal/ast"
	"github.com/jward/cdecl/internal/cfront"
	"github.com/jward/cdecl/internal/model"
)

// Extractor runs the declaration passes over a list of source files and
// owns the resulting Catalog. An Extractor is not safe for concurrent use;
// give each caller its own.
type Extractor struct {
	files           []string
	args            []string
	includeComments bool
	newIndex        func() ast.Index
	logger          *log.Logger

	catalog *Catalog
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFiles sets the source files to extract, in processing order.
func WithFiles(paths ...string) Option {
	return func(e *Extractor) {
		e.files = append(e.files, paths...)
	}
}

// WithArgs sets compiler arguments shared by every file.
func WithArgs(args ...string) Option {
	return func(e *Extractor) {
		e.args = append(e.args, args...)
	}
}

// WithIncludeComments asks the frontend to keep documentation comments.
// It does not change what gets extracted.
func WithIncludeComments(include bool) Option {
	return func(e *Extractor) {
		e.includeComments = include
	}
}

// WithIndexFactory replaces the parsing frontend. The factory is called
// once per Run.
func WithIndexFactory(newIndex func() ast.Index) Option {
	return func(e *Extractor) {
		e.newIndex = newIndex
	}
}

// WithLogger routes classification gaps and frontend warnings to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// New creates an Extractor. Without WithIndexFactory it parses with the
// tree-sitter frontend.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		newIndex: cfront.NewIndex,
		logger:   log.Default(),
		catalog:  model.NewCatalog(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the Extractor's catalog. After a failed Run it holds the
// entities extracted before the failure.
func (e *Extractor) Catalog() *Catalog {
	return e.catalog
}

// Run clears the catalog and extracts every configured file in order. The
// first file that fails to parse stops the run with a *ParseError; entities
// from earlier files are kept.
//
// One parsing index serves the whole run. Each translation unit is
// disposed before the next file is parsed, and the index is disposed last,
// on every exit path.
func (e *Extractor) Run(ctx context.Context) (*Catalog, error) {
	e.catalog.Clear()

	idx := e.newIndex()
	defer idx.Dispose()

	for _, path := range e.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.extractFile(ctx, idx, path); err != nil {
			return nil, err
		}
	}
	return e.catalog, nil
}

func (e *Extractor) extractFile(ctx context.Context, idx ast.Index, path string) error {
	tu, code := idx.Parse(ctx, path, e.args, ast.ParseOptions{IncludeComments: e.includeComments})
	if tu == nil {
		if code == ast.ErrorSuccess {
			code = ast.ErrorASTRead
		}
		return newParseError(path, code, nil)
	}
	defer tu.Dispose()
	if code != ast.ErrorSuccess {
		return newParseError(path, code, tu)
	}

	for _, d := range tu.Diagnostics() {
		e.logger.Printf("cdecl: %s", d)
	}

	root := tu.Cursor()
	for _, pass := range []ast.Visitor{
		e.visitStruct,
		e.visitEnum,
		e.visitTypedef,
		e.visitFunction,
		e.visitMacro,
	} {
		ast.VisitChildren(root, pass)
	}
	return nil
}

// ParseError reports a file the frontend could not parse.
type ParseError struct {
	File        string
	Code        ast.ErrorCode
	Diagnostics []string
}

func newParseError(path string, code ast.ErrorCode, tu ast.TranslationUnit) *ParseError {
	pe := &ParseError{File: path, Code: code}
	if tu != nil {
		for _, d := range tu.Diagnostics() {
			pe.Diagnostics = append(pe.Diagnostics, d.String())
		}
	}
	return pe
}

// Error returns the raw diagnostic text, one diagnostic per line.
func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("%s: parse failed: %s", e.File, e.Code)
	}
	return strings.Join(e.Diagnostics, "\n")
}
