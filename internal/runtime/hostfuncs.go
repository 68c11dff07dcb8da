package runtime

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/cdecl/internal/ast"
	"github.com/jward/cdecl/internal/cfront"
)

// Scripts that need more than the finished catalog parse C themselves
// through the extractor's own frontend, so includes, conditional blocks and
// -I/-D arguments behave the same. The result is the declaration cursor
// tree as plain Risor maps:
//
//	{kind, spelling, type, system, comment, children}
//
// plus result (FunctionDecl), underlying (TypedefDecl), int_type (EnumDecl)
// and value (EnumConstantDecl). Types are {kind, spelling, canonical} plus
// pointee, result or array_size where the kind has one.

// makeParseFn creates the "parse" host function. Extra arguments are
// appended to the runtime's default compiler arguments.
//
// parse(path, args...) → {cursor, diagnostics}
func makeParseFn(defaults []string) *object.Builtin {
	return object.NewBuiltin("parse", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("parse: expected a path, got no arguments")
		}
		path, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("parse: path must be a string, got %s", args[0].Type())
		}
		cargs, errObj := compilerArgs("parse", defaults, args[1:])
		if errObj != nil {
			return errObj
		}
		return parseTU(ctx, "parse", path.Value(), cargs)
	})
}

// makeParseSrcFn creates "parse_src", which parses C source held in a
// string. Quoted includes are searched along -I only.
//
// parse_src(source, args...) → {cursor, diagnostics}
func makeParseSrcFn(defaults []string) *object.Builtin {
	return object.NewBuiltin("parse_src", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("parse_src: expected source, got no arguments")
		}
		src, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("parse_src: source must be a string, got %s", args[0].Type())
		}
		cargs, errObj := compilerArgs("parse_src", defaults, args[1:])
		if errObj != nil {
			return errObj
		}

		dir, err := os.MkdirTemp("", "cdecl-src-")
		if err != nil {
			return object.Errorf("parse_src: %v", err)
		}
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, "input.c")
		if err := os.WriteFile(path, []byte(src.Value()), 0o644); err != nil {
			return object.Errorf("parse_src: %v", err)
		}
		return parseTU(ctx, "parse_src", path, cargs)
	})
}

func compilerArgs(name string, defaults []string, args []object.Object) ([]string, *object.Error) {
	out := append([]string(nil), defaults...)
	for i, a := range args {
		s, ok := a.(*object.String)
		if !ok {
			return nil, object.Errorf("%s: argument %d must be a string, got %s", name, i+2, a.Type())
		}
		out = append(out, s.Value())
	}
	return out, nil
}

// parseTU parses one file with a fresh index. A failed parse is a script
// error carrying the raw diagnostics; warnings come back in the result.
func parseTU(ctx context.Context, name, path string, args []string) object.Object {
	idx := cfront.NewIndex()
	defer idx.Dispose()

	tu, code := idx.Parse(ctx, path, args, ast.ParseOptions{IncludeComments: true})
	if tu == nil {
		return object.Errorf("%s: %s: parse failed: %s", name, path, code)
	}
	defer tu.Dispose()

	var lines []object.Object
	var text []string
	for _, d := range tu.Diagnostics() {
		lines = append(lines, object.NewString(d.String()))
		text = append(text, d.String())
	}
	if code != ast.ErrorSuccess {
		if len(text) == 0 {
			return object.Errorf("%s: %s: parse failed: %s", name, path, code)
		}
		return object.Errorf("%s: %s", name, strings.Join(text, "\n"))
	}
	if lines == nil {
		lines = []object.Object{}
	}
	return object.NewMap(map[string]object.Object{
		"cursor":      cursorObject(tu.Cursor()),
		"diagnostics": object.NewList(lines),
	})
}

func cursorObject(c ast.Cursor) object.Object {
	children := c.Children()
	items := make([]object.Object, len(children))
	for i, child := range children {
		items[i] = cursorObject(child)
	}
	m := map[string]object.Object{
		"kind":     object.NewString(c.Kind().String()),
		"spelling": object.NewString(c.Spelling()),
		"type":     typeObject(c.Type()),
		"system":   object.NewBool(c.IsInSystemHeader()),
		"comment":  object.NewString(c.RawComment()),
		"children": object.NewList(items),
	}
	switch c.Kind() {
	case ast.CursorFunctionDecl:
		m["result"] = typeObject(c.ResultType())
	case ast.CursorTypedefDecl:
		m["underlying"] = typeObject(c.TypedefUnderlyingType())
	case ast.CursorEnumDecl:
		m["int_type"] = typeObject(c.EnumIntegerType())
	case ast.CursorEnumConstantDecl:
		m["value"] = object.NewInt(c.EnumConstantValue())
	}
	return object.NewMap(m)
}

func typeObject(t ast.Type) object.Object {
	if t == nil {
		return object.Nil
	}
	m := map[string]object.Object{
		"kind":      object.NewString(t.Kind().String()),
		"spelling":  object.NewString(t.Spelling()),
		"canonical": object.NewString(t.Spelling()),
	}
	if ct := t.CanonicalType(); ct != nil {
		m["canonical"] = object.NewString(ct.Spelling())
	}
	switch t.Kind() {
	case ast.TypePointer:
		m["pointee"] = typeObject(t.PointeeType())
	case ast.TypeConstantArray:
		m["array_size"] = object.NewInt(t.ArraySize())
	case ast.TypeFunctionProto, ast.TypeFunctionNoProto:
		m["result"] = typeObject(t.ResultType())
	}
	return object.NewMap(m)
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	prefix string
	logger *log.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Printf("[%s] %s", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Printf("[%s] warning: %s", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Printf("[%s] error: %s", l.prefix, msg)
}
