package cdecl

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cdecl/internal/ast"
	"github.com/jward/cdecl/internal/ast/asttest"
	"github.com/jward/cdecl/internal/model"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newTestExtractor wires an Extractor to an in-memory index serving files.
// The index is returned so tests can inspect how it was used.
func newTestExtractor(t *testing.T, files map[string]asttest.File, paths ...string) (*Extractor, *asttest.Index) {
	t.Helper()
	idx := asttest.NewIndex(files)
	x := New(
		WithFiles(paths...),
		WithIndexFactory(func() ast.Index { return idx }),
		WithLogger(quietLogger()),
	)
	return x, idx
}

// extractTU runs one in-memory translation unit and returns the catalog.
func extractTU(t *testing.T, root *asttest.Node) *Catalog {
	t.Helper()
	x, _ := newTestExtractor(t, map[string]asttest.File{"main.h": {Root: root}}, "main.h")
	cat, err := x.Run(context.Background())
	require.NoError(t, err)
	return cat
}

// =============================================================================
// Structs
// =============================================================================

func TestExtract_StructFields(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Struct("Point", nil,
			asttest.Field("x", asttest.Int()),
			asttest.Field("y", asttest.Double()),
			asttest.Field("name", asttest.PointerTo(asttest.Char())),
			asttest.Field("tag", asttest.Array(asttest.UChar(), 4)),
		),
	))

	s, ok := cat.Structs.Get("Point")
	require.True(t, ok)
	require.Len(t, s.Fields, 4)
	assert.Equal(t, Field{Name: "x", Type: TypeRef{Name: "int", Primitive: model.PrimInt32}}, s.Fields[0])
	assert.Equal(t, model.PrimFloat64, s.Fields[1].Type.Primitive)
	assert.Equal(t, model.PrimPointer, s.Fields[2].Type.Primitive)
	assert.Equal(t, TypeRef{Name: "unsigned char[4]", Primitive: model.PrimConstantArray, ArrayLength: 4}, s.Fields[3].Type)
}

func TestExtract_UnionsAreStructs(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Union("Value", asttest.Field("i", asttest.Int()), asttest.Field("f", asttest.Float())),
	))

	s, ok := cat.Structs.Get("Value")
	require.True(t, ok)
	assert.Len(t, s.Fields, 2)
}

func TestExtract_NestedStructsAreDescended(t *testing.T) {
	t.Parallel()
	inner := asttest.Struct("Inner", nil, asttest.Field("a", asttest.Int()))
	cat := extractTU(t, asttest.TU(
		asttest.Struct("Outer", nil,
			inner,
			asttest.Field("in", asttest.Record("struct Inner")),
		),
	))

	assert.Equal(t, []string{"Outer", "Inner"}, cat.Structs.Names())
	outer, _ := cat.Structs.Get("Outer")
	require.Len(t, outer.Fields, 1, "nested declarations are not fields")
	assert.Equal(t, model.PrimStruct, outer.Fields[0].Type.Primitive)
}

func TestExtract_NestedStructUnderDuplicateIsStillFound(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Struct("Outer", nil, asttest.Field("a", asttest.Int())),
		asttest.Struct("Outer", nil,
			asttest.Struct("Late", nil, asttest.Field("b", asttest.Int())),
		),
	))

	assert.Equal(t, []string{"Outer", "Late"}, cat.Structs.Names())
	outer, _ := cat.Structs.Get("Outer")
	assert.Equal(t, "a", outer.Fields[0].Name, "first definition wins")
}

func TestExtract_AnonymousStructTakesTypeSpelling(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Struct("", asttest.Record("struct (anonymous at main.h:1:1)"), asttest.Field("a", asttest.Int())),
		asttest.Struct("", asttest.Record("Vec2"), asttest.Field("x", asttest.Float())),
		asttest.TypedefDecl("Vec2", asttest.Record("Vec2")),
	))

	assert.Equal(t, []string{"struct (anonymous at main.h:1:1)", "Vec2"}, cat.Structs.Names())
	assert.Zero(t, cat.TypeDefs.Len(), "typedef naming an anonymous struct is skipped")
}

// =============================================================================
// Enums
// =============================================================================

func TestExtract_SignedEnum(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Enum("Sign", asttest.Int(),
			asttest.Enumerator("NEG", -1),
			asttest.Enumerator("ZERO", 0),
			asttest.Enumerator("POS", 1),
		),
	))

	e, ok := cat.Enums.Get("Sign")
	require.True(t, ok)
	assert.False(t, e.Unsigned)
	assert.Equal(t, model.PrimInt32, e.Type.Primitive)
	require.Len(t, e.Members, 3)
	for _, m := range e.Members {
		assert.False(t, m.IsUnsigned())
	}
	assert.Equal(t, int64(-1), *e.Members[0].Signed)
	assert.Equal(t, int64(1), *e.Members[2].Signed)
}

func TestExtract_UnsignedEnum(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Enum("Flags", asttest.UInt(),
			asttest.Enumerator("A", 1),
			asttest.Enumerator("B", 2),
		),
	))

	e, _ := cat.Enums.Get("Flags")
	assert.True(t, e.Unsigned)
	assert.Equal(t, model.PrimUInt32, e.Type.Primitive)
	for _, m := range e.Members {
		assert.True(t, m.IsUnsigned())
	}
	assert.Equal(t, uint64(2), *e.Members[1].Unsigned)
}

func TestExtract_UnsignedCharBackedEnum(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Enum("Small", asttest.UChar(), asttest.Enumerator("MAX", 255)),
	))

	e, _ := cat.Enums.Get("Small")
	assert.True(t, e.Unsigned)
	assert.Equal(t, model.PrimUInt8, e.Type.Primitive)
	assert.Equal(t, "MAX=255", e.Members[0].String())
}

func TestExtract_FixedEnumBaseWithDefaultFrontend(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "x.c")
	src := "enum E : unsigned char { A, B=5 };\nenum S : short { NEG = -2, NEXT };\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cat, err := New(WithFiles(path), WithLogger(quietLogger())).Run(context.Background())
	require.NoError(t, err)

	e, ok := cat.Enums.Get("E")
	require.True(t, ok)
	assert.True(t, e.Unsigned)
	assert.Equal(t, TypeRef{Name: "unsigned char", Primitive: model.PrimUInt8}, e.Type)
	require.Len(t, e.Members, 2)
	assert.Equal(t, "A=0", e.Members[0].String())
	assert.Equal(t, "B=5", e.Members[1].String())
	assert.Equal(t, uint64(5), *e.Members[1].Unsigned)

	s, ok := cat.Enums.Get("S")
	require.True(t, ok)
	assert.False(t, s.Unsigned)
	assert.Equal(t, model.PrimInt16, s.Type.Primitive)
	require.Len(t, s.Members, 2)
	assert.Equal(t, int64(-2), *s.Members[0].Signed)
	assert.Equal(t, int64(-1), *s.Members[1].Signed)
}

func TestExtract_TypedefBackedEnumUsesCanonicalSignedness(t *testing.T) {
	t.Parallel()
	backing := asttest.Typedef("uint16_t", asttest.Builtin(ast.TypeUShort, "unsigned short"))
	cat := extractTU(t, asttest.TU(
		asttest.Enum("Port", backing, asttest.Enumerator("HTTP", 80)),
	))

	e, _ := cat.Enums.Get("Port")
	assert.True(t, e.Unsigned)
	assert.Equal(t, TypeRef{Name: "uint16_t", Primitive: model.PrimTypeDef}, e.Type)
}

func TestExtract_AnonymousEnum(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Enum("", asttest.UInt(), asttest.Enumerator("ONLY", 1)),
	))
	assert.Equal(t, []string{"enum (anonymous)"}, cat.Enums.Names())
}

// =============================================================================
// Typedefs and function pointers
// =============================================================================

func TestExtract_PlainTypedef(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.TypedefDecl("u32", asttest.UInt()),
		asttest.TypedefDecl("handle_t", asttest.Typedef("u32", asttest.UInt())),
	))

	assert.Equal(t, []string{"u32", "handle_t"}, cat.TypeDefs.Names())
	u32, _ := cat.TypeDefs.Get("u32")
	assert.Equal(t, TypeRef{Name: "unsigned int", Primitive: model.PrimUInt32}, u32.Type)
	h, _ := cat.TypeDefs.Get("handle_t")
	assert.Equal(t, model.PrimTypeDef, h.Type.Primitive)
}

func TestExtract_StructTypedefCollision(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Struct("Node", nil, asttest.Field("next", asttest.PointerTo(asttest.Record("struct Node")))),
		asttest.TypedefDecl("Node", asttest.Record("struct Node")),
	))

	assert.True(t, cat.Structs.Contains("Node"))
	assert.False(t, cat.TypeDefs.Contains("Node"))
}

func TestExtract_FunctionPointerTypedef(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.TypedefDecl("Callback", asttest.FuncPointer(asttest.Int(), asttest.Int(), asttest.Int()),
			asttest.Parm("", asttest.Int()),
			asttest.Parm("", asttest.Int()),
		),
	))

	assert.Zero(t, cat.TypeDefs.Len())
	fp, ok := cat.FunctionPointers.Get("Callback")
	require.True(t, ok)
	assert.Equal(t, model.PrimInt32, fp.Return.Primitive)
	assert.Equal(t, []Param{
		{Name: "param#1", Type: TypeRef{Name: "int", Primitive: model.PrimInt32}},
		{Name: "param#2", Type: TypeRef{Name: "int", Primitive: model.PrimInt32}},
	}, fp.Params)
}

func TestExtract_FunctionPointerThroughTypedefProto(t *testing.T) {
	t.Parallel()
	proto := asttest.Proto(asttest.Void(), asttest.Int())
	sugared := &asttest.Type{K: ast.TypePointer, Name: "handler_fn *", Pointee: asttest.Typedef("handler_fn", proto)}
	cat := extractTU(t, asttest.TU(
		asttest.TypedefDecl("handler_ptr", sugared, asttest.Parm("code", asttest.Int())),
	))

	fp, ok := cat.FunctionPointers.Get("handler_ptr")
	require.True(t, ok)
	assert.Equal(t, model.PrimVoid, fp.Return.Primitive)
	assert.Equal(t, "code", fp.Params[0].Name)
}

func TestExtract_DataPointerTypedefIsPlain(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.TypedefDecl("cstr", asttest.PointerTo(asttest.Char())),
	))

	assert.True(t, cat.TypeDefs.Contains("cstr"))
	assert.Zero(t, cat.FunctionPointers.Len())
}

// =============================================================================
// Functions
// =============================================================================

func TestExtract_FunctionParams(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Func("add", asttest.Int(), asttest.Parm("a", asttest.Int()), asttest.Parm("", asttest.LongLong())),
		asttest.Func("reset", asttest.Void()),
	))

	add, ok := cat.Functions.Get("add")
	require.True(t, ok)
	assert.Equal(t, TypeRef{Name: "int", Primitive: model.PrimInt32}, add.Return)
	assert.Equal(t, []Param{
		{Name: "a", Type: TypeRef{Name: "int", Primitive: model.PrimInt32}},
		{Name: "param2", Type: TypeRef{Name: "long long", Primitive: model.PrimInt64}},
	}, add.Params)

	reset, _ := cat.Functions.Get("reset")
	assert.Empty(t, reset.Params)
	assert.Equal(t, model.PrimVoid, reset.Return.Primitive)
}

func TestExtract_RedeclaredFunctionKeepsFirst(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Func("open", asttest.Int(), asttest.Parm("path", asttest.PointerTo(asttest.Char()))),
		asttest.Func("open", asttest.Int(), asttest.Parm("p", asttest.PointerTo(asttest.Char()))),
	))

	require.Equal(t, 1, cat.Functions.Len())
	f, _ := cat.Functions.Get("open")
	assert.Equal(t, "path", f.Params[0].Name)
}

func TestExtract_MacrosAreNotRecorded(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(asttest.MacroDef("VERSION")))
	assert.Zero(t, cat.Macros.Len())
}

// =============================================================================
// Catalog properties
// =============================================================================

func TestExtract_SystemHeadersAreExcluded(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Struct("SysThing", nil, asttest.Field("v", asttest.Int())).InSystemHeader(),
		asttest.Enum("SysMode", asttest.UInt(), asttest.Enumerator("ON", 1)).InSystemHeader(),
		asttest.TypedefDecl("sys_int", asttest.Int()).InSystemHeader(),
		asttest.TypedefDecl("sys_cb", asttest.FuncPointer(asttest.Void())).InSystemHeader(),
		asttest.Func("sys_call", asttest.Int()).InSystemHeader(),
		asttest.Struct("Mine", nil, asttest.Field("v", asttest.Int())),
	))

	assert.Equal(t, 1, cat.Len())
	assert.True(t, cat.Structs.Contains("Mine"))
}

func TestExtract_NamesAreUniquePerSet(t *testing.T) {
	t.Parallel()
	shared := func() []*asttest.Node {
		return []*asttest.Node{
			asttest.Struct("Shared", nil, asttest.Field("id", asttest.Int())),
			asttest.Enum("Mode", asttest.UInt(), asttest.Enumerator("A", 0)),
			asttest.TypedefDecl("id_t", asttest.Int()),
			asttest.TypedefDecl("cb_t", asttest.FuncPointer(asttest.Void())),
			asttest.Func("init", asttest.Void()),
		}
	}
	x, _ := newTestExtractor(t, map[string]asttest.File{
		"a.h": {Root: asttest.TU(append(shared(), asttest.Func("a_only", asttest.Void()))...)},
		"b.h": {Root: asttest.TU(append(shared(), asttest.Func("b_only", asttest.Void()))...)},
	}, "a.h", "b.h")

	cat, err := x.Run(context.Background())
	require.NoError(t, err)

	for _, kind := range model.Kinds {
		names := setNames(cat, kind)
		seen := make(map[string]bool)
		for _, n := range names {
			assert.False(t, seen[n], "%s listed twice in %s", n, kind)
			seen[n] = true
		}
	}
	assert.Equal(t, []string{"init", "a_only", "b_only"}, cat.Functions.Names())
	assert.Equal(t, 1, cat.FunctionPointers.Len())
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()
	files := map[string]asttest.File{
		"a.h": {Root: asttest.TU(
			asttest.Struct("S", nil, asttest.Field("x", asttest.Int())),
			asttest.Func("f", asttest.Int()),
		)},
		"b.h": {Root: asttest.TU(asttest.Enum("E", asttest.Int(), asttest.Enumerator("X", -3)))},
	}

	x1, _ := newTestExtractor(t, files, "a.h", "b.h")
	first, err := x1.Run(context.Background())
	require.NoError(t, err)

	x2, _ := newTestExtractor(t, files, "a.h", "b.h")
	second, err := x2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Entities(), second.Entities())
}

func TestExtract_EveryTypeIsClassified(t *testing.T) {
	t.Parallel()
	cat := extractTU(t, asttest.TU(
		asttest.Struct("Odd", nil,
			asttest.Field("u", asttest.Unexposed()),
			asttest.Field("bad", asttest.InvalidType()),
		),
	))

	s, _ := cat.Structs.Get("Odd")
	for _, f := range s.Fields {
		assert.Equal(t, model.PrimInvalid, f.Type.Primitive)
	}
}

func TestExtract_UnmappedKindIsLogged(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	idx := asttest.NewIndex(map[string]asttest.File{"main.h": {Root: asttest.TU(
		asttest.Func("f", asttest.Unexposed()),
	)}})
	x := New(
		WithFiles("main.h"),
		WithIndexFactory(func() ast.Index { return idx }),
		WithLogger(log.New(&buf, "", 0)),
	)

	_, err := x.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "classify: unmapped type kind")
	assert.Contains(t, buf.String(), "<unexposed>")
}

// =============================================================================
// Run lifecycle
// =============================================================================

func TestRun_PassesArgsAndOptions(t *testing.T) {
	t.Parallel()
	idx := asttest.NewIndex(map[string]asttest.File{"a.h": {}})
	x := New(
		WithFiles("a.h"),
		WithArgs("-I", "include"),
		WithArgs("-DX=1"),
		WithIncludeComments(true),
		WithIndexFactory(func() ast.Index { return idx }),
		WithLogger(quietLogger()),
	)

	_, err := x.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"-I", "include", "-DX=1"}}, idx.Args)
	assert.Equal(t, []ast.ParseOptions{{IncludeComments: true}}, idx.Options)
}

func TestRun_DisposesInOrder(t *testing.T) {
	t.Parallel()
	x, idx := newTestExtractor(t, map[string]asttest.File{"a.h": {}, "b.h": {}}, "a.h", "b.h")

	_, err := x.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"parse a.h", "dispose a.h",
		"parse b.h", "dispose b.h",
		"dispose index",
	}, idx.Events)
}

func TestRun_ParseFailureStopsAndKeepsEarlierFiles(t *testing.T) {
	t.Parallel()
	x, idx := newTestExtractor(t, map[string]asttest.File{
		"good.h": {Root: asttest.TU(asttest.Func("kept", asttest.Void()))},
		"bad.h": {
			Code: ast.ErrorFailure,
			Diagnostics: []ast.Diagnostic{
				{Severity: ast.SeverityError, File: "bad.h", Line: 3, Column: 7, Message: "expected ';'"},
			},
		},
		"never.h": {Root: asttest.TU(asttest.Func("skipped", asttest.Void()))},
	}, "good.h", "bad.h", "never.h")

	cat, err := x.Run(context.Background())
	assert.Nil(t, cat)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.h", perr.File)
	assert.Equal(t, ast.ErrorFailure, perr.Code)
	assert.Equal(t, "bad.h:3:7: error: expected ';'", err.Error())

	assert.Equal(t, []string{"kept"}, x.Catalog().Functions.Names())
	assert.Equal(t, []string{
		"parse good.h", "dispose good.h",
		"parse bad.h", "dispose bad.h",
		"dispose index",
	}, idx.Events)
}

func TestRun_MissingFile(t *testing.T) {
	t.Parallel()
	x, idx := newTestExtractor(t, nil, "missing.h")

	_, err := x.Run(context.Background())
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "file not found")
	assert.True(t, idx.Disposed)
}

// nilIndex is a faulty frontend that returns no translation unit.
type nilIndex struct {
	code     ast.ErrorCode
	disposed bool
}

func (x *nilIndex) Parse(context.Context, string, []string, ast.ParseOptions) (ast.TranslationUnit, ast.ErrorCode) {
	return nil, x.code
}

func (x *nilIndex) Dispose() { x.disposed = true }

func TestRun_NilTranslationUnit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		code ast.ErrorCode
		want string
	}{
		{"reported success", ast.ErrorSuccess, "x.h: parse failed: AST read error"},
		{"reported failure", ast.ErrorCrashed, "x.h: parse failed: crashed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			idx := &nilIndex{code: tt.code}
			x := New(
				WithFiles("x.h"),
				WithIndexFactory(func() ast.Index { return idx }),
				WithLogger(quietLogger()),
			)

			cat, err := x.Run(context.Background())
			assert.Nil(t, cat)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.want, err.Error())
			assert.True(t, idx.disposed)
		})
	}
}

func TestParseError_WithoutDiagnostics(t *testing.T) {
	t.Parallel()
	err := &ParseError{File: "x.h", Code: ast.ErrorCrashed}
	assert.Equal(t, "x.h: parse failed: crashed", err.Error())
}

func TestRun_ClearsPreviousCatalog(t *testing.T) {
	t.Parallel()
	x, _ := newTestExtractor(t, map[string]asttest.File{
		"a.h": {Root: asttest.TU(asttest.Func("f", asttest.Void()))},
	}, "a.h")

	first, err := x.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Len())

	second, err := x.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Len())
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()
	x, idx := newTestExtractor(t, map[string]asttest.File{"a.h": {}}, "a.h")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, idx.Parsed)
	assert.True(t, idx.Disposed)
}

func TestRun_WarningsAreLogged(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	idx := asttest.NewIndex(map[string]asttest.File{"a.h": {
		Diagnostics: []ast.Diagnostic{{Severity: ast.SeverityWarning, File: "a.h", Line: 1, Column: 1, Message: "'nowhere.h' file not found"}},
	}})
	x := New(
		WithFiles("a.h"),
		WithIndexFactory(func() ast.Index { return idx }),
		WithLogger(log.New(&buf, "", 0)),
	)

	_, err := x.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cdecl: a.h:1:1: warning: 'nowhere.h' file not found")
}

func TestRun_NoFiles(t *testing.T) {
	t.Parallel()
	x, idx := newTestExtractor(t, nil)
	cat, err := x.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cat.Len())
	assert.Equal(t, []string{"dispose index"}, idx.Events)
}
