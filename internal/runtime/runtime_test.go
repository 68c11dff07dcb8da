package runtime

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cdecl/internal/model"
)

func testCatalog() *model.Catalog {
	c := model.NewCatalog()
	intRef := model.TypeRef{Name: "int", Primitive: model.PrimInt32}

	c.Structs.Add(model.Struct{Name: "point", Fields: []model.Field{
		{Name: "x", Type: intRef},
		{Name: "y", Type: intRef},
	}})
	c.Structs.Add(model.Struct{Name: "buffer", Fields: []model.Field{
		{Name: "data", Type: model.TypeRef{Name: "char[64]", Primitive: model.PrimConstantArray, ArrayLength: 64}},
	}})

	sign := model.Enum{Name: "sign", Type: intRef}
	sign.AddMember("NEG", -1, 0)
	sign.AddMember("POS", 1, 0)
	c.Enums.Add(sign)

	big := model.Enum{Name: "big", Type: model.TypeRef{Name: "unsigned long long", Primitive: model.PrimUInt64}, Unsigned: true}
	big.AddMember("TOP", 0, ^uint64(0))
	c.Enums.Add(big)

	c.Functions.Add(model.Function{Name: "add", Return: intRef, Params: []model.Param{
		{Name: "a", Type: intRef},
		{Name: "param2", Type: intRef},
	}})
	c.TypeDefs.Add(model.TypeDef{Name: "point_t", Type: model.TypeRef{Name: "struct point", Primitive: model.PrimStruct}})
	c.FunctionPointers.Add(model.Function{Name: "cmp_fn", Return: intRef, Params: []model.Param{
		{Name: "param#1", Type: intRef},
		{Name: "param#2", Type: intRef},
	}})
	return c
}

func newTestRuntime(t *testing.T, opts ...RuntimeOption) (*Runtime, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return NewRuntime(testCatalog(), &out, opts...), &out
}

// =============================================================================
// Catalog globals
// =============================================================================

func TestRunSource_SetGlobals(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	script := `
assert(len(structs()) == 2, 'expected 2 structs, got {len(structs())}')
assert(len(enums()) == 2, 'expected 2 enums')
assert(len(functions()) == 1, 'expected 1 function')
assert(len(typedefs()) == 1, 'expected 1 typedef')
assert(len(function_pointers()) == 1, 'expected 1 function pointer')
assert(len(macros()) == 0, 'expected no macros')

s := structs()[0]
assert(s["name"] == "point", 'expected point, got {s["name"]}')
assert(len(s["fields"]) == 2, 'expected 2 fields')
assert(s["fields"][1]["name"] == "y", 'expected y')
assert(s["fields"][1]["type"]["primitive"] == "Int32", 'expected Int32')

buf := structs()[1]
assert(buf["fields"][0]["type"]["array_length"] == 64, 'expected 64')
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestRunSource_FunctionShapes(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	script := `
f := functions()[0]
assert(f["name"] == "add", 'expected add')
assert(f["return"]["name"] == "int", 'expected int return')
assert(f["params"][1]["name"] == "param2", 'expected param2')

fp := function_pointers()[0]
assert(fp["params"][0]["name"] == "param#1", 'expected param#1')
assert(fp["params"][1]["type"]["primitive"] == "Int32", 'expected Int32')
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestRunSource_EnumValues(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	script := `
e := enums()[0]
assert(e["unsigned"] == false, 'expected signed')
assert(e["members"][0]["value"] == -1, 'expected -1')

b := enums()[1]
assert(b["unsigned"] == true, 'expected unsigned')
assert(b["members"][0]["text"] == "18446744073709551615", 'expected max uint64 text')
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestRunSource_Lookup(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	script := `
td := lookup("typedefs", "point_t")
assert(td["type"]["primitive"] == "Struct", 'expected Struct')
assert(lookup("structs", "missing") == nil, 'expected nil')
assert(lookup("functionpointers", "cmp_fn")["name"] == "cmp_fn", 'expected cmp_fn')
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestRunSource_LookupUnknownKind(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	err := rt.RunSource(context.Background(), `lookup("classes", "x")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestRunSource_Emit(t *testing.T) {
	t.Parallel()
	rt, out := newTestRuntime(t)

	script := `
for _, s := range structs() {
    emit("type ", s["name"], " struct\n")
}
emit(42)
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
	assert.Equal(t, "type point struct\ntype buffer struct\n42", out.String())
}

func TestNewRuntime_NilCatalogIsEmpty(t *testing.T) {
	t.Parallel()
	rt := NewRuntime(nil, nil)

	script := `assert(len(structs()) == 0, 'expected no structs')`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestRunSource_ExtraGlobals(t *testing.T) {
	t.Parallel()
	rt, out := newTestRuntime(t)

	err := rt.RunSource(context.Background(), `emit(prefix, structs()[0]["name"])`, map[string]any{
		"prefix": "C.",
	})
	require.NoError(t, err)
	assert.Equal(t, "C.point", out.String())
}

func TestRunSource_ScriptError(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	err := rt.RunSource(context.Background(), `assert(false, "nope")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<inline>")
}

// =============================================================================
// Log object
// =============================================================================

func TestLog_RoutesToLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	rt, _ := newTestRuntime(t, WithLogger(log.New(&buf, "", 0)))

	require.NoError(t, rt.RunSource(context.Background(), `log.Warn("careful")`, nil))
	assert.Equal(t, "[cdecl] warning: careful\n", buf.String())
}

// =============================================================================
// Declaration cursors
// =============================================================================

const cTestSource = `struct point { int x; int y; };

int add(int a, int b);

typedef unsigned char u8;
enum level : u8 { LOW, HIGH = 5 };
`

func TestRunSource_ParseSrcCursors(t *testing.T) {
	t.Parallel()
	rt, out := newTestRuntime(t)

	script := `
tu := parse_src(src)
root := tu["cursor"]
assert(root["kind"] == "TranslationUnit", 'expected TranslationUnit')
assert(len(tu["diagnostics"]) == 0, 'expected no diagnostics')

for _, c := range root["children"] {
    emit(c["kind"], " ", c["spelling"], "\n")
}

point := root["children"][0]
assert(point["type"]["spelling"] == "struct point", 'expected struct point')
assert(point["children"][1]["spelling"] == "y", 'expected field y')

add := root["children"][1]
assert(add["result"]["spelling"] == "int", 'expected int result')
assert(add["children"][1]["type"]["kind"] == "Int", 'expected Int param')

u8 := root["children"][2]
assert(u8["underlying"]["canonical"] == "unsigned char", 'expected unsigned char')

level := root["children"][3]
assert(level["int_type"]["spelling"] == "u8", 'expected u8 backing')
assert(level["children"][1]["value"] == 5, 'expected HIGH = 5')
`
	err := rt.RunSource(context.Background(), script, map[string]any{"src": cTestSource})
	require.NoError(t, err)
	assert.Equal(t, "StructDecl point\nFunctionDecl add\nTypedefDecl u8\nEnumDecl level\n", out.String())
}

func TestRunSource_ParseFollowsIncludesAndDefines(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	inc := filepath.Join(dir, "include")
	require.NoError(t, os.MkdirAll(inc, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inc, "extra.h"), []byte("#ifdef WITH_EXTRA\nint extra(void);\n#endif\n"), 0o644))
	path := filepath.Join(dir, "api.h")
	require.NoError(t, os.WriteFile(path, []byte("#include \"extra.h\"\nint base(void);\n"), 0o644))

	script := `
tu := parse(path, "-DWITH_EXTRA")
for _, c := range tu["cursor"]["children"] {
    if c["kind"] == "FunctionDecl" {
        emit(c["spelling"], "\n")
    }
}
`
	rt, out := newTestRuntime(t, WithParseArgs("-I", inc))
	require.NoError(t, rt.RunSource(context.Background(), script, map[string]any{"path": path}))
	assert.Equal(t, "extra\nbase\n", out.String())

	rt, out = newTestRuntime(t, WithParseArgs("-I", inc))
	require.NoError(t, rt.RunSource(context.Background(), `
for _, c := range parse(path)["cursor"]["children"] {
    if c["kind"] == "FunctionDecl" {
        emit(c["spelling"], "\n")
    }
}
`, map[string]any{"path": path}))
	assert.Equal(t, "base\n", out.String())
}

func TestRunSource_ParseReportsWarnings(t *testing.T) {
	t.Parallel()
	rt, out := newTestRuntime(t)

	script := `
tu := parse_src("#include \"missing.h\"\nint f(void);\n")
emit(len(tu["diagnostics"]))
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
	assert.Equal(t, "1", out.String())
}

func TestRunSource_ParseMissingFile(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	err := rt.RunSource(context.Background(), `parse("/nonexistent/file.h")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open file")
}

func TestRunSource_ParseSyntaxError(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	err := rt.RunSource(context.Background(), `parse_src("struct Broken { int a int b; };\n")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ": error: ")
}

func TestRunSource_ParseRejectsNonStringArgs(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t)

	err := rt.RunSource(context.Background(), `parse_src("int f(void);", 3)`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 2 must be a string")
}

// =============================================================================
// Script loading
// =============================================================================

func TestRunScript_LoadsFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen.risor"), []byte(`emit(len(structs()))`), 0o644))

	rt, out := newTestRuntime(t, WithScriptsDir(dir))
	require.NoError(t, rt.RunScript(context.Background(), "gen.risor", nil))
	assert.Equal(t, "2", out.String())
}

func TestRunScript_AbsolutePath(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "gen.risor")
	require.NoError(t, os.WriteFile(path, []byte(`emit("ok")`), 0o644))

	rt, out := newTestRuntime(t)
	require.NoError(t, rt.RunScript(context.Background(), path, nil))
	assert.Equal(t, "ok", out.String())
}

func TestRunScript_MissingFile(t *testing.T) {
	t.Parallel()
	rt, _ := newTestRuntime(t, WithScriptsDir(t.TempDir()))

	err := rt.RunScript(context.Background(), "nonexistent.risor", nil)
	require.Error(t, err)
}

func TestLoadScript_FromFSFS(t *testing.T) {
	t.Parallel()
	content := `x := 42`
	mapFS := fstest.MapFS{
		"gen/go.risor": &fstest.MapFile{Data: []byte(content)},
	}
	rt, _ := newTestRuntime(t, WithRuntimeFS(mapFS))

	got, err := rt.LoadScript("/gen/go.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = rt.LoadScript("missing.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")
}

func TestImport_FSImporter(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"naming.risor": &fstest.MapFile{Data: []byte(`
func struct_names() {
	names := []
	for _, s := range structs() {
		names.append("C." + s["name"])
	}
	return names
}
`)},
	}
	rt, out := newTestRuntime(t, WithRuntimeFS(mapFS))

	script := `
import naming
for _, n := range naming.struct_names() {
    emit(n, ";")
}
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
	assert.Equal(t, "C.point;C.buffer;", out.String())
}

func TestImport_LocalImporter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.risor"), []byte(`
func double(x) {
	return x * 2
}
`), 0o644))

	rt, _ := newTestRuntime(t, WithScriptsDir(dir))
	script := `
import util
assert(util.double(21) == 42, 'expected 42')
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestEmit_Generator(t *testing.T) {
	t.Parallel()
	rt, out := newTestRuntime(t)

	script := `
for _, e := range enums() {
    for _, m := range e["members"] {
        emit("const ", m["name"], " = ", m["text"], "\n")
    }
}
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"const NEG = -1",
		"const POS = 1",
		"const TOP = 18446744073709551615",
	}, lines)
}
