// Package asttest builds in-memory ASTs that satisfy the ast interfaces, so
// extraction can be tested without a real parser.
package asttest

import (
	"context"
	"fmt"

	"github.com/jward/cdecl/internal/ast"
)

// Type is an in-memory ast.Type. All methods are nil-safe.
type Type struct {
	K         ast.TypeKind
	Name      string
	Canonical *Type
	Pointee   *Type
	Result    *Type
	Size      int64
}

var _ ast.Type = (*Type)(nil)

func (t *Type) Kind() ast.TypeKind {
	if t == nil {
		return ast.TypeInvalid
	}
	return t.K
}

func (t *Type) Spelling() string {
	if t == nil {
		return ""
	}
	return t.Name
}

func (t *Type) CanonicalType() ast.Type {
	if t == nil || t.Canonical == nil {
		return t
	}
	return t.Canonical
}

func (t *Type) PointeeType() ast.Type {
	if t == nil {
		return (*Type)(nil)
	}
	return t.Pointee
}

func (t *Type) ResultType() ast.Type {
	if t == nil {
		return (*Type)(nil)
	}
	return t.Result
}

func (t *Type) ArraySize() int64 {
	if t == nil || t.K != ast.TypeConstantArray {
		return -1
	}
	return t.Size
}

// Builtin returns a canonical builtin type.
func Builtin(k ast.TypeKind, spelling string) *Type {
	return &Type{K: k, Name: spelling}
}

func Void() *Type        { return Builtin(ast.TypeVoid, "void") }
func Int() *Type         { return Builtin(ast.TypeInt, "int") }
func UInt() *Type        { return Builtin(ast.TypeUInt, "unsigned int") }
func Char() *Type        { return Builtin(ast.TypeCharS, "char") }
func UChar() *Type       { return Builtin(ast.TypeUChar, "unsigned char") }
func Short() *Type       { return Builtin(ast.TypeShort, "short") }
func LongLong() *Type    { return Builtin(ast.TypeLongLong, "long long") }
func ULongLong() *Type   { return Builtin(ast.TypeULongLong, "unsigned long long") }
func Double() *Type      { return Builtin(ast.TypeDouble, "double") }
func Float() *Type       { return Builtin(ast.TypeFloat, "float") }
func Bool() *Type        { return Builtin(ast.TypeBool, "_Bool") }
func Unexposed() *Type   { return Builtin(ast.TypeUnexposed, "<unexposed>") }
func InvalidType() *Type { return Builtin(ast.TypeInvalid, "") }

func PointerTo(t *Type) *Type {
	return &Type{K: ast.TypePointer, Name: t.Name + " *", Pointee: t}
}

// Proto returns a function prototype type.
func Proto(result *Type, params ...*Type) *Type {
	spelling := result.Name + " ("
	for i, p := range params {
		if i > 0 {
			spelling += ", "
		}
		spelling += p.Name
	}
	spelling += ")"
	return &Type{K: ast.TypeFunctionProto, Name: spelling, Result: result}
}

// FuncPointer returns a pointer to a prototype, spelled the way compilers
// print it ("int (*)(int, int)").
func FuncPointer(result *Type, params ...*Type) *Type {
	proto := Proto(result, params...)
	spelling := result.Name + " (*)" + proto.Name[len(result.Name)+1:]
	return &Type{K: ast.TypePointer, Name: spelling, Pointee: proto}
}

// Typedef returns a typedef type aliasing underlying.
func Typedef(name string, underlying *Type) *Type {
	canon, _ := underlying.CanonicalType().(*Type)
	return &Type{K: ast.TypeTypedef, Name: name, Canonical: canon}
}

func Record(spelling string) *Type {
	return &Type{K: ast.TypeRecord, Name: spelling}
}

func EnumType(spelling string) *Type {
	return &Type{K: ast.TypeEnum, Name: spelling}
}

func Array(elem *Type, n int64) *Type {
	return &Type{K: ast.TypeConstantArray, Name: fmt.Sprintf("%s[%d]", elem.Name, n), Size: n}
}

// Node is an in-memory ast.Cursor.
type Node struct {
	K          ast.CursorKind
	Name       string
	T          *Type
	System     bool
	Kids       []*Node
	Result     *Type
	Underlying *Type
	IntType    *Type
	Value      int64
	UValue     uint64
	Comment    string
}

var _ ast.Cursor = (*Node)(nil)

func (n *Node) Kind() ast.CursorKind              { return n.K }
func (n *Node) Spelling() string                  { return n.Name }
func (n *Node) Type() ast.Type                    { return n.T }
func (n *Node) IsInSystemHeader() bool            { return n.System }
func (n *Node) ResultType() ast.Type              { return n.Result }
func (n *Node) TypedefUnderlyingType() ast.Type   { return n.Underlying }
func (n *Node) EnumIntegerType() ast.Type         { return n.IntType }
func (n *Node) EnumConstantValue() int64          { return n.Value }
func (n *Node) EnumConstantUnsignedValue() uint64 { return n.UValue }
func (n *Node) RawComment() string                { return n.Comment }

func (n *Node) Children() []ast.Cursor {
	out := make([]ast.Cursor, len(n.Kids))
	for i, k := range n.Kids {
		out[i] = k
	}
	return out
}

// InSystemHeader marks n and every descendant as coming from a system header.
func (n *Node) InSystemHeader() *Node {
	n.System = true
	for _, k := range n.Kids {
		k.InSystemHeader()
	}
	return n
}

func TU(kids ...*Node) *Node {
	return &Node{K: ast.CursorTranslationUnit, Kids: kids}
}

// Struct declares a struct. An empty name models an anonymous struct whose
// type spelling is t's.
func Struct(name string, t *Type, kids ...*Node) *Node {
	if t == nil {
		t = Record("struct " + name)
	}
	return &Node{K: ast.CursorStructDecl, Name: name, T: t, Kids: kids}
}

func Union(name string, kids ...*Node) *Node {
	return &Node{K: ast.CursorUnionDecl, Name: name, T: Record("union " + name), Kids: kids}
}

func Field(name string, t *Type) *Node {
	return &Node{K: ast.CursorFieldDecl, Name: name, T: t}
}

func Enum(name string, intType *Type, kids ...*Node) *Node {
	t := EnumType("enum " + name)
	if name == "" {
		t = EnumType("enum (anonymous)")
	}
	return &Node{K: ast.CursorEnumDecl, Name: name, T: t, IntType: intType, Kids: kids}
}

// Enumerator sets both value views the way a compiler would: the unsigned
// view is the two's-complement reinterpretation of the signed one.
func Enumerator(name string, v int64) *Node {
	return &Node{K: ast.CursorEnumConstantDecl, Name: name, T: Int(), Value: v, UValue: uint64(v)}
}

func Func(name string, result *Type, params ...*Node) *Node {
	pts := make([]*Type, 0, len(params))
	for _, p := range params {
		pts = append(pts, p.T)
	}
	return &Node{K: ast.CursorFunctionDecl, Name: name, T: Proto(result, pts...), Result: result, Kids: params}
}

func Parm(name string, t *Type) *Node {
	return &Node{K: ast.CursorParmDecl, Name: name, T: t}
}

func TypedefDecl(name string, underlying *Type, kids ...*Node) *Node {
	return &Node{K: ast.CursorTypedefDecl, Name: name, T: Typedef(name, underlying), Underlying: underlying, Kids: kids}
}

func MacroDef(name string) *Node {
	return &Node{K: ast.CursorMacroDefinition, Name: name}
}

// File is a canned parse result for one path.
type File struct {
	Root        *Node
	Code        ast.ErrorCode
	Diagnostics []ast.Diagnostic
}

// Index serves canned Files and records how it was used.
type Index struct {
	Files map[string]File

	Parsed      []string
	Args        [][]string
	Options     []ast.ParseOptions
	Disposed    bool
	TUsDisposed int
	// Events records "parse <path>", "dispose <path>" and "dispose index" in
	// order.
	Events []string
}

var _ ast.Index = (*Index)(nil)

func NewIndex(files map[string]File) *Index {
	return &Index{Files: files}
}

func (x *Index) Parse(ctx context.Context, path string, args []string, opts ast.ParseOptions) (ast.TranslationUnit, ast.ErrorCode) {
	x.Parsed = append(x.Parsed, path)
	x.Args = append(x.Args, args)
	x.Options = append(x.Options, opts)
	x.Events = append(x.Events, "parse "+path)

	f, ok := x.Files[path]
	if !ok {
		return &TranslationUnit{idx: x, path: path, diags: []ast.Diagnostic{{
			Severity: ast.SeverityFatal,
			File:     path,
			Message:  "file not found",
		}}}, ast.ErrorFailure
	}
	root := f.Root
	if root == nil {
		root = TU()
	}
	return &TranslationUnit{idx: x, path: path, root: root, diags: f.Diagnostics}, f.Code
}

func (x *Index) Dispose() {
	x.Disposed = true
	x.Events = append(x.Events, "dispose index")
}

type TranslationUnit struct {
	idx   *Index
	path  string
	root  *Node
	diags []ast.Diagnostic
}

func (tu *TranslationUnit) Cursor() ast.Cursor {
	if tu.root == nil {
		return TU()
	}
	return tu.root
}

func (tu *TranslationUnit) Diagnostics() []ast.Diagnostic { return tu.diags }

func (tu *TranslationUnit) Dispose() {
	tu.idx.TUsDisposed++
	tu.idx.Events = append(tu.idx.Events, "dispose "+tu.path)
}
