package cfront

import (
	"fmt"
	"strings"

	"github.com/jward/cdecl/internal/ast"
)

// ctype is an immutable C type. Spellings follow clang's printing rules
// ("int *", "const char *", "int (*)(int, int)", "int[2][3]").
type ctype struct {
	kind  ast.TypeKind
	name  string // builtin, record, enum or typedef name
	quals string

	elem     *ctype // pointee, array element or typedef target
	size     int64  // constant array length, -1 otherwise
	sizeText string // variable array bound as written

	result   *ctype
	params   []*ctype
	variadic bool

	canon    *ctype // nil when the type is its own canonical form
	spelling string
}

var _ ast.Type = (*ctype)(nil)

var invalidType = &ctype{kind: ast.TypeInvalid, size: -1}

func (t *ctype) Kind() ast.TypeKind {
	if t == nil {
		return ast.TypeInvalid
	}
	return t.kind
}

func (t *ctype) Spelling() string {
	if t == nil {
		return ""
	}
	return t.spelling
}

func (t *ctype) CanonicalType() ast.Type {
	if t == nil {
		return invalidType
	}
	return t.canonical()
}

func (t *ctype) PointeeType() ast.Type {
	if t == nil || t.kind != ast.TypePointer {
		return invalidType
	}
	return t.elem
}

func (t *ctype) ResultType() ast.Type {
	if t == nil || !t.isFunction() {
		return invalidType
	}
	return t.result
}

func (t *ctype) ArraySize() int64 {
	if t == nil || t.kind != ast.TypeConstantArray {
		return -1
	}
	return t.size
}

func (t *ctype) canonical() *ctype {
	if t.canon != nil {
		return t.canon
	}
	return t
}

func (t *ctype) isFunction() bool {
	return t.kind == ast.TypeFunctionProto || t.kind == ast.TypeFunctionNoProto
}

// finish computes the derived spelling and canonical form. Every
// constructor ends with it.
func (t *ctype) finish() *ctype {
	t.spelling = t.spell("")
	t.canon = t.canonicalize()
	return t
}

func (t *ctype) canonicalize() *ctype {
	switch t.kind {
	case ast.TypeTypedef:
		return qualify(t.elem.canonical(), splitQuals(t.quals))
	case ast.TypePointer, ast.TypeConstantArray, ast.TypeIncompleteArray, ast.TypeVariableArray:
		ce := t.elem.canonical()
		if ce == t.elem {
			return nil
		}
		c := *t
		c.elem = ce
		c.canon = nil
		return c.finish()
	case ast.TypeFunctionProto, ast.TypeFunctionNoProto:
		changed := t.result.canonical() != t.result
		params := make([]*ctype, len(t.params))
		for i, p := range t.params {
			params[i] = p.canonical()
			changed = changed || params[i] != p
		}
		if !changed {
			return nil
		}
		c := *t
		c.result = t.result.canonical()
		c.params = params
		c.canon = nil
		return c.finish()
	}
	return nil
}

func (t *ctype) spell(inner string) string {
	switch t.kind {
	case ast.TypePointer:
		s := "*"
		if t.quals != "" {
			s += t.quals
			if inner != "" {
				s += " "
			}
		}
		s += inner
		switch t.elem.kind {
		case ast.TypeFunctionProto, ast.TypeFunctionNoProto,
			ast.TypeConstantArray, ast.TypeIncompleteArray, ast.TypeVariableArray:
			s = "(" + s + ")"
		}
		return t.elem.spell(s)
	case ast.TypeConstantArray:
		return t.elem.spell(fmt.Sprintf("%s[%d]", inner, t.size))
	case ast.TypeIncompleteArray:
		return t.elem.spell(inner + "[]")
	case ast.TypeVariableArray:
		return t.elem.spell(inner + "[" + t.sizeText + "]")
	case ast.TypeFunctionProto, ast.TypeFunctionNoProto:
		return t.result.spell(inner + t.paramList())
	}

	s := t.name
	if t.quals != "" {
		s = t.quals + " " + s
	}
	switch {
	case inner == "":
		return s
	case strings.HasPrefix(inner, "["):
		return s + inner
	}
	return s + " " + inner
}

func (t *ctype) paramList() string {
	if t.kind == ast.TypeFunctionNoProto {
		return "()"
	}
	if len(t.params) == 0 && !t.variadic {
		return "(void)"
	}
	parts := make([]string, 0, len(t.params)+1)
	for _, p := range t.params {
		parts = append(parts, p.spelling)
	}
	if t.variadic {
		parts = append(parts, "...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func builtin(kind ast.TypeKind, name string) *ctype {
	return (&ctype{kind: kind, name: name, size: -1}).finish()
}

func unexposed(name string) *ctype {
	return (&ctype{kind: ast.TypeUnexposed, name: name, size: -1}).finish()
}

func recordType(spelling string) *ctype {
	return (&ctype{kind: ast.TypeRecord, name: spelling, size: -1}).finish()
}

func enumType(spelling string) *ctype {
	return (&ctype{kind: ast.TypeEnum, name: spelling, size: -1}).finish()
}

func typedefType(name string, underlying *ctype) *ctype {
	return (&ctype{kind: ast.TypeTypedef, name: name, elem: underlying, size: -1}).finish()
}

func pointerTo(t *ctype) *ctype {
	return (&ctype{kind: ast.TypePointer, elem: t, size: -1}).finish()
}

func constantArray(elem *ctype, n int64) *ctype {
	return (&ctype{kind: ast.TypeConstantArray, elem: elem, size: n}).finish()
}

func incompleteArray(elem *ctype) *ctype {
	return (&ctype{kind: ast.TypeIncompleteArray, elem: elem, size: -1}).finish()
}

func variableArray(elem *ctype, bound string) *ctype {
	return (&ctype{kind: ast.TypeVariableArray, elem: elem, size: -1, sizeText: bound}).finish()
}

func functionType(result *ctype, params []*ctype, variadic, proto bool) *ctype {
	kind := ast.TypeFunctionProto
	if !proto {
		kind = ast.TypeFunctionNoProto
	}
	return (&ctype{kind: kind, result: result, params: params, variadic: variadic, size: -1}).finish()
}

// qualify returns t with the extra qualifiers applied, or t itself when
// there are none to add.
func qualify(t *ctype, quals []string) *ctype {
	if len(quals) == 0 {
		return t
	}
	merged := splitQuals(t.quals)
	for _, q := range quals {
		if !contains(merged, q) {
			merged = append(merged, q)
		}
	}
	joined := strings.Join(merged, " ")
	if joined == t.quals {
		return t
	}
	c := *t
	c.quals = joined
	c.canon = nil
	return c.finish()
}

func splitQuals(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type builtinSpec struct {
	kind ast.TypeKind
	name string
}

// keywordTypes are the single-word builtin specifiers.
var keywordTypes = map[string]builtinSpec{
	"void":     {ast.TypeVoid, "void"},
	"char":     {ast.TypeCharS, "char"},
	"int":      {ast.TypeInt, "int"},
	"float":    {ast.TypeFloat, "float"},
	"double":   {ast.TypeDouble, "double"},
	"bool":     {ast.TypeBool, "bool"},
	"_Bool":    {ast.TypeBool, "_Bool"},
	"short":    {ast.TypeShort, "short"},
	"long":     {ast.TypeLong, "long"},
	"signed":   {ast.TypeInt, "int"},
	"unsigned": {ast.TypeUInt, "unsigned int"},
	"_Float16": {ast.TypeFloat16, "_Float16"},
	"__int128": {ast.TypeInt128, "__int128"},
}

// stdTypedefs are the library typedefs the grammar treats as builtin
// specifiers, resolved for an LP64 target.
var stdTypedefs = map[string]builtinSpec{
	"int8_t":      {ast.TypeSChar, "signed char"},
	"uint8_t":     {ast.TypeUChar, "unsigned char"},
	"int16_t":     {ast.TypeShort, "short"},
	"uint16_t":    {ast.TypeUShort, "unsigned short"},
	"int32_t":     {ast.TypeInt, "int"},
	"uint32_t":    {ast.TypeUInt, "unsigned int"},
	"int64_t":     {ast.TypeLong, "long"},
	"uint64_t":    {ast.TypeULong, "unsigned long"},
	"size_t":      {ast.TypeULong, "unsigned long"},
	"ssize_t":     {ast.TypeLong, "long"},
	"ptrdiff_t":   {ast.TypeLong, "long"},
	"intptr_t":    {ast.TypeLong, "long"},
	"uintptr_t":   {ast.TypeULong, "unsigned long"},
	"char8_t":     {ast.TypeUChar, "unsigned char"},
	"char16_t":    {ast.TypeUShort, "unsigned short"},
	"char32_t":    {ast.TypeUInt, "unsigned int"},
	"wchar_t":     {ast.TypeInt, "int"},
	"max_align_t": {ast.TypeLongDouble, "long double"},
	"nullptr_t":   {ast.TypeNullPtr, "nullptr_t"},
}

// sizedType resolves a combination of sign and size keywords.
func sizedType(unsigned, signed, short bool, longs int, base string) *ctype {
	switch {
	case base == "char":
		switch {
		case unsigned:
			return builtin(ast.TypeUChar, "unsigned char")
		case signed:
			return builtin(ast.TypeSChar, "signed char")
		}
		return builtin(ast.TypeCharS, "char")
	case base == "double" && longs > 0:
		return builtin(ast.TypeLongDouble, "long double")
	case base == "double":
		return builtin(ast.TypeDouble, "double")
	case short && unsigned:
		return builtin(ast.TypeUShort, "unsigned short")
	case short:
		return builtin(ast.TypeShort, "short")
	case longs >= 2 && unsigned:
		return builtin(ast.TypeULongLong, "unsigned long long")
	case longs >= 2:
		return builtin(ast.TypeLongLong, "long long")
	case longs == 1 && unsigned:
		return builtin(ast.TypeULong, "unsigned long")
	case longs == 1:
		return builtin(ast.TypeLong, "long")
	case unsigned:
		return builtin(ast.TypeUInt, "unsigned int")
	}
	return builtin(ast.TypeInt, "int")
}
