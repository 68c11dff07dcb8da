package cdecl

import (
	"fmt"
	"strings"

	"github.com/jward/cdecl/internal/ast"
	"github.com/jward/cdecl/internal/model"
)

// Each pass is an ast.Visitor over the translation unit. Names are checked
// against the catalog before every Add, so a declaration seen twice (from
// a header included by two files, say) is recorded once.

// visitStruct records record definitions. It descends everywhere so nested
// definitions are found, including under a record already recorded.
func (e *Extractor) visitStruct(c ast.Cursor) ast.VisitResult {
	if !c.Kind().IsRecord() || c.IsInSystemHeader() {
		return ast.Descend
	}
	name := declName(c)
	if e.catalog.Structs.Contains(name) {
		return ast.Descend
	}

	s := Struct{Name: name}
	for _, child := range c.Children() {
		if child.Kind() != ast.CursorFieldDecl {
			continue
		}
		s.Fields = append(s.Fields, Field{Name: child.Spelling(), Type: e.typeRef(child.Type())})
	}
	e.catalog.Structs.Add(s)
	return ast.Descend
}

// visitEnum records enumerations. Member values are read in the
// signedness of the backing type.
func (e *Extractor) visitEnum(c ast.Cursor) ast.VisitResult {
	if c.Kind() != ast.CursorEnumDecl || c.IsInSystemHeader() {
		return ast.Descend
	}
	name := declName(c)
	if e.catalog.Enums.Contains(name) {
		return ast.Descend
	}

	backing := c.EnumIntegerType()
	en := Enum{
		Name:     name,
		Type:     e.typeRef(backing),
		Unsigned: strings.HasPrefix(backing.CanonicalType().Spelling(), "unsigned"),
	}
	for _, child := range c.Children() {
		if child.Kind() != ast.CursorEnumConstantDecl {
			continue
		}
		if en.Unsigned {
			en.Members = append(en.Members, model.NewUnsignedMember(child.Spelling(), child.EnumConstantUnsignedValue()))
		} else {
			en.Members = append(en.Members, model.NewSignedMember(child.Spelling(), child.EnumConstantValue()))
		}
	}
	e.catalog.Enums.Add(en)
	return ast.Descend
}

// visitTypedef records typedefs. A typedef that names an existing struct
// (typedef struct Foo Foo) is skipped, and pointers to prototypes are
// recorded as function pointers instead of typedefs.
func (e *Extractor) visitTypedef(c ast.Cursor) ast.VisitResult {
	if c.Kind() != ast.CursorTypedefDecl || c.IsInSystemHeader() {
		return ast.Skip
	}
	name := c.Spelling()
	if e.catalog.TypeDefs.Contains(name) || e.catalog.FunctionPointers.Contains(name) {
		return ast.Skip
	}
	if e.catalog.Structs.Contains(name) {
		return ast.Skip
	}

	underlying := c.TypedefUnderlyingType()
	if proto, ok := functionPointee(underlying); ok {
		fn := Function{Name: name, Return: e.typeRef(proto.ResultType())}
		fn.Params = e.params(c, "param#%d")
		e.catalog.FunctionPointers.Add(fn)
		return ast.Skip
	}

	e.catalog.TypeDefs.Add(TypeDef{Name: name, Type: e.typeRef(underlying)})
	return ast.Skip
}

// functionPointee returns the prototype t points to, if t is a pointer to a
// function prototype.
func functionPointee(t ast.Type) (ast.Type, bool) {
	if t == nil || t.Kind() != ast.TypePointer {
		return nil, false
	}
	pointee := t.PointeeType()
	if pointee == nil {
		return nil, false
	}
	if pointee.Kind() == ast.TypeFunctionProto {
		return pointee, true
	}
	if canon := pointee.CanonicalType(); canon != nil && canon.Kind() == ast.TypeFunctionProto {
		return canon, true
	}
	return nil, false
}

// visitFunction records function declarations. Bodies are never entered.
func (e *Extractor) visitFunction(c ast.Cursor) ast.VisitResult {
	if c.Kind() != ast.CursorFunctionDecl || c.IsInSystemHeader() {
		return ast.Skip
	}
	name := c.Spelling()
	if e.catalog.Functions.Contains(name) {
		return ast.Skip
	}

	fn := Function{Name: name, Return: e.typeRef(c.ResultType())}
	fn.Params = e.params(c, "param%d")
	e.catalog.Functions.Add(fn)
	return ast.Skip
}

// visitMacro reserves a pass for macros. It records nothing.
func (e *Extractor) visitMacro(ast.Cursor) ast.VisitResult {
	return ast.Skip
}

// params collects the immediate ParmDecl children of c. Unnamed parameters
// are named from format and their 1-based position.
func (e *Extractor) params(c ast.Cursor, format string) []Param {
	var params []Param
	for _, child := range c.Children() {
		if child.Kind() != ast.CursorParmDecl {
			continue
		}
		name := child.Spelling()
		if name == "" {
			name = fmt.Sprintf(format, len(params)+1)
		}
		params = append(params, Param{Name: name, Type: e.typeRef(child.Type())})
	}
	return params
}

// declName is the cursor spelling, or the type spelling for anonymous
// declarations.
func declName(c ast.Cursor) string {
	if name := c.Spelling(); name != "" {
		return name
	}
	if t := c.Type(); t != nil {
		return t.Spelling()
	}
	return ""
}

func (e *Extractor) typeRef(t ast.Type) TypeRef {
	p, mapped := classify(t)
	if !mapped {
		e.logger.Printf("classify: unmapped type kind %s (%s)", t.Kind(), t.Spelling())
	}
	ref := TypeRef{Primitive: p}
	if t != nil {
		ref.Name = t.Spelling()
		if p == model.PrimConstantArray {
			ref.ArrayLength = t.ArraySize()
		}
	}
	return ref
}
