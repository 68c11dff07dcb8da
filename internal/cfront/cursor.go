package cfront

import "github.com/jward/cdecl/internal/ast"

type cursor struct {
	kind       ast.CursorKind
	spelling   string
	typ        *ctype
	system     bool
	children   []*cursor
	result     *ctype
	underlying *ctype
	intType    *ctype
	value      int64
	comment    string
}

var _ ast.Cursor = (*cursor)(nil)

func (c *cursor) add(children ...*cursor) {
	c.children = append(c.children, children...)
}

func (c *cursor) Kind() ast.CursorKind   { return c.kind }
func (c *cursor) Spelling() string       { return c.spelling }
func (c *cursor) IsInSystemHeader() bool { return c.system }
func (c *cursor) RawComment() string     { return c.comment }

func (c *cursor) Type() ast.Type                  { return orInvalid(c.typ) }
func (c *cursor) ResultType() ast.Type            { return orInvalid(c.result) }
func (c *cursor) TypedefUnderlyingType() ast.Type { return orInvalid(c.underlying) }
func (c *cursor) EnumIntegerType() ast.Type       { return orInvalid(c.intType) }

func (c *cursor) EnumConstantValue() int64 { return c.value }

// EnumConstantUnsignedValue reinterprets the stored value, as a compiler
// does for enumerators of an unsigned enum.
func (c *cursor) EnumConstantUnsignedValue() uint64 { return uint64(c.value) }

func (c *cursor) Children() []ast.Cursor {
	out := make([]ast.Cursor, len(c.children))
	for i, child := range c.children {
		out[i] = child
	}
	return out
}

func orInvalid(t *ctype) ast.Type {
	if t == nil {
		return invalidType
	}
	return t
}
