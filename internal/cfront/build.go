package cfront

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cdecl/internal/ast"
)

// srcFile is one file being expanded into a translation unit.
type srcFile struct {
	path      string
	dir       string
	src       []byte
	system    bool
	enumBases map[uint32]string
}

// builder turns tree-sitter trees into a clang-shaped cursor tree.
// Declarations are produced in source order with includes expanded in
// place. Record and enum definitions come before the declaration that
// introduced them; nested definitions are children of the enclosing record.
type builder struct {
	ctx      context.Context
	opts     options
	comments bool
	parser   *sitter.Parser

	root     *cursor
	diags    []ast.Diagnostic
	expanded map[string]bool
	typedefs map[string]*ctype
	consts   map[string]int64
}

func newBuilder(ctx context.Context, opts options, parseOpts ast.ParseOptions) *builder {
	return &builder{
		ctx:      ctx,
		opts:     opts,
		comments: parseOpts.IncludeComments,
		root:     &cursor{kind: ast.CursorTranslationUnit},
		expanded: make(map[string]bool),
		typedefs: make(map[string]*ctype),
		consts:   make(map[string]int64),
	}
}

// build expands the main file and reports the overall outcome.
func (b *builder) build(path string) ast.ErrorCode {
	b.parser = sitter.NewParser()
	defer b.parser.Close()
	b.parser.SetLanguage(Language())

	if err := b.file(path, false); err != nil {
		b.diags = append(b.diags, ast.Diagnostic{
			Severity: ast.SeverityFatal,
			File:     path,
			Message:  err.Error(),
		})
		return ast.ErrorFailure
	}
	for _, d := range b.diags {
		if d.Severity >= ast.SeverityError {
			return ast.ErrorFailure
		}
	}
	return ast.ErrorSuccess
}

// file parses one file and appends its declarations to the root.
func (b *builder) file(path string, system bool) error {
	if err := b.ctx.Err(); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot open file '%s': %w", path, err)
	}
	b.expanded[fileKey(path)] = true
	src, bases := stripEnumBases(src)

	tree, err := b.parser.ParseCtx(b.ctx, nil, src)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	f := &srcFile{path: path, dir: filepath.Dir(path), src: src, system: system, enumBases: bases}
	b.items(f, tree.RootNode(), func(n *sitter.Node, doc string) {
		b.topLevel(f, n, b.root, doc)
	})
	return nil
}

func fileKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// items calls fn for each active child of a container node, expanding
// conditional blocks in place. When comments are kept, the comment that
// immediately precedes an item is passed along with it.
func (b *builder) items(f *srcFile, n *sitter.Node, fn func(n *sitter.Node, doc string)) {
	var doc string
	var docEnd uint32
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		switch n.FieldNameForChild(i) {
		case "name", "condition", "alternative":
			continue
		}

		switch child.Type() {
		case "comment":
			if b.comments {
				doc = child.Content(f.src)
				docEnd = child.EndPoint().Row
			}
			continue
		case "preproc_ifdef", "preproc_if":
			b.conditional(f, child, fn)
		default:
			attached := ""
			if doc != "" && child.StartPoint().Row <= docEnd+1 {
				attached = doc
			}
			fn(child, attached)
		}
		doc = ""
	}
}

// conditional picks the active branch of an #if/#ifdef chain. Conditions
// that cannot be evaluated select their own branch.
func (b *builder) conditional(f *srcFile, n *sitter.Node, fn func(*sitter.Node, string)) {
	for n != nil {
		var taken bool
		switch n.Type() {
		case "preproc_else":
			b.items(f, n, fn)
			return
		case "preproc_ifdef", "preproc_elifdef":
			_, defined := b.opts.macros[fieldText(f, n, "name")]
			negate := false
			if kw := n.Child(0); kw != nil {
				negate = strings.HasSuffix(kw.Type(), "ndef")
			}
			taken = defined != negate
		case "preproc_if", "preproc_elif":
			v, ok := b.eval(f, n.ChildByFieldName("condition"), b.condIdent)
			taken = !ok || v != 0
		default:
			return
		}
		if taken {
			b.items(f, n, fn)
			return
		}
		n = n.ChildByFieldName("alternative")
	}
}

func (b *builder) topLevel(f *srcFile, n *sitter.Node, parent *cursor, doc string) {
	switch n.Type() {
	case "preproc_def", "preproc_function_def":
		name := b.define(f, n)
		parent.add(&cursor{kind: ast.CursorMacroDefinition, spelling: name, system: f.system, comment: doc})
	case "preproc_call":
		b.directive(f, n)
	case "preproc_include":
		b.include(f, n, parent)
	case "linkage_specification":
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		if body.Type() == "declaration_list" {
			b.items(f, body, func(c *sitter.Node, d string) {
				b.topLevel(f, c, parent, d)
			})
			return
		}
		b.topLevel(f, body, parent, doc)
	case "declaration", "type_definition", "function_definition",
		"struct_specifier", "union_specifier", "enum_specifier":
		if n.HasError() {
			b.syntaxError(f, n)
			return
		}
		b.declaration(f, n, parent, doc)
	default:
		if n.Type() == "ERROR" || n.HasError() {
			b.syntaxError(f, n)
		}
	}
}

// define records a #define and returns the macro name.
func (b *builder) define(f *srcFile, n *sitter.Node) string {
	name := fieldText(f, n, "name")
	value := ""
	if n.Type() == "preproc_def" {
		value = strings.TrimSpace(fieldText(f, n, "value"))
	}
	b.opts.macros[name] = value
	return name
}

// directive handles the preprocessor lines the grammar leaves generic.
func (b *builder) directive(f *srcFile, n *sitter.Node) {
	arg := strings.TrimSpace(fieldText(f, n, "argument"))
	switch strings.TrimSpace(fieldText(f, n, "directive")) {
	case "#undef":
		if fields := strings.Fields(arg); len(fields) > 0 {
			delete(b.opts.macros, fields[0])
		}
	case "#error":
		b.report(ast.SeverityError, f, n, "#error %s", arg)
	case "#warning":
		b.report(ast.SeverityWarning, f, n, "#warning %s", arg)
	}
}

func (b *builder) include(f *srcFile, n *sitter.Node, parent *cursor) {
	p := n.ChildByFieldName("path")
	if p == nil {
		return
	}
	var angled bool
	switch p.Type() {
	case "system_lib_string":
		angled = true
	case "string_literal":
	default:
		b.report(ast.SeverityWarning, f, n, "computed include '%s' ignored", p.Content(f.src))
		return
	}
	name := strings.Trim(p.Content(f.src), `"<>`)
	parent.add(&cursor{kind: ast.CursorInclusionDirective, spelling: name, system: f.system})

	resolved, system, ok := b.opts.resolve(name, f, angled)
	if !ok {
		b.report(ast.SeverityWarning, f, n, "'%s' file not found", name)
		return
	}
	if b.expanded[fileKey(resolved)] {
		return
	}
	if err := b.file(resolved, system); err != nil {
		b.report(ast.SeverityWarning, f, n, "%v", err)
	}
}

// declaration handles everything that can introduce names at file scope.
func (b *builder) declaration(f *srcFile, n *sitter.Node, parent *cursor, doc string) {
	switch n.Type() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		b.specifier(f, n, parent, "", doc)
		return
	}

	decls := fieldChildren(n, "declarator")
	anonName := ""
	if n.Type() == "type_definition" && len(decls) > 0 && decls[0].Type() == "type_identifier" {
		anonName = decls[0].Content(f.src)
	}
	base := b.specifier(f, n.ChildByFieldName("type"), parent, anonName, doc)
	base = qualify(base, qualifiers(f, n))

	for _, dn := range decls {
		d := b.declare(f, base, dn)
		switch {
		case n.Type() == "type_definition":
			t := typedefType(d.name, d.typ)
			b.typedefs[d.name] = t
			c := &cursor{
				kind:       ast.CursorTypedefDecl,
				spelling:   d.name,
				typ:        t,
				underlying: d.typ,
				system:     f.system,
				comment:    doc,
			}
			c.add(b.paramCursors(f, d)...)
			parent.add(c)
		case d.typ.isFunction():
			c := &cursor{
				kind:     ast.CursorFunctionDecl,
				spelling: d.name,
				typ:      d.typ,
				result:   d.typ.result,
				system:   f.system,
				comment:  doc,
			}
			c.add(b.paramCursors(f, d)...)
			parent.add(c)
		default:
			parent.add(&cursor{kind: ast.CursorVarDecl, spelling: d.name, typ: d.typ, system: f.system, comment: doc})
		}
	}
}

func (b *builder) paramCursors(f *srcFile, d declarator) []*cursor {
	var out []*cursor
	for _, p := range d.params {
		out = append(out, &cursor{kind: ast.CursorParmDecl, spelling: p.name, typ: p.typ, system: f.system})
	}
	return out
}

// specifier resolves a type specifier. Record and enum definitions are
// added to parent as a side effect. anonName names an anonymous record
// defined directly in a typedef.
func (b *builder) specifier(f *srcFile, n *sitter.Node, parent *cursor, anonName, doc string) *ctype {
	if n == nil {
		return builtin(ast.TypeInt, "int")
	}
	text := n.Content(f.src)
	switch n.Type() {
	case "primitive_type", "type_identifier":
		return b.named(text)
	case "sized_type_specifier":
		return b.sized(f, n)
	case "struct_specifier", "union_specifier":
		return b.record(f, n, parent, anonName, doc)
	case "enum_specifier":
		return b.enum(f, n, parent, anonName, doc)
	}
	return unexposed(text)
}

// named resolves a single-word type name. User typedefs shadow the
// library names the grammar treats as keywords.
func (b *builder) named(name string) *ctype {
	if t, ok := b.typedefs[name]; ok {
		return t
	}
	if s, ok := stdTypedefs[name]; ok {
		return typedefType(name, builtin(s.kind, s.name))
	}
	if s, ok := keywordTypes[name]; ok {
		return builtin(s.kind, s.name)
	}
	return unexposed(name)
}

func (b *builder) sized(f *srcFile, n *sitter.Node) *ctype {
	var unsigned, signed, short bool
	var longs int
	var base string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "short":
			short = true
		case "long":
			longs++
		case "primitive_type", "type_identifier":
			base = c.Content(f.src)
		}
	}
	return sizedType(unsigned, signed, short, longs, base)
}

func (b *builder) record(f *srcFile, n *sitter.Node, parent *cursor, anonName, doc string) *ctype {
	keyword, kind := "struct", ast.CursorStructDecl
	if n.Type() == "union_specifier" {
		keyword, kind = "union", ast.CursorUnionDecl
	}
	tag := fieldText(f, n, "name")

	var spelling string
	switch {
	case tag != "":
		spelling = keyword + " " + tag
	case anonName != "":
		spelling = anonName
	default:
		p := n.StartPoint()
		spelling = fmt.Sprintf("%s (anonymous at %s:%d:%d)", keyword, f.path, p.Row+1, p.Column+1)
	}
	t := recordType(spelling)

	body := n.ChildByFieldName("body")
	if body == nil {
		return t
	}
	decl := &cursor{kind: kind, spelling: tag, typ: t, system: f.system, comment: doc}
	parent.add(decl)

	b.items(f, body, func(c *sitter.Node, fieldDoc string) {
		switch c.Type() {
		case "field_declaration":
			if c.HasError() {
				b.syntaxError(f, c)
				return
			}
			b.field(f, c, decl, fieldDoc)
		case "preproc_def", "preproc_function_def":
			b.define(f, c)
		case "preproc_call":
			b.directive(f, c)
		case "ERROR":
			b.syntaxError(f, c)
		}
	})
	return t
}

func (b *builder) field(f *srcFile, n *sitter.Node, decl *cursor, doc string) {
	base := b.specifier(f, n.ChildByFieldName("type"), decl, "", "")
	base = qualify(base, qualifiers(f, n))
	for _, dn := range fieldChildren(n, "declarator") {
		d := b.declare(f, base, dn)
		decl.add(&cursor{kind: ast.CursorFieldDecl, spelling: d.name, typ: d.typ, system: f.system, comment: doc})
	}
}

func (b *builder) enum(f *srcFile, n *sitter.Node, parent *cursor, anonName, doc string) *ctype {
	tag := fieldText(f, n, "name")

	var spelling string
	switch {
	case tag != "":
		spelling = "enum " + tag
	case anonName != "":
		spelling = anonName
	default:
		p := n.StartPoint()
		spelling = fmt.Sprintf("enum (anonymous at %s:%d:%d)", f.path, p.Row+1, p.Column+1)
	}
	t := enumType(spelling)

	body := n.ChildByFieldName("body")
	if body == nil {
		return t
	}
	decl := &cursor{kind: ast.CursorEnumDecl, spelling: tag, typ: t, system: f.system, comment: doc}
	parent.add(decl)

	next := int64(0)
	negative := false
	b.items(f, body, func(c *sitter.Node, memberDoc string) {
		switch c.Type() {
		case "enumerator":
		case "preproc_def", "preproc_function_def":
			b.define(f, c)
			return
		case "preproc_call":
			b.directive(f, c)
			return
		case "ERROR":
			b.syntaxError(f, c)
			return
		default:
			return
		}

		name := fieldText(f, c, "name")
		v := next
		if expr := c.ChildByFieldName("value"); expr != nil {
			if x, ok := b.eval(f, expr, b.enumIdent); ok {
				v = x
			} else {
				b.report(ast.SeverityWarning, f, expr, "cannot evaluate value of enumerator '%s'; using %d", name, v)
			}
		}
		next = v + 1
		if v < 0 {
			negative = true
		}
		b.consts[name] = v
		decl.add(&cursor{kind: ast.CursorEnumConstantDecl, spelling: name, typ: t, value: v, system: f.system, comment: memberDoc})
	})

	switch base, fixed := f.enumBases[n.StartByte()]; {
	case fixed:
		decl.intType = b.baseType(base)
	case negative:
		decl.intType = builtin(ast.TypeInt, "int")
	default:
		decl.intType = builtin(ast.TypeUInt, "unsigned int")
	}
	return t
}

type param struct {
	name string
	typ  *ctype
}

// declarator is the result of applying a declarator to a base type. params
// belong to the function declarator nearest the declared name.
type declarator struct {
	name      string
	typ       *ctype
	params    []param
	hasParams bool
}

// declare applies declarator d to base, inside out.
func (b *builder) declare(f *srcFile, base *ctype, d *sitter.Node) declarator {
	if d == nil {
		return declarator{typ: base}
	}
	switch d.Type() {
	case "identifier", "field_identifier", "type_identifier", "primitive_type":
		return declarator{name: d.Content(f.src), typ: base}
	case "pointer_declarator", "abstract_pointer_declarator":
		t := qualify(pointerTo(base), qualifiers(f, d))
		return b.declare(f, t, d.ChildByFieldName("declarator"))
	case "array_declarator", "abstract_array_declarator":
		return b.declare(f, b.array(f, base, d.ChildByFieldName("size")), d.ChildByFieldName("declarator"))
	case "function_declarator", "abstract_function_declarator":
		params, variadic, proto := b.parameters(f, d.ChildByFieldName("parameters"))
		types := make([]*ctype, len(params))
		for i, p := range params {
			types[i] = p.typ
		}
		out := b.declare(f, functionType(base, types, variadic, proto), d.ChildByFieldName("declarator"))
		if !out.hasParams {
			out.params, out.hasParams = params, true
		}
		return out
	case "parenthesized_declarator", "abstract_parenthesized_declarator":
		return b.declare(f, base, firstNamed(d))
	case "init_declarator", "attributed_declarator":
		return b.declare(f, base, d.ChildByFieldName("declarator"))
	}
	return declarator{typ: base}
}

func (b *builder) array(f *srcFile, elem *ctype, size *sitter.Node) *ctype {
	if size == nil {
		return incompleteArray(elem)
	}
	if n, ok := b.eval(f, size, b.enumIdent); ok {
		return constantArray(elem, n)
	}
	return variableArray(elem, size.Content(f.src))
}

// parameters reads a parameter list. "(void)" is an empty prototype and
// "()" has no prototype.
func (b *builder) parameters(f *srcFile, list *sitter.Node) ([]param, bool, bool) {
	if list == nil {
		return nil, false, false
	}
	var params []param
	var variadic bool
	sink := &cursor{}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		switch c.Type() {
		case "parameter_declaration":
			base := b.specifier(f, c.ChildByFieldName("type"), sink, "", "")
			base = qualify(base, qualifiers(f, c))
			d := b.declare(f, base, c.ChildByFieldName("declarator"))
			params = append(params, param{name: d.name, typ: d.typ})
		case "variadic_parameter":
			variadic = true
		}
	}
	if len(params) == 1 && params[0].name == "" && params[0].typ.kind == ast.TypeVoid {
		return nil, variadic, true
	}
	return params, variadic, len(params) > 0 || variadic
}

func (b *builder) syntaxError(f *srcFile, n *sitter.Node) {
	at := firstError(n)
	if at == nil {
		at = n
	}
	if at.IsMissing() {
		b.report(ast.SeverityError, f, at, "expected '%s'", at.Type())
		return
	}
	snippet, _, _ := strings.Cut(at.Content(f.src), "\n")
	if len(snippet) > 32 {
		snippet = snippet[:32]
	}
	b.report(ast.SeverityError, f, at, "unexpected '%s'", strings.TrimSpace(snippet))
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsMissing()) {
			continue
		}
		if e := firstError(c); e != nil {
			return e
		}
	}
	return nil
}

func (b *builder) report(sev ast.Severity, f *srcFile, n *sitter.Node, format string, args ...any) {
	d := ast.Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...)}
	if f != nil {
		d.File = f.path
	}
	if n != nil {
		p := n.StartPoint()
		d.Line = int(p.Row) + 1
		d.Column = int(p.Column) + 1
	}
	b.diags = append(b.diags, d)
}

func fieldText(f *srcFile, n *sitter.Node, field string) string {
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return c.Content(f.src)
}

// fieldChildren returns every child stored under field, in order.
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "comment" {
			return c
		}
	}
	return nil
}

func qualifiers(f *srcFile, n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "type_qualifier" {
			out = append(out, c.Content(f.src))
		}
	}
	return out
}
