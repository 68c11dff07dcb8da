package cfront

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// resolver maps an identifier in a constant expression to its value.
type resolver func(name string) (int64, bool)

// eval folds an integer constant expression. It reports false for anything
// it cannot fold: sizeof, calls, non-integer literals, division by zero.
func (b *builder) eval(f *srcFile, n *sitter.Node, resolve resolver) (int64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.Type() {
	case "number_literal":
		return parseIntLiteral(n.Content(f.src))
	case "char_literal":
		return parseCharLiteral(n.Content(f.src))
	case "identifier":
		return resolve(n.Content(f.src))
	case "true":
		return 1, true
	case "false":
		return 0, true
	case "parenthesized_expression":
		return b.eval(f, firstNamed(n), resolve)
	case "cast_expression":
		return b.eval(f, n.ChildByFieldName("value"), resolve)
	case "preproc_defined":
		id := firstNamed(n)
		if id == nil {
			return 0, false
		}
		if _, ok := b.opts.macros[id.Content(f.src)]; ok {
			return 1, true
		}
		return 0, true
	case "unary_expression":
		v, ok := b.eval(f, n.ChildByFieldName("argument"), resolve)
		if !ok {
			return 0, false
		}
		return unary(fieldText(f, n, "operator"), v)
	case "binary_expression":
		l, ok := b.eval(f, n.ChildByFieldName("left"), resolve)
		if !ok {
			return 0, false
		}
		r, ok := b.eval(f, n.ChildByFieldName("right"), resolve)
		if !ok {
			return 0, false
		}
		return binary(fieldText(f, n, "operator"), l, r)
	case "conditional_expression":
		c, ok := b.eval(f, n.ChildByFieldName("condition"), resolve)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return b.eval(f, n.ChildByFieldName("consequence"), resolve)
		}
		return b.eval(f, n.ChildByFieldName("alternative"), resolve)
	}
	return 0, false
}

func unary(op string, v int64) (int64, bool) {
	switch op {
	case "-":
		return -v, true
	case "+":
		return v, true
	case "~":
		return ^v, true
	case "!":
		return boolInt(v == 0), true
	}
	return 0, false
}

func binary(op string, l, r int64) (int64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case "%":
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case "<<":
		if r < 0 || r > 63 {
			return 0, false
		}
		return l << uint(r), true
	case ">>":
		if r < 0 || r > 63 {
			return 0, false
		}
		return l >> uint(r), true
	case "&":
		return l & r, true
	case "|":
		return l | r, true
	case "^":
		return l ^ r, true
	case "&&":
		return boolInt(l != 0 && r != 0), true
	case "||":
		return boolInt(l != 0 || r != 0), true
	case "==":
		return boolInt(l == r), true
	case "!=":
		return boolInt(l != r), true
	case "<":
		return boolInt(l < r), true
	case ">":
		return boolInt(l > r), true
	case "<=":
		return boolInt(l <= r), true
	case ">=":
		return boolInt(l >= r), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// parseIntLiteral reads a C integer literal: decimal, octal, hex or binary,
// with any combination of u/l suffixes. Values above the int64 range wrap.
func parseIntLiteral(s string) (int64, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), "uUlL")
	s = strings.ReplaceAll(s, "'", "")
	if s == "" {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9' {
		s = "0o" + s[1:]
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, true
	}
	if v, err := strconv.ParseUint(s, 0, 64); err == nil {
		return int64(v), true
	}
	return 0, false
}

// parseCharLiteral reads a character constant such as 'a', '\n' or
// L'\x41'. Only the first character of a multi-character constant counts.
func parseCharLiteral(s string) (int64, bool) {
	s = strings.TrimLeft(strings.TrimSpace(s), "LuU8")
	if len(s) < 3 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return 0, false
	}
	r, _, _, err := strconv.UnquoteChar(s[1:len(s)-1], '\'')
	if err != nil {
		return 0, false
	}
	return int64(r), true
}

// macroValue folds the replacement text of an object-like macro when it is
// a plain literal, a parenthesised literal or an alias of another macro.
func (b *builder) macroValue(name string, depth int) (int64, bool) {
	text, ok := b.opts.macros[name]
	if !ok || depth > 8 {
		return 0, false
	}
	text = strings.TrimSpace(text)
	for strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	neg := false
	if strings.HasPrefix(text, "-") {
		neg = true
		text = strings.TrimSpace(text[1:])
	}
	v, ok := parseIntLiteral(text)
	if !ok {
		v, ok = parseCharLiteral(text)
	}
	if !ok && isIdentifier(text) {
		v, ok = b.macroValue(text, depth+1)
	}
	if !ok {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// enumIdent resolves identifiers inside enumerator values and array bounds:
// earlier enumerators first, then macros.
func (b *builder) enumIdent(name string) (int64, bool) {
	if v, ok := b.consts[name]; ok {
		return v, true
	}
	return b.macroValue(name, 0)
}

// condIdent resolves identifiers inside #if conditions. Undefined names
// are zero.
func (b *builder) condIdent(name string) (int64, bool) {
	if _, ok := b.opts.macros[name]; !ok {
		return 0, true
	}
	return b.macroValue(name, 0)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
