package cfront

import (
	"regexp"
	"strings"
)

// enumBase matches the fixed underlying type of an enum definition. The
// grammar only accepts a single primitive token after the colon, so
// "enum E : unsigned char {" or a typedef name there is a syntax error.
var enumBase = regexp.MustCompile(`\benum\b(?:\s+[A-Za-z_]\w*)?\s*(:[^{};]*)\{`)

// stripEnumBases blanks every enum base out of src before parsing. Byte
// offsets and line breaks are kept, so node positions still point into the
// original text. The base type text is returned keyed by the offset of its
// enum keyword, which is where the enum_specifier node starts.
func stripEnumBases(src []byte) ([]byte, map[uint32]string) {
	matches := enumBase.FindAllSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, nil
	}
	out := append([]byte(nil), src...)
	bases := make(map[uint32]string, len(matches))
	for _, m := range matches {
		start, end := m[2], m[3]
		bases[uint32(m[0])] = strings.TrimSpace(string(src[start+1 : end]))
		for i := start; i < end; i++ {
			if out[i] != '\n' && out[i] != '\r' {
				out[i] = ' '
			}
		}
	}
	return out, bases
}

// baseType resolves the text of an enum base: sign and size keywords,
// a builtin name or a typedef. Qualifiers are dropped.
func (b *builder) baseType(text string) *ctype {
	var unsigned, signed, short bool
	var longs int
	var base string
	for _, w := range strings.Fields(text) {
		switch w {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "short":
			short = true
		case "long":
			longs++
		case "const", "volatile":
		default:
			if base != "" {
				return unexposed(text)
			}
			base = w
		}
	}
	if !unsigned && !signed && !short && longs == 0 {
		if base == "" {
			return unexposed(text)
		}
		return b.named(base)
	}
	return sizedType(unsigned, signed, short, longs, base)
}
