package store

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/jward/cdecl/internal/model"
)

// CatalogHash computes a deterministic hash of a catalog's contents.
// Set order is part of the identity: the same entities in a different
// order hash differently.
func CatalogHash(c *model.Catalog) string {
	h := sha256.New()

	for _, e := range c.Enums.Items {
		fmt.Fprintf(h, "enum:%s:%s:%v\n", e.Name, typeKey(e.Type), e.Unsigned)
		for _, m := range e.Members {
			fmt.Fprintf(h, "enumerator:%s\n", m)
		}
	}
	for _, s := range c.Structs.Items {
		fmt.Fprintf(h, "struct:%s\n", s.Name)
		for _, f := range s.Fields {
			fmt.Fprintf(h, "field:%s:%s\n", f.Name, typeKey(f.Type))
		}
	}
	hashFunctions(h, "function", c.Functions.Items)
	for _, td := range c.TypeDefs.Items {
		fmt.Fprintf(h, "typedef:%s:%s\n", td.Name, typeKey(td.Type))
	}
	hashFunctions(h, "functionpointer", c.FunctionPointers.Items)
	for _, m := range c.Macros.Items {
		fmt.Fprintf(h, "macro:%s\n", m.Name)
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}

func hashFunctions(w io.Writer, label string, fns []model.Function) {
	for _, fn := range fns {
		fmt.Fprintf(w, "%s:%s:%s\n", label, fn.Name, typeKey(fn.Return))
		for _, p := range fn.Params {
			fmt.Fprintf(w, "param:%s:%s\n", p.Name, typeKey(p.Type))
		}
	}
}

func typeKey(t model.TypeRef) string {
	return fmt.Sprintf("%s/%s/%d", t.Name, t.Primitive, t.ArrayLength)
}
