package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jward/cdecl"
	"github.com/jward/cdecl/internal/model"
)

// formatSummaryText prints one line per set with its entity count.
func formatSummaryText(w io.Writer, cat *cdecl.Catalog) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tCOUNT")
	for _, kind := range model.Kinds {
		fmt.Fprintf(tw, "%s\t%d\n", kind, cat.SetLen(kind))
	}
	tw.Flush()
}

// formatEntitiesText prints every entity as aligned columns. An empty kind
// lists all sets.
func formatEntitiesText(w io.Writer, cat *cdecl.Catalog, kind cdecl.Kind) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tNAME\tTYPE\tDETAIL")
	for _, k := range model.Kinds {
		if kind != "" && k != kind {
			continue
		}
		switch k {
		case model.KindEnum:
			for _, e := range cat.Enums.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k, e.Name, typeText(e.Type), enumDetail(e))
			}
		case model.KindStruct:
			for _, s := range cat.Structs.Items {
				fields := make([]string, 0, len(s.Fields))
				for _, f := range s.Fields {
					fields = append(fields, f.Name+" "+typeText(f.Type))
				}
				fmt.Fprintf(tw, "%s\t%s\t\t{%s}\n", k, s.Name, strings.Join(fields, "; "))
			}
		case model.KindFunction:
			for _, f := range cat.Functions.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t(%s)\n", k, f.Name, typeText(f.Return), paramsText(f.Params))
			}
		case model.KindTypeDef:
			for _, t := range cat.TypeDefs.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", k, t.Name, typeText(t.Type))
			}
		case model.KindFunctionPointer:
			for _, f := range cat.FunctionPointers.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t(%s)\n", k, f.Name, typeText(f.Return), paramsText(f.Params))
			}
		case model.KindMacro:
			for _, m := range cat.Macros.Items {
				fmt.Fprintf(tw, "%s\t%s\t\t\n", k, m.Name)
			}
		}
	}
	tw.Flush()
}

func typeText(t cdecl.TypeRef) string {
	if t.ArrayLength > 0 {
		return fmt.Sprintf("%s [%s %d]", t.Name, t.Primitive, t.ArrayLength)
	}
	return fmt.Sprintf("%s [%s]", t.Name, t.Primitive)
}

func paramsText(params []cdecl.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Name+" "+typeText(p.Type))
	}
	return strings.Join(parts, ", ")
}

func enumDetail(e cdecl.Enum) string {
	parts := make([]string, 0, len(e.Members))
	for _, m := range e.Members {
		parts = append(parts, m.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// validateKind checks that the --kind flag value names a set.
func validateKind(kind string) error {
	if kind == "" {
		return nil
	}
	names := make([]string, 0, len(model.Kinds))
	for _, k := range model.Kinds {
		if string(k) == kind {
			return nil
		}
		names = append(names, string(k))
	}
	return fmt.Errorf("invalid kind %q: must be one of %s", kind, strings.Join(names, ", "))
}
