// Package cdecl extracts the top-level declarations of C source files into a
// flat, serializable catalog of structs, enums, functions, typedefs and
// function-pointer typedefs.
//
// # Pipeline
//
// An [Extractor] parses each configured file through a parsing frontend
// (by default the tree-sitter frontend in internal/cfront) and runs five
// depth-first passes over the resulting AST:
//
//  1. Structs: struct, union and class definitions with their fields.
//  2. Enums: enumerations with their backing type and member values.
//  3. Typedefs: plain aliases, and function-pointer typedefs, which are
//     recorded as functions in their own set.
//  4. Functions: function declarations and definitions with their parameters.
//  5. Macros: reserved; the macro set is always empty.
//
// Every type is reduced to a [PrimitiveType] by [Classify]. Declarations
// that come from system headers are never recorded, and each set holds at
// most one entity per name.
//
// # Usage
//
//	x := cdecl.New(
//		cdecl.WithFiles("api.h"),
//		cdecl.WithArgs("-I", "include", "-DAPI_EXPORT"),
//	)
//	cat, err := x.Run(ctx)
//	if err != nil { ... }
//	cdecl.ExportCatalog(cat, "api.json", cdecl.FormatJSON)
//
// A failing parse stops the run with a [*ParseError] carrying the raw
// diagnostic text. Entities extracted from earlier files stay in
// [Extractor.Catalog].
//
// # Export
//
// [ExportCatalog] writes the whole catalog to one file and [ExportSets]
// writes one file per non-empty set, in JSON, XML, YAML or gob. [SaveSQLite]
// and [LoadSQLite] persist a catalog to a SQLite database.
package cdecl
