package model

// Kind names an EntitySet within a Catalog. The string form doubles as the
// per-set export file stem.
type Kind string

const (
	KindEnum            Kind = "enums"
	KindStruct          Kind = "structs"
	KindFunction        Kind = "functions"
	KindTypeDef         Kind = "typedefs"
	KindFunctionPointer Kind = "functionpointers"
	KindMacro           Kind = "macros"
)

// Kinds lists every set in whole-catalog enumeration order.
var Kinds = []Kind{KindEnum, KindStruct, KindFunction, KindTypeDef, KindFunctionPointer, KindMacro}

// Catalog aggregates one EntitySet per declaration kind.
type Catalog struct {
	Enums            EntitySet[Enum]     `json:"enums" xml:"enums" yaml:"enums"`
	Structs          EntitySet[Struct]   `json:"structs" xml:"structs" yaml:"structs"`
	Functions        EntitySet[Function] `json:"functions" xml:"functions" yaml:"functions"`
	TypeDefs         EntitySet[TypeDef]  `json:"typedefs" xml:"typedefs" yaml:"typedefs"`
	FunctionPointers EntitySet[Function] `json:"functionPointers" xml:"functionPointers" yaml:"function_pointers"`
	Macros           EntitySet[Macro]    `json:"macros" xml:"macros" yaml:"macros"`
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

// Clear empties every set. Idempotent.
func (c *Catalog) Clear() {
	c.Enums.Clear()
	c.Structs.Clear()
	c.Functions.Clear()
	c.TypeDefs.Clear()
	c.FunctionPointers.Clear()
	c.Macros.Clear()
}

// Len is the total entity count across all sets.
func (c *Catalog) Len() int {
	return c.Enums.Len() + c.Structs.Len() + c.Functions.Len() +
		c.TypeDefs.Len() + c.FunctionPointers.Len() + c.Macros.Len()
}

// Entities concatenates all sets in the fixed order: enums, structs,
// functions, typedefs, function pointers, macros.
func (c *Catalog) Entities() []Named {
	all := make([]Named, 0, c.Len())
	for _, e := range c.Enums.Items {
		all = append(all, e)
	}
	for _, s := range c.Structs.Items {
		all = append(all, s)
	}
	for _, f := range c.Functions.Items {
		all = append(all, f)
	}
	for _, t := range c.TypeDefs.Items {
		all = append(all, t)
	}
	for _, f := range c.FunctionPointers.Items {
		all = append(all, f)
	}
	for _, m := range c.Macros.Items {
		all = append(all, m)
	}
	return all
}

// Set returns the set for kind as an untyped value, for callers that export
// sets individually. It returns nil for unknown kinds.
func (c *Catalog) Set(kind Kind) any {
	switch kind {
	case KindEnum:
		return &c.Enums
	case KindStruct:
		return &c.Structs
	case KindFunction:
		return &c.Functions
	case KindTypeDef:
		return &c.TypeDefs
	case KindFunctionPointer:
		return &c.FunctionPointers
	case KindMacro:
		return &c.Macros
	}
	return nil
}

// SetLen returns the number of entities in the set for kind.
func (c *Catalog) SetLen(kind Kind) int {
	switch kind {
	case KindEnum:
		return c.Enums.Len()
	case KindStruct:
		return c.Structs.Len()
	case KindFunction:
		return c.Functions.Len()
	case KindTypeDef:
		return c.TypeDefs.Len()
	case KindFunctionPointer:
		return c.FunctionPointers.Len()
	case KindMacro:
		return c.Macros.Len()
	}
	return 0
}
