package cdecl

import "github.com/jward/cdecl/internal/model"

// Public type aliases for the entity model. These are Go type aliases (=),
// identical to the internal types at compile time, so callers need no
// conversion.

type Catalog = model.Catalog
type PrimitiveType = model.PrimitiveType
type TypeRef = model.TypeRef
type Enum = model.Enum
type EnumMember = model.EnumMember
type Struct = model.Struct
type Field = model.Field
type Function = model.Function
type Param = model.Param
type TypeDef = model.TypeDef
type Macro = model.Macro
type Kind = model.Kind

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog { return model.NewCatalog() }

// Primitive categories.
const (
	PrimInvalid       = model.PrimInvalid
	PrimVoid          = model.PrimVoid
	PrimPointer       = model.PrimPointer
	PrimBoolean       = model.PrimBoolean
	PrimInt8          = model.PrimInt8
	PrimInt16         = model.PrimInt16
	PrimInt32         = model.PrimInt32
	PrimInt64         = model.PrimInt64
	PrimInt128        = model.PrimInt128
	PrimUInt8         = model.PrimUInt8
	PrimUInt16        = model.PrimUInt16
	PrimUInt32        = model.PrimUInt32
	PrimUInt64        = model.PrimUInt64
	PrimUInt128       = model.PrimUInt128
	PrimFloat16       = model.PrimFloat16
	PrimFloat32       = model.PrimFloat32
	PrimFloat64       = model.PrimFloat64
	PrimFloat128      = model.PrimFloat128
	PrimConstantArray = model.PrimConstantArray
	PrimMacro         = model.PrimMacro
	PrimEnum          = model.PrimEnum
	PrimStruct        = model.PrimStruct
	PrimFunction      = model.PrimFunction
	PrimTypeDef       = model.PrimTypeDef
)

// Set kinds, which double as per-set export file stems.
const (
	KindEnum            = model.KindEnum
	KindStruct          = model.KindStruct
	KindFunction        = model.KindFunction
	KindTypeDef         = model.KindTypeDef
	KindFunctionPointer = model.KindFunctionPointer
	KindMacro           = model.KindMacro
)
