package model

// PrimitiveType is the canonical reduced category of a declared C type.
// The set is closed; PrimInvalid is the fallback for anything unmapped.
type PrimitiveType int

const (
	PrimInvalid PrimitiveType = iota
	PrimVoid
	PrimPointer
	PrimBoolean
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimInt128
	PrimUInt8
	PrimUInt16
	PrimUInt32
	PrimUInt64
	PrimUInt128
	PrimFloat16
	PrimFloat32
	PrimFloat64
	PrimFloat128
	PrimConstantArray
	PrimMacro
	PrimEnum
	PrimStruct
	PrimFunction
	PrimTypeDef
)

var primitiveNames = [...]string{
	PrimInvalid:       "Invalid",
	PrimVoid:          "Void",
	PrimPointer:       "Pointer",
	PrimBoolean:       "Boolean",
	PrimInt8:          "Int8",
	PrimInt16:         "Int16",
	PrimInt32:         "Int32",
	PrimInt64:         "Int64",
	PrimInt128:        "Int128",
	PrimUInt8:         "UInt8",
	PrimUInt16:        "UInt16",
	PrimUInt32:        "UInt32",
	PrimUInt64:        "UInt64",
	PrimUInt128:       "UInt128",
	PrimFloat16:       "Float16",
	PrimFloat32:       "Float32",
	PrimFloat64:       "Float64",
	PrimFloat128:      "Float128",
	PrimConstantArray: "ConstantArray",
	PrimMacro:         "Macro",
	PrimEnum:          "Enum",
	PrimStruct:        "Struct",
	PrimFunction:      "Function",
	PrimTypeDef:       "TypeDef",
}

// String returns the variant name, or "Invalid" for out-of-range values.
func (p PrimitiveType) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return primitiveNames[PrimInvalid]
	}
	return primitiveNames[p]
}

// ParsePrimitiveType maps a variant name back to its value. Unknown names
// yield PrimInvalid.
func ParsePrimitiveType(s string) PrimitiveType {
	for i, name := range primitiveNames {
		if name == s {
			return PrimitiveType(i)
		}
	}
	return PrimInvalid
}

// MarshalText encodes the variant by name so every serialization format
// carries a readable category.
func (p PrimitiveType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (p *PrimitiveType) UnmarshalText(b []byte) error {
	*p = ParsePrimitiveType(string(b))
	return nil
}

// IsInteger reports whether p is one of the signed or unsigned integer
// categories.
func (p PrimitiveType) IsInteger() bool {
	return p >= PrimInt8 && p <= PrimUInt128
}
