package cdecl

import (
	"github.com/jward/cdecl/internal/ast"
	"github.com/jward/cdecl/internal/model"
)

// primitiveKinds is the fixed reduction from compiler type kinds to
// primitive categories. Widths assume 32-bit int and long.
var primitiveKinds = map[ast.TypeKind]model.PrimitiveType{
	ast.TypeInvalid: model.PrimInvalid,

	ast.TypeVoid: model.PrimVoid,
	ast.TypeBool: model.PrimBoolean,

	ast.TypeCharS: model.PrimInt8,
	ast.TypeSChar: model.PrimInt8,
	ast.TypeCharU: model.PrimUInt8,
	ast.TypeUChar: model.PrimUInt8,

	ast.TypeShort:  model.PrimInt16,
	ast.TypeChar16: model.PrimInt16,
	ast.TypeUShort: model.PrimUInt16,

	ast.TypeInt:    model.PrimInt32,
	ast.TypeLong:   model.PrimInt32,
	ast.TypeChar32: model.PrimInt32,
	ast.TypeUInt:   model.PrimUInt32,
	ast.TypeULong:  model.PrimUInt32,

	ast.TypeLongLong:  model.PrimInt64,
	ast.TypeULongLong: model.PrimUInt64,
	ast.TypeInt128:    model.PrimInt128,
	ast.TypeUInt128:   model.PrimUInt128,

	ast.TypeHalf:       model.PrimFloat16,
	ast.TypeFloat16:    model.PrimFloat16,
	ast.TypeFloat:      model.PrimFloat32,
	ast.TypeDouble:     model.PrimFloat64,
	ast.TypeLongDouble: model.PrimFloat128,
	ast.TypeFloat128:   model.PrimFloat128,

	ast.TypePointer:       model.PrimPointer,
	ast.TypeNullPtr:       model.PrimPointer,
	ast.TypeBlockPointer:  model.PrimPointer,
	ast.TypeMemberPointer: model.PrimPointer,

	ast.TypeConstantArray: model.PrimConstantArray,

	ast.TypeRecord:          model.PrimStruct,
	ast.TypeEnum:            model.PrimEnum,
	ast.TypeTypedef:         model.PrimTypeDef,
	ast.TypeFunctionProto:   model.PrimFunction,
	ast.TypeFunctionNoProto: model.PrimFunction,
}

// Classify reduces a compiler type to its primitive category. It never
// fails: nil types and kinds without a mapping classify as Invalid.
func Classify(t ast.Type) PrimitiveType {
	p, _ := classify(t)
	return p
}

// classify also reports whether the kind had a mapping, so callers can log
// the gaps.
func classify(t ast.Type) (PrimitiveType, bool) {
	if t == nil {
		return model.PrimInvalid, true
	}
	p, ok := primitiveKinds[t.Kind()]
	if !ok {
		return model.PrimInvalid, false
	}
	return p, true
}
