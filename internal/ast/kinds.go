package ast

import "fmt"

// CursorKind identifies the kind of declaration a cursor points at.
type CursorKind int

const (
	CursorUnexposedDecl CursorKind = iota
	CursorStructDecl
	CursorUnionDecl
	CursorClassDecl
	CursorEnumDecl
	CursorFieldDecl
	CursorEnumConstantDecl
	CursorFunctionDecl
	CursorVarDecl
	CursorParmDecl
	CursorTypedefDecl
	CursorTypeRef
	CursorMacroDefinition
	CursorInclusionDirective
	CursorTranslationUnit
)

var cursorKindNames = map[CursorKind]string{
	CursorUnexposedDecl:      "UnexposedDecl",
	CursorStructDecl:         "StructDecl",
	CursorUnionDecl:          "UnionDecl",
	CursorClassDecl:          "ClassDecl",
	CursorEnumDecl:           "EnumDecl",
	CursorFieldDecl:          "FieldDecl",
	CursorEnumConstantDecl:   "EnumConstantDecl",
	CursorFunctionDecl:       "FunctionDecl",
	CursorVarDecl:            "VarDecl",
	CursorParmDecl:           "ParmDecl",
	CursorTypedefDecl:        "TypedefDecl",
	CursorTypeRef:            "TypeRef",
	CursorMacroDefinition:    "MacroDefinition",
	CursorInclusionDirective: "InclusionDirective",
	CursorTranslationUnit:    "TranslationUnit",
}

func (k CursorKind) String() string {
	if s, ok := cursorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("CursorKind(%d)", int(k))
}

// IsRecord reports whether k declares a struct, union or class.
func (k CursorKind) IsRecord() bool {
	return k == CursorStructDecl || k == CursorUnionDecl || k == CursorClassDecl
}

// TypeKind is the compiler's own type category, before any reduction.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeUnexposed
	TypeVoid
	TypeBool
	TypeCharU
	TypeUChar
	TypeChar16
	TypeChar32
	TypeUShort
	TypeUInt
	TypeULong
	TypeULongLong
	TypeUInt128
	TypeCharS
	TypeSChar
	TypeWChar
	TypeShort
	TypeInt
	TypeLong
	TypeLongLong
	TypeInt128
	TypeFloat
	TypeDouble
	TypeLongDouble
	TypeNullPtr
	TypeOverload
	TypeDependent
	TypeFloat128
	TypeHalf
	TypeFloat16
	TypeBFloat16
	TypeComplex
	TypePointer
	TypeBlockPointer
	TypeLValueReference
	TypeRValueReference
	TypeRecord
	TypeEnum
	TypeTypedef
	TypeFunctionNoProto
	TypeFunctionProto
	TypeConstantArray
	TypeVector
	TypeIncompleteArray
	TypeVariableArray
	TypeDependentSizedArray
	TypeMemberPointer
	TypeAuto
	TypeElaborated
	TypeAtomic
	TypeExtVector
	TypeAttributed
)

var typeKindNames = map[TypeKind]string{
	TypeInvalid:             "Invalid",
	TypeUnexposed:           "Unexposed",
	TypeVoid:                "Void",
	TypeBool:                "Bool",
	TypeCharU:               "Char_U",
	TypeUChar:               "UChar",
	TypeChar16:              "Char16",
	TypeChar32:              "Char32",
	TypeUShort:              "UShort",
	TypeUInt:                "UInt",
	TypeULong:               "ULong",
	TypeULongLong:           "ULongLong",
	TypeUInt128:             "UInt128",
	TypeCharS:               "Char_S",
	TypeSChar:               "SChar",
	TypeWChar:               "WChar",
	TypeShort:               "Short",
	TypeInt:                 "Int",
	TypeLong:                "Long",
	TypeLongLong:            "LongLong",
	TypeInt128:              "Int128",
	TypeFloat:               "Float",
	TypeDouble:              "Double",
	TypeLongDouble:          "LongDouble",
	TypeNullPtr:             "NullPtr",
	TypeOverload:            "Overload",
	TypeDependent:           "Dependent",
	TypeFloat128:            "Float128",
	TypeHalf:                "Half",
	TypeFloat16:             "Float16",
	TypeBFloat16:            "BFloat16",
	TypeComplex:             "Complex",
	TypePointer:             "Pointer",
	TypeBlockPointer:        "BlockPointer",
	TypeLValueReference:     "LValueReference",
	TypeRValueReference:     "RValueReference",
	TypeRecord:              "Record",
	TypeEnum:                "Enum",
	TypeTypedef:             "Typedef",
	TypeFunctionNoProto:     "FunctionNoProto",
	TypeFunctionProto:       "FunctionProto",
	TypeConstantArray:       "ConstantArray",
	TypeVector:              "Vector",
	TypeIncompleteArray:     "IncompleteArray",
	TypeVariableArray:       "VariableArray",
	TypeDependentSizedArray: "DependentSizedArray",
	TypeMemberPointer:       "MemberPointer",
	TypeAuto:                "Auto",
	TypeElaborated:          "Elaborated",
	TypeAtomic:              "Atomic",
	TypeExtVector:           "ExtVector",
	TypeAttributed:          "Attributed",
}

func (k TypeKind) String() string {
	if s, ok := typeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}
