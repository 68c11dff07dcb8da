package store

import "github.com/jward/cdecl/internal/model"

// Row types mirror the tables one-to-one. Entity.Type is empty for structs
// and macros.

type Entity struct {
	ID       int64
	Kind     model.Kind
	Name     string
	Ordinal  int
	Type     model.TypeRef
	Unsigned bool
}

// Member is a struct field or a function parameter.
type Member struct {
	ID       int64
	EntityID int64
	Ordinal  int
	Name     string
	Type     model.TypeRef
}

type EnumValue struct {
	ID       int64
	EntityID int64
	Ordinal  int
	Name     string
	Bits     int64
	Unsigned bool
}

// Member converts the row back to an enum member in its own signedness.
func (v EnumValue) Member() model.EnumMember {
	if v.Unsigned {
		return model.NewUnsignedMember(v.Name, uint64(v.Bits))
	}
	return model.NewSignedMember(v.Name, v.Bits)
}

func enumValueFrom(entityID int64, ordinal int, m model.EnumMember) EnumValue {
	v := EnumValue{EntityID: entityID, Ordinal: ordinal, Name: m.Name}
	switch {
	case m.Unsigned != nil:
		v.Unsigned = true
		v.Bits = int64(*m.Unsigned)
	case m.Signed != nil:
		v.Bits = *m.Signed
	}
	return v
}
