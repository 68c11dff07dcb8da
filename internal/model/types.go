package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Named is implemented by every entity stored in an EntitySet.
type Named interface {
	EntityName() string
}

// TypeRef describes the declared type of a field, parameter, return slot or
// typedef target. ArrayLength is set only for ConstantArray types; zero
// means the type is not an array.
type TypeRef struct {
	Name        string        `json:"name" xml:"name,attr" yaml:"name"`
	Primitive   PrimitiveType `json:"primitive" xml:"primitive,attr" yaml:"primitive"`
	ArrayLength int64         `json:"arrayLength,omitempty" xml:"arrayLength,attr,omitempty" yaml:"array_length,omitempty"`
}

type Field struct {
	Name string  `json:"name" xml:"name,attr" yaml:"name"`
	Type TypeRef `json:"type" xml:"type" yaml:"type"`
}

type Struct struct {
	Name   string  `json:"name" xml:"name,attr" yaml:"name"`
	Fields []Field `json:"fields,omitempty" xml:"field" yaml:"fields,omitempty"`
}

func (s Struct) EntityName() string { return s.Name }

type Param struct {
	Name string  `json:"name" xml:"name,attr" yaml:"name"`
	Type TypeRef `json:"type" xml:"type" yaml:"type"`
}

// Function describes a function declaration. The same shape is used for
// function-pointer typedefs.
type Function struct {
	Name   string  `json:"name" xml:"name,attr" yaml:"name"`
	Return TypeRef `json:"return" xml:"return" yaml:"return"`
	Params []Param `json:"params,omitempty" xml:"param" yaml:"params,omitempty"`
}

func (f Function) EntityName() string { return f.Name }

type TypeDef struct {
	Name string  `json:"name" xml:"name,attr" yaml:"name"`
	Type TypeRef `json:"type" xml:"type" yaml:"type"`
}

func (t TypeDef) EntityName() string { return t.Name }

// Macro is a placeholder entity. Nothing populates it yet.
type Macro struct {
	Name string `json:"name" xml:"name,attr" yaml:"name"`
}

func (m Macro) EntityName() string { return m.Name }

// EnumMember holds one enumerator. Exactly one of Signed and Unsigned is
// set, matching the owning Enum's Unsigned flag.
type EnumMember struct {
	Name     string  `json:"name" xml:"name,attr" yaml:"name"`
	Signed   *int64  `json:"signed,omitempty" xml:"signed,attr,omitempty" yaml:"signed,omitempty"`
	Unsigned *uint64 `json:"unsigned,omitempty" xml:"unsigned,attr,omitempty" yaml:"unsigned,omitempty"`
}

func NewSignedMember(name string, v int64) EnumMember {
	return EnumMember{Name: name, Signed: &v}
}

func NewUnsignedMember(name string, v uint64) EnumMember {
	return EnumMember{Name: name, Unsigned: &v}
}

// IsUnsigned reports which of the two value slots is populated.
func (m EnumMember) IsUnsigned() bool {
	return m.Unsigned != nil
}

// String renders the stored value in its own signedness.
func (m EnumMember) String() string {
	switch {
	case m.Unsigned != nil:
		return fmt.Sprintf("%s=%d", m.Name, *m.Unsigned)
	case m.Signed != nil:
		return fmt.Sprintf("%s=%d", m.Name, *m.Signed)
	default:
		return m.Name
	}
}

// gobMember is the wire shape for EnumMember. gob flattens pointers and drops
// zero values, which would lose a member whose value is 0.
type gobMember struct {
	Name     string
	Unsigned bool
	Bits     uint64
}

func (m EnumMember) GobEncode() ([]byte, error) {
	w := gobMember{Name: m.Name}
	switch {
	case m.Unsigned != nil:
		w.Unsigned = true
		w.Bits = *m.Unsigned
	case m.Signed != nil:
		w.Bits = uint64(*m.Signed)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *EnumMember) GobDecode(b []byte) error {
	var w gobMember
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	if w.Unsigned {
		*m = NewUnsignedMember(w.Name, w.Bits)
	} else {
		*m = NewSignedMember(w.Name, int64(w.Bits))
	}
	return nil
}

// Enum describes an enumeration and its backing integer type.
type Enum struct {
	Name     string       `json:"name" xml:"name,attr" yaml:"name"`
	Type     TypeRef      `json:"type" xml:"type" yaml:"type"`
	Unsigned bool         `json:"unsigned" xml:"unsigned,attr" yaml:"unsigned"`
	Members  []EnumMember `json:"members,omitempty" xml:"member" yaml:"members,omitempty"`
}

func (e Enum) EntityName() string { return e.Name }

// AddMember appends a member, storing v in the slot matching the enum's
// signedness.
func (e *Enum) AddMember(name string, signed int64, unsigned uint64) {
	if e.Unsigned {
		e.Members = append(e.Members, NewUnsignedMember(name, unsigned))
		return
	}
	e.Members = append(e.Members, NewSignedMember(name, signed))
}
