package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveType_StringRoundTrip(t *testing.T) {
	t.Parallel()
	for p := PrimInvalid; p <= PrimTypeDef; p++ {
		assert.Equal(t, p, ParsePrimitiveType(p.String()), p.String())
	}
}

func TestPrimitiveType_OutOfRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Invalid", PrimitiveType(-1).String())
	assert.Equal(t, "Invalid", PrimitiveType(999).String())
	assert.Equal(t, PrimInvalid, ParsePrimitiveType("NotAType"))
}

func TestPrimitiveType_TextEncoding(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(TypeRef{Name: "int", Primitive: PrimInt32})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"int","primitive":"Int32"}`, string(data))

	var ref TypeRef
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","primitive":"UInt128"}`), &ref))
	assert.Equal(t, PrimUInt128, ref.Primitive)
}

func TestPrimitiveType_IsInteger(t *testing.T) {
	t.Parallel()
	for _, p := range []PrimitiveType{PrimInt8, PrimInt32, PrimInt128, PrimUInt8, PrimUInt128} {
		assert.True(t, p.IsInteger(), p.String())
	}
	for _, p := range []PrimitiveType{PrimInvalid, PrimBoolean, PrimFloat32, PrimPointer, PrimEnum} {
		assert.False(t, p.IsInteger(), p.String())
	}
}
