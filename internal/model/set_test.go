package model

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEntitySet_AddPreservesOrder(t *testing.T) {
	t.Parallel()
	var s EntitySet[TypeDef]
	for _, n := range []string{"c", "a", "b"} {
		s.Add(TypeDef{Name: n})
	}
	assert.Equal(t, []string{"c", "a", "b"}, s.Names())
	assert.Equal(t, 3, s.Len())
}

func TestEntitySet_ContainsAndGet(t *testing.T) {
	t.Parallel()
	var s EntitySet[Macro]
	assert.False(t, s.Contains("X"))

	s.Add(Macro{Name: "X"})
	assert.True(t, s.Contains("X"))

	m, ok := s.Get("X")
	require.True(t, ok)
	assert.Equal(t, "X", m.Name)

	_, ok = s.Get("Y")
	assert.False(t, ok)
}

func TestEntitySet_GetReturnsFirstDuplicate(t *testing.T) {
	t.Parallel()
	var s EntitySet[TypeDef]
	s.Add(TypeDef{Name: "t", Type: TypeRef{Name: "int"}})
	s.Add(TypeDef{Name: "t", Type: TypeRef{Name: "long"}})

	got, _ := s.Get("t")
	assert.Equal(t, "int", got.Type.Name)
}

func TestEntitySet_ClearIsIdempotent(t *testing.T) {
	t.Parallel()
	var s EntitySet[Macro]
	s.Add(Macro{Name: "A"})
	require.True(t, s.Contains("A"))

	s.Clear()
	s.Clear()
	assert.Zero(t, s.Len())
	assert.False(t, s.Contains("A"))

	s.Add(Macro{Name: "B"})
	assert.True(t, s.Contains("B"))
}

func TestEntitySet_LookupAfterDecode(t *testing.T) {
	t.Parallel()
	var s EntitySet[Struct]
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"name":"p"},{"name":"q"}]}`), &s))
	assert.True(t, s.Contains("q"))
	assert.Equal(t, []string{"p", "q"}, s.Names())
}

// queriedSet returns a set holding a and b whose name index is built.
func queriedSet(t *testing.T) *EntitySet[Struct] {
	t.Helper()
	s := &EntitySet[Struct]{}
	s.Add(Struct{Name: "a"})
	s.Add(Struct{Name: "b"})
	require.True(t, s.Contains("a"))
	return s
}

func TestEntitySet_DecodeIntoQueriedSet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		decode func(t *testing.T, s *EntitySet[Struct])
	}{
		{"json", func(t *testing.T, s *EntitySet[Struct]) {
			require.NoError(t, json.Unmarshal([]byte(`{"items":[{"name":"x"},{"name":"y"}]}`), s))
		}},
		{"yaml", func(t *testing.T, s *EntitySet[Struct]) {
			require.NoError(t, yaml.Unmarshal([]byte("items:\n  - name: x\n  - name: \"y\"\n"), s))
		}},
		{"xml", func(t *testing.T, s *EntitySet[Struct]) {
			require.NoError(t, xml.Unmarshal([]byte(`<set><item name="x"></item><item name="y"></item></set>`), s))
		}},
		{"gob", func(t *testing.T, s *EntitySet[Struct]) {
			var src EntitySet[Struct]
			src.Add(Struct{Name: "x"})
			src.Add(Struct{Name: "y"})
			var buf bytes.Buffer
			require.NoError(t, gob.NewEncoder(&buf).Encode(src))
			require.NoError(t, gob.NewDecoder(&buf).Decode(s))
		}},
		{"reassigned", func(t *testing.T, s *EntitySet[Struct]) {
			s.Items = []Struct{{Name: "x"}, {Name: "y"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := queriedSet(t)
			tt.decode(t, s)

			assert.Equal(t, []string{"x", "y"}, s.Names())
			assert.False(t, s.Contains("a"))
			assert.False(t, s.Contains("b"))
			assert.True(t, s.Contains("x"))
			got, ok := s.Get("y")
			require.True(t, ok)
			assert.Equal(t, "y", got.Name)
		})
	}
}

func TestEntitySet_IndexFollowsGrowth(t *testing.T) {
	t.Parallel()
	var s EntitySet[TypeDef]
	for i := 0; i < 100; i++ {
		name := string(rune('A' + i%26)) + string(rune('a'+i/26))
		s.Add(TypeDef{Name: name})
		require.True(t, s.Contains(name), name)
	}
	got, ok := s.Get("Aa")
	require.True(t, ok)
	assert.Equal(t, "Aa", got.Name)
}

func TestEntitySet_XML(t *testing.T) {
	t.Parallel()
	var s EntitySet[Struct]
	s.Add(Struct{Name: "p", Fields: []Field{{Name: "x", Type: TypeRef{Name: "int", Primitive: PrimInt32}}}})

	data, err := xml.Marshal(&s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<set><item name="p">`)
	assert.Contains(t, string(data), `primitive="Int32"`)

	var back EntitySet[Struct]
	require.NoError(t, xml.Unmarshal(data, &back))
	assert.Equal(t, s.Items, back.Items)
}
