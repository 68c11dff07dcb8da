package model

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntitySet is an insertion-ordered collection of entities keyed by name.
//
// Name uniqueness is the producer's job: callers check Contains before Add.
// Add itself never rejects a duplicate, which is what lets the extractor
// skip an already-seen declaration while still descending into it.
type EntitySet[T Named] struct {
	Items []T `json:"items,omitempty" yaml:"items,omitempty"`

	index   map[string]int
	indexed int
	base    *T
}

// Add appends e, preserving insertion order.
func (s *EntitySet[T]) Add(e T) {
	s.Items = append(s.Items, e)
}

// Contains reports whether an entity named name has been added.
func (s *EntitySet[T]) Contains(name string) bool {
	_, ok := s.lookup(name)
	return ok
}

// Get returns the first entity named name.
func (s *EntitySet[T]) Get(name string) (T, bool) {
	i, ok := s.lookup(name)
	if !ok {
		var zero T
		return zero, false
	}
	return s.Items[i], true
}

func (s *EntitySet[T]) lookup(name string) (int, bool) {
	// The index catches up with Adds lazily. A shorter or reallocated Items
	// means the slice was replaced, so it is rebuilt.
	var base *T
	if len(s.Items) > 0 {
		base = &s.Items[0]
	}
	if s.index == nil || s.indexed > len(s.Items) || (s.indexed > 0 && base != s.base) {
		s.index = make(map[string]int, len(s.Items))
		s.indexed = 0
	}
	s.base = base
	for ; s.indexed < len(s.Items); s.indexed++ {
		n := s.Items[s.indexed].EntityName()
		if _, ok := s.index[n]; !ok {
			s.index[n] = s.indexed
		}
	}
	i, ok := s.index[name]
	return i, ok
}

func (s *EntitySet[T]) Len() int {
	return len(s.Items)
}

// Names returns entity names in insertion order.
func (s *EntitySet[T]) Names() []string {
	names := make([]string, 0, len(s.Items))
	for _, e := range s.Items {
		names = append(names, e.EntityName())
	}
	return names
}

// Clear empties the set. Safe to call repeatedly.
func (s *EntitySet[T]) Clear() {
	s.reset(nil)
}

// reset replaces the items and drops the name index.
func (s *EntitySet[T]) reset(items []T) {
	s.Items = items
	s.index = nil
	s.indexed = 0
	s.base = nil
}

// setItems is the encoded shape of an EntitySet. Decoders fill a fresh one
// and hand it to reset, so decoding into a set that was already queried
// never leaves a stale index behind.
type setItems[T Named] struct {
	Items []T `json:"items,omitempty" yaml:"items,omitempty"`
}

func (s *EntitySet[T]) UnmarshalJSON(data []byte) error {
	var v setItems[T]
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.reset(v.Items)
	return nil
}

func (s *EntitySet[T]) UnmarshalYAML(value *yaml.Node) error {
	var v setItems[T]
	if err := value.Decode(&v); err != nil {
		return err
	}
	s.reset(v.Items)
	return nil
}

func (s EntitySet[T]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(setItems[T]{Items: s.Items}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *EntitySet[T]) GobDecode(data []byte) error {
	var v setItems[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return err
	}
	s.reset(v.Items)
	return nil
}

// MarshalXML writes each entity as an <item> element. A generic type has no
// usable XML name of its own, so a top-level set is written as <set>.
func (s EntitySet[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if start.Name.Local == "" || strings.ContainsAny(start.Name.Local, "[]/") {
		start.Name = xml.Name{Local: "set"}
	}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, item := range s.Items {
		if err := e.EncodeElement(item, xml.StartElement{Name: xml.Name{Local: "item"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func (s *EntitySet[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	s.reset(nil)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var item T
			if err := d.DecodeElement(&item, &t); err != nil {
				return err
			}
			s.Items = append(s.Items, item)
		case xml.EndElement:
			return nil
		}
	}
}
