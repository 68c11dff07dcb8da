// Package serial saves and loads values in the catalog's export formats.
//
// Every function reports failure through its result (false, or the zero
// value) and a log line. Encoder panics are recovered the same way, so a
// caller exporting a catalog never has to guard against them.
package serial

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects an encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatXML    Format = "xml"
	FormatBinary Format = "binary"
	FormatYAML   Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatXML, FormatBinary, FormatYAML}

// ParseFormat accepts a format name, case-insensitively. "gob" and "yml"
// are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "binary", "gob":
		return FormatBinary, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (must be json, xml, binary or yaml)", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatXML:
		return ".xml"
	case FormatBinary:
		return ".bin"
	case FormatYAML:
		return ".yaml"
	}
	return ""
}

// Save writes v to path in format f.
func Save(f Format, path string, v any) bool {
	enc, ok := encoders[f]
	if !ok {
		log.Printf("serial: save %s: unknown format %q", path, f)
		return false
	}
	return save(path, v, enc)
}

// Load reads a T from path in format f.
func Load[T any](f Format, path string) T {
	var v T
	dec, ok := decoders[f]
	if !ok {
		log.Printf("serial: load %s: unknown format %q", path, f)
		return v
	}
	if !load(path, &v, dec) {
		var zero T
		return zero
	}
	return v
}

func SaveJSON(path string, v any) bool   { return Save(FormatJSON, path, v) }
func SaveXML(path string, v any) bool    { return Save(FormatXML, path, v) }
func SaveBinary(path string, v any) bool { return Save(FormatBinary, path, v) }
func SaveYAML(path string, v any) bool   { return Save(FormatYAML, path, v) }

func LoadJSON[T any](path string) T   { return Load[T](FormatJSON, path) }
func LoadXML[T any](path string) T    { return Load[T](FormatXML, path) }
func LoadBinary[T any](path string) T { return Load[T](FormatBinary, path) }
func LoadYAML[T any](path string) T   { return Load[T](FormatYAML, path) }

type encodeFunc func(w io.Writer, v any) error
type decodeFunc func(r io.Reader, v any) error

var encoders = map[Format]encodeFunc{
	FormatJSON: func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	},
	FormatXML: func(w io.Writer, v any) error {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	},
	FormatBinary: func(w io.Writer, v any) error {
		return gob.NewEncoder(w).Encode(v)
	},
	FormatYAML: func(w io.Writer, v any) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	},
}

var decoders = map[Format]decodeFunc{
	FormatJSON: func(r io.Reader, v any) error {
		return json.NewDecoder(r).Decode(v)
	},
	FormatXML: func(r io.Reader, v any) error {
		return xml.NewDecoder(r).Decode(v)
	},
	FormatBinary: func(r io.Reader, v any) error {
		return gob.NewDecoder(r).Decode(v)
	},
	FormatYAML: func(r io.Reader, v any) error {
		return yaml.NewDecoder(r).Decode(v)
	},
}

func save(path string, v any, enc encodeFunc) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("serial: save %s: panic: %v", path, r)
			ok = false
		}
	}()

	f, err := os.Create(path)
	if err != nil {
		log.Printf("serial: save %s: %v", path, err)
		return false
	}
	w := bufio.NewWriter(f)
	if err := enc(w, v); err != nil {
		f.Close()
		log.Printf("serial: save %s: %v", path, err)
		return false
	}
	if err := w.Flush(); err != nil {
		f.Close()
		log.Printf("serial: save %s: %v", path, err)
		return false
	}
	if err := f.Close(); err != nil {
		log.Printf("serial: save %s: %v", path, err)
		return false
	}
	return true
}

func load(path string, v any, dec decodeFunc) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("serial: load %s: panic: %v", path, r)
			ok = false
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		log.Printf("serial: load %s: %v", path, err)
		return false
	}
	defer f.Close()

	if err := dec(bufio.NewReader(f), v); err != nil {
		log.Printf("serial: load %s: %v", path, err)
		return false
	}
	return true
}
