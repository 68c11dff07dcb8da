package cdecl

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jward/cdecl/internal/model"
	"github.com/jward/cdecl/internal/serial"
	"github.com/jward/cdecl/internal/store"
)

// Format selects an export encoding.
type Format = serial.Format

const (
	FormatJSON   = serial.FormatJSON
	FormatXML    = serial.FormatXML
	FormatBinary = serial.FormatBinary
	FormatYAML   = serial.FormatYAML
)

// ParseFormat accepts json, xml, binary (or gob) and yaml (or yml).
func ParseFormat(s string) (Format, error) {
	return serial.ParseFormat(s)
}

// exportOrder is the order ExportSets writes files in.
var exportOrder = []Kind{
	model.KindFunction,
	model.KindTypeDef,
	model.KindStruct,
	model.KindEnum,
	model.KindFunctionPointer,
	model.KindMacro,
}

// ExportCatalog writes the whole catalog to path. It reports false, after
// logging the cause, when the file could not be written.
func ExportCatalog(c *Catalog, path string, format Format) bool {
	return serial.Save(format, path, c)
}

// ImportCatalog reads a catalog written by ExportCatalog. It returns nil
// when the file cannot be read or decoded.
func ImportCatalog(path string, format Format) *Catalog {
	return serial.Load[*Catalog](format, path)
}

// ExportSets writes each non-empty set to its own file in dir, named after
// the set (functions.json, typedefs.json, ...). It returns the paths
// written. Writing stops at the first failure.
func ExportSets(c *Catalog, dir string, format Format) ([]string, bool) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("cdecl: export sets: %v", err)
		return nil, false
	}
	var written []string
	for _, kind := range exportOrder {
		if c.SetLen(kind) == 0 {
			continue
		}
		path := filepath.Join(dir, string(kind)+format.Ext())
		if !serial.Save(format, path, c.Set(kind)) {
			return written, false
		}
		written = append(written, path)
	}
	return written, true
}

// ImportSet reads one set file written by ExportSets. It returns nil when
// the file cannot be read or decoded.
func ImportSet[T model.Named](path string, format Format) *model.EntitySet[T] {
	return serial.Load[*model.EntitySet[T]](format, path)
}

// SaveSQLite writes the catalog to a SQLite database at path, replacing any
// catalog already stored there.
func SaveSQLite(c *Catalog, path string) error {
	s, err := store.NewStore(path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(); err != nil {
		return err
	}
	if err := s.SaveCatalog(c); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// LoadSQLite reads a catalog saved by SaveSQLite.
func LoadSQLite(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.Migrate(); err != nil {
		return nil, err
	}
	c, err := s.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}
