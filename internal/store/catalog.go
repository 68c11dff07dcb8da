package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jward/cdecl/internal/model"
)

// SaveCatalog replaces the stored catalog with c inside a single
// transaction. Entities keep their set position in the ordinal column and
// the catalog hash is recorded in catalog_meta.
func (s *Store) SaveCatalog(c *model.Catalog) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save catalog: begin: %w", err)
	}
	defer tx.Rollback()

	if err := deleteCatalogTx(tx); err != nil {
		return err
	}

	for i, e := range c.Enums.Items {
		id, err := insertEntityTx(tx, &Entity{Kind: model.KindEnum, Name: e.Name, Ordinal: i, Type: e.Type, Unsigned: e.Unsigned})
		if err != nil {
			return fmt.Errorf("save catalog: enum %q: %w", e.Name, err)
		}
		for j, m := range e.Members {
			v := enumValueFrom(id, j, m)
			if err := insertEnumValueTx(tx, &v); err != nil {
				return fmt.Errorf("save catalog: enumerator %q: %w", m.Name, err)
			}
		}
	}

	for i, st := range c.Structs.Items {
		id, err := insertEntityTx(tx, &Entity{Kind: model.KindStruct, Name: st.Name, Ordinal: i})
		if err != nil {
			return fmt.Errorf("save catalog: struct %q: %w", st.Name, err)
		}
		for j, f := range st.Fields {
			if err := insertMemberTx(tx, &Member{EntityID: id, Ordinal: j, Name: f.Name, Type: f.Type}); err != nil {
				return fmt.Errorf("save catalog: field %q: %w", f.Name, err)
			}
		}
	}

	if err := saveFunctionsTx(tx, model.KindFunction, c.Functions.Items); err != nil {
		return err
	}

	for i, td := range c.TypeDefs.Items {
		if _, err := insertEntityTx(tx, &Entity{Kind: model.KindTypeDef, Name: td.Name, Ordinal: i, Type: td.Type}); err != nil {
			return fmt.Errorf("save catalog: typedef %q: %w", td.Name, err)
		}
	}

	if err := saveFunctionsTx(tx, model.KindFunctionPointer, c.FunctionPointers.Items); err != nil {
		return err
	}

	for i, m := range c.Macros.Items {
		if _, err := insertEntityTx(tx, &Entity{Kind: model.KindMacro, Name: m.Name, Ordinal: i}); err != nil {
			return fmt.Errorf("save catalog: macro %q: %w", m.Name, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO catalog_meta (key, value) VALUES ('hash', ?)", CatalogHash(c)); err != nil {
		return fmt.Errorf("save catalog: hash: %w", err)
	}
	return tx.Commit()
}

func saveFunctionsTx(tx *sql.Tx, kind model.Kind, fns []model.Function) error {
	for i, fn := range fns {
		id, err := insertEntityTx(tx, &Entity{Kind: kind, Name: fn.Name, Ordinal: i, Type: fn.Return})
		if err != nil {
			return fmt.Errorf("save catalog: %s %q: %w", kind, fn.Name, err)
		}
		for j, p := range fn.Params {
			if err := insertMemberTx(tx, &Member{EntityID: id, Ordinal: j, Name: p.Name, Type: p.Type}); err != nil {
				return fmt.Errorf("save catalog: param %q of %q: %w", p.Name, fn.Name, err)
			}
		}
	}
	return nil
}

// LoadCatalog rebuilds the stored catalog. An empty database yields an
// empty catalog.
func (s *Store) LoadCatalog() (*model.Catalog, error) {
	c := model.NewCatalog()

	enums, err := s.EntitiesByKind(model.KindEnum)
	if err != nil {
		return nil, err
	}
	for _, row := range enums {
		values, err := s.EnumValuesOf(row.ID)
		if err != nil {
			return nil, err
		}
		e := model.Enum{Name: row.Name, Type: row.Type, Unsigned: row.Unsigned}
		for _, v := range values {
			e.Members = append(e.Members, v.Member())
		}
		c.Enums.Add(e)
	}

	structs, err := s.EntitiesByKind(model.KindStruct)
	if err != nil {
		return nil, err
	}
	for _, row := range structs {
		members, err := s.MembersOf(row.ID)
		if err != nil {
			return nil, err
		}
		st := model.Struct{Name: row.Name}
		for _, m := range members {
			st.Fields = append(st.Fields, model.Field{Name: m.Name, Type: m.Type})
		}
		c.Structs.Add(st)
	}

	if err := s.loadFunctions(model.KindFunction, &c.Functions); err != nil {
		return nil, err
	}

	typedefs, err := s.EntitiesByKind(model.KindTypeDef)
	if err != nil {
		return nil, err
	}
	for _, row := range typedefs {
		c.TypeDefs.Add(model.TypeDef{Name: row.Name, Type: row.Type})
	}

	if err := s.loadFunctions(model.KindFunctionPointer, &c.FunctionPointers); err != nil {
		return nil, err
	}

	macros, err := s.EntitiesByKind(model.KindMacro)
	if err != nil {
		return nil, err
	}
	for _, row := range macros {
		c.Macros.Add(model.Macro{Name: row.Name})
	}
	return c, nil
}

func (s *Store) loadFunctions(kind model.Kind, set *model.EntitySet[model.Function]) error {
	rows, err := s.EntitiesByKind(kind)
	if err != nil {
		return err
	}
	for _, row := range rows {
		members, err := s.MembersOf(row.ID)
		if err != nil {
			return err
		}
		fn := model.Function{Name: row.Name, Return: row.Type}
		for _, m := range members {
			fn.Params = append(fn.Params, model.Param{Name: m.Name, Type: m.Type})
		}
		set.Add(fn)
	}
	return nil
}

// StoredHash returns the hash recorded by the last SaveCatalog, or "" when
// nothing has been saved.
func (s *Store) StoredHash() (string, error) {
	var hash string
	err := sq.Select("value").
		From("catalog_meta").
		Where(sq.Eq{"key": "hash"}).
		RunWith(s.db).
		QueryRow().
		Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stored hash: %w", err)
	}
	return hash, nil
}

// --- Row operations ---

func insertEntityTx(tx *sql.Tx, e *Entity) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO entities (kind, name, ordinal, type_name, type_primitive, type_array_len, is_unsigned)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.Kind), e.Name, e.Ordinal, e.Type.Name, e.Type.Primitive.String(), e.Type.ArrayLength, e.Unsigned,
	)
	if err != nil {
		return 0, fmt.Errorf("insert entity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return id, nil
}

func insertMemberTx(tx *sql.Tx, m *Member) error {
	res, err := tx.Exec(
		`INSERT INTO members (entity_id, ordinal, name, type_name, type_primitive, type_array_len)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.EntityID, m.Ordinal, m.Name, m.Type.Name, m.Type.Primitive.String(), m.Type.ArrayLength,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

func insertEnumValueTx(tx *sql.Tx, v *EnumValue) error {
	res, err := tx.Exec(
		"INSERT INTO enum_values (entity_id, ordinal, name, bits, is_unsigned) VALUES (?, ?, ?, ?, ?)",
		v.EntityID, v.Ordinal, v.Name, v.Bits, v.Unsigned,
	)
	if err != nil {
		return fmt.Errorf("insert enum value: %w", err)
	}
	v.ID, err = res.LastInsertId()
	return err
}

var entityCols = []string{"id", "kind", "name", "ordinal", "type_name", "type_primitive", "type_array_len", "is_unsigned"}

func scanEntity(scanner interface{ Scan(...any) error }) (*Entity, error) {
	e := &Entity{}
	var kind, prim string
	err := scanner.Scan(&e.ID, &kind, &e.Name, &e.Ordinal, &e.Type.Name, &prim, &e.Type.ArrayLength, &e.Unsigned)
	if err != nil {
		return nil, err
	}
	e.Kind = model.Kind(kind)
	e.Type.Primitive = model.ParsePrimitiveType(prim)
	return e, nil
}

func (s *Store) queryEntities(where sq.Eq, orderBy string) ([]*Entity, error) {
	rows, err := sq.Select(entityCols...).
		From("entities").
		Where(where).
		OrderBy(orderBy).
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entities []*Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// EntitiesByKind returns one set's rows in set order.
func (s *Store) EntitiesByKind(kind model.Kind) ([]*Entity, error) {
	entities, err := s.queryEntities(sq.Eq{"kind": string(kind)}, "ordinal")
	if err != nil {
		return nil, fmt.Errorf("entities by kind: %w", err)
	}
	return entities, nil
}

// EntitiesByName returns every entity called name, across all sets.
func (s *Store) EntitiesByName(name string) ([]*Entity, error) {
	entities, err := s.queryEntities(sq.Eq{"name": name}, "id")
	if err != nil {
		return nil, fmt.Errorf("entities by name: %w", err)
	}
	return entities, nil
}

// MembersOf returns the fields or parameters of an entity in order.
func (s *Store) MembersOf(entityID int64) ([]*Member, error) {
	rows, err := sq.Select("id", "entity_id", "ordinal", "name", "type_name", "type_primitive", "type_array_len").
		From("members").
		Where(sq.Eq{"entity_id": entityID}).
		OrderBy("ordinal").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("members of: %w", err)
	}
	defer rows.Close()
	var members []*Member
	for rows.Next() {
		m := &Member{}
		var prim string
		if err := rows.Scan(&m.ID, &m.EntityID, &m.Ordinal, &m.Name, &m.Type.Name, &prim, &m.Type.ArrayLength); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Type.Primitive = model.ParsePrimitiveType(prim)
		members = append(members, m)
	}
	return members, rows.Err()
}

// EnumValuesOf returns the enumerators of an enum entity in order.
func (s *Store) EnumValuesOf(entityID int64) ([]*EnumValue, error) {
	rows, err := sq.Select("id", "entity_id", "ordinal", "name", "bits", "is_unsigned").
		From("enum_values").
		Where(sq.Eq{"entity_id": entityID}).
		OrderBy("ordinal").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("enum values of: %w", err)
	}
	defer rows.Close()
	var values []*EnumValue
	for rows.Next() {
		v := &EnumValue{}
		if err := rows.Scan(&v.ID, &v.EntityID, &v.Ordinal, &v.Name, &v.Bits, &v.Unsigned); err != nil {
			return nil, fmt.Errorf("scan enum value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
