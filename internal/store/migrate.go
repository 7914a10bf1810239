package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	sqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/practiced/ent/schema"
)

const eventsTable = "llm_request_events"

// Tables lists every table the store owns, derived from the ent schemas.
var Tables = []*sqlschema.Table{
	mustTable(eventsTable, entschema.LLMRequestEvent{}),
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := sqlschema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func mustTable(name string, s ent.Interface) *sqlschema.Table {
	t, err := tableFor(name, s)
	if err != nil {
		panic(err)
	}
	return t
}

// tableFor builds the migration table for a schema: an auto-increment id,
// the mixin fields, then the schema's own fields and indexes.
func tableFor(name string, s ent.Interface) (*sqlschema.Table, error) {
	id := &sqlschema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	t := &sqlschema.Table{
		Name:       name,
		Columns:    []*sqlschema.Column{id},
		PrimaryKey: []*sqlschema.Column{id},
	}
	byName := map[string]*sqlschema.Column{id.Name: id}

	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		col := &sqlschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional,
			Size:     int64(d.Size),
		}
		switch v := d.Default.(type) {
		case string, bool, int, int64:
			col.Default = v
		}
		t.Columns = append(t.Columns, col)
		byName[col.Name] = col
	}

	for _, ix := range indexes {
		d := ix.Descriptor()
		idx := &sqlschema.Index{
			Name:   strings.ToLower(strings.ReplaceAll(name, "_", "")) + "_" + strings.Join(d.Fields, "_"),
			Unique: d.Unique,
		}
		for _, fname := range d.Fields {
			col, ok := byName[fname]
			if !ok {
				return nil, fmt.Errorf("%s: index on unknown column %q", name, fname)
			}
			idx.Columns = append(idx.Columns, col)
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t, nil
}
