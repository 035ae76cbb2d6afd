package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	sqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/lyoapp/lyo/ent/schema"
)

const (
	tableLLMRequests = "llm_request_events"
	tableGenerations = "generation_events"
	tableSessions    = "classroom_session_events"
	tableCourses     = "courses"
	tableSequence    = "global_sequence"
)

// entities maps each table to the ent schema that defines it.
var entities = []struct {
	table string
	name  string
	def   ent.Interface
}{
	{tableLLMRequests, "LLMRequestEvent", schema.LLMRequestEvent{}},
	{tableGenerations, "GenerationEvent", schema.GenerationEvent{}},
	{tableSessions, "ClassroomSessionEvent", schema.ClassroomSessionEvent{}},
	{tableCourses, "Course", schema.Course{}},
	{tableSequence, "GlobalSequence", schema.GlobalSequence{}},
}

func tables() ([]*sqlschema.Table, error) {
	out := make([]*sqlschema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := buildTable(e.table, e.name, e.def)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", e.table, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// buildTable turns an ent schema into a migration table. Mixin fields come
// first, as ent orders them. Without an explicit "id" field the table gets
// an auto-increment integer key.
func buildTable(name, typeName string, def ent.Interface) (*sqlschema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range def.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, def.Fields()...)
	indexes = append(indexes, def.Indexes()...)

	t := sqlschema.NewTable(name)
	if !hasField(fields, "id") {
		t.AddPrimary(&sqlschema.Column{Name: "id", Type: field.TypeInt, Increment: true})
	}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("field %s: %w", d.Name, d.Err)
		}
		col := &sqlschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
			Default:  d.Default,
		}
		if d.Name == "id" {
			t.AddPrimary(col)
			continue
		}
		t.AddColumn(col)
	}

	prefix := strings.ToLower(typeName)
	for _, idx := range indexes {
		d := idx.Descriptor()
		t.AddIndex(prefix+"_"+strings.Join(d.Fields, "_"), d.Unique, d.Fields)
	}
	return t, nil
}

func hasField(fields []ent.Field, name string) bool {
	for _, f := range fields {
		if f.Descriptor().Name == name {
			return true
		}
	}
	return false
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	ts, err := tables()
	if err != nil {
		return err
	}
	m, err := sqlschema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, ts...)
}
