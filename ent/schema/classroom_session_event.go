package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ClassroomSessionEvent records session lifecycle events (start, progress, end).
type ClassroomSessionEvent struct {
	ent.Schema
}

func (ClassroomSessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ClassroomSessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID grouping events in a session"),
		field.String("course_id"),
		field.String("course_title"),
		field.String("action").
			NotEmpty().
			Comment("start, progress or end"),
		field.Float("progress").
			Default(0),
		field.Bool("completed").
			Default(false),
		field.Int("xp_earned").
			Default(0).
			Comment("XP awarded (on end only)"),
		field.String("detail").
			Default(""),
	}
}

func (ClassroomSessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
