package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// GenerationEvent records the outcome of one course generation attempt.
type GenerationEvent struct {
	ent.Schema
}

func (GenerationEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (GenerationEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("attempt").
			Comment("Coordinator attempt number"),
		field.String("topic"),
		field.String("preset").
			Default("").
			Comment("Active preset, empty for custom preferences"),
		field.String("outcome").
			Comment("succeeded, failed or superseded"),
		field.Int("module_count").
			Default(0),
		field.Int("lesson_count").
			Default(0),
		field.Int64("duration_ms").
			Default(0),
		field.String("error_message").
			Default(""),
	}
}

func (GenerationEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("outcome"),
	}
}
