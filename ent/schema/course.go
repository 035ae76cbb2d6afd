package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Course is a launched course kept for relaunching without regeneration.
type Course struct {
	ent.Schema
}

func (Course) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable(),
		field.String("title"),
		field.String("category"),
		field.String("scene_id").
			Comment("Classroom environment the course was launched in"),
		field.Int("lesson_count").
			Default(0),
		field.Text("payload").
			Comment("LoadCourse JSON as sent to the engine"),
		field.Int64("created_at").
			Comment("Unix milliseconds"),
	}
}

func (Course) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
	}
}
