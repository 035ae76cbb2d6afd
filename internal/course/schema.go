package course

import "github.com/lyoapp/lyo/internal/llm"

var lessonDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "Short lesson title (3-8 words)",
		},
		"description": map[string]any{
			"type":        "string",
			"description": "One or two sentences on what the lesson covers",
		},
		"estimated_duration_minutes": map[string]any{
			"type":        "integer",
			"description": "Expected minutes to complete the lesson",
		},
	},
	"required":             []any{"title", "description", "estimated_duration_minutes"},
	"additionalProperties": false,
}

// CourseSchema defines the JSON schema for course outline generation.
var CourseSchema = &llm.Schema{
	Name:        "course-outline",
	Description: "A structured course outline made of ordered modules and lessons",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Course title",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "2-3 sentence course summary",
			},
			"category": map[string]any{
				"type":        "string",
				"description": "Broad subject area, e.g. History, Science, Art",
			},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{"beginner", "intermediate", "advanced"},
			},
			"tags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Up to 5 short keywords",
			},
			"modules": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type": "string",
						},
						"description": map[string]any{
							"type": "string",
						},
						"estimated_duration_minutes": map[string]any{
							"type": "integer",
						},
						"lessons": map[string]any{
							"type":  "array",
							"items": lessonDefinition,
						},
					},
					"required":             []any{"title", "description", "estimated_duration_minutes", "lessons"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "description", "category", "difficulty", "tags", "modules"},
		"additionalProperties": false,
	},
}
