// Package outline flattens a generated course into the renderer-agnostic
// lesson list the classroom consumes.
package outline

import (
	"strings"

	"github.com/lyoapp/lyo/internal/course"
	"github.com/lyoapp/lyo/internal/preferences"
)

// DefaultMaxLessonMinutes keeps lessons bite-sized.
const DefaultMaxLessonMinutes = 10

// Lesson is one flattened unit of a course.
type Lesson struct {
	Title                    string
	Description              string
	ContentType              preferences.ContentType
	EstimatedDurationMinutes int
}

// Policy controls how a course is flattened.
type Policy struct {
	// MaxLessonMinutes caps each lesson's duration. Zero or less disables
	// the cap.
	MaxLessonMinutes int

	// ContentTypes are assigned to lessons round-robin. Empty means text.
	ContentTypes []preferences.ContentType

	// TitlePrefix is prepended to every lesson title.
	TitlePrefix string
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{MaxLessonMinutes: DefaultMaxLessonMinutes}
}

// Flatten walks modules in order and lessons within each module in order.
// A course without lessons yields exactly one fallback lesson describing
// the course itself.
func Flatten(c *course.Course, p Policy) []Lesson {
	var out []Lesson
	if c != nil {
		for _, m := range c.Modules {
			for _, l := range m.Lessons {
				out = append(out, Lesson{
					Title:                    p.TitlePrefix + l.Title,
					Description:              l.Description,
					ContentType:              p.contentType(len(out)),
					EstimatedDurationMinutes: p.capMinutes(l.EstimatedDurationMinutes),
				})
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return []Lesson{fallback(c, p)}
}

func fallback(c *course.Course, p Policy) Lesson {
	title, desc := "Course overview", ""
	if c != nil {
		if t := strings.TrimSpace(c.Title); t != "" {
			title = t
		}
		desc = strings.TrimSpace(c.Description)
	}
	if desc == "" {
		desc = "An overview of " + title + "."
	}
	return Lesson{
		Title:                    p.TitlePrefix + title,
		Description:              desc,
		ContentType:              p.contentType(0),
		EstimatedDurationMinutes: p.capMinutes(DefaultMaxLessonMinutes),
	}
}

func (p Policy) capMinutes(minutes int) int {
	if p.MaxLessonMinutes > 0 && minutes > p.MaxLessonMinutes {
		return p.MaxLessonMinutes
	}
	return minutes
}

func (p Policy) contentType(i int) preferences.ContentType {
	if len(p.ContentTypes) == 0 {
		return preferences.ContentText
	}
	return p.ContentTypes[i%len(p.ContentTypes)]
}

// TotalMinutes sums lesson durations.
func TotalMinutes(lessons []Lesson) int {
	total := 0
	for _, l := range lessons {
		total += l.EstimatedDurationMinutes
	}
	return total
}
