package course

import (
	"strings"

	"github.com/lyoapp/lyo/internal/preferences"
)

// Course is a generated course outline.
type Course struct {
	Title       string
	Description string

	// Category, Difficulty and Tags are optional metadata. The generator may
	// leave them empty; launch applies defaults.
	Category   string
	Difficulty string
	Tags       []string

	Modules []Module
}

// Module is an ordered group of lessons.
type Module struct {
	Title                    string
	Description              string
	EstimatedDurationMinutes int
	Lessons                  []Lesson
}

// Lesson is a single unit inside a module.
type Lesson struct {
	Title                    string
	Description              string
	EstimatedDurationMinutes int
}

// LessonCount returns the total number of lessons across modules.
func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// Request is everything needed for one generation attempt.
type Request struct {
	Topic       string
	Goal        string
	Preferences preferences.Preferences
}

// Validate rejects requests that must never reach the service.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrEmptyTopic
	}
	return r.Preferences.Validate()
}
