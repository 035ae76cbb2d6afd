package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/lyoapp/lyo/internal/preferences"
)

// OfflineGenerator builds a template outline from the topic alone. It backs
// dry runs and `lyo build --offline` when no LLM provider is configured.
type OfflineGenerator struct{}

type moduleTemplate struct {
	title   string
	desc    string
	lessons []string
}

func (OfflineGenerator) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Course, error) {
	if progress == nil {
		progress = func(float64, string) {}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	topic := strings.TrimSpace(req.Topic)
	p := req.Preferences

	progress(0.1, "Sketching modules")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	templates := []moduleTemplate{
		{"Foundations of %s", "The vocabulary and core ideas behind %s.",
			[]string{"What is %s?", "Key terms in %s", "How %s is used today"}},
		{"Working with %s", "Hands-on techniques that make %s click.",
			[]string{"Your first %s exercise", "Common %s mistakes"}},
		{"Going further with %s", "Where to take %s next.",
			[]string{"Planning your %s practice"}},
	}
	if p.LearningStyle == preferences.StyleProjectsFirst {
		templates = append(templates, moduleTemplate{
			"A %s project", "Apply %s end to end in a small project.",
			[]string{"Scoping a %s project", "Building and reviewing"},
		})
	}

	minutes := p.MinutesPerDay
	if minutes <= 0 {
		minutes = preferences.MinMinutesPerDay
	}

	c := &Course{
		Title:       fmt.Sprintf("%s Essentials", topic),
		Description: fmt.Sprintf("A %s-level introduction to %s in %d-minute sessions.", p.ExperienceLevel, topic, minutes),
		Difficulty:  string(p.ExperienceLevel),
		Tags:        []string{},
	}
	for i, t := range templates {
		progress(0.1+0.8*float64(i+1)/float64(len(templates)), fmt.Sprintf("Writing module %d of %d", i+1, len(templates)))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := Module{
			Title:       sprintfTopic(t.title, topic),
			Description: sprintfTopic(t.desc, topic),
		}
		for _, l := range t.lessons {
			m.Lessons = append(m.Lessons, Lesson{
				Title:                    sprintfTopic(l, topic),
				Description:              fmt.Sprintf("A short %s session.", strings.ToLower(topic)),
				EstimatedDurationMinutes: minutes,
			})
			m.EstimatedDurationMinutes += minutes
		}
		c.Modules = append(c.Modules, m)
	}

	progress(1, "Course ready")
	return c, nil
}

// sprintfTopic fills %s verbs with topic; templates without a verb pass through.
func sprintfTopic(format, topic string) string {
	n := strings.Count(format, "%s")
	if n == 0 {
		return format
	}
	args := make([]any, n)
	for i := range args {
		args[i] = topic
	}
	return fmt.Sprintf(format, args...)
}
