package course

import (
	"fmt"
	"strings"

	"github.com/lyoapp/lyo/internal/preferences"
)

const courseSystemPrompt = `You are an expert instructional designer. You build short, practical course outlines that fit a learner's schedule and learning style.`

func buildCourseUserMessage(req Request, cfg Config) string {
	var b strings.Builder
	p := req.Preferences

	b.WriteString(fmt.Sprintf("Topic: %s\n", strings.TrimSpace(req.Topic)))
	if g := strings.TrimSpace(req.Goal); g != "" {
		b.WriteString(fmt.Sprintf("Learner goal: %s\n", g))
	}
	b.WriteString(fmt.Sprintf("Experience level: %s\n", p.ExperienceLevel))
	b.WriteString(fmt.Sprintf("Learning style: %s\n", describeStyle(p.LearningStyle)))
	b.WriteString(fmt.Sprintf("Pace: %s\n", p.Pace))
	b.WriteString(fmt.Sprintf("Time budget: %d minutes a day, %d days a week (%d minutes weekly)\n",
		p.MinutesPerDay, p.DaysPerWeek, p.WeeklyMinutes()))

	if len(p.ContentTypes) > 0 {
		types := make([]string, len(p.ContentTypes))
		for i, ct := range p.ContentTypes {
			types[i] = string(ct)
		}
		b.WriteString(fmt.Sprintf("Preferred content: %s\n", strings.Join(types, ", ")))
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
1. Create between %d and %d modules that build on each other in order.
2. Give every module 2-5 lessons. Each lesson should fit in a single %d-minute study session.
3. Keep titles short and concrete. Descriptions are one or two sentences.
4. Pick the difficulty that matches the learner's experience level.
5. Provide up to 5 lowercase tags and one broad category.`,
		cfg.MinModules, cfg.MaxModules, p.MinutesPerDay))

	return b.String()
}

func describeStyle(s preferences.LearningStyle) string {
	switch s {
	case preferences.StyleExamplesFirst:
		return "examples first, then the underlying idea"
	case preferences.StyleTheoryFirst:
		return "theory first, then worked examples"
	case preferences.StyleProjectsFirst:
		return "learn by building small projects"
	default:
		return "a mix of theory, examples and projects"
	}
}
