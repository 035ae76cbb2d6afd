package preferences

import (
	"fmt"
	"slices"
	"strings"
)

// ExperienceLevel is the learner's self-reported starting level.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "beginner"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelAdvanced     ExperienceLevel = "advanced"
)

// LearningStyle controls the order in which material is presented.
type LearningStyle string

const (
	StyleExamplesFirst LearningStyle = "examplesFirst"
	StyleTheoryFirst   LearningStyle = "theoryFirst"
	StyleProjectsFirst LearningStyle = "projectsFirst"
	StyleHybrid        LearningStyle = "hybrid"
)

// Pace is how quickly the course moves through material.
type Pace string

const (
	PaceSlow     Pace = "slow"
	PaceModerate Pace = "moderate"
	PaceFast     Pace = "fast"
)

// ContentType is a lesson delivery format.
type ContentType string

const (
	ContentVideo       ContentType = "video"
	ContentText        ContentType = "text"
	ContentInteractive ContentType = "interactive"
)

// TimeOfDay is the learner's preferred study slot.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeFlexible  TimeOfDay = "flexible"
)

const (
	MinMinutesPerDay = 10
	MaxMinutesPerDay = 120
	MinDaysPerWeek   = 1
	MaxDaysPerWeek   = 7
)

// Preferences is an immutable set of learning preferences. Edits produce a
// new value with the With* helpers; the original is never mutated.
type Preferences struct {
	ExperienceLevel ExperienceLevel
	LearningStyle   LearningStyle
	Pace            Pace
	MinutesPerDay   int
	DaysPerWeek     int
	ContentTypes    []ContentType
	TimeOfDay       TimeOfDay
	ReminderEnabled bool
}

// Default returns the value the wizard starts with (the Balanced preset).
func Default() Preferences {
	p, _ := Lookup(PresetBalanced)
	return p
}

// Validate checks every field and returns a *ValidationError for the first
// offending one.
func (p Preferences) Validate() error {
	switch p.ExperienceLevel {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return invalid("experienceLevel", "unknown level %q", p.ExperienceLevel)
	}
	switch p.LearningStyle {
	case StyleExamplesFirst, StyleTheoryFirst, StyleProjectsFirst, StyleHybrid:
	default:
		return invalid("learningStyle", "unknown style %q", p.LearningStyle)
	}
	switch p.Pace {
	case PaceSlow, PaceModerate, PaceFast:
	default:
		return invalid("pace", "unknown pace %q", p.Pace)
	}
	if p.MinutesPerDay < MinMinutesPerDay || p.MinutesPerDay > MaxMinutesPerDay {
		return invalid("minutesPerDay", "%d outside [%d,%d]", p.MinutesPerDay, MinMinutesPerDay, MaxMinutesPerDay)
	}
	if p.DaysPerWeek < MinDaysPerWeek || p.DaysPerWeek > MaxDaysPerWeek {
		return invalid("daysPerWeek", "%d outside [%d,%d]", p.DaysPerWeek, MinDaysPerWeek, MaxDaysPerWeek)
	}
	seen := make(map[ContentType]bool, len(p.ContentTypes))
	for _, ct := range p.ContentTypes {
		switch ct {
		case ContentVideo, ContentText, ContentInteractive:
		default:
			return invalid("contentTypePreferences", "unknown content type %q", ct)
		}
		if seen[ct] {
			return invalid("contentTypePreferences", "duplicate content type %q", ct)
		}
		seen[ct] = true
	}
	switch p.TimeOfDay {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeFlexible:
	default:
		return invalid("timeOfDay", "unknown time of day %q", p.TimeOfDay)
	}
	return nil
}

// Equal reports whether two values are identical. Content types compare as
// a set.
func (p Preferences) Equal(o Preferences) bool {
	if p.ExperienceLevel != o.ExperienceLevel ||
		p.LearningStyle != o.LearningStyle ||
		p.Pace != o.Pace ||
		p.MinutesPerDay != o.MinutesPerDay ||
		p.DaysPerWeek != o.DaysPerWeek ||
		p.TimeOfDay != o.TimeOfDay ||
		p.ReminderEnabled != o.ReminderEnabled {
		return false
	}
	if len(p.ContentTypes) != len(o.ContentTypes) {
		return false
	}
	for _, ct := range p.ContentTypes {
		if !slices.Contains(o.ContentTypes, ct) {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no backing storage with p.
func (p Preferences) Clone() Preferences {
	p.ContentTypes = slices.Clone(p.ContentTypes)
	return p
}

// WithMinutesPerDay returns a copy with MinutesPerDay replaced.
func (p Preferences) WithMinutesPerDay(m int) Preferences {
	c := p.Clone()
	c.MinutesPerDay = m
	return c
}

// WithDaysPerWeek returns a copy with DaysPerWeek replaced.
func (p Preferences) WithDaysPerWeek(d int) Preferences {
	c := p.Clone()
	c.DaysPerWeek = d
	return c
}

// WithContentTypes returns a copy with the content type set replaced.
func (p Preferences) WithContentTypes(types ...ContentType) Preferences {
	c := p.Clone()
	c.ContentTypes = slices.Clone(types)
	return c
}

// WeeklyMinutes is the planned study time per week.
func (p Preferences) WeeklyMinutes() int {
	return p.MinutesPerDay * p.DaysPerWeek
}

// Describe renders a one-line human summary, used in prompts and CLI output.
func (p Preferences) Describe() string {
	types := make([]string, len(p.ContentTypes))
	for i, ct := range p.ContentTypes {
		types[i] = string(ct)
	}
	content := "any"
	if len(types) > 0 {
		content = strings.Join(types, ", ")
	}
	return fmt.Sprintf("%s level, %s, %s pace, %d min/day, %d days/week, content: %s, %s",
		p.ExperienceLevel, p.LearningStyle, p.Pace, p.MinutesPerDay, p.DaysPerWeek, content, p.TimeOfDay)
}
