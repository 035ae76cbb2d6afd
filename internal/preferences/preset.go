package preferences

import (
	"fmt"
	"strings"
)

// Preset names.
const (
	PresetCasual    = "Casual"
	PresetBalanced  = "Balanced"
	PresetFocused   = "Focused"
	PresetIntensive = "Intensive"
)

// Preset is a named bundle of preference defaults applied atomically.
type Preset struct {
	Name        string
	Description string
	Preferences Preferences
}

// presets is ordered for display.
var presets = []Preset{
	{
		Name:        PresetCasual,
		Description: "15 min/day, 3 days a week",
		Preferences: Preferences{
			ExperienceLevel: LevelBeginner,
			LearningStyle:   StyleExamplesFirst,
			Pace:            PaceSlow,
			MinutesPerDay:   15,
			DaysPerWeek:     3,
			ContentTypes:    []ContentType{ContentVideo, ContentText},
			TimeOfDay:       TimeFlexible,
			ReminderEnabled: false,
		},
	},
	{
		Name:        PresetBalanced,
		Description: "30 min/day on weekdays",
		Preferences: Preferences{
			ExperienceLevel: LevelBeginner,
			LearningStyle:   StyleHybrid,
			Pace:            PaceModerate,
			MinutesPerDay:   30,
			DaysPerWeek:     5,
			ContentTypes:    []ContentType{ContentVideo, ContentText, ContentInteractive},
			TimeOfDay:       TimeEvening,
			ReminderEnabled: true,
		},
	},
	{
		Name:        PresetFocused,
		Description: "60 min/day, every day",
		Preferences: Preferences{
			ExperienceLevel: LevelIntermediate,
			LearningStyle:   StyleProjectsFirst,
			Pace:            PaceModerate,
			MinutesPerDay:   60,
			DaysPerWeek:     7,
			ContentTypes:    []ContentType{ContentInteractive, ContentText},
			TimeOfDay:       TimeMorning,
			ReminderEnabled: true,
		},
	},
	{
		Name:        PresetIntensive,
		Description: "2 hours a day, every day",
		Preferences: Preferences{
			ExperienceLevel: LevelAdvanced,
			LearningStyle:   StyleTheoryFirst,
			Pace:            PaceFast,
			MinutesPerDay:   120,
			DaysPerWeek:     7,
			ContentTypes:    []ContentType{ContentText, ContentInteractive},
			TimeOfDay:       TimeMorning,
			ReminderEnabled: true,
		},
	},
}

// Presets returns all presets in display order. The returned values are
// copies; mutating them does not affect the reference presets.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		p.Preferences = p.Preferences.Clone()
		out[i] = p
	}
	return out
}

// Lookup returns a copy of the named preset's reference value. Names match
// case-insensitively.
func Lookup(name string) (Preferences, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p.Preferences.Clone(), nil
		}
	}
	return Preferences{}, fmt.Errorf("unknown preset %q", name)
}

// Match returns the name of the preset whose reference value equals p, or
// "" if none does.
func Match(p Preferences) string {
	for _, ps := range presets {
		if ps.Preferences.Equal(p) {
			return ps.Name
		}
	}
	return ""
}
