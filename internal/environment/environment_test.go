package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		category string
		title    string
		want     string
	}{
		{"History", "Maya Civilization Basics", "MayaCivilization"},
		{"Astronomy", "Life on MARS", "MarsExploration"},
		{"Science", "Intro", "ChemistryLab"},
		{"Education", "Mathematics for Kids", "MathematicsHall"},
		{"History", "Rome and its Emperors", "AncientRome"},
		{"History", "Greece 101", "AncientGreece"},
		{"History", "egypt unwrapped", "AncientEgypt"},
		{"Miscellaneous", "Random Topic", DefaultSceneID},
		{"General", "Photography Fundamentals", DefaultSceneID},
		{"", "", DefaultSceneID},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.category, tt.title).SceneID)
		})
	}
}

func TestResolve_FirstRuleWins(t *testing.T) {
	// "civilization" (rule 1) beats "rome" (rule 5).
	d := Resolve("History", "Rome: A Civilization")
	assert.Equal(t, "MayaCivilization", d.SceneID)

	// Category alone is enough.
	d = Resolve("Space", "Untitled")
	assert.Equal(t, "MarsExploration", d.SceneID)
}

func TestResolve_Deterministic(t *testing.T) {
	a := Resolve("History", "Maya Civilization Basics")
	b := Resolve("History", "Maya Civilization Basics")
	assert.Equal(t, a, b)
}

func TestCustomResolver(t *testing.T) {
	r := NewResolver([]Rule{
		{Keywords: []string{"Ocean"}, Descriptor: Descriptor{SceneID: "DeepSea"}},
	}, Default)

	assert.Equal(t, "DeepSea", r.Resolve("", "the ocean floor").SceneID)
	assert.Equal(t, DefaultSceneID, r.Resolve("", "maya").SceneID)
}

func TestRules_ReturnsCopy(t *testing.T) {
	rules := Rules()
	rules[0].Keywords[0] = "changed"
	assert.Equal(t, "MayaCivilization", Resolve("", "maya").SceneID)
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("ChemistryLab")
	assert.True(t, ok)
	assert.Equal(t, "Chemistry Lab", d.DisplayName)

	d, ok = Lookup(DefaultSceneID)
	assert.True(t, ok)
	assert.Equal(t, Default, d)

	_, ok = Lookup("Atlantis")
	assert.False(t, ok)
}

func TestDescriptors_Distinct(t *testing.T) {
	seen := map[string]bool{DefaultSceneID: true}
	for _, r := range Rules() {
		assert.False(t, seen[r.Descriptor.SceneID], "duplicate scene %s", r.Descriptor.SceneID)
		seen[r.Descriptor.SceneID] = true
	}
}
