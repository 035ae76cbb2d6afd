package launch

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyoapp/lyo/internal/environment"
)

func TestEncode_Defaults(t *testing.T) {
	m := Encode(Course{ID: "c1", Title: "Photography Basics"}, Options{})

	assert.Equal(t, Message{
		CourseID:          "c1",
		Title:             "Photography Basics",
		Difficulty:        DefaultDifficulty,
		EstimatedDuration: DefaultEstimatedDuration,
		Category:          DefaultCategory,
		Tags:              []string{},
		Environment:       environment.DefaultSceneID,
		TutorRole:         DefaultTutorRole,
		Provider:          DefaultProvider,
	}, m)
}

func TestEncode_EnvironmentResolution(t *testing.T) {
	m := Encode(Course{Title: "Maya Civilization Basics", Category: "History"}, Options{})
	assert.Equal(t, "MayaCivilization", m.Environment)

	m = Encode(Course{Title: "Maya Civilization Basics"}, Options{Environment: "MarsExploration"})
	assert.Equal(t, "MarsExploration", m.Environment)

	custom := environment.NewResolver([]environment.Rule{{
		Keywords:   []string{"photo"},
		Descriptor: environment.Descriptor{SceneID: "Darkroom"},
	}}, environment.Default)
	m = Encode(Course{Title: "Photography"}, Options{Resolver: custom})
	assert.Equal(t, "Darkroom", m.Environment)
}

func TestEncode_DifficultyVocabulary(t *testing.T) {
	for in, want := range map[string]string{
		"":              "beginner",
		"Advanced":      "advanced",
		" intermediate": "intermediate",
		"expert":        "beginner",
	} {
		assert.Equal(t, want, Encode(Course{Difficulty: in}, Options{}).Difficulty, "difficulty %q", in)
	}
}

func TestEncode_TagsDeduplicated(t *testing.T) {
	m := Encode(Course{Tags: []string{"light", "camera", "light", " ", "lens"}}, Options{})
	assert.Equal(t, []string{"light", "camera", "lens"}, m.Tags)
}

func TestMarshal_EmptyTagsIsArray(t *testing.T) {
	data, err := Marshal(Encode(Course{ID: "c1", Title: "Photography"}, Options{}))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []any{}, raw["tags"])

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{}, decoded.Tags)

	data, err = Marshal(Message{CourseID: "c2"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags":[]`)
}

func TestMarshal_WireFieldNames(t *testing.T) {
	data, err := Marshal(Encode(Course{
		ID:            "c1",
		Title:         "Mars & Beyond",
		Tags:          []string{"space"},
		Rating:        4.5,
		EnrolledCount: 12,
	}, Options{TutorRole: "mentor"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"courseId": "c1",
		"title": "Mars & Beyond",
		"description": "",
		"difficulty": "beginner",
		"estimatedDuration": "30 min",
		"category": "General",
		"tags": ["space"],
		"environment": "MarsExploration",
		"tutorRole": "mentor",
		"provider": "Lyo Academy",
		"rating": 4.5,
		"enrolledCount": 12
	}`, string(data))
	assert.Contains(t, string(data), `"Mars & Beyond"`)
	assert.NotContains(t, string(data), "\n")
}

func TestRoundTrip(t *testing.T) {
	in := Encode(Course{ID: "c1", Title: "Ancient Egypt", Tags: []string{"pyramids", "nile"}, Rating: 3.25}, Options{})
	data, err := Marshal(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMarshal_SerializationFailure(t *testing.T) {
	for _, r := range []float64{math.NaN(), math.Inf(1)} {
		data, err := Marshal(Encode(Course{ID: "bad", Rating: r}, Options{}))
		assert.Nil(t, data)

		var serr *SerializationError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "bad", serr.CourseID)
	}

	_, err := NewLoadCourse(Message{CourseID: "bad", Rating: math.NaN()})
	var serr *SerializationError
	assert.ErrorAs(t, err, &serr)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"courseId":`))
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	load, err := NewLoadCourse(Encode(Course{ID: "c1"}, Options{}))
	require.NoError(t, err)
	assert.Equal(t, "ClassroomController", load.Target())
	assert.Equal(t, "LoadCourse", load.Method())
	assert.True(t, json.Valid([]byte(load.Payload())))

	var cmd Command = UpdateProgress{Fraction: 0.5}
	assert.Equal(t, "ClassroomController", cmd.Target())
	assert.Equal(t, "UpdateProgress", cmd.Method())
	assert.Equal(t, "0.5", cmd.Payload())
}

func TestUpdateProgress_Clamped(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{-0.2, "0"},
		{0, "0"},
		{0.25, "0.25"},
		{1, "1"},
		{1.7, "1"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UpdateProgress{Fraction: tt.fraction}.Payload())
	}
}
