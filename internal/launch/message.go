// Package launch encodes courses into the payload the classroom engine
// loads, and defines the typed commands sent to it.
package launch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/lyoapp/lyo/internal/environment"
)

const (
	DefaultDifficulty        = "beginner"
	DefaultEstimatedDuration = "30 min"
	DefaultCategory          = "General"
	DefaultTutorRole         = "guide"
	DefaultProvider          = "Lyo Academy"
)

// Difficulties is the vocabulary the engine understands.
var Difficulties = []string{"beginner", "intermediate", "advanced"}

// Course is the launch-side view of a course.
type Course struct {
	ID                string
	Title             string
	Description       string
	Difficulty        string
	EstimatedDuration string
	Category          string
	Tags              []string
	Rating            float64
	EnrolledCount     int

	// LessonCount is not sent to the engine; the classroom uses it for XP.
	LessonCount int
}

// Options override parts of the encoded message.
type Options struct {
	// Environment forces a scene ID instead of resolving one.
	Environment string
	TutorRole   string
	Provider    string

	// Resolver replaces the built-in environment rules.
	Resolver *environment.Resolver
}

// Message is the wire payload of a LoadCourse command.
type Message struct {
	CourseID          string   `json:"courseId"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Difficulty        string   `json:"difficulty"`
	EstimatedDuration string   `json:"estimatedDuration"`
	Category          string   `json:"category"`
	Tags              []string `json:"tags"`
	Environment       string   `json:"environment"`
	TutorRole         string   `json:"tutorRole"`
	Provider          string   `json:"provider"`
	Rating            float64  `json:"rating"`
	EnrolledCount     int      `json:"enrolledCount"`
}

// SerializationError reports a message that could not be put on the wire.
// Nothing is dispatched when it occurs.
type SerializationError struct {
	CourseID string
	Err      error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize launch message for course %q: %v", e.CourseID, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Encode fills defaults and resolves the environment. It never fails.
func Encode(c Course, opts Options) Message {
	category := orDefault(c.Category, DefaultCategory)

	env := strings.TrimSpace(opts.Environment)
	if env == "" {
		if opts.Resolver != nil {
			env = opts.Resolver.Resolve(category, c.Title).SceneID
		} else {
			env = environment.Resolve(category, c.Title).SceneID
		}
	}

	return Message{
		CourseID:          c.ID,
		Title:             c.Title,
		Description:       c.Description,
		Difficulty:        NormalizeDifficulty(c.Difficulty),
		EstimatedDuration: orDefault(c.EstimatedDuration, DefaultEstimatedDuration),
		Category:          category,
		Tags:              dedupe(c.Tags),
		Environment:       env,
		TutorRole:         orDefault(opts.TutorRole, DefaultTutorRole),
		Provider:          orDefault(opts.Provider, DefaultProvider),
		Rating:            c.Rating,
		EnrolledCount:     c.EnrolledCount,
	}
}

// NormalizeDifficulty lowercases d and falls back to beginner for anything
// outside the vocabulary.
func NormalizeDifficulty(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if slices.Contains(Difficulties, d) {
		return d
	}
	return DefaultDifficulty
}

// Marshal renders m as JSON. Any encoder failure is a *SerializationError
// and no bytes are returned.
func Marshal(m Message) ([]byte, error) {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, &SerializationError{CourseID: m.CourseID, Err: err}
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a LoadCourse payload.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode launch message: %w", err)
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m, nil
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

// dedupe keeps the first occurrence of each non-blank tag.
func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
