package course

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lyoapp/lyo/internal/llm"
)

// ProgressFunc receives a fraction in [0,1] and a human-readable status.
// Generators call it from their own goroutine.
type ProgressFunc func(fraction float64, status string)

// Generator produces a course outline for a request. Implementations must
// honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request, progress ProgressFunc) (*Course, error)
}

// LLMGenerator builds course outlines with an LLM provider. The provider is
// coarse-grained, so progress is reported at request stage boundaries.
type LLMGenerator struct {
	provider llm.Provider
	cfg      Config
}

// NewLLMGenerator creates a generator backed by provider.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, cfg: cfg}
}

type courseOutput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Difficulty  string         `json:"difficulty"`
	Tags        []string       `json:"tags"`
	Modules     []moduleOutput `json:"modules"`
}

type moduleOutput struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DurationMinutes int            `json:"estimated_duration_minutes"`
	Lessons         []lessonOutput `json:"lessons"`
}

type lessonOutput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"estimated_duration_minutes"`
}

func (g *LLMGenerator) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Course, error) {
	if progress == nil {
		progress = func(float64, string) {}
	}
	ctx = llm.WithPurpose(ctx, PurposeCourseOutline)

	progress(0.05, "Preparing your course request")

	llmReq := llm.Request{
		System: courseSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildCourseUserMessage(req, g.cfg)},
		},
		Schema:      CourseSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	progress(0.2, "Designing the course outline")

	resp, err := g.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, fmt.Errorf("course generation: %w", err)
	}

	progress(0.85, "Organizing modules and lessons")

	var out courseOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse course response: %w", err)
	}

	c := toCourse(out)
	progress(1, "Course ready")
	return c, nil
}

func toCourse(out courseOutput) *Course {
	c := &Course{
		Title:       strings.TrimSpace(out.Title),
		Description: strings.TrimSpace(out.Description),
		Category:    strings.TrimSpace(out.Category),
		Difficulty:  strings.ToLower(strings.TrimSpace(out.Difficulty)),
		Tags:        out.Tags,
		Modules:     make([]Module, 0, len(out.Modules)),
	}
	for _, m := range out.Modules {
		mod := Module{
			Title:                    m.Title,
			Description:              m.Description,
			EstimatedDurationMinutes: m.DurationMinutes,
			Lessons:                  make([]Lesson, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			mod.Lessons = append(mod.Lessons, Lesson{
				Title:                    l.Title,
				Description:              l.Description,
				EstimatedDurationMinutes: l.DurationMinutes,
			})
		}
		c.Modules = append(c.Modules, mod)
	}
	return c
}
