package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int   // max results (0 = unlimited)
	After int64 // sequence > After
}

// LLMRequestEventData captures a single LLM API call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls per purpose.
type LLMUsage struct {
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// Generation outcomes.
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// GenerationEventData records the end of one course generation attempt.
type GenerationEventData struct {
	Attempt      int64
	Topic        string
	Preset       string
	Outcome      string
	ModuleCount  int
	LessonCount  int
	DurationMs   int64
	ErrorMessage string
}

type GenerationEvent struct {
	Sequence  int64
	Timestamp time.Time
	GenerationEventData
}

// Classroom session actions.
const (
	ActionStart    = "start"
	ActionProgress = "progress"
	ActionEnd      = "end"
	ActionAnomaly  = "anomaly"
)

// SessionEventData records a classroom session transition.
type SessionEventData struct {
	SessionID   string
	CourseID    string
	CourseTitle string
	Action      string
	Progress    float64
	Completed   bool
	XPEarned    int
	Detail      string
}

type SessionEvent struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// LLMRequests returns LLM events newest first.
	LLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// LLMRequest returns the event with the given sequence, or nil.
	LLMRequest(ctx context.Context, seq int64) (*LLMRequestEvent, error)

	// LLMUsage aggregates LLM calls by purpose.
	LLMUsage(ctx context.Context) ([]LLMUsage, error)

	AppendGeneration(ctx context.Context, data GenerationEventData) error
	Generations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error)

	AppendSession(ctx context.Context, data SessionEventData) error

	// Sessions returns classroom session events newest first.
	Sessions(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)
}

// CourseRecord is a launched course kept for later relaunch. Payload is
// the LoadCourse message as sent to the engine.
type CourseRecord struct {
	ID          string
	Title       string
	Category    string
	SceneID     string
	LessonCount int
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// CourseRepo stores launched courses.
type CourseRepo interface {
	Save(ctx context.Context, rec CourseRecord) error

	// Get returns the course with id, or nil if none exists.
	Get(ctx context.Context, id string) (*CourseRecord, error)

	// List returns courses newest first.
	List(ctx context.Context, limit int) ([]CourseRecord, error)

	// Prune deletes all but the keep most recent courses.
	Prune(ctx context.Context, keep int) error
}
