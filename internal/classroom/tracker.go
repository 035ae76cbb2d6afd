package classroom

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lyoapp/lyo/internal/launch"
	"github.com/lyoapp/lyo/internal/logger"
	"github.com/lyoapp/lyo/internal/metrics"
	"github.com/lyoapp/lyo/internal/store"
)

// CompletionThreshold is the progress at which a session counts as
// completed when the caller does not say otherwise.
const CompletionThreshold = 0.95

// Session is one launch-to-exit interval.
type Session struct {
	ID            string
	CourseID      string
	CourseName    string
	Environment   string
	Difficulty    string
	StartedAt     time.Time
	EndedAt       *time.Time
	FinalProgress float64
	Completed     bool
	XPEarned      int
}

// Open reports whether the session has not ended yet.
func (s Session) Open() bool {
	return s.EndedAt == nil
}

// Sink receives session lifecycle events. store.EventRepo satisfies it.
type Sink interface {
	AppendSession(ctx context.Context, data store.SessionEventData) error
}

// Tracker records at most one open session at a time.
type Tracker struct {
	sink    Sink
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	open      *Session
	last      *Session
	anomalies int
}

// NewTracker creates a tracker. sink, log and m may be nil.
func NewTracker(sink Sink, log *logger.Logger, m *metrics.Metrics) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{
		sink:    sink,
		log:     log.With("component", "classroom-tracker"),
		metrics: m,
		now:     time.Now,
	}
}

// Start opens a session. If one is already open the call is ignored and
// ErrSessionAlreadyOpen is returned; the open session is left untouched.
func (t *Tracker) Start(ctx context.Context, courseID, courseName, environment, difficulty string) (Session, error) {
	t.mu.Lock()
	if t.open != nil {
		t.anomalies++
		open := *t.open
		t.mu.Unlock()

		t.log.Warn("protocol anomaly", "kind", AnomalySessionAlreadyOpen,
			"open_session", open.ID, "open_course", open.CourseID, "rejected_course", courseID)
		t.metrics.Anomaly(AnomalySessionAlreadyOpen)
		t.emit(ctx, open, store.ActionAnomaly, "start rejected for course "+courseID)
		return open, ErrSessionAlreadyOpen
	}
	s := &Session{
		ID:          uuid.NewString(),
		CourseID:    courseID,
		CourseName:  courseName,
		Environment: environment,
		Difficulty:  difficulty,
		StartedAt:   t.now(),
	}
	t.open = s
	started := *s
	t.mu.Unlock()

	t.log.Info("classroom session started", "session", started.ID, "course", courseID, "environment", environment)
	t.emit(ctx, started, store.ActionStart, "")
	return started, nil
}

// RecordProgress stores fraction, clamped to [0,1], on the open session.
// Without an open session it does nothing and returns false.
func (t *Tracker) RecordProgress(ctx context.Context, fraction float64) bool {
	t.mu.Lock()
	if t.open == nil {
		t.mu.Unlock()
		t.log.Debug("progress ignored, no open session", "fraction", fraction)
		return false
	}
	t.open.FinalProgress = launch.Clamp(fraction)
	s := *t.open
	t.mu.Unlock()

	t.emit(ctx, s, store.ActionProgress, "")
	return true
}

// End closes the open session. A nil completed means "completed if
// finalProgress reached CompletionThreshold". Ending when nothing is open
// is a no-op that returns false.
func (t *Tracker) End(ctx context.Context, completed *bool, finalProgress float64, xp int) (Session, bool) {
	t.mu.Lock()
	if t.open == nil {
		t.mu.Unlock()
		return Session{}, false
	}
	s := t.open
	s.FinalProgress = launch.Clamp(finalProgress)
	if completed != nil {
		s.Completed = *completed
	} else {
		s.Completed = s.FinalProgress >= CompletionThreshold
	}
	s.XPEarned = max(xp, 0)
	ended := t.now()
	s.EndedAt = &ended
	t.open, t.last = nil, s
	out := *s
	t.mu.Unlock()

	t.log.Info("classroom session ended", "session", out.ID, "progress", out.FinalProgress,
		"completed", out.Completed, "xp", out.XPEarned, "duration", ended.Sub(out.StartedAt))
	t.emit(ctx, out, store.ActionEnd, "")
	return out, true
}

// Current returns the open session, if any.
func (t *Tracker) Current() (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open == nil {
		return Session{}, false
	}
	return *t.open, true
}

// Last returns the most recently ended session, if any.
func (t *Tracker) Last() (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return Session{}, false
	}
	return *t.last, true
}

// Anomalies returns how many protocol anomalies the tracker has seen.
func (t *Tracker) Anomalies() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anomalies
}

// emit forwards an event to the sink. Sink failures are logged only.
func (t *Tracker) emit(ctx context.Context, s Session, action, detail string) {
	if t.sink == nil {
		return
	}
	err := t.sink.AppendSession(context.WithoutCancel(ctx), store.SessionEventData{
		SessionID:   s.ID,
		CourseID:    s.CourseID,
		CourseTitle: s.CourseName,
		Action:      action,
		Progress:    s.FinalProgress,
		Completed:   s.Completed,
		XPEarned:    s.XPEarned,
		Detail:      detail,
	})
	if err != nil {
		t.log.Warn("failed to record session event", "action", action, "error", err)
	}
}
