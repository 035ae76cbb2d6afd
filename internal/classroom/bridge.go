package classroom

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/lyoapp/lyo/internal/engine"
	"github.com/lyoapp/lyo/internal/launch"
	"github.com/lyoapp/lyo/internal/logger"
	"github.com/lyoapp/lyo/internal/metrics"
)

// Config tunes the bridge.
type Config struct {
	// InitGrace bounds how long InitializeEngine waits before assuming the
	// engine is ready.
	InitGrace time.Duration

	// OutboxSize is how many commands may queue before new ones are dropped.
	OutboxSize int

	// SendTimeout bounds a single transport write.
	SendTimeout time.Duration

	XPPerLesson     int
	CompletionBonus int
}

func DefaultConfig() Config {
	return Config{
		InitGrace:       500 * time.Millisecond,
		OutboxSize:      64,
		SendTimeout:     5 * time.Second,
		XPPerLesson:     10,
		CompletionBonus: 50,
	}
}

// XP awards XPPerLesson for each lesson's worth of progress, plus the
// completion bonus.
func (c Config) XP(progress float64, lessons int, completed bool) int {
	xp := int(math.Round(launch.Clamp(progress) * float64(max(lessons, 0)) * float64(c.XPPerLesson)))
	if completed {
		xp += c.CompletionBonus
	}
	return xp
}

// Launched describes a successful launch.
type Launched struct {
	Session Session
	Message launch.Message
}

// Bridge owns the one-way channel to the render engine and the classroom
// session that spans a launch.
type Bridge struct {
	engine  engine.Engine
	tracker *Tracker
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Metrics

	// ctx outlives callers; it is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	outbox  chan engine.Frame
	drained chan struct{}

	mu          sync.Mutex
	starting    *startAttempt
	initialized bool
	closed      bool
	lessons     int
	anomalies   int
}

// startAttempt is one run of Engine.Start. err is written before done is
// closed.
type startAttempt struct {
	done chan struct{}
	err  error
}

// NewBridge creates a bridge and starts its outbox goroutine.
func NewBridge(eng engine.Engine, tracker *Tracker, cfg Config, log *logger.Logger, m *metrics.Metrics) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = DefaultConfig().OutboxSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultConfig().SendTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		engine:  eng,
		tracker: tracker,
		cfg:     cfg,
		log:     log.With("component", "classroom-bridge"),
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
		outbox:  make(chan engine.Frame, cfg.OutboxSize),
		drained: make(chan struct{}),
	}
	go b.drain()
	return b
}

// InitializeEngine starts the engine once. It returns as soon as the
// engine is up or InitGrace elapses, whichever comes first; in the latter
// case the engine is assumed ready and a late start failure is only logged.
// A start failure inside the grace window is returned and the next call
// tries again.
func (b *Bridge) InitializeEngine(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBridgeClosed
	}
	if b.initialized {
		b.mu.Unlock()
		return nil
	}
	if b.starting == nil {
		b.starting = &startAttempt{done: make(chan struct{})}
		go b.start(b.starting)
	}
	att := b.starting
	b.mu.Unlock()

	timer := time.NewTimer(b.cfg.InitGrace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-att.done:
	case <-timer.C:
		b.log.Debug("engine init grace elapsed, assuming ready", "grace", b.cfg.InitGrace)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-att.done:
		if att.err != nil {
			if b.starting == att {
				b.starting = nil
			}
			return att.err
		}
	default:
	}
	b.initialized = true
	return nil
}

func (b *Bridge) start(att *startAttempt) {
	err := b.engine.Start(b.ctx)
	b.mu.Lock()
	att.err = err
	late := b.initialized
	close(att.done)
	b.mu.Unlock()

	switch {
	case err != nil && late:
		b.log.Error("engine failed to start after grace window", "error", err)
	case err != nil:
		b.log.Warn("engine failed to start", "error", err)
	default:
		b.log.Debug("engine started")
	}
}

// Dispatch queues cmd for the engine without blocking. Commands before
// initialization are a protocol anomaly and are dropped, as are commands
// that find the outbox full.
func (b *Bridge) Dispatch(ctx context.Context, cmd launch.Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBridgeClosed
	}
	if !b.initialized {
		b.anomalyLocked(AnomalyNotInitialized, "method", cmd.Method())
		b.metrics.Dispatch(cmd.Method(), "rejected")
		return ErrEngineNotInitialized
	}

	f := engine.Frame{Target: cmd.Target(), Method: cmd.Method(), Payload: cmd.Payload()}
	select {
	case b.outbox <- f:
		return nil
	default:
		b.log.Warn("engine outbox full, dropping command", "method", f.Method)
		b.metrics.Dispatch(f.Method, "dropped")
		return ErrOutboxFull
	}
}

func (b *Bridge) drain() {
	defer close(b.drained)
	for f := range b.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.SendTimeout)
		err := b.engine.Send(ctx, f)
		cancel()
		if err != nil {
			b.log.Warn("engine send failed", "method", f.Method, "error", err)
			b.metrics.Dispatch(f.Method, "failed")
			continue
		}
		b.metrics.Dispatch(f.Method, "sent")
	}
}

// LaunchCourse initializes the engine, encodes c, dispatches LoadCourse and
// opens a session. Nothing is dispatched and no session opens if any step
// fails.
func (b *Bridge) LaunchCourse(ctx context.Context, c launch.Course, opts launch.Options) (Launched, error) {
	if open, ok := b.tracker.Current(); ok {
		b.anomaly(AnomalySessionAlreadyOpen, "open_session", open.ID, "rejected_course", c.ID)
		b.metrics.Launch("refused")
		return Launched{}, ErrSessionAlreadyOpen
	}

	if err := b.InitializeEngine(ctx); err != nil {
		b.metrics.Launch("engine_failed")
		return Launched{}, err
	}

	msg := launch.Encode(c, opts)
	cmd, err := launch.NewLoadCourse(msg)
	if err != nil {
		b.log.Error("launch aborted", "course", c.ID, "error", err)
		b.metrics.Launch("serialization_failed")
		return Launched{}, err
	}

	if err := b.Dispatch(ctx, cmd); err != nil {
		b.metrics.Launch("dispatch_failed")
		return Launched{}, err
	}

	s, err := b.tracker.Start(ctx, msg.CourseID, msg.Title, msg.Environment, msg.Difficulty)
	if err != nil {
		b.metrics.Launch("refused")
		return Launched{}, err
	}
	b.mu.Lock()
	b.lessons = c.LessonCount
	b.mu.Unlock()

	b.log.Info("course launched", "course", msg.CourseID, "environment", msg.Environment, "session", s.ID)
	b.metrics.Launch("ok")
	return Launched{Session: s, Message: msg}, nil
}

// ReportProgress records progress on the open session and forwards it to
// the engine.
func (b *Bridge) ReportProgress(ctx context.Context, fraction float64) error {
	if !b.tracker.RecordProgress(ctx, fraction) {
		return ErrNoOpenSession
	}
	return b.Dispatch(ctx, launch.UpdateProgress{Fraction: fraction})
}

// Exit ends the open session, awarding XP. Without an open session it is a
// logged no-op.
func (b *Bridge) Exit(ctx context.Context, finalProgress float64, completed *bool) (Session, error) {
	if _, ok := b.tracker.Current(); !ok {
		b.anomaly(AnomalyExitWithoutSession)
		return Session{}, ErrNoOpenSession
	}

	progress := launch.Clamp(finalProgress)
	done := progress >= CompletionThreshold
	if completed != nil {
		done = *completed
	}

	b.mu.Lock()
	lessons := b.lessons
	b.mu.Unlock()

	s, ok := b.tracker.End(ctx, &done, progress, b.cfg.XP(progress, lessons, done))
	if !ok {
		b.anomaly(AnomalyExitWithoutSession)
		return Session{}, ErrNoOpenSession
	}
	return s, nil
}

// Anomalies counts protocol anomalies seen by the bridge and its tracker.
func (b *Bridge) Anomalies() int {
	b.mu.Lock()
	n := b.anomalies
	b.mu.Unlock()
	return n + b.tracker.Anomalies()
}

// Close flushes queued commands and closes the engine. An open session is
// left for the caller to end.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.outbox)
	b.mu.Unlock()

	<-b.drained
	b.cancel()
	if s, ok := b.tracker.Current(); ok {
		b.log.Warn("bridge closed with open session", "session", s.ID)
	}
	return b.engine.Close()
}

func (b *Bridge) anomaly(kind string, kv ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.anomalyLocked(kind, kv...)
}

func (b *Bridge) anomalyLocked(kind string, kv ...any) {
	b.anomalies++
	b.log.Warn("protocol anomaly", append([]any{"kind", kind}, kv...)...)
	b.metrics.Anomaly(kind)
}
