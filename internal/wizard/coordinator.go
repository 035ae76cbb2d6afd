// Package wizard drives course creation: it collects a topic and
// preferences, runs one cancellable generation at a time, previews the
// flattened outline and hands the result to the classroom.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lyoapp/lyo/internal/classroom"
	"github.com/lyoapp/lyo/internal/course"
	"github.com/lyoapp/lyo/internal/launch"
	"github.com/lyoapp/lyo/internal/logger"
	"github.com/lyoapp/lyo/internal/metrics"
	"github.com/lyoapp/lyo/internal/outline"
	"github.com/lyoapp/lyo/internal/preferences"
	"github.com/lyoapp/lyo/internal/store"
)

// Launcher starts a classroom session for a course. classroom.Bridge
// satisfies it.
type Launcher interface {
	LaunchCourse(ctx context.Context, c launch.Course, opts launch.Options) (classroom.Launched, error)
}

// GenerationSink records finished generation attempts. store.EventRepo
// satisfies it.
type GenerationSink interface {
	AppendGeneration(ctx context.Context, data store.GenerationEventData) error
}

// Event is delivered to the Observer after the state change it describes
// has been applied.
type Event struct {
	Kind     EventKind
	Attempt  int64
	Progress float64
	Status   string
	Course   *course.Course
	Lessons  []outline.Lesson
	Err      error
}

// Observer is called from the generation goroutine. Calls never overlap,
// and within an attempt progress never goes backwards.
type Observer func(Event)

// Options configures a Coordinator. Everything except the generator is
// optional.
type Options struct {
	Launcher      Launcher
	LaunchOptions launch.Options
	Observer      Observer
	Events        GenerationSink
	Courses       store.CourseRepo
	Logger        *logger.Logger
	Metrics       *metrics.Metrics

	// Policy flattens generated courses. Nil means outline.DefaultPolicy
	// with the learner's content types.
	Policy *outline.Policy

	// Timeout bounds a single generation attempt. Zero means no bound.
	Timeout time.Duration
}

// State is a point-in-time copy of the wizard.
type State struct {
	Step        Step
	Topic       string
	Goal        string
	Preferences preferences.Preferences
	Preset      string
	Attempt     int64
	InFlight    bool
	Progress    float64
	Status      string
	Err         error
	Course      *course.Course
	Lessons     []outline.Lesson
	Dismissed   bool
}

// Coordinator is the wizard state machine. It is safe for concurrent use.
type Coordinator struct {
	gen  course.Generator
	opts Options
	log  *logger.Logger

	mu        sync.Mutex
	step      Step
	topic     string
	goal      string
	prefs     preferences.Preferences
	preset    string
	attempt   int64
	inFlight  bool
	cancel    context.CancelFunc
	progress  float64
	status    string
	err       error
	result    *course.Course
	lessons   []outline.Lesson
	dismissed bool
	tasks     sync.WaitGroup

	// notifyMu serializes Observer calls; delivered is the last event
	// handed to the Observer.
	notifyMu  sync.Mutex
	delivered Event
}

// New creates a coordinator starting at StepCollectingTopic with the
// Balanced preset applied.
func New(gen course.Generator, opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Coordinator{
		gen:    gen,
		opts:   opts,
		log:    log.With("component", "wizard"),
		step:   StepCollectingTopic,
		prefs:  preferences.Default(),
		preset: preferences.PresetBalanced,
	}
}

// SetTopic stores the topic as typed; it is trimmed when advancing.
func (c *Coordinator) SetTopic(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(StepCollectingTopic); err != nil {
		return err
	}
	c.topic = text
	return nil
}

func (c *Coordinator) SetGoal(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(StepCollectingTopic); err != nil {
		return err
	}
	c.goal = text
	return nil
}

// ApplyPreset replaces the whole preference value with the named preset.
func (c *Coordinator) ApplyPreset(name string) error {
	p, err := preferences.Lookup(name)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(StepCollectingPreferences); err != nil {
		return err
	}
	c.prefs = p
	c.preset = preferences.Match(p)
	return nil
}

// SetPreferences replaces the preferences wholesale. The active preset is
// kept only if p equals a preset's reference value.
func (c *Coordinator) SetPreferences(p preferences.Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(StepCollectingPreferences); err != nil {
		return err
	}
	c.prefs = p.Clone()
	c.preset = preferences.Match(p)
	return nil
}

// Advance moves to the next step. From PreviewingResult it launches the
// classroom and leaves the step unchanged.
func (c *Coordinator) Advance(ctx context.Context) error {
	c.mu.Lock()
	if c.dismissed {
		c.mu.Unlock()
		return ErrDismissed
	}
	switch c.step {
	case StepCollectingTopic:
		defer c.mu.Unlock()
		if strings.TrimSpace(c.topic) == "" {
			return course.ErrEmptyTopic
		}
		c.step = StepCollectingPreferences
		return nil
	case StepCollectingPreferences:
		if err := c.prefs.Validate(); err != nil {
			c.mu.Unlock()
			return err
		}
		c.step = StepGenerating
		c.mu.Unlock()
		return c.Generate(ctx)
	case StepGenerating:
		defer c.mu.Unlock()
		if c.inFlight {
			return ErrGenerationInFlight
		}
		return ErrNotReady
	default:
		c.mu.Unlock()
		_, err := c.Launch(ctx)
		return err
	}
}

// Back returns to the previous step. Leaving the preview discards it so
// the course can be regenerated.
func (c *Coordinator) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dismissed {
		return ErrDismissed
	}
	switch c.step {
	case StepCollectingTopic:
		return ErrNoPreviousStep
	case StepCollectingPreferences:
		c.step = StepCollectingTopic
	case StepGenerating:
		if c.inFlight {
			return ErrGenerationInFlight
		}
		c.step = StepCollectingPreferences
		c.resetGenerationLocked()
	case StepPreviewingResult:
		c.step = StepGenerating
		c.resetGenerationLocked()
	}
	return nil
}

// Cancel stops any in-flight generation and dismisses the wizard. It is
// terminal and safe to call more than once.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dismissed {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.attempt++
	c.inFlight = false
	c.dismissed = true
	c.log.Info("wizard dismissed", "step", c.step.String())
}

// Generate starts a new generation attempt, cancelling any earlier one.
// It returns once the attempt is running; results arrive through the
// Observer and Snapshot.
func (c *Coordinator) Generate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expectLocked(StepGenerating); err != nil {
		return err
	}
	req := course.Request{
		Topic:       strings.TrimSpace(c.topic),
		Goal:        strings.TrimSpace(c.goal),
		Preferences: c.prefs.Clone(),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.attempt++
	id := c.attempt

	taskCtx, cancel := context.WithCancel(ctx)
	if c.opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		taskCtx, cancelTimeout = context.WithTimeout(taskCtx, c.opts.Timeout)
		parent := cancel
		cancel = func() { cancelTimeout(); parent() }
	}
	c.cancel = cancel
	c.inFlight = true
	c.progress = 0
	c.status = ""
	c.err = nil
	c.result = nil
	c.lessons = nil

	c.log.Info("generation started", "attempt", id, "topic", req.Topic, "preset", c.preset)

	c.tasks.Add(1)
	go c.run(taskCtx, id, req, c.preset)
	return nil
}

func (c *Coordinator) run(ctx context.Context, id int64, req course.Request, preset string) {
	defer c.tasks.Done()
	start := time.Now()

	result, err := c.gen.Generate(ctx, req, func(f float64, status string) {
		c.onProgress(id, f, status)
	})
	if err == nil && result == nil {
		err = errors.New("generator returned no course")
	}
	c.finish(ctx, id, req, preset, result, err, time.Since(start))
}

func (c *Coordinator) onProgress(id int64, f float64, status string) {
	c.mu.Lock()
	if id != c.attempt || !c.inFlight {
		c.mu.Unlock()
		return
	}
	f = clamp(f)
	if f < c.progress {
		c.mu.Unlock()
		return
	}
	c.progress = f
	c.status = status
	ev := Event{Kind: EventProgress, Attempt: id, Progress: f, Status: status}
	c.mu.Unlock()

	c.notify(ev)
}

func (c *Coordinator) finish(ctx context.Context, id int64, req course.Request, preset string, result *course.Course, err error, elapsed time.Duration) {
	data := store.GenerationEventData{
		Attempt:    id,
		Topic:      req.Topic,
		Preset:     preset,
		DurationMs: elapsed.Milliseconds(),
	}

	c.mu.Lock()
	if id != c.attempt || !c.inFlight {
		c.mu.Unlock()
		c.log.Debug("discarding superseded generation", "attempt", id)
		data.Outcome = store.OutcomeSuperseded
		c.record(ctx, data, elapsed)
		return
	}
	c.inFlight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	var ev Event
	if err != nil {
		genErr := &course.GenerationError{Topic: req.Topic, Err: err}
		c.err = genErr
		ev = Event{Kind: EventFailed, Attempt: id, Progress: c.progress, Status: c.status, Err: genErr}
		data.Outcome = store.OutcomeFailed
		data.ErrorMessage = err.Error()
	} else {
		c.result = result
		c.lessons = outline.Flatten(result, c.policy(req.Preferences))
		c.progress = 1
		c.step = StepPreviewingResult
		ev = Event{Kind: EventCompleted, Attempt: id, Progress: 1, Status: c.status, Course: result, Lessons: c.lessons}
		data.Outcome = store.OutcomeSucceeded
		data.ModuleCount = len(result.Modules)
		data.LessonCount = len(c.lessons)
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("generation failed", "attempt", id, "topic", req.Topic, "error", err)
	} else {
		c.log.Info("generation finished", "attempt", id, "modules", data.ModuleCount,
			"lessons", data.LessonCount, "duration_ms", data.DurationMs)
	}
	c.record(ctx, data, elapsed)
	c.notify(ev)
}

func (c *Coordinator) record(ctx context.Context, data store.GenerationEventData, elapsed time.Duration) {
	c.opts.Metrics.Generation(data.Outcome, elapsed)
	if c.opts.Events == nil {
		return
	}
	if err := c.opts.Events.AppendGeneration(context.WithoutCancel(ctx), data); err != nil {
		c.log.Warn("failed to record generation", "attempt", data.Attempt, "error", err)
	}
}

// notify delivers ev unless the Observer has already seen a newer attempt,
// a final event for this attempt, or higher progress.
func (c *Coordinator) notify(ev Event) {
	if c.opts.Observer == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if last := c.delivered; last.Attempt > 0 {
		switch {
		case ev.Attempt < last.Attempt:
			return
		case ev.Attempt == last.Attempt && last.Kind != EventProgress:
			return
		case ev.Attempt == last.Attempt && ev.Kind == EventProgress && ev.Progress < last.Progress:
			return
		}
	}
	c.delivered = Event{Kind: ev.Kind, Attempt: ev.Attempt, Progress: ev.Progress}
	c.opts.Observer(ev)
}

// Wait blocks until every generation goroutine has returned.
func (c *Coordinator) Wait() {
	c.tasks.Wait()
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	var lessons []outline.Lesson
	if c.lessons != nil {
		lessons = append([]outline.Lesson(nil), c.lessons...)
	}
	return State{
		Step:        c.step,
		Topic:       c.topic,
		Goal:        c.goal,
		Preferences: c.prefs.Clone(),
		Preset:      c.preset,
		Attempt:     c.attempt,
		InFlight:    c.inFlight,
		Progress:    c.progress,
		Status:      c.status,
		Err:         c.err,
		Course:      c.result,
		Lessons:     lessons,
		Dismissed:   c.dismissed,
	}
}

// Launch hands the previewed course to the classroom.
func (c *Coordinator) Launch(ctx context.Context) (classroom.Launched, error) {
	c.mu.Lock()
	if err := c.expectLocked(StepPreviewingResult); err != nil {
		c.mu.Unlock()
		return classroom.Launched{}, err
	}
	if c.opts.Launcher == nil {
		c.mu.Unlock()
		return classroom.Launched{}, ErrNoLauncher
	}
	lc := launchCourse(c.result, c.lessons, c.prefs)
	c.mu.Unlock()

	launched, err := c.opts.Launcher.LaunchCourse(ctx, lc, c.opts.LaunchOptions)
	if err != nil {
		return classroom.Launched{}, err
	}
	c.save(ctx, launched, lc.LessonCount)
	return launched, nil
}

func (c *Coordinator) save(ctx context.Context, l classroom.Launched, lessons int) {
	if c.opts.Courses == nil {
		return
	}
	payload, err := launch.Marshal(l.Message)
	if err != nil {
		c.log.Warn("failed to encode launched course", "course_id", l.Message.CourseID, "error", err)
		return
	}
	err = c.opts.Courses.Save(ctx, store.CourseRecord{
		ID:          l.Message.CourseID,
		Title:       l.Message.Title,
		Category:    l.Message.Category,
		SceneID:     l.Message.Environment,
		LessonCount: lessons,
		Payload:     payload,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		c.log.Warn("failed to save launched course", "course_id", l.Message.CourseID, "error", err)
	}
}

func launchCourse(gc *course.Course, lessons []outline.Lesson, p preferences.Preferences) launch.Course {
	difficulty := gc.Difficulty
	if difficulty == "" {
		difficulty = string(p.ExperienceLevel)
	}
	return launch.Course{
		ID:                uuid.NewString(),
		Title:             gc.Title,
		Description:       gc.Description,
		Difficulty:        difficulty,
		EstimatedDuration: FormatDuration(outline.TotalMinutes(lessons)),
		Category:          gc.Category,
		Tags:              gc.Tags,
		LessonCount:       len(lessons),
	}
}

// FormatDuration renders minutes as "45 min", "2 hr" or "1 hr 30 min".
// Non-positive input yields the launch default.
func FormatDuration(minutes int) string {
	switch {
	case minutes <= 0:
		return launch.DefaultEstimatedDuration
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%d hr", minutes/60)
	default:
		return fmt.Sprintf("%d hr %d min", minutes/60, minutes%60)
	}
}

func (c *Coordinator) policy(p preferences.Preferences) outline.Policy {
	pol := outline.DefaultPolicy()
	if c.opts.Policy != nil {
		pol = *c.opts.Policy
	}
	if len(pol.ContentTypes) == 0 {
		pol.ContentTypes = p.ContentTypes
	}
	return pol
}

func (c *Coordinator) expectLocked(step Step) error {
	if c.dismissed {
		return ErrDismissed
	}
	if c.step != step {
		return fmt.Errorf("%w: in %s, want %s", ErrWrongStep, c.step, step)
	}
	return nil
}

func (c *Coordinator) resetGenerationLocked() {
	c.progress = 0
	c.status = ""
	c.err = nil
	c.result = nil
	c.lessons = nil
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
