package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lyoapp/lyo/internal/classroom"
	"github.com/lyoapp/lyo/internal/course"
	"github.com/lyoapp/lyo/internal/launch"
	"github.com/lyoapp/lyo/internal/llm"
	"github.com/lyoapp/lyo/internal/logger"
	"github.com/lyoapp/lyo/internal/metrics"
	"github.com/lyoapp/lyo/internal/preferences"
	"github.com/lyoapp/lyo/internal/wizard"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate a course outline and optionally launch it in the classroom",
	Long: `Walk through the course wizard non-interactively: set the topic and goal,
apply a preset and any preference overrides, generate the outline and print
a preview. With --launch the course is sent to the classroom engine and a
session is tracked; --progress replays progress updates before exiting.`,
	Example: `  lyo build --topic Photography --preset Balanced
  lyo build --topic "Ancient Rome" --offline --launch --progress 0.5,1`,
	RunE: runBuild,
}

func init() {
	addBuildFlags(buildCmd)
	_ = buildCmd.MarkFlagRequired("topic")
}

func addBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("topic", "", "What to learn (required)")
	f.String("goal", "", "Optional learning goal")
	f.String("preset", preferences.PresetBalanced, "Preference preset: Casual, Balanced, Focused or Intensive")
	f.String("level", "", "Override experience level: beginner, intermediate or advanced")
	f.Int("minutes", 0, "Override minutes per day (10-120)")
	f.Int("days", 0, "Override days per week (1-7)")
	f.StringSlice("content", nil, "Override content types: video, text, interactive")
	f.Bool("offline", false, "Use the built-in template generator instead of an LLM")
	f.Bool("launch", false, "Launch the generated course in the classroom")
	f.Float64Slice("progress", nil, "Progress fractions to report after launch")
	f.Bool("completed", false, "Mark the session completed on exit (default: progress >= 0.95)")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
}

func runBuild(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx, cmd, e)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv := serveMetrics(addr, reg, e.log)
		defer srv.Close()
	}

	eng, err := newEngine(e.cfg, e.log)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	tracker := classroom.NewTracker(e.store.EventRepo(), e.log, m)
	bridge := classroom.NewBridge(eng, tracker, e.cfg.BridgeConfig(), e.log, m)
	defer bridge.Close()

	policy := e.cfg.OutlinePolicy()
	wiz := wizard.New(gen, wizard.Options{
		Launcher: bridge,
		Observer: printProgress,
		Events:   e.store.EventRepo(),
		Courses:  e.store.CourseRepo(),
		Logger:   e.log,
		Metrics:  m,
		Policy:   &policy,
		Timeout:  e.cfg.Generation.Timeout,
	})
	defer wiz.Cancel()

	if err := collect(ctx, cmd, wiz); err != nil {
		return err
	}

	wiz.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	snap := wiz.Snapshot()
	if snap.Err != nil {
		return snap.Err
	}
	printPreview(snap)

	if ok, _ := cmd.Flags().GetBool("launch"); !ok {
		fmt.Println("\nRun again with --launch to open it in the classroom.")
		return nil
	}
	return runSession(ctx, cmd, wiz, bridge)
}

// collect drives the wizard from the topic step into generation.
func collect(ctx context.Context, cmd *cobra.Command, wiz *wizard.Coordinator) error {
	topic, _ := cmd.Flags().GetString("topic")
	goal, _ := cmd.Flags().GetString("goal")
	preset, _ := cmd.Flags().GetString("preset")

	if err := wiz.SetTopic(topic); err != nil {
		return err
	}
	if err := wiz.SetGoal(goal); err != nil {
		return err
	}
	if err := wiz.Advance(ctx); err != nil {
		return err
	}
	if err := wiz.ApplyPreset(preset); err != nil {
		return err
	}

	p, changed := preferenceOverrides(cmd, wiz.Snapshot().Preferences)
	if changed {
		if err := wiz.SetPreferences(p); err != nil {
			return err
		}
	}

	snap := wiz.Snapshot()
	label := snap.Preset
	if label == "" {
		label = "custom"
	}
	fmt.Printf("Building %q with %s preferences: %s\n", strings.TrimSpace(snap.Topic), label, snap.Preferences.Describe())
	return wiz.Advance(ctx)
}

func preferenceOverrides(cmd *cobra.Command, p preferences.Preferences) (preferences.Preferences, bool) {
	f := cmd.Flags()
	changed := false
	if f.Changed("level") {
		level, _ := f.GetString("level")
		p.ExperienceLevel = preferences.ExperienceLevel(strings.ToLower(level))
		changed = true
	}
	if f.Changed("minutes") {
		minutes, _ := f.GetInt("minutes")
		p = p.WithMinutesPerDay(minutes)
		changed = true
	}
	if f.Changed("days") {
		days, _ := f.GetInt("days")
		p = p.WithDaysPerWeek(days)
		changed = true
	}
	if f.Changed("content") {
		names, _ := f.GetStringSlice("content")
		types := make([]preferences.ContentType, len(names))
		for i, n := range names {
			types[i] = preferences.ContentType(strings.ToLower(strings.TrimSpace(n)))
		}
		p = p.WithContentTypes(types...)
		changed = true
	}
	return p, changed
}

func newGenerator(ctx context.Context, cmd *cobra.Command, e *env) (course.Generator, error) {
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		return course.OfflineGenerator{}, nil
	}
	provider, err := llm.NewProviderFromEnv(ctx, e.store.EventRepo(), e.log)
	if errors.Is(err, llm.ErrNotConfigured) {
		return nil, fmt.Errorf("%w; pass --offline to build a template outline", err)
	}
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return course.NewLLMGenerator(provider, course.DefaultConfig()), nil
}

func runSession(ctx context.Context, cmd *cobra.Command, wiz *wizard.Coordinator, bridge *classroom.Bridge) error {
	launched, err := wiz.Launch(ctx)
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	fmt.Printf("\nLaunched %q in %s (course %s, session %s)\n",
		launched.Message.Title, launched.Message.Environment, launched.Message.CourseID, launched.Session.ID)

	return replaySession(ctx, cmd, bridge)
}

// replaySession reports --progress values and closes the open session.
func replaySession(ctx context.Context, cmd *cobra.Command, bridge *classroom.Bridge) error {
	steps, _ := cmd.Flags().GetFloat64Slice("progress")
	final := 0.0
	for _, p := range steps {
		if err := bridge.ReportProgress(ctx, p); err != nil {
			return err
		}
		final = p
		fmt.Printf("Progress %3.0f%%\n", launch.Clamp(p)*100)
	}

	var completed *bool
	if cmd.Flags().Changed("completed") {
		c, _ := cmd.Flags().GetBool("completed")
		completed = &c
	}
	sess, err := bridge.Exit(ctx, final, completed)
	if err != nil {
		return err
	}
	status := "in progress"
	if sess.Completed {
		status = "completed"
	}
	fmt.Printf("Session %s %s at %.0f%%, %d XP earned\n", sess.ID, status, sess.FinalProgress*100, sess.XPEarned)
	return nil
}

func printProgress(ev wizard.Event) {
	if ev.Kind == wizard.EventProgress {
		fmt.Printf("[%3.0f%%] %s\n", ev.Progress*100, ev.Status)
	}
}

func printPreview(snap wizard.State) {
	c := snap.Course
	fmt.Printf("\n%s\n%s\n", c.Title, strings.Repeat("─", len([]rune(c.Title))))
	if c.Description != "" {
		fmt.Println(c.Description)
	}
	fmt.Printf("\n%d modules, %d lessons\n\n", len(c.Modules), len(snap.Lessons))
	total := 0
	for i, l := range snap.Lessons {
		fmt.Printf("%3d. %-48s  %-11s  %3d min\n", i+1, truncate(l.Title, 48), l.ContentType, l.EstimatedDurationMinutes)
		total += l.EstimatedDurationMinutes
	}
	fmt.Printf("\nEstimated duration: %s\n", wizard.FormatDuration(total))
}

func serveMetrics(addr string, reg *prometheus.Registry, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return srv
}
