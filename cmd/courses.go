package cmd

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lyoapp/lyo/internal/classroom"
	"github.com/lyoapp/lyo/internal/launch"
	"github.com/lyoapp/lyo/internal/metrics"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List, relaunch or prune launched courses",
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List launched courses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		recs, err := e.store.CourseRepo().List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No courses launched yet.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-32s  %-14s  %-18s  %s\n",
			"ID", "Created", "Title", "Category", "Scene", "Lessons")
		fmt.Println(strings.Repeat("─", 138))
		for _, r := range recs {
			fmt.Printf("%-36s  %-19s  %-32s  %-14s  %-18s  %d\n",
				r.ID,
				r.CreatedAt.Local().Format(timeLayout),
				truncate(r.Title, 32),
				truncate(r.Category, 14),
				r.SceneID,
				r.LessonCount,
			)
		}
		return nil
	},
}

var coursesLaunchCmd = &cobra.Command{
	Use:   "launch <id>",
	Short: "Launch a previously generated course again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		ctx := cmd.Context()

		rec, err := e.store.CourseRepo().Get(ctx, args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("course %s not found", args[0])
		}
		msg, err := launch.Decode(rec.Payload)
		if err != nil {
			return fmt.Errorf("stored course %s: %w", rec.ID, err)
		}

		eng, err := newEngine(e.cfg, e.log)
		if err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		m := metrics.New(prometheus.NewRegistry())
		tracker := classroom.NewTracker(e.store.EventRepo(), e.log, m)
		bridge := classroom.NewBridge(eng, tracker, e.cfg.BridgeConfig(), e.log, m)
		defer bridge.Close()

		launched, err := bridge.LaunchCourse(ctx, launch.Course{
			ID:                msg.CourseID,
			Title:             msg.Title,
			Description:       msg.Description,
			Difficulty:        msg.Difficulty,
			EstimatedDuration: msg.EstimatedDuration,
			Category:          msg.Category,
			Tags:              msg.Tags,
			Rating:            msg.Rating,
			EnrolledCount:     msg.EnrolledCount,
			LessonCount:       rec.LessonCount,
		}, launch.Options{
			Environment: msg.Environment,
			TutorRole:   msg.TutorRole,
			Provider:    msg.Provider,
		})
		if err != nil {
			return fmt.Errorf("launch: %w", err)
		}
		fmt.Printf("Relaunched %q in %s (session %s)\n", msg.Title, launched.Message.Environment, launched.Session.ID)
		return replaySession(ctx, cmd, bridge)
	},
}

var coursesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent launched courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return fmt.Errorf("--keep must not be negative")
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.CourseRepo().Prune(cmd.Context(), keep); err != nil {
			return err
		}
		fmt.Printf("Kept the %d most recent courses.\n", keep)
		return nil
	},
}

func init() {
	coursesListCmd.Flags().IntP("limit", "n", 20, "Number of courses to show")
	coursesLaunchCmd.Flags().Float64Slice("progress", nil, "Progress fractions to report after launch")
	coursesLaunchCmd.Flags().Bool("completed", false, "Mark the session completed on exit (default: progress >= 0.95)")
	coursesPruneCmd.Flags().Int("keep", 20, "Number of courses to keep")

	coursesCmd.AddCommand(coursesListCmd)
	coursesCmd.AddCommand(coursesLaunchCmd)
	coursesCmd.AddCommand(coursesPruneCmd)
}
