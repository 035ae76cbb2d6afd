package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lyoapp/lyo/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent classroom session events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		sessionID, _ := cmd.Flags().GetString("session")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().Sessions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No classroom sessions recorded yet.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-8s  %-8s  %-30s  %5s  %5s  %s\n",
			"Seq", "Timestamp", "Session", "Action", "Course", "Prog", "XP", "Detail")
		fmt.Println(strings.Repeat("─", 100))
		for _, ev := range events {
			if sessionID != "" && !strings.HasPrefix(ev.SessionID, sessionID) {
				continue
			}
			fmt.Printf("%-5d  %-19s  %-8s  %-8s  %-30s  %4.0f%%  %5d  %s\n",
				ev.Sequence,
				ev.Timestamp.Local().Format(timeLayout),
				truncate(ev.SessionID, 8),
				ev.Action,
				truncate(ev.CourseTitle, 30),
				ev.Progress*100,
				ev.XPEarned,
				ev.Detail,
			)
		}
		return nil
	},
}

var generationsCmd = &cobra.Command{
	Use:   "generations",
	Short: "List recent course generation attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().Generations(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query generations: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No course generations recorded yet.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-28s  %-10s  %-10s  %7s  %7s  %8s\n",
			"Seq", "Timestamp", "Topic", "Preset", "Outcome", "Modules", "Lessons", "Ms")
		fmt.Println(strings.Repeat("─", 106))
		for _, ev := range events {
			fmt.Printf("%-5d  %-19s  %-28s  %-10s  %-10s  %7d  %7d  %8d\n",
				ev.Sequence,
				ev.Timestamp.Local().Format(timeLayout),
				truncate(ev.Topic, 28),
				ev.Preset,
				ev.Outcome,
				ev.ModuleCount,
				ev.LessonCount,
				ev.DurationMs,
			)
			if ev.ErrorMessage != "" {
				fmt.Printf("       └ %s\n", ev.ErrorMessage)
			}
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	sessionsCmd.Flags().StringP("session", "s", "", "Only show events of this session (ID prefix)")
	generationsCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
}
