package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lyoapp/lyo/internal/preferences"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List preference presets",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-10s  %-28s  %s\n", "Name", "Schedule", "Preferences")
		fmt.Println(strings.Repeat("─", 100))
		for _, p := range preferences.Presets() {
			fmt.Printf("%-10s  %-28s  %s\n", p.Name, p.Description, p.Preferences.Describe())
		}
	},
}
