package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lyoapp/lyo/internal/environment"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <title>",
	Short: "Show which classroom environment a course would open in",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rules, _ := cmd.Flags().GetBool("rules"); rules {
			printRules()
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("a course title is required (or pass --rules)")
		}
		category, _ := cmd.Flags().GetString("category")
		d := environment.Resolve(category, args[0])
		fmt.Printf("Scene:     %s\n", d.SceneID)
		fmt.Printf("Name:      %s\n", d.DisplayName)
		fmt.Printf("Icon:      %s\n", d.Icon)
		fmt.Printf("Gradient:  %s → %s\n", d.Gradient[0], d.Gradient[1])
		return nil
	},
}

func printRules() {
	fmt.Printf("%-3s  %-18s  %s\n", "#", "Scene", "Keywords")
	fmt.Println(strings.Repeat("─", 60))
	for i, r := range environment.Rules() {
		fmt.Printf("%-3d  %-18s  %s\n", i+1, r.Descriptor.SceneID, strings.Join(r.Keywords, ", "))
	}
	fmt.Printf("%-3s  %-18s  %s\n", "-", environment.DefaultSceneID, "(no match)")
}

func init() {
	resolveCmd.Flags().StringP("category", "c", "", "Course category")
	resolveCmd.Flags().Bool("rules", false, "Print the keyword rule table")
}
