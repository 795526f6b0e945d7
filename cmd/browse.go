package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/feedback/internal/tui"
)

var browsePage string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive terminal UI",
	Long: `Open the interactive terminal UI with a submit form and the reviews list.

Keys: F1 submit page, F2 reviews page, tab/shift+tab move between fields,
ctrl+s submits, / filters reviews by member, enter opens a review,
esc goes back, ctrl+c quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := tui.ParsePage(browsePage)
		if err != nil {
			return err
		}
		c, err := getClient()
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), c, c.BaseURL(), page)
	},
}

func init() {
	browseCmd.Flags().StringVar(&browsePage, "page", "submit", "Start page: submit, reviews")
	rootCmd.AddCommand(browseCmd)
}
