package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/feedback/internal/client"
	"github.com/joescharf/feedback/internal/models"
	"github.com/joescharf/feedback/internal/output"
	"github.com/joescharf/feedback/internal/workflow"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <review-id>",
	Short: "Show a single review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun(cmd.Context(), args[0])
	},
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "text", "Output format: text, json")
	rootCmd.AddCommand(showCmd)
}

func showRun(ctx context.Context, id string) error {
	if showFormat != "text" && showFormat != "json" {
		return fmt.Errorf("unknown format: %s (use: text, json)", showFormat)
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	d := workflow.NewDetail(c)
	switch s := d.Load(ctx, id).(type) {
	case workflow.NotFound:
		ui.Warning("Review Not Found")
		fmt.Fprintf(ui.ErrOut, "The review you're looking for doesn't exist: %s\n", id)
		fmt.Fprintln(ui.ErrOut, "Run 'feedback list' to see all reviews.")
		return fmt.Errorf("review not found: %s", id)
	case workflow.Failed:
		if client.IsNotFound(s.Err) {
			ui.Warning("The API answered 404; check api.base_url (%s)", c.BaseURL())
		}
		return fmt.Errorf("error loading review: %s", s.Message())
	case workflow.Loaded[*models.Review]:
		if showFormat == "json" {
			enc := json.NewEncoder(ui.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(s.Data)
		}
		printReview(s.Data)
		return nil
	default:
		return fmt.Errorf("error loading review: unexpected state %T", s)
	}
}

func printReview(r *models.Review) {
	out := ui.Out
	fmt.Fprintf(out, "Review Details\n")
	fmt.Fprintf(out, "  Review ID:  %s\n", output.Cyan(r.ID.String()))
	fmt.Fprintf(out, "  Member ID:  %s\n", r.MemberID)
	fmt.Fprintf(out, "  Provider:   %s\n", r.ProviderName)
	fmt.Fprintf(out, "  Rating:     %s %s\n", output.ColorStars(r.Rating), output.RatingColor(r.Rating))
	if t := r.SubmittedTime(); t != nil {
		fmt.Fprintf(out, "  Submitted:  %s\n", output.FormatDate(t))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Comment:")
	if c := r.CommentText(); c != "" {
		fmt.Fprintf(out, "    %s\n", c)
	} else {
		fmt.Fprintln(out, "    No comment provided")
	}
}
