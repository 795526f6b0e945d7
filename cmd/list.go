package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joescharf/feedback/internal/models"
	"github.com/joescharf/feedback/internal/output"
	"github.com/joescharf/feedback/internal/workflow"
)

var (
	listMember string
	listFormat string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "reviews"},
	Short:   "List submitted feedback",
	Long:    "List reviews. With --member, only that member's reviews are fetched.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun(cmd.Context())
	},
}

func init() {
	listCmd.Flags().StringVar(&listMember, "member", "", "Only show reviews by this member ID")
	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table, json, csv")
	rootCmd.AddCommand(listCmd)
}

func listRun(ctx context.Context) error {
	switch listFormat {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unknown format: %s (use: table, json, csv)", listFormat)
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	l := workflow.NewListing(c)
	l.SetFilter(listMember)

	var st workflow.State
	if l.Filter() == "" {
		st = l.Mount(ctx)
	} else {
		st = l.Apply(ctx)
	}

	switch s := st.(type) {
	case workflow.Failed:
		return fmt.Errorf("load reviews: %s (run again to retry)", s.Message())
	case workflow.Loaded[[]models.Review]:
		return renderReviews(s.Data, l.Applied())
	default:
		return fmt.Errorf("load reviews: unexpected state %T", st)
	}
}

func renderReviews(reviews []models.Review, member string) error {
	switch listFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(reviews)
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write([]string{"ID", "MemberID", "ProviderName", "Rating", "Comment", "SubmittedAt"})
		for _, r := range reviews {
			submitted := ""
			if t := r.SubmittedTime(); t != nil {
				submitted = t.UTC().Format("2006-01-02T15:04:05Z")
			}
			_ = w.Write([]string{r.ID.String(), r.MemberID, r.ProviderName, strconv.Itoa(r.Rating), r.CommentText(), submitted})
		}
		w.Flush()
		return w.Error()
	}

	if len(reviews) == 0 {
		if member != "" {
			ui.Info("No reviews found for member %s.", output.Cyan(member))
		} else {
			ui.Info("No reviews found.")
		}
		return nil
	}

	ui.Info("Number of reviews: %d", len(reviews))
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"ID", "Member", "Provider", "Rating", "", "Comment"})
	for _, r := range reviews {
		_ = table.Append([]string{
			output.Cyan(r.ID.String()),
			r.MemberID,
			r.ProviderName,
			output.ColorStars(r.Rating),
			output.RatingColor(r.Rating),
			output.Truncate(r.CommentText(), 40),
		})
	}
	_ = table.Render()

	fmt.Fprintln(ui.Out)
	ui.Info("Run 'feedback show <id>' for details.")
	return nil
}
