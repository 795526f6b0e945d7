package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/feedback/internal/workflow"
)

var (
	submitMember   string
	submitProvider string
	submitRating   string
	submitComment  string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit feedback for a provider",
	Long: `Submit a review for a provider.

Member ID and provider name are required, rating is 1-5 and the comment is
optional (up to 200 characters). Each member can review a provider once.`,
	Example: `  feedback submit --member m-123456 --provider "Dr. Smith" --rating 5
  feedback submit --member m-123456 --provider "Dr. Smith" --rating 4 --comment "Very thorough"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitRun(cmd.Context())
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitMember, "member", "", "Member ID, e.g. m-123456 (required)")
	submitCmd.Flags().StringVar(&submitProvider, "provider", "", "Provider name, e.g. \"Dr. Smith\" (required)")
	submitCmd.Flags().StringVar(&submitRating, "rating", "", "Rating 1 (Poor) to 5 (Excellent) (required)")
	submitCmd.Flags().StringVar(&submitComment, "comment", "", "Optional comment, up to 200 characters")
	rootCmd.AddCommand(submitCmd)
}

func submitRun(ctx context.Context) error {
	form := workflow.Form{
		MemberID:     submitMember,
		ProviderName: submitProvider,
		Rating:       submitRating,
		Comment:      submitComment,
	}

	if dryRun {
		sub, err := form.Payload()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(sub, "", "  ")
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		ui.DryRunMsg("Would POST feedback:")
		fmt.Fprintln(ui.Out, string(data))
		return nil
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	s := workflow.NewSubmission(c)
	s.Form = form
	ui.VerboseLog("Submitting feedback for %s as %s", form.ProviderName, form.MemberID)

	msg := s.Submit(ctx)
	if msg.Kind == workflow.MessageSuccess {
		ui.Success("%s", msg.Text)
		return nil
	}
	return errors.New(msg.Text)
}
