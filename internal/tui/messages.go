package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joescharf/feedback/internal/models"
	"github.com/joescharf/feedback/internal/workflow"
)

// API is what the pages need from the feedback client.
type API interface {
	workflow.Submitter
	workflow.Lister
	workflow.Getter
}

// submittedMsg is the result of a create request.
type submittedMsg struct {
	ticket workflow.Ticket
	review *models.Review
	err    error
}

// reviewsMsg is the result of a list request.
type reviewsMsg struct {
	ticket  workflow.Ticket
	reviews []models.Review
	err     error
}

// reviewMsg is the result of a single review request.
type reviewMsg struct {
	ticket workflow.Ticket
	review *models.Review
	err    error
}

// openReviewMsg asks the app to show the detail page for an id.
type openReviewMsg struct {
	id string
}

// backMsg asks the app to leave the detail page.
type backMsg struct{}

func submitCmd(ctx context.Context, api workflow.Submitter, t workflow.Ticket, sub models.Submission) tea.Cmd {
	return func() tea.Msg {
		review, err := api.SubmitFeedback(ctx, sub)
		return submittedMsg{ticket: t, review: review, err: err}
	}
}

func listCmd(ctx context.Context, api workflow.Lister, t workflow.Ticket) tea.Cmd {
	return func() tea.Msg {
		reviews, err := api.ListFeedback(ctx, t.Query)
		return reviewsMsg{ticket: t, reviews: reviews, err: err}
	}
}

func getCmd(ctx context.Context, api workflow.Getter, t workflow.Ticket) tea.Cmd {
	return func() tea.Msg {
		review, err := api.GetFeedbackByID(ctx, t.Query)
		return reviewMsg{ticket: t, review: review, err: err}
	}
}

func openReview(id string) tea.Cmd {
	return func() tea.Msg { return openReviewMsg{id: id} }
}

func back() tea.Msg { return backMsg{} }
