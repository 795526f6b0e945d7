package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joescharf/feedback/internal/models"
	"github.com/joescharf/feedback/internal/output"
	"github.com/joescharf/feedback/internal/workflow"
)

// DetailPageModel shows a single review.
type DetailPageModel struct {
	ctx    context.Context
	api    workflow.Getter
	detail *workflow.Detail

	spinner spinner.Model
	styles  Styles
}

// NewDetailPageModel creates an idle detail page.
func NewDetailPageModel(ctx context.Context, api workflow.Getter, styles Styles) DetailPageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return DetailPageModel{
		ctx:     ctx,
		api:     api,
		detail:  workflow.NewDetail(api),
		spinner: sp,
		styles:  styles,
	}
}

// Detail exposes the underlying workflow.
func (m DetailPageModel) Detail() *workflow.Detail { return m.detail }

// Open fetches id unless it is already shown.
func (m *DetailPageModel) Open(id string) tea.Cmd {
	if !m.detail.Stale(id) {
		return nil
	}
	t, ok := m.detail.Begin(id)
	if !ok {
		return nil
	}
	return m.fetch(t)
}

func (m *DetailPageModel) fetch(t workflow.Ticket) tea.Cmd {
	return tea.Batch(getCmd(m.ctx, m.api, t), m.spinner.Tick)
}

// Update handles messages.
func (m DetailPageModel) Update(msg tea.Msg) (DetailPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewMsg:
		m.detail.Finish(msg.ticket, msg.review, msg.err)
		return m, nil

	case spinner.TickMsg:
		if _, ok := m.detail.State().(workflow.Loading); !ok {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "b":
			return m, back
		case "r":
			if _, loading := m.detail.State().(workflow.Loading); loading {
				return m, nil
			}
			t, ok := m.detail.Retry()
			if !ok {
				return m, nil
			}
			return m, m.fetch(t)
		}
	}
	return m, nil
}

// View renders the page.
func (m DetailPageModel) View() string {
	var sb strings.Builder

	switch s := m.detail.State().(type) {
	case workflow.Idle:
		sb.WriteString(m.styles.Muted.Render("No review selected."))
	case workflow.Loading:
		sb.WriteString(m.spinner.View() + " Loading review...")
	case workflow.Failed:
		sb.WriteString(m.styles.Error.Render("Error Loading Review\n\n" + s.Message()))
		sb.WriteString("\n\n" + m.styles.Muted.Render("Press r to retry."))
	case workflow.NotFound:
		sb.WriteString(m.styles.Title.Render("Review Not Found"))
		sb.WriteString("\n\nThe review you're looking for doesn't exist.")
	case workflow.Loaded[*models.Review]:
		sb.WriteString(m.card(s.Data))
	}

	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Muted.Render("esc/b: back to reviews  r: reload"))
	return sb.String()
}

func (m DetailPageModel) card(r *models.Review) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(r.ProviderName))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d/5 %s\n\n",
		m.styles.Stars.Render(output.Stars(r.Rating)), r.Rating, models.RatingLabel(r.Rating))

	fmt.Fprintf(&b, "Review ID:  %s\n", r.ID)
	fmt.Fprintf(&b, "Member ID:  %s\n", r.MemberID)
	if t := r.SubmittedTime(); t != nil {
		fmt.Fprintf(&b, "Submitted:  %s\n", output.FormatDate(t))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("Comment"))
	b.WriteString("\n")
	if c := r.CommentText(); c != "" {
		b.WriteString(c)
	} else {
		b.WriteString(m.styles.Muted.Render("No comment provided"))
	}

	return m.styles.Card.Render(b.String())
}
