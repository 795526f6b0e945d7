package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joescharf/feedback/internal/models"
	"github.com/joescharf/feedback/internal/output"
	"github.com/joescharf/feedback/internal/workflow"
)

// Form fields in focus order.
const (
	fieldMember = iota
	fieldProvider
	fieldRating
	fieldComment
	fieldCount
)

// SubmitPageModel is the feedback form.
type SubmitPageModel struct {
	ctx context.Context
	api workflow.Submitter
	sub *workflow.Submission

	member   textinput.Model
	provider textinput.Model
	comment  textinput.Model
	rating   int
	focus    int

	spinner spinner.Model
	styles  Styles
}

// NewSubmitPageModel creates an empty form focused on the member id.
func NewSubmitPageModel(ctx context.Context, api workflow.Submitter, styles Styles) SubmitPageModel {
	member := textinput.New()
	member.Placeholder = "e.g., m-123456"
	member.CharLimit = models.MaxMemberIDLen
	member.Width = 40

	provider := textinput.New()
	provider.Placeholder = "e.g., Dr. Smith"
	provider.CharLimit = models.MaxProviderNameLen
	provider.Width = 40

	comment := textinput.New()
	comment.Placeholder = "Share your experience..."
	comment.CharLimit = models.MaxCommentLen
	comment.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := SubmitPageModel{
		ctx:      ctx,
		api:      api,
		sub:      workflow.NewSubmission(api),
		member:   member,
		provider: provider,
		comment:  comment,
		spinner:  sp,
		styles:   styles,
	}
	m.setFocus(fieldMember)
	return m
}

// Typing reports whether a text input has focus, so plain letters belong to it.
func (m SubmitPageModel) Typing() bool { return m.focus != fieldRating }

// Submission exposes the underlying workflow.
func (m SubmitPageModel) Submission() *workflow.Submission { return m.sub }

func (m *SubmitPageModel) setFocus(f int) {
	m.focus = (f + fieldCount) % fieldCount
	m.member.Blur()
	m.provider.Blur()
	m.comment.Blur()
	switch m.focus {
	case fieldMember:
		m.member.Focus()
	case fieldProvider:
		m.provider.Focus()
	case fieldComment:
		m.comment.Focus()
	}
}

func (m *SubmitPageModel) form() workflow.Form {
	f := workflow.Form{
		MemberID:     m.member.Value(),
		ProviderName: m.provider.Value(),
		Comment:      m.comment.Value(),
	}
	if m.rating != 0 {
		f.Rating = strconv.Itoa(m.rating)
	}
	return f
}

func (m *SubmitPageModel) reset() {
	m.member.SetValue("")
	m.provider.SetValue("")
	m.comment.SetValue("")
	m.rating = 0
	m.setFocus(fieldMember)
}

func (m *SubmitPageModel) submit() tea.Cmd {
	if m.sub.Busy() {
		return nil
	}
	m.sub.Form = m.form()
	t, payload, ok := m.sub.Begin()
	if !ok {
		return nil
	}
	return tea.Batch(submitCmd(m.ctx, m.api, t, payload), m.spinner.Tick)
}

// Update handles messages.
func (m SubmitPageModel) Update(msg tea.Msg) (SubmitPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		m.sub.Finish(msg.ticket, msg.review, msg.err)
		if m.sub.Phase() == workflow.PhaseSucceeded {
			m.reset()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.sub.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.setFocus(m.focus + 1)
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.focus - 1)
			return m, nil
		case "ctrl+s":
			return m, m.submit()
		case "enter":
			if m.focus == fieldComment {
				return m, m.submit()
			}
			m.setFocus(m.focus + 1)
			return m, nil
		}
		if m.focus == fieldRating {
			m.updateRating(msg)
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldMember:
		m.member, cmd = m.member.Update(msg)
	case fieldProvider:
		m.provider, cmd = m.provider.Update(msg)
	case fieldComment:
		m.comment, cmd = m.comment.Update(msg)
	}
	return m, cmd
}

func (m *SubmitPageModel) updateRating(msg tea.KeyMsg) {
	switch k := msg.String(); k {
	case "left", "h", "-":
		if m.rating > models.MinRating {
			m.rating--
		}
	case "right", "l", "+":
		if m.rating < models.MaxRating {
			m.rating++
		}
	case "0", "backspace", "delete":
		m.rating = 0
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= models.MinRating && n <= models.MaxRating {
			m.rating = n
		}
	}
}

func (m SubmitPageModel) label(field int, text string) string {
	if m.focus == field {
		return m.styles.Focused.Render("> " + text)
	}
	return m.styles.Label.Render("  " + text)
}

func (m SubmitPageModel) ratingView() string {
	if m.rating == 0 {
		return m.styles.Muted.Render("Select a rating (1-5, or left/right)")
	}
	return fmt.Sprintf("%s %d - %s",
		m.styles.Stars.Render(output.Stars(m.rating)), m.rating, models.RatingLabel(m.rating))
}

// View renders the page.
func (m SubmitPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Submit Provider Feedback"))
	sb.WriteString("\n\n")

	sb.WriteString(m.label(fieldMember, "Member ID *") + "\n")
	sb.WriteString("  " + m.member.View() + "\n\n")

	sb.WriteString(m.label(fieldProvider, "Provider Name *") + "\n")
	sb.WriteString("  " + m.provider.View() + "\n\n")

	sb.WriteString(m.label(fieldRating, "Rating *") + "\n")
	sb.WriteString("  " + m.ratingView() + "\n\n")

	sb.WriteString(m.label(fieldComment, "Comment (optional)") + "\n")
	sb.WriteString("  " + m.comment.View() + "\n")
	counter := fmt.Sprintf("%d/%d", utf8.RuneCountInString(m.comment.Value()), models.MaxCommentLen)
	sb.WriteString("  " + m.styles.Muted.Render(counter) + "\n\n")

	if m.sub.Busy() {
		sb.WriteString(m.spinner.View() + " Submitting...")
	} else {
		sb.WriteString(m.styles.Button.Render("Submit Feedback"))
	}
	sb.WriteString("\n")

	if msg := m.sub.Message(); !msg.Empty() {
		sb.WriteString("\n")
		if msg.Kind == workflow.MessageSuccess {
			sb.WriteString(m.styles.Success.Render(msg.Text))
		} else {
			sb.WriteString(m.styles.Error.Render(msg.Text))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
