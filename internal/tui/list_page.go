package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joescharf/feedback/internal/models"
	"github.com/joescharf/feedback/internal/output"
	"github.com/joescharf/feedback/internal/workflow"
)

// ListPageModel shows submitted reviews with an optional member filter.
type ListPageModel struct {
	ctx     context.Context
	api     workflow.Lister
	listing *workflow.Listing

	table         table.Model
	filterInput   textinput.Model
	filterFocused bool

	spinner spinner.Model
	styles  Styles
}

// NewListPageModel creates an idle list page. Call Mount to fetch.
func NewListPageModel(ctx context.Context, api workflow.Lister, styles Styles) ListPageModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Provider", Width: 28},
			{Title: "Rating", Width: 12},
			{Title: "Member", Width: 16},
			{Title: "Comment", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	fi := textinput.New()
	fi.Placeholder = "Filter by member ID..."
	fi.CharLimit = models.MaxMemberIDLen
	fi.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ListPageModel{
		ctx:         ctx,
		api:         api,
		listing:     workflow.NewListing(api),
		table:       t,
		filterInput: fi,
		spinner:     sp,
		styles:      styles,
	}
}

// Typing reports whether the filter input has focus.
func (m ListPageModel) Typing() bool { return m.filterFocused }

// Listing exposes the underlying workflow.
func (m ListPageModel) Listing() *workflow.Listing { return m.listing }

// SetSize fits the table to the terminal.
func (m *ListPageModel) SetSize(w, h int) {
	if h > 10 {
		m.table.SetHeight(h - 10)
	}
	if w > 60 {
		m.table.SetWidth(w - 2)
	}
}

// Mount clears the filter and fetches every review.
func (m *ListPageModel) Mount() tea.Cmd {
	m.filterInput.SetValue("")
	m.filterFocused = false
	m.filterInput.Blur()
	return m.fetch(m.listing.ClearTicket())
}

func (m *ListPageModel) fetch(t workflow.Ticket) tea.Cmd {
	m.table.SetRows(nil)
	return tea.Batch(listCmd(m.ctx, m.api, t), m.spinner.Tick)
}

func (m *ListPageModel) loading() bool {
	_, ok := m.listing.State().(workflow.Loading)
	return ok
}

// Update handles messages.
func (m ListPageModel) Update(msg tea.Msg) (ListPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewsMsg:
		m.listing.Finish(msg.ticket, msg.reviews, msg.err)
		m.table.SetRows(reviewRows(m.listing.Reviews()))
		m.table.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filterFocused {
			switch msg.String() {
			case "esc":
				m.filterFocused = false
				m.filterInput.Blur()
				return m, nil
			case "enter":
				m.filterFocused = false
				m.filterInput.Blur()
				m.listing.SetFilter(m.filterInput.Value())
				return m, m.fetch(m.listing.ApplyTicket())
			}
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.listing.SetFilter(m.filterInput.Value())
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.filterFocused = true
			m.filterInput.Focus()
			return m, textinput.Blink
		case "c":
			m.filterInput.SetValue("")
			return m, m.fetch(m.listing.ClearTicket())
		case "r":
			// Reload keeps the applied member filter; c is the unfiltered reload.
			t := m.listing.ReloadTicket()
			m.filterInput.SetValue(t.Query)
			m.listing.SetFilter(t.Query)
			return m, m.fetch(t)
		case "enter":
			if id, ok := m.listing.Select(m.table.Cursor()); ok {
				return m, openReview(id.String())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListPageModel) retryHint() string {
	if applied := m.listing.Applied(); applied != "" {
		return fmt.Sprintf("Press r to retry for member %s, or c to show all reviews.", applied)
	}
	return "Press r to retry."
}

func reviewRows(reviews []models.Review) []table.Row {
	rows := make([]table.Row, 0, len(reviews))
	for _, r := range reviews {
		comment := r.CommentText()
		if comment == "" {
			comment = "-"
		}
		rows = append(rows, table.Row{
			output.Truncate(r.ProviderName, 28),
			fmt.Sprintf("%s %d", output.Stars(r.Rating), r.Rating),
			r.MemberID,
			output.Truncate(comment, 40),
		})
	}
	return rows
}

// View renders the page.
func (m ListPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Provider Reviews"))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Label.Render("Member ID: "))
	sb.WriteString(m.filterInput.View())
	sb.WriteString("\n\n")

	switch s := m.listing.State().(type) {
	case workflow.Idle:
	case workflow.Loading:
		sb.WriteString(m.spinner.View() + " Loading reviews...\n")
	case workflow.Failed:
		sb.WriteString(m.styles.Error.Render("Error: " + s.Message()))
		sb.WriteString("\n" + m.styles.Muted.Render(m.retryHint()) + "\n")
	case workflow.Loaded[[]models.Review]:
		fmt.Fprintf(&sb, "Number of reviews: %d\n\n", len(s.Data))
		if len(s.Data) == 0 {
			if applied := m.listing.Applied(); applied != "" {
				fmt.Fprintf(&sb, "No reviews found for member %s.\n", applied)
			} else {
				sb.WriteString("No reviews found.\n")
			}
		} else {
			sb.WriteString(m.table.View() + "\n")
		}
	}

	return sb.String()
}
