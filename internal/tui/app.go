package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Page identifies a top-level screen.
type Page int

const (
	PageSubmit Page = iota
	PageReviews
	PageDetail
)

func (p Page) String() string {
	switch p {
	case PageReviews:
		return "reviews"
	case PageDetail:
		return "detail"
	default:
		return "submit"
	}
}

// ParsePage maps a --page flag value to a Page.
func ParsePage(s string) (Page, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "submit":
		return PageSubmit, nil
	case "reviews", "list":
		return PageReviews, nil
	default:
		return PageSubmit, fmt.Errorf("unknown page: %s (use: submit, reviews)", s)
	}
}

// AppModel routes messages between the pages.
type AppModel struct {
	page    Page
	start   Page
	submit  SubmitPageModel
	list    ListPageModel
	detail  DetailPageModel
	styles  Styles
	baseURL string
}

// NewApp creates the app showing start first.
func NewApp(ctx context.Context, api API, baseURL string, start Page) AppModel {
	styles := DefaultStyles()
	if start == PageDetail {
		start = PageReviews
	}
	return AppModel{
		page:    start,
		start:   start,
		submit:  NewSubmitPageModel(ctx, api, styles),
		list:    NewListPageModel(ctx, api, styles),
		detail:  NewDetailPageModel(ctx, api, styles),
		styles:  styles,
		baseURL: baseURL,
	}
}

// Page returns the active page.
func (m AppModel) Page() Page { return m.page }

// Init starts the first fetch when opening on the reviews page.
func (m AppModel) Init() tea.Cmd {
	if m.start == PageReviews {
		return m.list.Mount()
	}
	return nil
}

func (m AppModel) typing() bool {
	switch m.page {
	case PageSubmit:
		return m.submit.Typing()
	case PageReviews:
		return m.list.Typing()
	}
	return false
}

// Update handles messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.typing() {
				return m, tea.Quit
			}
		case "f1":
			m.page = PageSubmit
			return m, nil
		case "f2":
			m.page = PageReviews
			return m, m.list.Mount()
		}

	case openReviewMsg:
		m.page = PageDetail
		return m, m.detail.Open(msg.id)

	case backMsg:
		m.page = PageReviews
		return m, nil

	case submittedMsg:
		m.submit, cmd = m.submit.Update(msg)
		return m, cmd

	case reviewsMsg:
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case reviewMsg:
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var c1, c2, c3 tea.Cmd
		m.submit, c1 = m.submit.Update(msg)
		m.list, c2 = m.list.Update(msg)
		m.detail, c3 = m.detail.Update(msg)
		return m, tea.Batch(c1, c2, c3)
	}

	switch m.page {
	case PageSubmit:
		m.submit, cmd = m.submit.Update(msg)
	case PageReviews:
		m.list, cmd = m.list.Update(msg)
	case PageDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m AppModel) tabs() string {
	tab := func(p Page, label string) string {
		if m.page == p || (p == PageReviews && m.page == PageDetail) {
			return m.styles.TabOn.Render(label)
		}
		return m.styles.Tab.Render(label)
	}
	return tab(PageSubmit, "F1 Submit Feedback") + tab(PageReviews, "F2 View Reviews")
}

func (m AppModel) help() string {
	switch m.page {
	case PageSubmit:
		return "tab/shift+tab: move  1-5 or left/right: rating  ctrl+s: submit  ctrl+c: quit"
	case PageReviews:
		return "/: filter  enter: open  c: clear filter  r: reload same filter  q: quit"
	default:
		return "esc/b: back  r: retry  q: quit"
	}
}

// View renders the app.
func (m AppModel) View() string {
	var body string
	switch m.page {
	case PageSubmit:
		body = m.submit.View()
	case PageReviews:
		body = m.list.View()
	case PageDetail:
		body = m.detail.View()
	}

	return m.styles.Header.Render("Provider Feedback") + "  " + m.styles.Muted.Render(m.baseURL) + "\n" +
		m.tabs() + "\n\n" +
		body + "\n" +
		m.styles.Footer.Render(m.help()) + "\n"
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, api API, baseURL string, start Page) error {
	p := tea.NewProgram(NewApp(ctx, api, baseURL, start), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
