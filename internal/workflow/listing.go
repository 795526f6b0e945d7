package workflow

import (
	"context"
	"strings"

	"github.com/joescharf/feedback/internal/models"
)

// Lister fetches review collections. An empty memberID means all reviews.
type Lister interface {
	ListFeedback(ctx context.Context, memberID string) ([]models.Review, error)
}

// Listing drives the reviews screen. The filter text is buffered locally and
// only sent when applied.
type Listing struct {
	api     Lister
	state   State
	filter  string
	applied string
	gen     generation
}

// NewListing creates an idle listing workflow.
func NewListing(api Lister) *Listing {
	return &Listing{api: api, state: Idle{}}
}

func (l *Listing) State() State { return l.state }

// Filter returns the buffered, not necessarily applied, filter text.
func (l *Listing) Filter() string { return l.filter }

// Applied returns the member id the current results are scoped to.
func (l *Listing) Applied() string { return l.applied }

// SetFilter buffers filter text without fetching.
func (l *Listing) SetFilter(text string) { l.filter = text }

// Reviews returns the loaded reviews, or nil in any other state.
func (l *Listing) Reviews() []models.Review {
	if s, ok := l.state.(Loaded[[]models.Review]); ok {
		return s.Data
	}
	return nil
}

// Empty reports a successful load with zero reviews.
func (l *Listing) Empty() bool {
	s, ok := l.state.(Loaded[[]models.Review])
	return ok && len(s.Data) == 0
}

// Select returns the id of the i-th loaded review.
func (l *Listing) Select(i int) (models.ID, bool) {
	reviews := l.Reviews()
	if i < 0 || i >= len(reviews) {
		return "", false
	}
	return reviews[i].ID, true
}

// Begin enters loading for memberID and returns the ticket to finish with.
func (l *Listing) Begin(memberID string) Ticket {
	l.applied = memberID
	l.state = Loading{}
	return l.gen.next(memberID)
}

// Finish applies a fetch result. Results of superseded fetches are dropped.
func (l *Listing) Finish(t Ticket, reviews []models.Review, err error) {
	if !l.gen.current(t) {
		return
	}
	if err != nil {
		l.state = Failed{Err: err}
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	l.state = Loaded[[]models.Review]{Data: reviews}
}

// MountTicket starts the initial unfiltered fetch.
func (l *Listing) MountTicket() Ticket { return l.Begin("") }

// ApplyTicket starts a fetch scoped to the trimmed filter.
func (l *Listing) ApplyTicket() Ticket { return l.Begin(strings.TrimSpace(l.filter)) }

// ClearTicket empties the filter and starts an unfiltered fetch.
func (l *Listing) ClearTicket() Ticket {
	l.filter = ""
	return l.Begin("")
}

// ReloadTicket repeats the last applied query, filter included. Buffered
// filter text that was never applied is ignored.
func (l *Listing) ReloadTicket() Ticket { return l.Begin(l.applied) }

// Mount fetches every review.
func (l *Listing) Mount(ctx context.Context) State { return l.run(ctx, l.MountTicket()) }

// Apply fetches reviews for the buffered filter; blank means unfiltered.
func (l *Listing) Apply(ctx context.Context) State { return l.run(ctx, l.ApplyTicket()) }

// Clear resets the filter and fetches every review.
func (l *Listing) Clear(ctx context.Context) State { return l.run(ctx, l.ClearTicket()) }

// Reload retries the last query.
func (l *Listing) Reload(ctx context.Context) State { return l.run(ctx, l.ReloadTicket()) }

func (l *Listing) run(ctx context.Context, t Ticket) State {
	reviews, err := l.api.ListFeedback(ctx, t.Query)
	l.Finish(t, reviews, err)
	return l.state
}
