package workflow

import (
	"context"

	"github.com/joescharf/feedback/internal/models"
)

// Getter fetches a single review. A nil review with a nil error means the
// backend had nothing for that id.
type Getter interface {
	GetFeedbackByID(ctx context.Context, id string) (*models.Review, error)
}

// Detail drives the single-review screen.
type Detail struct {
	api   Getter
	id    string
	state State
	gen   generation
}

// NewDetail creates an idle detail workflow.
func NewDetail(api Getter) *Detail {
	return &Detail{api: api, state: Idle{}}
}

func (d *Detail) State() State { return d.state }

// ID returns the id currently shown or being fetched.
func (d *Detail) ID() string { return d.id }

// Review returns the loaded review, or nil in any other state.
func (d *Detail) Review() *models.Review {
	if s, ok := d.state.(Loaded[*models.Review]); ok {
		return s.Data
	}
	return nil
}

// Begin enters loading for id. An empty id leaves the state untouched and
// returns ok=false.
func (d *Detail) Begin(id string) (Ticket, bool) {
	if id == "" {
		return Ticket{}, false
	}
	d.id = id
	d.state = Loading{}
	return d.gen.next(id), true
}

// Stale reports whether id needs a fetch: it differs from what is shown, or
// nothing usable is shown for it yet.
func (d *Detail) Stale(id string) bool {
	if id == "" {
		return false
	}
	switch d.state.(type) {
	case Idle, Failed, NotFound:
		return true
	}
	return id != d.id
}

// Retry refetches the current id. It does nothing while idle.
func (d *Detail) Retry() (Ticket, bool) {
	if _, idle := d.state.(Idle); idle {
		return Ticket{}, false
	}
	return d.Begin(d.id)
}

// Finish applies a fetch result. Only a successful empty response is
// NotFound; every error, a 404 included, is Failed with the raw message.
func (d *Detail) Finish(t Ticket, review *models.Review, err error) {
	if !d.gen.current(t) {
		return
	}
	switch {
	case err != nil:
		d.state = Failed{Err: err}
	case review == nil:
		d.state = NotFound{}
	default:
		d.state = Loaded[*models.Review]{Data: review}
	}
}

// Load fetches id unconditionally.
func (d *Detail) Load(ctx context.Context, id string) State {
	t, ok := d.Begin(id)
	if !ok {
		return d.state
	}
	review, err := d.api.GetFeedbackByID(ctx, id)
	d.Finish(t, review, err)
	return d.state
}

// Sync fetches id only when it differs from the review already shown.
func (d *Detail) Sync(ctx context.Context, id string) State {
	if !d.Stale(id) {
		return d.state
	}
	return d.Load(ctx, id)
}
