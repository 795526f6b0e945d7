// Package workflow holds the view-independent state machines behind the
// submit, listing and detail screens. Each view owns exactly one State value.
package workflow

// State is the lifecycle of a single view's data. Exactly one variant is
// active at a time, so a view can never be loading and failed at once.
type State interface {
	state()
}

// Idle means nothing has been requested yet.
type Idle struct{}

// Loading means a request is outstanding.
type Loading struct{}

// Loaded carries a successful result.
type Loaded[T any] struct {
	Data T
}

// NotFound means the request succeeded but there was no entity.
type NotFound struct{}

// Failed carries the error of the latest request.
type Failed struct {
	Err error
}

func (Idle) state()      {}
func (Loading) state()   {}
func (Loaded[T]) state() {}
func (NotFound) state()  {}
func (Failed) state()    {}

// Message returns the failure text.
func (f Failed) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Ticket identifies one fetch. Results are only applied for the most recent
// ticket of a view.
type Ticket struct {
	gen   uint64
	Query string
}

type generation struct {
	n uint64
}

func (g *generation) next(query string) Ticket {
	g.n++
	return Ticket{gen: g.n, Query: query}
}

func (g *generation) current(t Ticket) bool {
	return t.gen == g.n
}
