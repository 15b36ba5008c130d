// Package session holds the state of one search interaction: what the user
// is searching for, whether a request is outstanding, and what came back.
//
// A Session is owned by a single controller and is not safe for concurrent
// use. The exchange itself runs elsewhere; the controller hands the issued
// Ticket to a Dispatcher and reports the outcome back with Complete or Fail.
package session

import (
	"context"
	"fmt"

	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/model"
)

// Status is the lifecycle state of a session.
type Status int

// Session states.
const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Dispatcher performs one exchange with the price-search service.
type Dispatcher interface {
	Dispatch(ctx context.Context, query model.SearchQuery) (*model.SearchResult, error)
}

// Ticket identifies one outstanding request.
// Ctx is canceled when the session is reset or the request is canceled.
type Ticket struct {
	Ctx   context.Context
	Query model.SearchQuery
	ID    uint64
}

// Session is the single source of truth for one search interaction.
type Session struct {
	err     error
	result  *model.SearchResult
	cancel  context.CancelFunc
	query   model.SearchQuery
	status  Status
	nextID  uint64
	current uint64
}

// New returns a session in the idle state with an empty query.
func New() *Session {
	return &Session{status: StatusIdle}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// Query returns a copy of the current query.
func (s *Session) Query() model.SearchQuery {
	return s.query
}

// Result returns the last result. It is non-nil only when the status is
// StatusSucceeded.
func (s *Session) Result() *model.SearchResult {
	return s.result
}

// Err returns the failure of the last request. It is non-nil only when the
// status is StatusFailed.
func (s *Session) Err() error {
	return s.err
}

// InFlight returns the ID of the outstanding request, or zero.
func (s *Session) InFlight() uint64 {
	if s.status != StatusSubmitting {
		return 0
	}
	return s.current
}

// SetText replaces the query text. It never triggers a request.
func (s *Session) SetText(value string) {
	s.query.Text = value
}

// SetImage replaces the query image and submits immediately.
// Image selection shares the Submit entry point with text searches.
func (s *Session) SetImage(ctx context.Context, image *model.Image) (Ticket, bool) {
	s.query.Image = image
	return s.Submit(ctx)
}

// Submit starts a request for the current query.
// It is a no-op while a request is outstanding or when the query is empty.
func (s *Session) Submit(ctx context.Context) (Ticket, bool) {
	if s.status == StatusSubmitting || s.query.IsEmpty() {
		return Ticket{}, false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s.nextID++
	s.current = s.nextID
	s.cancel = cancel
	s.status = StatusSubmitting
	s.result = nil
	s.err = nil

	return Ticket{
		ID:    s.current,
		Query: s.query,
		Ctx:   reqCtx,
	}, true
}

// Complete records a successful response for ticket id.
// Responses for stale or unknown tickets are ignored and false is returned.
func (s *Session) Complete(id uint64, result *model.SearchResult) bool {
	if !s.accepts(id) {
		return false
	}
	if result == nil {
		result = &model.SearchResult{}
	}
	s.finish()
	s.status = StatusSucceeded
	s.result = result
	return true
}

// Fail records a failed response for ticket id.
// Failures for stale or unknown tickets are ignored and false is returned.
func (s *Session) Fail(id uint64, err error) bool {
	if !s.accepts(id) {
		return false
	}
	if err == nil {
		err = common.ErrDecode
	}
	s.finish()
	s.status = StatusFailed
	s.err = err
	return true
}

// Cancel aborts the outstanding request and moves the session to
// StatusFailed with common.ErrCanceled.
func (s *Session) Cancel() bool {
	if s.status != StatusSubmitting {
		return false
	}
	return s.Fail(s.current, common.ErrCanceled)
}

// Reset clears the query, result and failure and returns to StatusIdle.
// An outstanding request is canceled and its response will be ignored.
func (s *Session) Reset() {
	s.finish()
	s.query = model.SearchQuery{}
	s.result = nil
	s.err = nil
	s.status = StatusIdle
}

// Run submits the current query and waits for d to answer it.
// It is meant for controllers without an event loop.
func (s *Session) Run(ctx context.Context, d Dispatcher) (*model.SearchResult, error) {
	ticket, ok := s.Submit(ctx)
	if !ok {
		if s.status == StatusSubmitting {
			return nil, fmt.Errorf("search %d already in flight", s.current)
		}
		return nil, common.ErrEmptyQuery
	}

	return s.Await(ticket, d)
}

// Await performs the exchange for ticket with d and records the outcome.
// A stale ticket returns an error and leaves the session untouched.
func (s *Session) Await(ticket Ticket, d Dispatcher) (*model.SearchResult, error) {
	result, err := d.Dispatch(ticket.Ctx, ticket.Query)
	if err != nil {
		if !s.Fail(ticket.ID, err) {
			return nil, fmt.Errorf("search %d is no longer current: %w", ticket.ID, err)
		}
		return nil, s.err
	}

	if !s.Complete(ticket.ID, result) {
		return nil, fmt.Errorf("search %d is no longer current", ticket.ID)
	}
	return s.result, nil
}

func (s *Session) accepts(id uint64) bool {
	return s.status == StatusSubmitting && id != 0 && id == s.current
}

// finish releases the context of the outstanding request, if any.
func (s *Session) finish() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = 0
}
