package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joescharf/feedback/internal/client"
	"github.com/joescharf/feedback/internal/models"
)

// Submitter creates reviews.
type Submitter interface {
	SubmitFeedback(ctx context.Context, sub models.Submission) (*models.Review, error)
}

// Phase is where a submission currently is.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// MessageKind distinguishes the banner shown under the form.
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageSuccess
	MessageError
)

// Message is the outcome text of the latest submit.
type Message struct {
	Kind MessageKind
	Text string
}

// Empty reports whether there is nothing to show.
func (m Message) Empty() bool { return m.Text == "" }

// Validation errors, in the order they are checked.
var (
	ErrMemberIDRequired     = errors.New("Member ID is required")
	ErrProviderNameRequired = errors.New("Provider name is required")
	ErrRatingRequired       = errors.New("Please select a rating")
	ErrRatingRange          = fmt.Errorf("Rating must be between %d and %d", models.MinRating, models.MaxRating)
	ErrMemberIDTooLong      = fmt.Errorf("Member ID must be at most %d characters", models.MaxMemberIDLen)
	ErrProviderNameTooLong  = fmt.Errorf("Provider name must be at most %d characters", models.MaxProviderNameLen)
	ErrCommentTooLong       = fmt.Errorf("Comment must be at most %d characters", models.MaxCommentLen)
)

// Form is the raw, untrimmed input of the submit screen. Rating is the
// selected option ("" when nothing is selected, otherwise "1".."5").
type Form struct {
	MemberID     string
	ProviderName string
	Rating       string
	Comment      string
}

// Validate checks the form without touching the network.
func (f Form) Validate() error {
	memberID := strings.TrimSpace(f.MemberID)
	provider := strings.TrimSpace(f.ProviderName)

	if memberID == "" {
		return ErrMemberIDRequired
	}
	if provider == "" {
		return ErrProviderNameRequired
	}
	if strings.TrimSpace(f.Rating) == "" {
		return ErrRatingRequired
	}
	if _, err := parseRating(f.Rating); err != nil {
		return err
	}
	if utf8.RuneCountInString(memberID) > models.MaxMemberIDLen {
		return ErrMemberIDTooLong
	}
	if utf8.RuneCountInString(provider) > models.MaxProviderNameLen {
		return ErrProviderNameTooLong
	}
	if utf8.RuneCountInString(strings.TrimSpace(f.Comment)) > models.MaxCommentLen {
		return ErrCommentTooLong
	}
	return nil
}

// Payload validates the form and normalizes it into the create request.
func (f Form) Payload() (models.Submission, error) {
	if err := f.Validate(); err != nil {
		return models.Submission{}, err
	}
	rating, _ := parseRating(f.Rating)

	sub := models.Submission{
		MemberID:     strings.TrimSpace(f.MemberID),
		ProviderName: strings.TrimSpace(f.ProviderName),
		Rating:       rating,
	}
	if c := strings.TrimSpace(f.Comment); c != "" {
		sub.Comment = &c
	}
	return sub, nil
}

func parseRating(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < models.MinRating || n > models.MaxRating {
		return 0, ErrRatingRange
	}
	return n, nil
}

// Submission drives the submit screen:
// idle -> validating -> submitting -> success | failed, and back again.
type Submission struct {
	Form Form

	api     Submitter
	phase   Phase
	message Message
	gen     generation
}

// NewSubmission creates an idle submission workflow.
func NewSubmission(api Submitter) *Submission {
	return &Submission{api: api}
}

func (s *Submission) Phase() Phase     { return s.phase }
func (s *Submission) Message() Message { return s.message }

// Busy reports whether a request is in flight.
func (s *Submission) Busy() bool { return s.phase == PhaseSubmitting }

// Begin clears the previous message, validates and enters submitting.
// ok is false when validation failed; the message then holds the reason and
// no request must be sent.
func (s *Submission) Begin() (t Ticket, sub models.Submission, ok bool) {
	s.message = Message{}
	s.phase = PhaseValidating

	sub, err := s.Form.Payload()
	if err != nil {
		s.phase = PhaseFailed
		s.message = Message{Kind: MessageError, Text: err.Error()}
		return Ticket{}, models.Submission{}, false
	}

	s.phase = PhaseSubmitting
	return s.gen.next(sub.MemberID), sub, true
}

// Finish applies the result of the request started with t. On success the
// form is reset; on failure the form is left as typed so it can be corrected.
func (s *Submission) Finish(t Ticket, review *models.Review, err error) {
	if !s.gen.current(t) {
		return
	}
	if err != nil {
		s.phase = PhaseFailed
		s.message = Message{Kind: MessageError, Text: client.Classify(err).Message()}
		return
	}

	var id models.ID
	if review != nil {
		id = review.ID
	}
	s.phase = PhaseSucceeded
	s.message = Message{Kind: MessageSuccess, Text: fmt.Sprintf("Feedback submitted successfully! ID: %s", id)}
	s.Form = Form{}
}

// Submit runs one full submit round trip and returns the resulting message.
func (s *Submission) Submit(ctx context.Context) Message {
	t, sub, ok := s.Begin()
	if !ok {
		return s.message
	}

	defer func() {
		if s.phase == PhaseSubmitting {
			s.phase = PhaseFailed
		}
	}()
	review, err := s.api.SubmitFeedback(ctx, sub)
	s.Finish(t, review, err)
	return s.message
}
