package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/feedback/internal/client"
	"github.com/joescharf/feedback/internal/models"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeAPI struct {
	submitted []models.Submission
	submitRes *models.Review
	submitErr error

	listCalls []string
	lists     map[string][]models.Review
	listErr   error

	getCalls []string
	reviews  map[string]*models.Review
	getErr   error
}

func (f *fakeAPI) SubmitFeedback(_ context.Context, sub models.Submission) (*models.Review, error) {
	f.submitted = append(f.submitted, sub)
	return f.submitRes, f.submitErr
}

func (f *fakeAPI) ListFeedback(_ context.Context, memberID string) ([]models.Review, error) {
	f.listCalls = append(f.listCalls, memberID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.lists[memberID], nil
}

func (f *fakeAPI) GetFeedbackByID(_ context.Context, id string) (*models.Review, error) {
	f.getCalls = append(f.getCalls, id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.reviews[id], nil
}

func validForm() Form {
	return Form{MemberID: "m-1", ProviderName: "Dr. X", Rating: "5"}
}

// ---------------------------------------------------------------------------
// Form
// ---------------------------------------------------------------------------

func TestFormValidate(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want error
	}{
		{"valid", validForm(), nil},
		{"blank member", Form{MemberID: "  ", ProviderName: "p", Rating: "1"}, ErrMemberIDRequired},
		{"blank provider", Form{MemberID: "m", ProviderName: "\t", Rating: "1"}, ErrProviderNameRequired},
		{"no rating", Form{MemberID: "m", ProviderName: "p"}, ErrRatingRequired},
		{"rating zero", Form{MemberID: "m", ProviderName: "p", Rating: "0"}, ErrRatingRange},
		{"rating six", Form{MemberID: "m", ProviderName: "p", Rating: "6"}, ErrRatingRange},
		{"rating text", Form{MemberID: "m", ProviderName: "p", Rating: "five"}, ErrRatingRange},
		{"member too long", Form{MemberID: strings.Repeat("m", 37), ProviderName: "p", Rating: "1"}, ErrMemberIDTooLong},
		{"provider too long", Form{MemberID: "m", ProviderName: strings.Repeat("p", 81), Rating: "1"}, ErrProviderNameTooLong},
		{"comment too long", Form{MemberID: "m", ProviderName: "p", Rating: "1", Comment: strings.Repeat("c", 201)}, ErrCommentTooLong},
		{"limits inclusive", Form{MemberID: strings.Repeat("m", 36), ProviderName: strings.Repeat("p", 80), Rating: "1", Comment: strings.Repeat("c", 200)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFormPayload_Rating(t *testing.T) {
	for r := models.MinRating; r <= models.MaxRating; r++ {
		f := validForm()
		f.Rating = fmt.Sprint(r)
		sub, err := f.Payload()
		require.NoError(t, err)
		assert.Equal(t, r, sub.Rating)
	}
}

func TestFormPayload_Comment(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"", nil},
		{"   ", nil},
		{"\n\t", nil},
		{" great visit ", strPtr("great visit")},
		{strings.Repeat("x", 200), strPtr(strings.Repeat("x", 200))},
	}

	for _, tt := range tests {
		f := validForm()
		f.Comment = tt.in
		sub, err := f.Payload()
		require.NoError(t, err)
		assert.Equal(t, tt.want, sub.Comment, "comment %q", tt.in)
	}
}

func TestFormPayload_Trims(t *testing.T) {
	f := Form{MemberID: "  m-1 ", ProviderName: " Dr. X  ", Rating: "3"}
	sub, err := f.Payload()
	require.NoError(t, err)
	assert.Equal(t, "m-1", sub.MemberID)
	assert.Equal(t, "Dr. X", sub.ProviderName)
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Submission
// ---------------------------------------------------------------------------

func TestSubmission_Success(t *testing.T) {
	api := &fakeAPI{submitRes: &models.Review{ID: "abc"}}
	s := NewSubmission(api)
	s.Form = Form{MemberID: "m-1", ProviderName: "Dr. X", Rating: "5", Comment: ""}

	msg := s.Submit(context.Background())

	require.Len(t, api.submitted, 1)
	assert.Equal(t, models.Submission{MemberID: "m-1", ProviderName: "Dr. X", Rating: 5, Comment: nil}, api.submitted[0])
	assert.Equal(t, MessageSuccess, msg.Kind)
	assert.Equal(t, "Feedback submitted successfully! ID: abc", msg.Text)
	assert.Equal(t, Form{}, s.Form, "form resets after success")
	assert.Equal(t, PhaseSucceeded, s.Phase())
	assert.False(t, s.Busy())
}

func TestSubmission_ValidationBlocksNetwork(t *testing.T) {
	api := &fakeAPI{}
	s := NewSubmission(api)
	s.Form = Form{MemberID: "m-1", ProviderName: "Dr. X"}

	msg := s.Submit(context.Background())

	assert.Empty(t, api.submitted)
	assert.Equal(t, MessageError, msg.Kind)
	assert.Equal(t, "Please select a rating", msg.Text)
	assert.Equal(t, PhaseFailed, s.Phase())
	assert.Equal(t, "m-1", s.Form.MemberID, "form kept after validation failure")
}

func TestSubmission_BusinessRuleError(t *testing.T) {
	api := &fakeAPI{submitErr: &client.APIError{
		StatusCode: 400,
		Message:    "Validation failed",
		Errors:     []client.FieldError{{Field: "business", Message: "You have already submitted feedback for provider X"}},
	}}
	s := NewSubmission(api)
	s.Form = validForm()

	msg := s.Submit(context.Background())

	assert.Equal(t, MessageError, msg.Kind)
	assert.Equal(t, "You have already submitted feedback for provider X", msg.Text)
	assert.Equal(t, validForm(), s.Form, "form preserved after failure")
	assert.False(t, s.Busy())
}

func TestSubmission_ConflictError(t *testing.T) {
	api := &fakeAPI{submitErr: &client.APIError{StatusCode: 409, Message: "HTTP error! status: 409"}}
	s := NewSubmission(api)
	s.Form = validForm()

	msg := s.Submit(context.Background())
	assert.Equal(t, "You have already submitted feedback for this provider. You can only submit one review per provider.", msg.Text)
}

func TestSubmission_GenericBadRequest(t *testing.T) {
	api := &fakeAPI{submitErr: &client.APIError{StatusCode: 400, Message: "HTTP error! status: 400"}}
	s := NewSubmission(api)
	s.Form = validForm()

	msg := s.Submit(context.Background())
	assert.True(t, strings.HasPrefix(msg.Text, "HTTP error! status: 400\n\n"))
	assert.Contains(t, msg.Text, "one review per provider")
}

func TestSubmission_ResubmitClearsMessage(t *testing.T) {
	api := &fakeAPI{submitErr: errors.New("boom")}
	s := NewSubmission(api)
	s.Form = validForm()
	s.Submit(context.Background())
	require.Equal(t, "boom", s.Message().Text)

	_, _, ok := s.Begin()
	require.True(t, ok)
	assert.True(t, s.Message().Empty())
	assert.Equal(t, PhaseSubmitting, s.Phase())
}

func TestSubmission_StaleFinishIgnored(t *testing.T) {
	s := NewSubmission(&fakeAPI{})
	s.Form = validForm()

	first, _, ok := s.Begin()
	require.True(t, ok)
	second, _, ok := s.Begin()
	require.True(t, ok)

	s.Finish(first, &models.Review{ID: "old"}, nil)
	assert.True(t, s.Busy(), "stale result must not complete the submit")

	s.Finish(second, &models.Review{ID: "new"}, nil)
	assert.Equal(t, "Feedback submitted successfully! ID: new", s.Message().Text)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "validating", PhaseValidating.String())
	assert.Equal(t, "submitting", PhaseSubmitting.String())
	assert.Equal(t, "success", PhaseSucceeded.String())
	assert.Equal(t, "failed", PhaseFailed.String())
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

func TestListing_MountFetchesAll(t *testing.T) {
	api := &fakeAPI{lists: map[string][]models.Review{
		"": {{ID: "1"}, {ID: "2"}},
	}}
	l := NewListing(api)
	_, idle := l.State().(Idle)
	assert.True(t, idle)

	st := l.Mount(context.Background())

	assert.Equal(t, []string{""}, api.listCalls)
	loaded, ok := st.(Loaded[[]models.Review])
	require.True(t, ok)
	assert.Len(t, loaded.Data, 2)
}

func TestListing_FilterApplyAndClear(t *testing.T) {
	api := &fakeAPI{lists: map[string][]models.Review{
		"":         {{ID: "1", MemberID: "m-1"}, {ID: "2", MemberID: "m-123456"}},
		"m-123456": {{ID: "2", MemberID: "m-123456"}},
	}}
	l := NewListing(api)
	l.Mount(context.Background())

	l.SetFilter("  m-123456 ")
	assert.Len(t, api.listCalls, 1, "buffering the filter does not fetch")

	l.Apply(context.Background())
	assert.Equal(t, "m-123456", api.listCalls[1])
	assert.Equal(t, "m-123456", l.Applied())
	require.Len(t, l.Reviews(), 1)
	assert.Equal(t, models.ID("2"), l.Reviews()[0].ID)

	l.Clear(context.Background())
	assert.Equal(t, "", api.listCalls[2])
	assert.Empty(t, l.Filter())
	assert.Len(t, l.Reviews(), 2)
}

func TestListing_BlankFilterIsUnfiltered(t *testing.T) {
	api := &fakeAPI{}
	l := NewListing(api)
	l.SetFilter("   ")
	l.Apply(context.Background())
	assert.Equal(t, []string{""}, api.listCalls)
}

func TestListing_EmptyDistinctFromFailed(t *testing.T) {
	api := &fakeAPI{}
	l := NewListing(api)
	l.Mount(context.Background())
	assert.True(t, l.Empty())
	_, failed := l.State().(Failed)
	assert.False(t, failed)

	api.listErr = errors.New("HTTP error! status: 500")
	st := l.Reload(context.Background())
	f, ok := st.(Failed)
	require.True(t, ok)
	assert.Equal(t, "HTTP error! status: 500", f.Message())
	assert.False(t, l.Empty())
	assert.Nil(t, l.Reviews())
}

func TestListing_ReloadRepeatsAppliedQuery(t *testing.T) {
	api := &fakeAPI{}
	l := NewListing(api)
	l.SetFilter("m-9")
	l.Apply(context.Background())
	l.SetFilter("typed but not applied")
	l.Reload(context.Background())
	assert.Equal(t, []string{"m-9", "m-9"}, api.listCalls)
}

func TestListing_Select(t *testing.T) {
	api := &fakeAPI{lists: map[string][]models.Review{"": {{ID: "a"}, {ID: "b"}}}}
	l := NewListing(api)

	_, ok := l.Select(0)
	assert.False(t, ok, "nothing loaded yet")

	l.Mount(context.Background())
	id, ok := l.Select(1)
	require.True(t, ok)
	assert.Equal(t, models.ID("b"), id)

	_, ok = l.Select(2)
	assert.False(t, ok)
}

func TestListing_LastIssuedWins(t *testing.T) {
	l := NewListing(&fakeAPI{})
	first := l.MountTicket()
	l.SetFilter("m-2")
	second := l.ApplyTicket()

	l.Finish(second, []models.Review{{ID: "new"}}, nil)
	l.Finish(first, []models.Review{{ID: "old1"}, {ID: "old2"}}, nil)

	require.Len(t, l.Reviews(), 1)
	assert.Equal(t, models.ID("new"), l.Reviews()[0].ID)
}

// ---------------------------------------------------------------------------
// Detail
// ---------------------------------------------------------------------------

func TestDetail_Loaded(t *testing.T) {
	api := &fakeAPI{reviews: map[string]*models.Review{"abc": {ID: "abc", Rating: 4}}}
	d := NewDetail(api)

	st := d.Load(context.Background(), "abc")
	loaded, ok := st.(Loaded[*models.Review])
	require.True(t, ok)
	assert.Equal(t, 4, loaded.Data.Rating)
	assert.Equal(t, "abc", d.ID())
	assert.NotNil(t, d.Review())
}

func TestDetail_NullIsNotFound(t *testing.T) {
	d := NewDetail(&fakeAPI{})
	_, ok := d.Load(context.Background(), "missing").(NotFound)
	assert.True(t, ok)
}

func TestDetail_404IsFailed(t *testing.T) {
	d := NewDetail(&fakeAPI{getErr: &client.APIError{StatusCode: 404, Message: "HTTP error! status: 404"}})
	f, ok := d.Load(context.Background(), "missing").(Failed)
	require.True(t, ok)
	assert.Equal(t, "HTTP error! status: 404", f.Message())
}

func TestDetail_StaleAfterFailureOrNotFound(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("connection refused")}
	d := NewDetail(api)

	_, failed := d.Load(context.Background(), "abc").(Failed)
	require.True(t, failed)
	assert.True(t, d.Stale("abc"), "failed id is refetched on reopen")

	api.getErr = nil
	api.reviews = map[string]*models.Review{"abc": {ID: "abc", Rating: 2}}
	_, loaded := d.Sync(context.Background(), "abc").(Loaded[*models.Review])
	require.True(t, loaded)
	assert.False(t, d.Stale("abc"))

	_, nf := d.Load(context.Background(), "gone").(NotFound)
	require.True(t, nf)
	assert.True(t, d.Stale("gone"))
}

func TestDetail_Retry(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("connection refused")}
	d := NewDetail(api)

	_, ok := d.Retry()
	assert.False(t, ok, "nothing to retry while idle")

	d.Load(context.Background(), "abc")
	ticket, ok := d.Retry()
	require.True(t, ok)
	_, loading := d.State().(Loading)
	assert.True(t, loading)
	assert.Equal(t, "abc", d.ID())

	d.Finish(ticket, &models.Review{ID: "abc"}, nil)
	assert.NotNil(t, d.Review())
}

func TestDetail_OtherErrorsFail(t *testing.T) {
	d := NewDetail(&fakeAPI{getErr: &client.APIError{StatusCode: 500, Message: "HTTP error! status: 500"}})
	f, ok := d.Load(context.Background(), "abc").(Failed)
	require.True(t, ok)
	assert.Equal(t, "HTTP error! status: 500", f.Message())
	assert.Nil(t, d.Review())
}

func TestDetail_EmptyIDDoesNothing(t *testing.T) {
	api := &fakeAPI{}
	d := NewDetail(api)
	_, idle := d.Load(context.Background(), "").(Idle)
	assert.True(t, idle)
	assert.Empty(t, api.getCalls)
}

func TestDetail_SyncRefetchesOnlyOnChange(t *testing.T) {
	api := &fakeAPI{reviews: map[string]*models.Review{
		"a": {ID: "a"},
		"b": {ID: "b"},
	}}
	d := NewDetail(api)

	d.Sync(context.Background(), "a")
	d.Sync(context.Background(), "a")
	d.Sync(context.Background(), "b")

	assert.Equal(t, []string{"a", "b"}, api.getCalls)
}
