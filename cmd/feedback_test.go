package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/feedback/internal/models"
)

// apiEnv points the client at a fake backend and captures output.
func apiEnv(t *testing.T, h http.HandlerFunc) (out, errOut *bytes.Buffer) {
	t.Helper()
	testEnv(t)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	viper.Set("api.base_url", srv.URL+"/api/v1")

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	ui.Out = out
	ui.ErrOut = errOut

	dryRun = false
	ui.DryRun = false
	t.Cleanup(func() { dryRun = false })
	return out, errOut
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func setSubmitFlags(t *testing.T, member, provider, rating, comment string) {
	t.Helper()
	submitMember, submitProvider, submitRating, submitComment = member, provider, rating, comment
	t.Cleanup(func() { submitMember, submitProvider, submitRating, submitComment = "", "", "", "" })
}

func TestSubmit_Success(t *testing.T) {
	var got models.Submission
	out, _ := apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/feedback", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]any{"id": 7, "memberId": got.MemberID})
	})
	setSubmitFlags(t, "m-1", " Dr. Smith ", "5", "")

	require.NoError(t, submitRun(context.Background()))
	assert.Equal(t, "Dr. Smith", got.ProviderName)
	assert.Equal(t, 5, got.Rating)
	assert.Nil(t, got.Comment)
	assert.Contains(t, out.String(), "Feedback submitted successfully! ID: 7")
}

func TestSubmit_Duplicate(t *testing.T) {
	apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors": []map[string]string{
				{"field": "business", "message": "Member has already submitted feedback for this provider"},
			},
		})
	})
	setSubmitFlags(t, "m-1", "Dr. Smith", "4", "ok")

	err := submitRun(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Member has already submitted feedback for this provider", err.Error())
}

func TestSubmit_Conflict(t *testing.T) {
	apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	setSubmitFlags(t, "m-1", "Dr. Smith", "4", "")

	err := submitRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "You can only submit one review per provider.")
}

func TestSubmit_ValidationSkipsRequest(t *testing.T) {
	called := false
	apiEnv(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	setSubmitFlags(t, "", "Dr. Smith", "4", "")

	err := submitRun(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Member ID is required", err.Error())
	assert.False(t, called)
}

func TestSubmit_DryRun(t *testing.T) {
	called := false
	out, errOut := apiEnv(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	dryRun = true
	ui.DryRun = true
	setSubmitFlags(t, "m-1", "Dr. Smith", "3", "fine")

	require.NoError(t, submitRun(context.Background()))
	assert.False(t, called)
	assert.Contains(t, errOut.String(), "Would POST feedback")
	assert.Contains(t, out.String(), `"providerName": "Dr. Smith"`)
}

func TestList_TableWithFilter(t *testing.T) {
	var query string
	out, _ := apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/feedback", r.URL.Path)
		query = r.URL.Query().Get("memberId")
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "r1", "memberId": "m-1", "providerName": "Dr. Smith", "rating": 4, "comment": "Kind"},
		})
	})
	listMember, listFormat = " m-1 ", "table"
	t.Cleanup(func() { listMember, listFormat = "", "table" })

	require.NoError(t, listRun(context.Background()))
	assert.Equal(t, "m-1", query)
	assert.Contains(t, out.String(), "Number of reviews: 1")
	assert.Contains(t, out.String(), "Dr. Smith")
	assert.Contains(t, out.String(), "Kind")
}

func TestList_EmptyForMember(t *testing.T) {
	out, _ := apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	listMember, listFormat = "m-9", "table"
	t.Cleanup(func() { listMember, listFormat = "", "table" })

	require.NoError(t, listRun(context.Background()))
	assert.Contains(t, out.String(), "No reviews found for member")
	assert.Contains(t, out.String(), "m-9")
}

func TestList_JSON(t *testing.T) {
	out, _ := apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "memberId": "m-1", "providerName": "Dr. Smith", "rating": 2, "comment": nil},
		})
	})
	listMember, listFormat = "", "json"
	t.Cleanup(func() { listMember, listFormat = "", "table" })

	require.NoError(t, listRun(context.Background()))

	var reviews []models.Review
	require.NoError(t, json.Unmarshal(out.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, models.ID("1"), reviews[0].ID)
	assert.Nil(t, reviews[0].Comment)
}

func TestList_ServerError(t *testing.T) {
	apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	listMember, listFormat = "", "table"
	t.Cleanup(func() { listMember, listFormat = "", "table" })

	err := listRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error! status: 500")
}

func TestList_UnknownFormat(t *testing.T) {
	apiEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	listFormat = "xml"
	t.Cleanup(func() { listFormat = "table" })

	err := listRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestShow_Text(t *testing.T) {
	out, _ := apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/feedback/r1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "r1", "memberId": "m-1", "providerName": "Dr. Smith", "rating": 5,
			"comment": nil, "submittedAt": "2024-03-05T14:30:00Z",
		})
	})
	showFormat = "text"

	require.NoError(t, showRun(context.Background(), "r1"))
	text := out.String()
	assert.Contains(t, text, "Review Details")
	assert.Contains(t, text, "Dr. Smith")
	assert.Contains(t, text, "No comment provided")
	assert.Contains(t, text, "2024")
}

func TestShow_404IsLoadError(t *testing.T) {
	_, errOut := apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	showFormat = "text"

	err := showRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "error loading review: HTTP error! status: 404", err.Error())
	assert.NotContains(t, errOut.String(), "Review Not Found")
	assert.Contains(t, errOut.String(), "The API answered 404; check api.base_url")
}

func TestShow_NullBodyIsNotFound(t *testing.T) {
	_, errOut := apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	})
	showFormat = "text"

	err := showRun(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, "review not found: r1", err.Error())
	assert.Contains(t, errOut.String(), "Review Not Found")
}

func TestShow_ServerError(t *testing.T) {
	apiEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	showFormat = "text"

	err := showRun(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, "error loading review: HTTP error! status: 502", err.Error())
}
