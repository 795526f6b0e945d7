package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Field limits enforced by the submission form.
const (
	MaxMemberIDLen     = 36
	MaxProviderNameLen = 80
	MaxCommentLen      = 200

	MinRating = 1
	MaxRating = 5
)

// ID is a backend-assigned review identifier. Some backends key reviews by
// integer, so a JSON number is accepted and kept as its decimal text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("review id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// timestampLayouts are tried in order. Zone-less values are local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a display-only time. Values that match none of the known
// layouts decode to the zero time instead of failing the whole review.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	ts.Time = time.Time{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			ts.Time = t
			return nil
		}
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// Review is a single piece of provider feedback as returned by the API.
// The client never mutates a review once it has been created.
type Review struct {
	ID           ID         `json:"id"`
	MemberID     string     `json:"memberId"`
	ProviderName string     `json:"providerName"`
	Rating       int        `json:"rating"`
	Comment      *string    `json:"comment"`
	SubmittedAt  *Timestamp `json:"submittedAt,omitempty"`
}

// SubmittedTime returns the submission time, or nil when the backend sent
// none or sent one that could not be read.
func (r *Review) SubmittedTime() *time.Time {
	if r.SubmittedAt == nil || r.SubmittedAt.IsZero() {
		return nil
	}
	t := r.SubmittedAt.Time
	return &t
}

// CommentText returns the comment or "" when absent.
func (r *Review) CommentText() string {
	if r.Comment == nil {
		return ""
	}
	return *r.Comment
}

// Submission is the create payload. Comment is sent as null when absent.
type Submission struct {
	MemberID     string  `json:"memberId"`
	ProviderName string  `json:"providerName"`
	Rating       int     `json:"rating"`
	Comment      *string `json:"comment"`
}

var ratingLabels = [...]string{"", "Poor", "Fair", "Good", "Very Good", "Excellent"}

// RatingLabel names a rating value, or returns "" when out of range.
func RatingLabel(rating int) string {
	if rating < MinRating || rating > MaxRating {
		return ""
	}
	return ratingLabels[rating]
}
