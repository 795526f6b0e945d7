package client

import (
	"errors"
	"net/http"
	"strings"
)

// Kind identifies what went wrong with a submission.
type Kind int

const (
	KindUnknown Kind = iota
	// KindBusinessRule is the backend's structured one-review-per-provider rejection.
	KindBusinessRule
	// KindDuplicate is a uniqueness conflict reported some other way.
	KindDuplicate
	// KindFieldFormat is a 400 that names memberId or providerName.
	KindFieldFormat
	// KindBadRequest is any other 400.
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindBusinessRule:
		return "business_rule"
	case KindDuplicate:
		return "duplicate"
	case KindFieldFormat:
		return "field_format"
	case KindBadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// Problem is a classified submission failure.
type Problem struct {
	Kind   Kind
	Detail string
}

const (
	duplicateMessage   = "You have already submitted feedback for this provider. You can only submit one review per provider."
	fieldFormatMessage = "Please check your Member ID and Provider Name format."
	duplicateHint      = "If you've already submitted feedback for this provider, you can only submit one review per provider."
)

// Message renders the problem as text for the person submitting.
func (p Problem) Message() string {
	switch p.Kind {
	case KindDuplicate:
		return duplicateMessage
	case KindFieldFormat:
		return fieldFormatMessage
	case KindBadRequest:
		return p.Detail + "\n\n" + duplicateHint
	default:
		return p.Detail
	}
}

// Classify maps a SubmitFeedback error to a Problem. Rules are tried in order
// and the first match wins; the structured business check must run before the
// looser message checks. Only API responses are classified. Transport and
// decode errors are KindUnknown whatever their text contains.
func Classify(err error) Problem {
	if err == nil {
		return Problem{}
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return Problem{Kind: KindUnknown, Detail: err.Error()}
	}
	if msg, ok := businessViolation(apiErr); ok {
		return Problem{Kind: KindBusinessRule, Detail: msg}
	}

	text := responseText(apiErr)
	msg := apiErr.Message
	switch {
	case apiErr.StatusCode == http.StatusConflict || isDuplicate(text):
		return Problem{Kind: KindDuplicate, Detail: msg}
	case apiErr.StatusCode == http.StatusBadRequest &&
		(strings.Contains(text, "memberId") || strings.Contains(text, "providerName")):
		return Problem{Kind: KindFieldFormat, Detail: msg}
	case apiErr.StatusCode == http.StatusBadRequest:
		return Problem{Kind: KindBadRequest, Detail: msg}
	default:
		return Problem{Kind: KindUnknown, Detail: msg}
	}
}

// responseText joins everything the backend said about a failure.
func responseText(e *APIError) string {
	parts := []string{e.Message}
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field, fe.Message)
	}
	return strings.Join(parts, " ")
}

func businessViolation(e *APIError) (string, bool) {
	if e.StatusCode != http.StatusBadRequest || len(e.Errors) == 0 {
		return "", false
	}
	for _, fe := range e.Errors {
		if fe.Field != "business" {
			continue
		}
		if strings.Contains(strings.ToLower(fe.Message), "already submitted feedback") {
			return fe.Message, true
		}
		// Only the first business entry is considered.
		return "", false
	}
	return "", false
}

func isDuplicate(msg string) bool {
	markers := []string{
		"already exists", "duplicate", "UNIQUE constraint", "violates unique",
	}
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(msg), "conflict")
}
