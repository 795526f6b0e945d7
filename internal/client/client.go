package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/joescharf/feedback/internal/models"
)

// Client talks to the feedback REST API rooted at a base URL such as
// http://localhost:8080/api/v1.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (which has no timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the structured logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "client")
	return c
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// SubmitFeedback creates a review. A non-2xx response is returned as *APIError
// carrying the backend's message and field errors when it sent any.
func (c *Client) SubmitFeedback(ctx context.Context, sub models.Submission) (*models.Review, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("submit feedback: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/feedback", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("submit feedback: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	log := c.log.With(slog.String("request_id", tagRequest(req)))

	log.DebugContext(ctx, "submit feedback",
		slog.String("member_id", sub.MemberID),
		slog.String("provider", sub.ProviderName),
		slog.Int("rating", sub.Rating),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.ErrorContext(ctx, "error submitting feedback", slog.String("error", err.Error()))
		return nil, fmt.Errorf("submit feedback: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		apiErr := decodeAPIError(resp)
		log.ErrorContext(ctx, "error submitting feedback",
			slog.Int("status", apiErr.StatusCode),
			slog.String("error", apiErr.Message),
		)
		return nil, apiErr
	}

	var review models.Review
	if err := json.NewDecoder(resp.Body).Decode(&review); err != nil {
		log.ErrorContext(ctx, "error submitting feedback", slog.String("error", err.Error()))
		return nil, fmt.Errorf("submit feedback: decode response: %w", err)
	}

	log.DebugContext(ctx, "feedback submitted", slog.String("id", review.ID.String()))
	return &review, nil
}

// GetFeedbackByID fetches one review. A successful response whose body is
// JSON null returns (nil, nil).
func (c *Client) GetFeedbackByID(ctx context.Context, id string) (*models.Review, error) {
	reqURL := c.baseURL + "/feedback/" + url.PathEscape(id)

	var review *models.Review
	if err := c.getJSON(ctx, reqURL, &review); err != nil {
		c.log.ErrorContext(ctx, "error fetching feedback", slog.String("id", id), slog.String("error", err.Error()))
		return nil, err
	}
	return review, nil
}

// ListFeedback fetches reviews, scoped to memberID when it is non-empty.
func (c *Client) ListFeedback(ctx context.Context, memberID string) ([]models.Review, error) {
	reqURL := c.baseURL + "/feedback"
	if memberID != "" {
		reqURL += "?" + url.Values{"memberId": {memberID}}.Encode()
	}

	var reviews []models.Review
	if err := c.getJSON(ctx, reqURL, &reviews); err != nil {
		c.log.ErrorContext(ctx, "error fetching feedback by member", slog.String("member_id", memberID), slog.String("error", err.Error()))
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// GetAllFeedback fetches every review.
func (c *Client) GetAllFeedback(ctx context.Context) ([]models.Review, error) {
	return c.ListFeedback(ctx, "")
}

// getJSON performs a GET and decodes the body into v. Non-2xx responses
// become an *APIError with the generic status message; the body is not read.
func (c *Client) getJSON(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("fetch feedback: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	log := c.log.With(slog.String("request_id", tagRequest(req)))

	log.DebugContext(ctx, "fetch feedback", slog.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.ErrorContext(ctx, "error fetching feedback", slog.String("error", err.Error()))
		return fmt.Errorf("fetch feedback: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("fetch feedback: decode json: %w", err)
	}

	log.DebugContext(ctx, "fetch feedback done", slog.String("url", reqURL), slog.Int("status", resp.StatusCode))
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
