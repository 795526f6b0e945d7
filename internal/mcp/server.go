package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/feedback/internal/models"
	"github.com/joescharf/feedback/internal/workflow"
)

// API is the subset of the feedback client the tools use.
type API interface {
	workflow.Submitter
	workflow.Lister
	workflow.Getter
}

// Server exposes the feedback API as MCP tools.
type Server struct {
	api     API
	version string
}

// NewServer creates the MCP server wrapper around an API client.
func NewServer(api API, version string) *Server {
	return &Server{api: api, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("feedback", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.submitTool())
	srv.AddTool(s.listTool())
	srv.AddTool(s.getTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// reviewOut is the JSON shape returned by the tools.
type reviewOut struct {
	ID           string  `json:"id"`
	MemberID     string  `json:"member_id"`
	ProviderName string  `json:"provider_name"`
	Rating       int     `json:"rating"`
	Comment      *string `json:"comment"`
	SubmittedAt  string  `json:"submitted_at,omitempty"`
}

func toReviewOut(r models.Review) reviewOut {
	out := reviewOut{
		ID:           r.ID.String(),
		MemberID:     r.MemberID,
		ProviderName: r.ProviderName,
		Rating:       r.Rating,
		Comment:      r.Comment,
	}
	if t := r.SubmittedTime(); t != nil {
		out.SubmittedAt = t.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// feedback_submit
func (s *Server) submitTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("feedback_submit",
		mcp.WithDescription("Submit a review of a provider. A member can review each provider only once."),
		mcp.WithString("member_id", mcp.Required(), mcp.Description("Member ID, e.g. m-123456 (max 36 characters)")),
		mcp.WithString("provider_name", mcp.Required(), mcp.Description("Provider name, e.g. Dr. Smith (max 80 characters)")),
		mcp.WithNumber("rating", mcp.Required(), mcp.Min(1), mcp.Max(5), mcp.Description("Rating: 1 Poor, 2 Fair, 3 Good, 4 Very Good, 5 Excellent")),
		mcp.WithString("comment", mcp.Description("Optional comment (max 200 characters)")),
	)
	return tool, s.handleSubmit
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	form := workflow.Form{
		MemberID:     request.GetString("member_id", ""),
		ProviderName: request.GetString("provider_name", ""),
		Comment:      request.GetString("comment", ""),
	}
	rating, ok := wholeRating(request.GetArguments()["rating"])
	if !ok {
		return mcp.NewToolResultError("Rating must be a whole number between 1 and 5"), nil
	}
	if rating != 0 {
		form.Rating = strconv.Itoa(rating)
	}

	sub := workflow.NewSubmission(s.api)
	sub.Form = form
	msg := sub.Submit(ctx)
	if msg.Kind != workflow.MessageSuccess {
		return mcp.NewToolResultError(msg.Text), nil
	}
	return mcp.NewToolResultText(msg.Text), nil
}

// wholeRating reads the rating argument. A missing rating is 0 so the form
// reports it as required; fractional or non-numeric values are rejected.
func wholeRating(v any) (int, bool) {
	switch r := v.(type) {
	case nil:
		return 0, true
	case float64:
		if r != math.Trunc(r) || math.IsInf(r, 0) {
			return 0, false
		}
		return int(r), true
	case int:
		return r, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(r))
		return n, err == nil
	default:
		return 0, false
	}
}

// feedback_list
func (s *Server) listTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("feedback_list",
		mcp.WithDescription("List submitted reviews as a JSON array. Optionally scoped to one member."),
		mcp.WithString("member_id", mcp.Description("Only return reviews by this member ID")),
	)
	return tool, s.handleList
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	l := workflow.NewListing(s.api)
	l.SetFilter(request.GetString("member_id", ""))

	switch st := l.Apply(ctx).(type) {
	case workflow.Loaded[[]models.Review]:
		out := make([]reviewOut, len(st.Data))
		for i, r := range st.Data {
			out[i] = toReviewOut(r)
		}
		return jsonResult(out)
	case workflow.Failed:
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reviews: %s", st.Message())), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reviews: unexpected state %T", st)), nil
	}
}

// feedback_get
func (s *Server) getTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("feedback_get",
		mcp.WithDescription("Get a single review by its ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Review ID")),
	)
	return tool, s.handleGet
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	d := workflow.NewDetail(s.api)
	switch st := d.Load(ctx, id).(type) {
	case workflow.Loaded[*models.Review]:
		return jsonResult(toReviewOut(*st.Data))
	case workflow.NotFound:
		return mcp.NewToolResultError(fmt.Sprintf("review not found: %s", id)), nil
	case workflow.Failed:
		return mcp.NewToolResultError(fmt.Sprintf("failed to get review: %s", st.Message())), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to get review: unexpected state %T", st)), nil
	}
}
