package client

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries a per-request id so backend logs can be matched
// to client logs.
const RequestIDHeader = "X-Request-Id"

// newRequestID generates a new ULID string.
func newRequestID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// tagRequest sets a fresh request id on req and returns it.
func tagRequest(req *http.Request) string {
	id := newRequestID()
	req.Header.Set(RequestIDHeader, id)
	return id
}
