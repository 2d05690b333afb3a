package port

import (
	"context"
	"net/http"
)

// RequestValidator is the port for request integrity checking.
type RequestValidator interface {
	// ValidateRequest verifies the integrity signature over the exact raw
	// body bytes of the request.
	ValidateRequest(ctx context.Context, r *http.Request, body []byte) error
}
