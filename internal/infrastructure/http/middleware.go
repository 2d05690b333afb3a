package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"gamebridge.io/internal/domain/port"
	"gamebridge.io/internal/infrastructure/logger"
)

// Auth headers checked by the gate. Tokens are presence/prefix-checked
// only; cryptographic verification is out of scope here.
const (
	HeaderAuthorization     = "Authorization"
	HeaderDappAuthorization = "X-Dapp-Authorization"
	HeaderDappSessionID     = "X-Dapp-SessionID"
)

const bearerPrefix = "Bearer "

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestIDMiddleware adds a request ID to each request
func RequestIDMiddleware(next http.HandlerFunc, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)

		// Create logger with request ID
		requestLogger := logger.WithRequestID(requestID)
		ctx = context.WithValue(ctx, "logger", requestLogger)
		r = r.WithContext(ctx)

		next(w, r)
	}
}

// LoggingMiddleware logs request details
func LoggingMiddleware(next http.HandlerFunc, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestLogger := requestLoggerFrom(r.Context(), logger)

		requestLogger.LogInfo(r.Context(), "Incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(wrapped, r)

		duration := time.Since(start)
		requestLogger.LogInfo(r.Context(), "Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

// AuthGateMiddleware checks the session/auth headers and stashes the
// session id in the context. Tokens only need to look bearer-shaped.
func AuthGateMiddleware(next http.HandlerFunc, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authToken := r.Header.Get(HeaderAuthorization)
		dappToken := r.Header.Get(HeaderDappAuthorization)
		sessionID := r.Header.Get(HeaderDappSessionID)

		if !strings.HasPrefix(authToken, bearerPrefix) ||
			!strings.HasPrefix(dappToken, bearerPrefix) ||
			strings.TrimSpace(sessionID) == "" {
			requestLoggerFrom(r.Context(), logger).LogWarning(r.Context(), "Auth gate rejected request",
				"path", r.URL.Path,
				"has_auth", authToken != "",
				"has_dapp_auth", dappToken != "",
				"has_session", sessionID != "")
			writeError(w, http.StatusUnauthorized, CodeInvalidSession)
			return
		}

		ctx := context.WithValue(r.Context(), "session_id", sessionID)
		next(w, r.WithContext(ctx))
	}
}

// HMACGuardMiddleware verifies the integrity signature over the exact raw
// body bytes of mutating requests. Read-only requests bypass the check.
// The body is restored for downstream handlers.
func HMACGuardMiddleware(next http.HandlerFunc, guard port.RequestValidator, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLoggerFrom(r.Context(), logger).LogError(r.Context(), "Failed to read request body", err)
			writeError(w, http.StatusBadRequest, CodeInvalidRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if err := guard.ValidateRequest(r.Context(), r, body); err != nil {
			requestLoggerFrom(r.Context(), logger).LogWarning(r.Context(), "Request integrity check failed",
				"path", r.URL.Path,
				"reason", err.Error())
			writeError(w, http.StatusUnauthorized, CodeInvalidHMACSignature)
			return
		}

		next(w, r)
	}
}

// requestLoggerFrom returns the per-request logger when middleware set
// one, falling back to the supplied base logger.
func requestLoggerFrom(ctx context.Context, base logger.Logger) logger.Logger {
	if l, ok := ctx.Value("logger").(logger.Logger); ok {
		return l
	}
	return base
}

// sessionIDFrom returns the session id stashed by the auth gate.
func sessionIDFrom(ctx context.Context) string {
	if s, ok := ctx.Value("session_id").(string); ok {
		return s
	}
	return ""
}
