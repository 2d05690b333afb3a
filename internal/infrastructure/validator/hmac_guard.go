package validator

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"gamebridge.io/internal/domain/port"
	"gamebridge.io/internal/infrastructure/logger"
)

// SignatureHeader carries the hex HMAC of the exact raw request body.
const SignatureHeader = "X-HMAC-Signature"

// Key encodings supported for the pre-shared HMAC key. The encoding is an
// explicit configuration marker: peers that disagree on it produce
// signatures that never match.
const (
	KeyEncodingRaw       = "raw"
	KeyEncodingBase64URL = "base64url"
)

// HMACGuard implements the RequestValidator port with HMAC-SHA256 over the
// raw body bytes. The body is never re-serialized before verification;
// byte-for-byte equality with what the client signed is the contract.
type HMACGuard struct {
	key    []byte
	logger logger.Logger
}

// NewHMACGuard creates a guard from a pre-shared key in the given encoding.
func NewHMACGuard(key, encoding string, logger logger.Logger) (*HMACGuard, error) {
	var keyBytes []byte
	switch encoding {
	case "", KeyEncodingRaw:
		keyBytes = []byte(key)
	case KeyEncodingBase64URL:
		decoded, err := decodeBase64URLKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64url HMAC key: %w", err)
		}
		keyBytes = decoded
	default:
		return nil, fmt.Errorf("unknown HMAC key encoding: %q", encoding)
	}

	if len(keyBytes) == 0 {
		return nil, fmt.Errorf("HMAC key must not be empty")
	}

	return &HMACGuard{
		key:    keyBytes,
		logger: logger,
	}, nil
}

var _ port.RequestValidator = (*HMACGuard)(nil)

// decodeBase64URLKey converts a URL-safe Base64 key to raw bytes:
// substitute the URL-safe alphabet, pad to a multiple of 4, then decode
// with the standard alphabet. Matches peer implementations byte-for-byte.
func decodeBase64URLKey(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	for len(s)%4 != 0 {
		s += "="
	}
	return base64.StdEncoding.DecodeString(s)
}

// ValidateRequest recomputes the HMAC over the raw body and compares it to
// the signature header. Hex comparison is case-insensitive and
// constant-time. Fails closed on a missing or malformed header.
func (g *HMACGuard) ValidateRequest(ctx context.Context, r *http.Request, body []byte) error {
	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		return fmt.Errorf("missing %s header", SignatureHeader)
	}

	expected := g.Signature(body)

	// Lowercasing both sides keeps the comparison case-insensitive
	// without leaving constant time.
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		g.logger.LogWarning(ctx, "HMAC signature mismatch",
			"path", r.URL.Path,
			"body_bytes", len(body))
		return fmt.Errorf("invalid HMAC signature")
	}

	return nil
}

// Signature computes the lowercase hex HMAC-SHA256 of the given bytes.
// Exposed so clients and tests can sign request bodies the same way.
func (g *HMACGuard) Signature(body []byte) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
