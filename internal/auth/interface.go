package auth

import (
	"context"
	"errors"

	"opennotebook/internal/domain/models"
)

// TokenVerifier validates a bearer token against the identity provider
// and returns the canonical identity.
//
// The two failure modes are distinct and must not be conflated:
//   - ErrInvalidToken: the provider answered and the token matches no
//     session or user.
//   - ErrProviderUnavailable: the provider could not answer (transport
//     failure, malformed response, not configured). Callers fall through
//     to the next authentication strategy instead of rejecting.
type TokenVerifier interface {
	// Verify validates a raw bearer token (scheme prefix already
	// stripped). The call honors ctx cancellation so a dropped client
	// connection abandons the outbound provider call.
	Verify(ctx context.Context, token string) (*models.Identity, error)

	// Close releases any resources held by the verifier.
	Close() error
}

var (
	// ErrInvalidToken means the provider rejected the token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrProviderUnavailable means the provider could not be reached or
	// gave an unusable answer. Internal only: never surfaced as a
	// distinct HTTP status.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)
