package httputil

import (
	"context"
	"net/http"

	"opennotebook/internal/domain/models"
)

// TeamHeader selects team ownership for the request when present.
const TeamHeader = "X-Team-ID"

// Context key type to avoid collisions
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity attaches the authenticated identity to the request context.
// Only the auth middleware's success path calls this.
func WithIdentity(r *http.Request, identity *models.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, identity)
	return r.WithContext(ctx)
}

// GetIdentity retrieves the authenticated identity from the request
// context. Returns nil when the request was admitted without a user
// identity (exempt path, preflight, or shared-secret auth).
func GetIdentity(r *http.Request) *models.Identity {
	identity, _ := r.Context().Value(identityKey).(*models.Identity)
	return identity
}

// TeamID returns the caller's team selector header, empty when absent.
func TeamID(r *http.Request) string {
	return r.Header.Get(TeamHeader)
}
