package models

import "github.com/golang-jwt/jwt/v5"

// Identity is a verified principal established by the identity provider.
// It is attached to the request context by the auth middleware and is
// absent entirely when the request was authenticated with the shared
// password (password auth authenticates the request, not a user).
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// Identity converts the claims into the canonical Identity shape,
// defaulting the role to "authenticated" when the provider omits it.
func (c *SupabaseClaims) Identity() *Identity {
	role := c.Role
	if role == "" {
		role = "authenticated"
	}
	return &Identity{
		ID:    c.Subject,
		Email: c.Email,
		Role:  role,
	}
}

// LoginRequest is the credential payload for the login proxy endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse mirrors the provider session in the local API's shape.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        Identity `json:"user"`
}

// AuthStatus reports whether (and how) the API requires authentication.
type AuthStatus struct {
	AuthEnabled bool   `json:"auth_enabled"`
	AuthType    string `json:"auth_type"` // "supabase", "password" or "none"
	Message     string `json:"message"`
}
