package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"opennotebook/internal/domain/models"
)

// SupabaseVerifier validates bearer tokens by asking the Supabase Auth
// (GoTrue) API who the token belongs to. This treats the provider as an
// opaque oracle: the token is opaque to us, we only forward it.
type SupabaseVerifier struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSupabaseVerifier creates a verifier against the project's Auth API.
// The timeout bounds the single outbound call per verification; there are
// no retries within a request.
func NewSupabaseVerifier(baseURL, anonKey string, logger *slog.Logger) *SupabaseVerifier {
	return &SupabaseVerifier{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// userResponse is the subset of the GoTrue GET /auth/v1/user payload we
// care about.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verify asks the provider for the user behind the token.
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	url := v.baseURL + "/auth/v1/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrProviderUnavailable, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.anonKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Debug("supabase user lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		v.logger.Debug("supabase user lookup returned unexpected status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderUnavailable, err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	role := user.Role
	if role == "" {
		role = "authenticated"
	}

	return &models.Identity{
		ID:    user.ID,
		Email: user.Email,
		Role:  role,
	}, nil
}

// Close is a no-op; the HTTP client holds no per-verifier resources.
func (v *SupabaseVerifier) Close() error {
	return nil
}
