package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"opennotebook/internal/domain"
	"opennotebook/internal/domain/models"
	"opennotebook/internal/observability"
)

// Client proxies credential sign-in to the Supabase Auth API so the
// frontend never talks to the provider directly. Passwords are never
// stored or compared locally; the credential check is entirely the
// provider's.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a login client for the project's Auth API.
func NewClient(baseURL, anonKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordGrantResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

// text returns whichever message field the provider populated. GoTrue has
// used several shapes across versions.
func (e providerError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignInWithPassword exchanges email/password credentials for a session.
//
// Provider outcomes map to domain errors: bad credentials to
// ErrUnauthorized, unconfirmed accounts to ErrForbidden, an unreachable
// provider to ErrServiceUnavailable. Any other provider failure becomes a
// generic internal error; the provider's own message is logged server-side
// and never echoed to the caller.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	url := c.baseURL + "/auth/v1/token?grant_type=password"

	payload, err := json.Marshal(passwordGrantRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("supabase sign-in transport failure", "error", err)
		observability.ProviderRequests.WithLabelValues("sign_in", "unavailable").Inc()
		return nil, &domain.UnavailableError{Message: "Authentication service is unavailable"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		observability.ProviderRequests.WithLabelValues("sign_in", "error").Inc()
		return nil, c.mapSignInError(resp.StatusCode, body)
	}

	var grant passwordGrantResponse
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, fmt.Errorf("decode sign-in response: %w", err)
	}
	if grant.AccessToken == "" || grant.User.ID == "" {
		return nil, &domain.UnauthorizedError{Message: "Invalid email or password"}
	}

	observability.ProviderRequests.WithLabelValues("sign_in", "ok").Inc()

	role := grant.User.Role
	if role == "" {
		role = "authenticated"
	}
	tokenType := grant.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}

	return &models.LoginResponse{
		AccessToken: grant.AccessToken,
		TokenType:   tokenType,
		User: models.Identity{
			ID:    grant.User.ID,
			Email: grant.User.Email,
			Role:  role,
		},
	}, nil
}

// mapSignInError normalizes provider error payloads into domain errors.
func (c *Client) mapSignInError(status int, body []byte) error {
	var perr providerError
	_ = json.Unmarshal(body, &perr)
	msg := perr.text()

	switch {
	case strings.Contains(msg, "Invalid login credentials"),
		status == http.StatusBadRequest && msg == "",
		status == http.StatusUnauthorized:
		return &domain.UnauthorizedError{Message: "Invalid email or password"}
	case strings.Contains(msg, "Email not confirmed"):
		return &domain.ForbiddenError{Message: "Please confirm your email before logging in"}
	case status >= http.StatusInternalServerError:
		c.logger.Error("supabase sign-in failed", "status", status, "provider_message", msg)
		return &domain.UnavailableError{Message: "Authentication service is unavailable"}
	default:
		c.logger.Error("supabase sign-in failed", "status", status, "provider_message", msg)
		return fmt.Errorf("authentication failed with status %d", status)
	}
}
