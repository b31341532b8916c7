package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"opennotebook/internal/auth"
	"opennotebook/internal/config"
	"opennotebook/internal/domain/models"
	"opennotebook/internal/httputil"
)

// AuthHandler serves the auth introspection and login-proxy endpoints.
// Both are exempt from the auth middleware: clients need them to
// bootstrap a session.
type AuthHandler struct {
	cfg    *config.Config
	client *auth.Client // nil when the provider is not configured
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(cfg *config.Config, client *auth.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Status reports whether authentication is enabled and how.
// GET /auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	authType := h.cfg.AuthType()
	enabled := authType != "none"

	message := "Authentication is disabled"
	if enabled {
		message = "Authentication is required"
	}

	httputil.RespondJSON(w, http.StatusOK, models.AuthStatus{
		AuthEnabled: enabled,
		AuthType:    authType,
		Message:     message,
	})
}

// Login proxies credentials to the identity provider and returns the
// session token in the local API's shape.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable,
			"Supabase is not configured. Please set SUPABASE_URL and SUPABASE_ANON_KEY environment variables.")
		return
	}

	var req models.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.client.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("login succeeded", "user_id", session.User.ID)
	httputil.RespondJSON(w, http.StatusOK, session)
}
