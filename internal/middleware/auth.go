package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"opennotebook/internal/auth"
	"opennotebook/internal/httputil"
)

// bearerToken extracts the token from an Authorization header of the
// exact shape "Bearer <token>" (single space, scheme case-insensitive).
// ok is false when the header is present but malformed.
func bearerToken(header string) (token string, ok bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return token, true
}

// exempt reports whether the path bypasses authentication entirely.
func exempt(paths []string, requestPath string) bool {
	for _, p := range paths {
		if p == requestPath {
			return true
		}
	}
	return false
}

// Auth gates every request behind the authentication chain.
//
// Exempt paths and CORS preflight requests are forwarded with no identity.
// Everything else needs a well-formed bearer token, which the chain then
// judges: the first strategy to accept or reject wins, and a strategy that
// abstains hands the token to the next one. On acceptance the verified
// identity (when there is one) rides the request context; the rest of the
// stack reads it through httputil.GetIdentity.
func Auth(chain *auth.Chain, exemptPaths []string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt(exemptPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.RespondUnauthorized(w, "Missing authorization header")
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				httputil.RespondUnauthorized(w, "Invalid authorization header format")
				return
			}

			outcome := chain.Authenticate(r.Context(), token)
			if outcome.Decision != auth.Accepted {
				logger.Debug("request rejected",
					"path", r.URL.Path,
					"detail", outcome.Message,
				)
				httputil.RespondUnauthorized(w, outcome.Message)
				return
			}

			if outcome.Identity != nil {
				r = httputil.WithIdentity(r, outcome.Identity)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PasswordAuth is the legacy single-secret gate for deployments without an
// identity provider. Same header-parsing rules as Auth, simpler body:
// secret match or 401.
//
// When no password is configured the gate forwards everything - the API is
// then fully open by design, and main logs a warning at startup so
// operators notice.
func PasswordAuth(password string, exemptPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if password == "" {
				next.ServeHTTP(w, r)
				return
			}
			if exempt(exemptPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.RespondUnauthorized(w, "Missing authorization header")
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				httputil.RespondUnauthorized(w, "Invalid authorization header format")
				return
			}

			if token != password {
				httputil.RespondUnauthorized(w, "Invalid password")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
