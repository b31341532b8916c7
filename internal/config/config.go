package config

import (
	"os"
	"strings"
)

// Verify modes for provider tokens.
const (
	// VerifyRemote asks the Auth API who the token belongs to, one
	// outbound call per verification.
	VerifyRemote = "remote"
	// VerifyJWKS validates token signatures locally against the
	// project's JWKS endpoint.
	VerifyJWKS = "jwks"
)

// Storage backends.
const (
	StorageSurreal  = "surrealdb"
	StoragePostgres = "postgres"
)

// Config is the process-wide configuration, built once at startup and
// treated as read-only afterwards. Nothing re-reads the environment per
// request.
type Config struct {
	Port        string
	Environment string

	// Identity provider
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseJWKSURL    string // constructed from SupabaseURL
	SupabaseVerifyMode string // "remote" or "jwks"

	// Shared-secret fallback auth
	Password string

	// LegacyPasswordAuth selects the single-secret gate instead of the
	// provider chain (deployments without a provider at all).
	LegacyPasswordAuth bool

	// Auth-exempt request paths (root, health, docs, metrics, ...)
	ExemptPaths []string

	CORSOrigins string

	// Storage
	StorageBackend   string
	SurrealURL       string
	SurrealNamespace string
	SurrealDatabase  string
	SurrealUser      string
	SurrealPass      string
	PostgresDBURL    string
}

// Load builds the configuration from the environment.
func Load() *Config {
	supabaseURL := getEnv("SUPABASE_URL", "")

	return &Config{
		Port:        getEnv("PORT", "6202"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		SupabaseURL:        supabaseURL,
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWKSURL:    jwksURL(supabaseURL),
		SupabaseVerifyMode: getEnv("SUPABASE_VERIFY_MODE", VerifyRemote),

		Password:           os.Getenv("OPEN_NOTEBOOK_PASSWORD"),
		LegacyPasswordAuth: getEnv("LEGACY_PASSWORD_AUTH", "false") == "true",

		ExemptPaths: exemptPaths(os.Getenv("AUTH_EXEMPT_PATHS")),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		StorageBackend:   getEnv("STORAGE_BACKEND", StorageSurreal),
		SurrealURL:       getEnv("SURREAL_URL", "ws://localhost:8000/rpc"),
		SurrealNamespace: getEnv("SURREAL_NAMESPACE", "open_notebook"),
		SurrealDatabase:  getEnv("SURREAL_DATABASE", "open_notebook"),
		SurrealUser:      getEnv("SURREAL_USER", "root"),
		SurrealPass:      getEnv("SURREAL_PASS", "root"),
		PostgresDBURL:    getEnv("POSTGRES_DB_URL", ""),
	}
}

// ProviderConfigured reports whether identity-provider auth can run.
func (c *Config) ProviderConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

// AuthType names the active authentication mode for the status endpoint.
func (c *Config) AuthType() string {
	switch {
	case !c.LegacyPasswordAuth && c.ProviderConfigured():
		return "supabase"
	case c.Password != "":
		return "password"
	default:
		return "none"
	}
}

func jwksURL(supabaseURL string) string {
	if supabaseURL == "" {
		return ""
	}
	return supabaseURL + "/auth/v1/.well-known/jwks.json"
}

func exemptPaths(override string) []string {
	if override == "" {
		return DefaultExemptPaths()
	}
	var paths []string
	for _, p := range strings.Split(override, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
