package config

import (
	"slices"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "6202" {
		t.Errorf("Port = %q, want 6202", cfg.Port)
	}
	if cfg.SupabaseVerifyMode != VerifyRemote {
		t.Errorf("SupabaseVerifyMode = %q, want %q", cfg.SupabaseVerifyMode, VerifyRemote)
	}
	if cfg.StorageBackend != StorageSurreal {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StorageSurreal)
	}
	if cfg.LegacyPasswordAuth {
		t.Error("LegacyPasswordAuth should default to false")
	}
	if len(cfg.ExemptPaths) == 0 {
		t.Fatal("default exempt paths missing")
	}
	for _, p := range []string{"/", "/health", "/auth/status", "/auth/login", "/metrics"} {
		if !slices.Contains(cfg.ExemptPaths, p) {
			t.Errorf("default exempt paths missing %q", p)
		}
	}
}

func TestLoad_JWKSURL(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	cfg := Load()
	want := "https://proj.supabase.co/auth/v1/.well-known/jwks.json"
	if cfg.SupabaseJWKSURL != want {
		t.Errorf("SupabaseJWKSURL = %q, want %q", cfg.SupabaseJWKSURL, want)
	}
}

func TestLoad_ExemptPathsOverride(t *testing.T) {
	t.Setenv("AUTH_EXEMPT_PATHS", "/health, /custom ,,/other")
	cfg := Load()

	want := []string{"/health", "/custom", "/other"}
	if !slices.Equal(cfg.ExemptPaths, want) {
		t.Errorf("ExemptPaths = %v, want %v", cfg.ExemptPaths, want)
	}
}

func TestProviderConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.ProviderConfigured() {
		t.Error("unconfigured provider reported as configured")
	}

	cfg.SupabaseURL = "https://proj.supabase.co"
	if cfg.ProviderConfigured() {
		t.Error("URL without anon key should not count as configured")
	}

	cfg.SupabaseAnonKey = "anon"
	if !cfg.ProviderConfigured() {
		t.Error("URL plus anon key should count as configured")
	}
}

func TestAuthType(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"supabase", Config{SupabaseURL: "u", SupabaseAnonKey: "k"}, "supabase"},
		{"password only", Config{Password: "pw"}, "password"},
		{"legacy forces password", Config{SupabaseURL: "u", SupabaseAnonKey: "k", Password: "pw", LegacyPasswordAuth: true}, "password"},
		{"nothing", Config{}, "none"},
		{"legacy without password", Config{LegacyPasswordAuth: true}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.AuthType(); got != tt.want {
				t.Errorf("AuthType() = %q, want %q", got, tt.want)
			}
		})
	}
}
