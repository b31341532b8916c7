package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"opennotebook/internal/domain/models"
	"opennotebook/internal/observability"
)

// Decision is the outcome class of one authentication strategy.
type Decision int

const (
	// Abstain means the strategy cannot decide; try the next one.
	Abstain Decision = iota
	// Accepted means the request is authenticated. Identity may be nil
	// (shared-secret auth authenticates the request, not a user).
	Accepted
	// Rejected means the strategy owns this credential type and it failed;
	// the chain stops and the request is denied.
	Rejected
)

// Outcome is the result of one strategy attempt.
type Outcome struct {
	Decision Decision
	Identity *models.Identity
	Message  string // rejection detail shown to the caller
}

// Strategy is one way to authenticate a bearer token. The middleware runs
// strategies in order and stops at the first Accepted or Rejected.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, token string) Outcome
}

// ProviderStrategy authenticates via the identity provider. Provider
// failures (invalid token or unreachable provider) abstain so a configured
// shared secret can still admit the request; the two are tried in strict
// priority order, never merged.
type ProviderStrategy struct {
	verifier TokenVerifier
	logger   *slog.Logger
}

func NewProviderStrategy(verifier TokenVerifier, logger *slog.Logger) *ProviderStrategy {
	return &ProviderStrategy{verifier: verifier, logger: logger}
}

func (s *ProviderStrategy) Name() string { return "provider" }

func (s *ProviderStrategy) Authenticate(ctx context.Context, token string) Outcome {
	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			s.logger.Debug("provider unavailable, falling through", "error", err)
		} else {
			s.logger.Debug("provider rejected token, falling through", "error", err)
		}
		return Outcome{Decision: Abstain}
	}
	return Outcome{Decision: Accepted, Identity: identity}
}

// SharedSecretStrategy compares the bearer token verbatim against the
// operator-configured password. Unlike the provider strategy it never
// abstains: once reached, it is the last word.
type SharedSecretStrategy struct {
	secret string
}

func NewSharedSecretStrategy(secret string) *SharedSecretStrategy {
	return &SharedSecretStrategy{secret: secret}
}

func (s *SharedSecretStrategy) Name() string { return "password" }

func (s *SharedSecretStrategy) Authenticate(_ context.Context, token string) Outcome {
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) == 1 {
		return Outcome{Decision: Accepted}
	}
	return Outcome{Decision: Rejected, Message: "Invalid token or password"}
}

// Chain runs strategies in priority order.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain from the given strategies, skipping nils so
// callers can pass optional strategies unconditionally.
func NewChain(strategies ...Strategy) *Chain {
	c := &Chain{}
	for _, s := range strategies {
		if s != nil {
			c.strategies = append(c.strategies, s)
		}
	}
	return c
}

// Empty reports whether no authentication method is configured at all.
func (c *Chain) Empty() bool {
	return len(c.strategies) == 0
}

// Authenticate tries each strategy in order. If every strategy abstains
// (or the chain is empty), the request is rejected: a token was supplied
// but nothing could authenticate it.
func (c *Chain) Authenticate(ctx context.Context, token string) Outcome {
	for _, s := range c.strategies {
		out := s.Authenticate(ctx, token)
		if out.Decision == Abstain {
			continue
		}
		observability.AuthDecisions.WithLabelValues(s.Name(), decisionLabel(out.Decision)).Inc()
		return out
	}
	observability.AuthDecisions.WithLabelValues("none", "rejected").Inc()
	return Outcome{Decision: Rejected, Message: "Authentication required but not configured"}
}

func decisionLabel(d Decision) string {
	if d == Accepted {
		return "accepted"
	}
	return "rejected"
}
