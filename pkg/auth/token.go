package auth

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenSaver persists refreshed tokens.
type TokenSaver interface {
	Set(tok *oauth2.Token) error
}

type persistingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	last   string
	saver  TokenSaver
	logger *slog.Logger
}

// NewPersistingTokenSource wraps base and saves every token it hands out that
// differs from the previous one. Save failures are logged, not returned.
func NewPersistingTokenSource(base oauth2.TokenSource, initial *oauth2.Token, saver TokenSaver) oauth2.TokenSource {
	ts := &persistingTokenSource{
		base:   oauth2.ReuseTokenSource(initial, base),
		saver:  saver,
		logger: slog.Default().With("component", "auth"),
	}
	if initial != nil {
		ts.last = initial.AccessToken
	}
	return ts
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if s.saver != nil {
			if err := s.saver.Set(tok); err != nil {
				s.logger.Warn("failed to persist refreshed token", "error", err)
			} else {
				s.logger.Debug("token refreshed", "expiry", tok.Expiry)
			}
		}
	}
	return tok, nil
}

// TokenInfo is what Inspect reads from an access token.
type TokenInfo struct {
	Subject   string
	Username  string
	Email     string
	Issuer    string
	ExpiresAt time.Time
}

// Expired reports whether the token expires within leeway of now. Tokens
// without an exp claim never expire.
func (i TokenInfo) Expired(now time.Time, leeway time.Duration) bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(i.ExpiresAt)
}

// Inspect decodes the claims of a JWT access token without verifying its
// signature. Usable verifies the token; this is only used to show who is
// logged in and to reject expired tokens early.
func Inspect(accessToken string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	info := &TokenInfo{}
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	info.Username, _ = getClaimString(claims, "preferred_username")
	info.Email, _ = getClaimString(claims, "email")
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
