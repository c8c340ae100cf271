// ABOUTME: Persisted client session and its credential source
// ABOUTME: The stored access token feeds the request pipeline and push streams

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/2389/edgecall/internal/auth"
)

// ErrNoSession indicates no session has been stored.
var ErrNoSession = errors.New("no session")

// Session is the persisted authentication state of the current user.
type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the access token has expired at now.
// A zero ExpiresAt means the expiry is unknown and is treated as live.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !s.ExpiresAt.After(now)
}

// Store persists the single current session.
type Store interface {
	Current(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
	Close() error
}

// Source adapts a Store to auth.TokenSource. Read failures, a missing
// session and an expired session all mean "no token".
func Source(store Store, logger *slog.Logger) auth.TokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session")

	return auth.TokenSourceFunc(func(ctx context.Context) (string, bool) {
		s, err := store.Current(ctx)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				logger.Error("reading session", "error", err)
			}
			return "", false
		}
		if s.AccessToken == "" || s.Expired(time.Now()) {
			return "", false
		}
		return s.AccessToken, true
	})
}

// FromToken builds a session from a bearer token, filling the user and
// expiry from its claims when it is a JWT.
func FromToken(token string) *Session {
	s := &Session{AccessToken: token, UpdatedAt: time.Now().UTC()}
	if claims, err := auth.ParseClaims(token); err == nil {
		s.UserID = claims.Subject
		s.ExpiresAt = claims.ExpiresAt
	} else if claims != nil {
		s.UserID = claims.Subject
	}
	return s
}
