// ABOUTME: Credential sources that supply bearer tokens to the request pipeline
// ABOUTME: Absence of a token is a normal outcome, never an error

package auth

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTokenEnv is the environment variable consulted by EnvFileSource.
const DefaultTokenEnv = "EDGECALL_TOKEN"

// TokenSource supplies a short-lived bearer token on demand. It reports
// false when no token is available; it never fails.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, bool)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, bool) {
	return f(ctx)
}

// Static returns a source that always yields token (or nothing if empty).
func Static(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, bool) {
		return token, token != ""
	})
}

// None is a source that never has a token.
var None TokenSource = TokenSourceFunc(func(context.Context) (string, bool) {
	return "", false
})

// EnvFileSource reads the token from an environment variable, then from a
// token file. An empty Path means $XDG_CONFIG_HOME/edgecall/token.
type EnvFileSource struct {
	EnvVar string
	Path   string
}

// Token implements TokenSource.
func (s EnvFileSource) Token(context.Context) (string, bool) {
	envVar := s.EnvVar
	if envVar == "" {
		envVar = DefaultTokenEnv
	}
	if token := os.Getenv(envVar); token != "" {
		return token, true
	}

	path := s.Path
	if path == "" {
		path = DefaultTokenPath()
	}
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// DefaultTokenPath returns ~/.config/edgecall/token honoring XDG_CONFIG_HOME.
func DefaultTokenPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "edgecall", "token")
}

// Chain returns the first token any of the sources yields.
func Chain(sources ...TokenSource) TokenSource {
	return TokenSourceFunc(func(ctx context.Context) (string, bool) {
		for _, src := range sources {
			if src == nil {
				continue
			}
			if token, ok := src.Token(ctx); ok {
				return token, true
			}
		}
		return "", false
	})
}

// Fresh wraps src so tokens whose exp claim has passed (with skew) are
// reported as absent. An expired session is the same as no session.
func Fresh(src TokenSource, skew time.Duration, logger *slog.Logger) TokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return TokenSourceFunc(func(ctx context.Context) (string, bool) {
		token, ok := src.Token(ctx)
		if !ok {
			return "", false
		}
		if Expired(token, time.Now(), skew) {
			logger.Debug("dropping expired session token")
			return "", false
		}
		return token, true
	})
}
