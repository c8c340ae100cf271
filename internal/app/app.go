// ABOUTME: Composition root wiring configuration, credentials, pipeline, streams and sub-clients
// ABOUTME: Holds the one process-wide instance with explicit init, get and reset

// Package app builds every client component from one configuration and
// keeps the single process-wide instance.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/2389/edgecall/internal/ai"
	"github.com/2389/edgecall/internal/apiclient"
	"github.com/2389/edgecall/internal/auth"
	"github.com/2389/edgecall/internal/config"
	"github.com/2389/edgecall/internal/dedupe"
	"github.com/2389/edgecall/internal/dialectic"
	"github.com/2389/edgecall/internal/notifications"
	"github.com/2389/edgecall/internal/organizations"
	"github.com/2389/edgecall/internal/session"
	"github.com/2389/edgecall/internal/stream"
	"github.com/2389/edgecall/internal/users"
)

// tokenSkew treats tokens about to expire as already expired.
const tokenSkew = 30 * time.Second

// Lifecycle errors. Both indicate a programming or configuration mistake.
var (
	ErrAlreadyInitialized = errors.New("app already initialized")
	ErrNotInitialized     = errors.New("app not initialized")
)

// App is the set of wired client components.
type App struct {
	Config *config.Config

	API     *apiclient.Client
	Tokens  auth.TokenSource
	Streams *stream.Manager

	// Sessions is nil unless auth.session_db is configured.
	Sessions session.Store

	Dialectic     *dialectic.Client
	Organizations *organizations.Client
	Notifications *notifications.Client
	AI            *ai.Client
	Users         *users.Client

	logger *slog.Logger
}

// New validates cfg and wires every component. The caller owns the result
// and must Close it.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("validating config: %w", errors.New("config is required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, logger: logger.With("component", "app")}

	// Each source is checked for expiry on its own so an expired override
	// falls through to the next source.
	sources := []auth.TokenSource{
		auth.Static(cfg.Auth.Token),
		auth.EnvFileSource{EnvVar: cfg.Auth.TokenEnv, Path: cfg.Auth.TokenFile},
	}
	if cfg.Auth.SessionDB != "" {
		store, err := session.NewSQLiteStore(cfg.Auth.SessionDB)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		a.Sessions = store
		sources = append(sources, session.Source(store, logger))
	}
	for i, src := range sources {
		sources[i] = auth.Fresh(src, tokenSkew, logger)
	}
	a.Tokens = auth.Chain(sources...)

	api, err := apiclient.New(apiclient.Config{
		BaseURL:       cfg.API.BaseURL,
		AnonKey:       cfg.API.AnonKey,
		FunctionsPath: cfg.API.FunctionsPath,
		UserAgent:     cfg.API.UserAgent,
		HTTPClient:    &http.Client{Timeout: cfg.API.RequestTimeout},
		Tokens:        a.Tokens,
		Logger:        logger,
	})
	if err != nil {
		a.closeSessions()
		return nil, fmt.Errorf("validating config: %w", err)
	}
	a.API = api

	// Streams stay open indefinitely, so they never share the request timeout.
	a.Streams = stream.NewManager(stream.Config{
		FunctionsURL: api.FunctionsURL(),
		Tokens:       a.Tokens,
		HTTPClient:   &http.Client{},
		Logger:       logger,
	})

	a.Dialectic = dialectic.New(api, logger)
	a.Organizations = organizations.New(api, logger)
	a.AI = ai.New(api, logger)
	a.Users = users.New(api)
	a.Notifications = notifications.New(notifications.Config{
		Sender:   api,
		Streams:  a.Streams,
		Endpoint: cfg.Streams.NotificationsEndpoint,
		Seen: dedupe.New(dedupe.Options{
			TTL:     cfg.Streams.DedupeTTL,
			MaxSize: cfg.Streams.DedupeSize,
		}),
		Logger: logger,
	})

	a.logger.Info("client initialized", "functions_url", api.FunctionsURL(), "session_store", a.Sessions != nil)
	return a, nil
}

// Close disconnects every stream and releases the session store.
func (a *App) Close() error {
	a.Streams.Close()
	a.Notifications.Close()
	return a.closeSessions()
}

func (a *App) closeSessions() error {
	if a.Sessions == nil {
		return nil
	}
	if err := a.Sessions.Close(); err != nil {
		return fmt.Errorf("closing session store: %w", err)
	}
	return nil
}

var (
	mu      sync.Mutex
	current *App
)

// Init builds the process-wide App. Calling it again without Reset returns
// ErrAlreadyInitialized.
func Init(cfg *config.Config, logger *slog.Logger) (*App, error) {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return nil, ErrAlreadyInitialized
	}
	a, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	current = a
	return a, nil
}

// Get returns the process-wide App, or ErrNotInitialized.
func Get() (*App, error) {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

// MustGet returns the process-wide App and panics if Init has not run.
func MustGet() *App {
	a, err := Get()
	if err != nil {
		panic(err)
	}
	return a
}

// Reset closes and discards the process-wide App so Init can run again.
// It is meant for tests and for re-configuring after logout.
func Reset() error {
	mu.Lock()
	a := current
	current = nil
	mu.Unlock()

	if a == nil {
		return nil
	}
	return a.Close()
}
