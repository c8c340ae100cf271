// Package auth supplies bearer credentials to the request pipeline and the
// push streams.
//
// # Token sources
//
// A TokenSource yields the current access token or reports that none is
// available. Absence is a normal outcome: protected calls then go out with
// only the anonymous key and the remote decides.
//
//   - Static: a fixed token from configuration.
//   - EnvFileSource: $EDGECALL_TOKEN, then ~/.config/edgecall/token.
//   - session.Source: the persisted session (see package session).
//
// Chain tries sources in order. Fresh drops tokens whose exp claim has
// passed, so an expired session looks the same as no session.
//
// # Claims
//
// ParseClaims reads subject, role and expiry without verifying the
// signature. The client never holds the signing secret.
package auth
