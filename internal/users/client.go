// ABOUTME: Users sub-client for reading and updating the caller's own profile
// ABOUTME: Both calls address the "me" path and may carry an explicit token

package users

import (
	"context"
	"encoding/json"
	"time"

	"github.com/2389/edgecall/internal/apiclient"
)

const mePath = "me"

// User is the authenticated account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the caller's editable profile.
type Profile struct {
	ID             string          `json:"id"`
	FirstName      *string         `json:"first_name"`
	LastName       *string         `json:"last_name"`
	Role           string          `json:"role"`
	ChatContext    json.RawMessage `json:"chat_context,omitempty"`
	ProfilePrivacy string          `json:"profile_privacy_setting,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Me is what the "me" path returns.
type Me struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
}

// ProfileUpdate changes profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	FirstName      *string         `json:"first_name,omitempty"`
	LastName       *string         `json:"last_name,omitempty"`
	ChatContext    json.RawMessage `json:"chat_context,omitempty"`
	ProfilePrivacy *string         `json:"profile_privacy_setting,omitempty"`
}

// Client is the users sub-client.
type Client struct {
	sender apiclient.Sender
}

// New builds a Client over sender.
func New(sender apiclient.Sender) *Client {
	return &Client{sender: sender}
}

// Me returns the caller's account and profile. A non-empty token is used
// instead of the stored session, which lets a freshly restored session be
// verified before it is trusted.
func (c *Client) Me(ctx context.Context, token string) (apiclient.Result[Me], error) {
	var opts []apiclient.Option
	if token != "" {
		opts = append(opts, apiclient.WithToken(token))
	}
	return apiclient.Get[Me](ctx, c.sender, mePath, opts...)
}

// UpdateProfile updates the caller's profile and returns the stored result.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (apiclient.Result[Profile], error) {
	return apiclient.Put[Profile](ctx, c.sender, mePath, upd)
}
