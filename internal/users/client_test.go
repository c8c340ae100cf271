// ABOUTME: Tests for the users sub-client
// ABOUTME: Checks the me path, token override and profile update body

package users

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/edgecall/internal/apiclient/apiclienttest"
	"github.com/2389/edgecall/internal/apierr"
)

func TestMe(t *testing.T) {
	rec := apiclienttest.New().JSON(200, map[string]any{
		"user":    map[string]any{"id": "u1", "email": "a@example.com"},
		"profile": map[string]any{"id": "u1", "first_name": "Ada"},
	})
	c := New(rec)

	res, err := c.Me(context.Background(), "restored-token")

	require.NoError(t, err)
	require.NotNil(t, res.Data.User)
	assert.Equal(t, "a@example.com", res.Data.User.Email)
	require.NotNil(t, res.Data.Profile.FirstName)
	assert.Equal(t, "Ada", *res.Data.Profile.FirstName)

	call := rec.Last()
	assert.Equal(t, "me", call.Endpoint)
	assert.Equal(t, http.MethodGet, call.Options.Method)
	assert.Equal(t, "restored-token", call.Options.Token)
}

func TestMe_UsesSessionWithoutToken(t *testing.T) {
	rec := apiclienttest.New()
	c := New(rec)

	_, err := c.Me(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, rec.Last().Options.Token)
}

func TestUpdateProfile(t *testing.T) {
	rec := apiclienttest.New().JSON(200, map[string]any{"id": "u1", "last_name": "Lovelace"})
	c := New(rec)
	last := "Lovelace"

	res, err := c.UpdateProfile(context.Background(), ProfileUpdate{LastName: &last})

	require.NoError(t, err)
	assert.Equal(t, "Lovelace", *res.Data.LastName)
	call := rec.Last()
	assert.Equal(t, http.MethodPut, call.Options.Method)
	assert.Equal(t, ProfileUpdate{LastName: &last}, call.Options.Body)
}

func TestMe_SessionRequired(t *testing.T) {
	rec := apiclienttest.New().Err(apierr.NewSessionRequired(""))
	c := New(rec)

	_, err := c.Me(context.Background(), "")

	assert.True(t, apierr.IsSessionRequired(err))
}
