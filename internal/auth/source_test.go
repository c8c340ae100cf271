// ABOUTME: Unit tests for credential sources
// ABOUTME: Covers static, env/file, chained, and freshness-filtered sources

package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestStatic(t *testing.T) {
	token, ok := Static("abc").Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = Static("").Token(context.Background())
	assert.False(t, ok)

	_, ok = None.Token(context.Background())
	assert.False(t, ok)
}

func TestEnvFileSource_PrefersEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0600))
	t.Setenv("TEST_EDGECALL_TOKEN", "from-env")

	token, ok := EnvFileSource{EnvVar: "TEST_EDGECALL_TOKEN", Path: path}.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "from-env", token)
}

func TestEnvFileSource_FallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0600))
	t.Setenv("TEST_EDGECALL_TOKEN", "")

	token, ok := EnvFileSource{EnvVar: "TEST_EDGECALL_TOKEN", Path: path}.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "from-file", token)
}

func TestEnvFileSource_Missing(t *testing.T) {
	t.Setenv("TEST_EDGECALL_TOKEN", "")

	_, ok := EnvFileSource{EnvVar: "TEST_EDGECALL_TOKEN", Path: filepath.Join(t.TempDir(), "absent")}.Token(context.Background())
	assert.False(t, ok)
}

func TestDefaultTokenPath_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "edgecall", "token"), DefaultTokenPath())
}

func TestChain(t *testing.T) {
	src := Chain(nil, None, Static("second"), Static("third"))

	token, ok := src.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "second", token)

	_, ok = Chain(None).Token(context.Background())
	assert.False(t, ok)
}

func TestFresh(t *testing.T) {
	live := mintToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	dead := mintToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})

	token, ok := Fresh(Static(live), 0, nil).Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, live, token)

	_, ok = Fresh(Static(dead), 0, nil).Token(context.Background())
	assert.False(t, ok)

	_, ok = Fresh(None, 0, nil).Token(context.Background())
	assert.False(t, ok)
}
