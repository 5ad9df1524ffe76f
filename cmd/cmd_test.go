package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capykyo/capy-book-fetch/internal/auth"
	"github.com/capykyo/capy-book-fetch/internal/extractor"
)

const cliSecret = "cli-test-secret"

func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "absent.env"))
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "absent.yml"))
	t.Setenv("JWT_SECRET", cliSecret)
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_EXPIRES_IN", "")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenGenerate(t *testing.T) {
	isolateEnv(t)

	out, err := runCLI(t, "token", "generate", "--user-id", "alice", "--expires-in", "2h")
	require.NoError(t, err)

	token := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	claims, err := auth.NewJWTManager(cliSecret, time.Hour).ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.UserID)
	assert.Empty(t, claims.Env)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.Contains(t, out, "curl -X POST http://localhost:3000/api/extract")
	assert.NotContains(t, out, "default secret")
}

func TestTokenGenerate_Production(t *testing.T) {
	isolateEnv(t)

	out, err := runCLI(t, "token", "generate", "--production")
	require.NoError(t, err)

	token := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	claims, err := auth.NewJWTManager(cliSecret, time.Hour).ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, productionTokenUser, claims.UserID)
	assert.Equal(t, "production", claims.Env)
}

func TestTokenGenerate_DefaultExpiryFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_EXPIRES_IN", "2h")

	out, err := runCLI(t, "token", "generate")
	require.NoError(t, err)

	token := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	claims, err := auth.NewJWTManager(cliSecret, time.Hour).ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, defaultTokenUser, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.Contains(t, out, "Expires in: 2h")
}

func TestTokenGenerate_InvalidExpiry(t *testing.T) {
	isolateEnv(t)

	_, err := runCLI(t, "token", "generate", "--expires-in", "later")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--expires-in")
}

func TestTokenVerify(t *testing.T) {
	isolateEnv(t)

	token, err := auth.NewJWTManager(cliSecret, time.Hour).GenerateToken("bob", "production", 0)
	require.NoError(t, err)

	out, err := runCLI(t, "token", "verify", token)
	require.NoError(t, err)
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "production")

	_, err = runCLI(t, "token", "verify", token+"tampered")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExtract_JSON(t *testing.T) {
	isolateEnv(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>CLI Page</title></head><body><main>Hello from main</main></body></html>`))
	}))
	defer upstream.Close()

	out, err := runCLI(t, "extract", upstream.URL+"/page", "--json")
	require.NoError(t, err)

	var res extractor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "CLI Page", res.Title)
	assert.Equal(t, "Hello from main", res.Content)
	assert.Equal(t, extractor.UnknownAuthor, res.Author)
	assert.Nil(t, res.NextLink)
}

func TestExtract_Table(t *testing.T) {
	isolateEnv(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<title>Table Page</title><a rel="next" href="/2">next</a>`))
	}))
	defer upstream.Close()

	out, err := runCLI(t, "extract", upstream.URL+"/1")
	require.NoError(t, err)
	assert.Contains(t, out, "Table Page")
	assert.Contains(t, out, "generic")
	assert.Contains(t, out, upstream.URL+"/2")
}

func TestExtract_InvalidURL(t *testing.T) {
	isolateEnv(t)

	_, err := runCLI(t, "extract", "ftp://example.com/file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL format")
}

func TestPreview(t *testing.T) {
	short := "short"
	assert.Equal(t, short, preview(short))

	long := strings.Repeat("字", contentPreviewRunes+10)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, []rune(got), contentPreviewRunes+3)
}
