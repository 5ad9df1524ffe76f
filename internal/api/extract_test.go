package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/capykyo/capy-book-fetch/internal/api"
	"github.com/capykyo/capy-book-fetch/internal/apperrors"
	"github.com/capykyo/capy-book-fetch/internal/auth"
	"github.com/capykyo/capy-book-fetch/internal/extractor"
	"github.com/capykyo/capy-book-fetch/internal/fetcher"
	"github.com/capykyo/capy-book-fetch/internal/logger"
	fetchermocks "github.com/capykyo/capy-book-fetch/internal/testutils/mocks/fetcher"
)

const testSecret = "test-secret"

const chapterHTML = `<html><head><meta name="description" content="A tale"></head><body>
<div class="name">Some Book</div>
<h1 class="headline" itemprop="headline">Chapter 2</h1>
<div id="content"><p>Line one.</p><p class="ads">ad</p><p>Line two.</p></div>
<div class="list_page"><a rel="next" href="/n/some-book/3.html">next</a></div>
</body></html>`

type fakeRecorder struct {
	outcomes  []string
	durations int
}

func (r *fakeRecorder) ObserveExtract(ruleset, outcome string) {
	r.outcomes = append(r.outcomes, ruleset+":"+outcome)
}

func (r *fakeRecorder) ObserveExtractDuration(string, time.Duration) { r.durations++ }

type testEnv struct {
	router   *gin.Engine
	fetcher  *fetchermocks.MockFetcher
	jwt      *auth.JWTManager
	recorder *fakeRecorder
}

func newTestEnv(t *testing.T, development bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	env := &testEnv{
		fetcher:  fetchermocks.NewMockFetcher(ctrl),
		jwt:      auth.NewJWTManager(testSecret, time.Hour),
		recorder: &fakeRecorder{},
	}

	env.router = gin.New()
	api.SetupRoutes(env.router, api.Routes{
		Extract:     api.NewExtractHandler(env.fetcher, extractor.DefaultDispatcher(), extractor.NewEngine(), env.recorder),
		Auth:        api.NewAuthHandler(env.jwt, env.jwt, "1h", development),
		RequireAuth: auth.Middleware(env.jwt, development),
		Development: development,
	})
	return env
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken("reader", "", 0)
	require.NoError(t, err)
	return tok
}

func postExtract(r http.Handler, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.Response {
	t.Helper()
	var body apperrors.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func TestExtract_ValidationRunsBeforeAuth(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty body", "", api.MsgMissingURL},
		{"no url field", `{}`, api.MsgMissingURL},
		{"blank url", `{"url":"   "}`, api.MsgMissingURL},
		{"not json", `url=x`, api.MsgInvalidBody},
		{"wrong type", `{"url":42}`, api.MsgInvalidBody},
		{"relative url", `{"url":"not-a-url"}`, fetcher.MsgInvalidURL},
		{"unsupported scheme", `{"url":"ftp://example.com/a"}`, fetcher.MsgInvalidURL},
		{"port out of range", `{"url":"http://example.com:99999/a"}`, fetcher.MsgInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postExtract(env.router, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w).Error)
		})
	}
}

func TestExtract_RequiresToken(t *testing.T) {
	env := newTestEnv(t, false)

	w := postExtract(env.router, `{"url":"https://example.com/a"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.MsgMissingToken, decodeError(t, w).Error)

	w = postExtract(env.router, `{"url":"https://example.com/a"}`, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.MsgInvalidToken, decodeError(t, w).Error)
}

func TestExtract_QuanbenChapter(t *testing.T) {
	env := newTestEnv(t, false)
	const pageURL = "https://quanben.io/n/some-book/2.html"

	env.fetcher.EXPECT().
		Fetch(gomock.Any(), pageURL).
		Return(chapterHTML, nil)

	w := postExtract(env.router, `{"url":"  `+pageURL+`  "}`, env.token(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success bool             `json:"success"`
		Data    extractor.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, "Chapter 2", body.Data.Title)
	assert.Equal(t, "Line one.\nLine two.", body.Data.Content)
	assert.Equal(t, extractor.UnknownAuthor, body.Data.Author)
	assert.Equal(t, "Some Book", body.Data.BookName)
	assert.Equal(t, "A tale", body.Data.Description)
	require.NotNil(t, body.Data.PrevLink)
	assert.Equal(t, "https://quanben.io/n/some-book/1.html", *body.Data.PrevLink)
	require.NotNil(t, body.Data.NextLink)
	assert.Equal(t, "https://quanben.io/n/some-book/3.html", *body.Data.NextLink)

	assert.Equal(t, []string{"quanben:success"}, env.recorder.outcomes)
	assert.Equal(t, 1, env.recorder.durations)
}

func TestExtract_GenericPageKeepsNullLinks(t *testing.T) {
	env := newTestEnv(t, false)

	env.fetcher.EXPECT().
		Fetch(gomock.Any(), "https://example.com/post").
		Return(`<html><head><title>Post</title></head><body><article>Body text</article></body></html>`, nil)

	w := postExtract(env.router, `{"url":"https://example.com/post"}`, env.token(t))
	require.Equal(t, http.StatusOK, w.Code)

	var raw struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	data := raw.Data

	assert.Equal(t, "Post", data["title"])
	assert.Equal(t, "Body text", data["content"])
	assert.Contains(t, data, "prevLink")
	assert.Nil(t, data["prevLink"])
	assert.Contains(t, data, "nextLink")
	assert.Nil(t, data["nextLink"])
	assert.NotContains(t, data, "bookName")
}

func TestExtract_FetchErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantLabel  string
	}{
		{
			name:       "timeout",
			err:        apperrors.Wrap(apperrors.KindUpstreamTimeout, fetcher.MsgTimeout, context.DeadlineExceeded),
			wantStatus: http.StatusRequestTimeout,
			wantMsg:    fetcher.MsgTimeout,
			wantLabel:  "generic:upstream_timeout",
		},
		{
			name:       "unreachable",
			err:        apperrors.New(apperrors.KindUpstreamUnreachable, fetcher.MsgUnreachable),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    fetcher.MsgUnreachable,
			wantLabel:  "generic:upstream_unreachable",
		},
		{
			name:       "upstream 404",
			err:        apperrors.Upstream(http.StatusNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "client error: HTTP 404",
			wantLabel:  "generic:upstream_http_error",
		},
		{
			name:       "upstream 503",
			err:        apperrors.Upstream(http.StatusServiceUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "server error: HTTP 503",
			wantLabel:  "generic:upstream_http_error",
		},
		{
			name:       "unclassified",
			err:        apperrors.New(apperrors.KindUnknown, "network error: boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "network error: boom",
			wantLabel:  "generic:unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			env.fetcher.EXPECT().
				Fetch(gomock.Any(), "https://example.com/a").
				Return("", tt.err)

			w := postExtract(env.router, `{"url":"https://example.com/a"}`, env.token(t))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w).Error)
			assert.Equal(t, []string{tt.wantLabel}, env.recorder.outcomes)
		})
	}
}

type recordingLogger struct {
	logger.Logger
	fields  []logger.Field
	entries map[string][]logger.Field
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{Logger: logger.NewNop(), entries: map[string][]logger.Field{}}
}

func (l *recordingLogger) Info(msg string, fields ...logger.Field) {
	l.entries[msg] = append(append([]logger.Field{}, l.fields...), fields...)
}

func (l *recordingLogger) With(fields ...logger.Field) logger.Logger {
	l.fields = append(l.fields, fields...)
	return l
}

func (l *recordingLogger) stringField(msg, key string) (string, bool) {
	for _, f := range l.entries[msg] {
		if f.Key == key {
			return f.String, true
		}
	}
	return "", false
}

func TestExtract_LogsAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	f := fetchermocks.NewMockFetcher(ctrl)
	jwt := auth.NewJWTManager(testSecret, time.Hour)
	rec := newRecordingLogger()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), rec))
		c.Next()
	})
	api.SetupRoutes(router, api.Routes{
		Extract:     api.NewExtractHandler(f, extractor.DefaultDispatcher(), extractor.NewEngine(), nil),
		Auth:        api.NewAuthHandler(jwt, jwt, "1h", false),
		RequireAuth: auth.Middleware(jwt, false),
	})

	f.EXPECT().
		Fetch(gomock.Any(), "https://example.com/a").
		Return("<title>Logged</title>", nil)

	tok, err := jwt.GenerateToken("reader", "", 0)
	require.NoError(t, err)

	w := postExtract(router, `{"url":"https://example.com/a"}`, tok)
	require.Equal(t, http.StatusOK, w.Code)

	userID, found := rec.stringField("Content extracted", "user_id")
	require.True(t, found)
	assert.Equal(t, "reader", userID)
}

func TestExtract_DevelopmentBypassesAuth(t *testing.T) {
	env := newTestEnv(t, true)

	env.fetcher.EXPECT().
		Fetch(gomock.Any(), "https://example.com/a").
		Return("<title>Dev</title>", nil)

	w := postExtract(env.router, `{"url":"https://example.com/a"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, false)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope?x=1", http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)

	var body api.NotFoundResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, api.MsgRouteNotFound, body.Error)
	assert.Equal(t, "/nope?x=1", body.Path)
}
