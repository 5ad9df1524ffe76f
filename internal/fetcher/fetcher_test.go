package fetcher_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
	"github.com/capykyo/capy-book-fetch/internal/fetcher"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveFetch(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_SuccessSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotLang, gotAccept string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, "<title>ok</title>")
	})

	obs := &recordingObserver{}
	f := fetcher.New(fetcher.Config{
		UserAgent:      "capy-test/1.0",
		AcceptLanguage: "zh-CN,zh;q=0.9",
	}, fetcher.WithObserver(obs))

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "<title>ok</title>", body)
	assert.Equal(t, "capy-test/1.0", gotUA)
	assert.Equal(t, "zh-CN,zh;q=0.9", gotLang)
	assert.Contains(t, gotAccept, "text/html")
	assert.Equal(t, []string{fetcher.OutcomeSuccess}, obs.outcomes)
}

func TestFetch_DecodesDeclaredCharset(t *testing.T) {
	t.Parallel()

	gbk, err := simplifiedchinese.GBK.NewEncoder().String("<p>第一章 风起</p>")
	require.NoError(t, err)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"content-type header", "text/html; charset=gbk", gbk},
		{"meta tag", "text/html", `<html><head><meta charset="gbk"></head><body>` + gbk + `</body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			})

			body, err := fetcher.New(fetcher.Config{}).Fetch(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Contains(t, body, "第一章 风起")
		})
	}
}

func TestFetch_UpstreamStatusMirrored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  int
		message string
	}{
		{http.StatusNotFound, "client error: HTTP 404"},
		{http.StatusForbidden, "client error: HTTP 403"},
		{http.StatusInternalServerError, "server error: HTTP 500"},
		{http.StatusBadGateway, "server error: HTTP 502"},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			t.Parallel()

			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			obs := &recordingObserver{}
			_, err := fetcher.New(fetcher.Config{}, fetcher.WithObserver(obs)).Fetch(context.Background(), srv.URL)
			require.Error(t, err)

			assert.Equal(t, apperrors.KindUpstreamHTTP, apperrors.KindOf(err))
			assert.Equal(t, tt.status, apperrors.StatusCode(err))
			assert.Equal(t, tt.message, apperrors.Message(err))
			assert.Equal(t, []string{fetcher.OutcomeHTTPError}, obs.outcomes)
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	_, err := fetcher.New(fetcher.Config{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamTimeout, apperrors.KindOf(err))
	assert.Equal(t, http.StatusRequestTimeout, apperrors.StatusCode(err))
	assert.Equal(t, fetcher.MsgTimeout, apperrors.Message(err))
}

func TestFetch_ContextDeadline(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.New(fetcher.Config{}).Fetch(ctx, srv.URL)
	assert.Equal(t, apperrors.KindUpstreamTimeout, apperrors.KindOf(err))
}

func TestFetch_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := fetcher.New(fetcher.Config{}).Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamUnreachable, apperrors.KindOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.StatusCode(err))
	assert.Equal(t, fetcher.OutcomeUnreachable, fetcher.Outcome(err))
}

func TestFetch_UnknownHost(t *testing.T) {
	t.Parallel()

	_, err := fetcher.New(fetcher.Config{Timeout: 5 * time.Second}).
		Fetch(context.Background(), "http://capy-book-fetch.invalid/")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.StatusCode(err))
}

func TestFetch_Redirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/hop/"))
		if n == 0 {
			_, _ = fmt.Fprint(w, "arrived")
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
	})
	srv := newServer(t, mux.ServeHTTP)

	f := fetcher.New(fetcher.Config{MaxRedirects: 3})

	body, err := f.Fetch(context.Background(), srv.URL+"/hop/3")
	require.NoError(t, err)
	assert.Equal(t, "arrived", body)

	_, err = f.Fetch(context.Background(), srv.URL+"/hop/4")
	require.ErrorIs(t, err, fetcher.ErrTooManyRedirects)
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(err))
	assert.Contains(t, apperrors.Message(err), "network error")
}

func TestFetch_BodyLimit(t *testing.T) {
	t.Parallel()

	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 2048)))
	})

	_, err := fetcher.New(fetcher.Config{MaxBodyBytes: 1024}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, apperrors.Message(err), fetcher.MsgTooLarge)

	body, err := fetcher.New(fetcher.Config{MaxBodyBytes: 2048}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, 2048)
}

func TestFetch_InvalidURL(t *testing.T) {
	t.Parallel()

	f := fetcher.New(fetcher.Config{})
	for _, raw := range []string{"", "not-a-url", "ftp://example.com/x", "http://", "://missing-scheme", "/relative",
		"http://example.com:99999/x", "http://example.com:0/x", "http://:8080/x"} {
		_, err := f.Fetch(context.Background(), raw)
		require.Error(t, err, raw)
		assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err), raw)
		assert.Equal(t, fetcher.MsgInvalidURL, apperrors.Message(err), raw)
	}
}

func TestRedirectPolicy(t *testing.T) {
	t.Parallel()

	policy := fetcher.RedirectPolicy(2)
	via := func(n int) []*http.Request { return make([]*http.Request, n) }

	assert.NoError(t, policy(nil, via(1)))
	assert.NoError(t, policy(nil, via(2)))
	assert.ErrorIs(t, policy(nil, via(3)), fetcher.ErrTooManyRedirects)
	assert.ErrorIs(t, fetcher.RedirectPolicy(0)(nil, via(1)), fetcher.ErrTooManyRedirects)
}
