// Package fetcher downloads chapter pages and classifies transport failures.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
	"github.com/capykyo/capy-book-fetch/internal/logger"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
	DefaultMaxBodyBytes = 10 << 20

	maxPort      = 65535
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Config configures an HTTPFetcher. Zero values fall back to the package defaults.
type Config struct {
	Timeout        time.Duration
	MaxRedirects   int
	MaxBodyBytes   int64
	UserAgent      string
	AcceptLanguage string
}

// Observer receives the outcome and duration of every fetch.
type Observer interface {
	ObserveFetch(outcome string, d time.Duration)
}

// HTTPFetcher performs single GET requests without retries.
type HTTPFetcher struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
	maxBodyBytes   int64
	log            logger.Logger
	observer       Observer
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithLogger sets the logger used for per-fetch debug output.
func WithLogger(log logger.Logger) Option {
	return func(f *HTTPFetcher) { f.log = log }
}

// WithObserver reports fetch outcomes, typically to metrics.
func WithObserver(o Observer) Option {
	return func(f *HTTPFetcher) { f.observer = o }
}

// WithTransport replaces the client's transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *HTTPFetcher) { f.client.Transport = rt }
}

// New creates an HTTPFetcher.
func New(cfg Config, opts ...Option) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	f := &HTTPFetcher{
		client: &http.Client{
			Timeout:       cfg.Timeout,
			CheckRedirect: RedirectPolicy(cfg.MaxRedirects),
		},
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
		maxBodyBytes:   cfg.MaxBodyBytes,
		log:            logger.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValidateURL parses rawURL and requires an absolute http or https URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, MsgInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, apperrors.InvalidInput(MsgInvalidURL)
	}
	if port := u.Port(); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n < 1 || n > maxPort {
			return nil, apperrors.InvalidInput(MsgInvalidURL)
		}
	}
	return u, nil
}

// Fetch downloads rawURL and returns its body decoded to UTF-8.
// Statuses outside 200-399 are returned as upstream errors mirroring the status.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()
	body, err := f.fetch(ctx, rawURL)
	elapsed := time.Since(start)

	if f.observer != nil {
		f.observer.ObserveFetch(Outcome(err), elapsed)
	}
	if err != nil {
		f.log.Debug("Fetch failed",
			logger.String("url", rawURL),
			logger.Duration("duration", elapsed),
			logger.Error(err),
		)
		return "", err
	}

	f.log.Debug("Fetched page",
		logger.String("url", rawURL),
		logger.Int("bytes", len(body)),
		logger.Duration("duration", elapsed),
	)
	return body, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidInput, MsgInvalidURL, err)
	}
	req.Header.Set("Accept", acceptHeader)
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.acceptLanguage != "" {
		req.Header.Set("Accept-Language", f.acceptLanguage)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodyBytes))
		return "", apperrors.Upstream(resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return "", classify(err)
	}
	if int64(len(raw)) > f.maxBodyBytes {
		return "", apperrors.New(apperrors.KindUnknown,
			fmt.Sprintf("%s: limit is %d bytes", MsgTooLarge, f.maxBodyBytes))
	}

	return decode(raw, resp.Header.Get("Content-Type"))
}

// decode converts raw to UTF-8 using the Content-Type charset, a <meta> charset or
// content sniffing, in that order.
func decode(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUnknown, "decode response body", err)
	}

	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUnknown, "decode response body", err)
	}
	return string(decoded), nil
}
