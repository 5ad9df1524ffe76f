package bootstrap

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/capykyo/capy-book-fetch/internal/api"
	"github.com/capykyo/capy-book-fetch/internal/auth"
	"github.com/capykyo/capy-book-fetch/internal/config"
	"github.com/capykyo/capy-book-fetch/internal/extractor"
	"github.com/capykyo/capy-book-fetch/internal/fetcher"
	"github.com/capykyo/capy-book-fetch/internal/logger"
	"github.com/capykyo/capy-book-fetch/internal/metrics"
	"github.com/capykyo/capy-book-fetch/internal/server"
)

// Components are the long-lived collaborators behind the HTTP API.
type Components struct {
	JWT        *auth.JWTManager
	Fetcher    api.Fetcher
	Dispatcher *extractor.Dispatcher
	Engine     *extractor.Engine
	Metrics    *metrics.Metrics
}

// NewJWTManager builds the token manager from the auth settings.
func NewJWTManager(cfg *config.Config) (*auth.JWTManager, error) {
	expiry, err := auth.ParseExpiry(cfg.Auth.TokenExpiry)
	if err != nil {
		return nil, err
	}
	return auth.NewJWTManager(cfg.Auth.JWTSecret, expiry), nil
}

// NewFetcher builds the page fetcher from the fetch settings.
func NewFetcher(cfg *config.Config, log logger.Logger, observer fetcher.Observer) *fetcher.HTTPFetcher {
	return fetcher.New(fetcher.Config{
		Timeout:        cfg.Fetch.Timeout,
		MaxRedirects:   cfg.Fetch.MaxRedirects,
		MaxBodyBytes:   cfg.Fetch.MaxBodyBytes,
		UserAgent:      cfg.Fetch.UserAgent,
		AcceptLanguage: cfg.Fetch.AcceptLanguage,
	}, fetcher.WithLogger(log), fetcher.WithObserver(observer))
}

// SetupHTTPServer creates the HTTP server with all handlers wired.
func SetupHTTPServer(cfg *config.Config, c *Components, log logger.Logger, startTime time.Time) *server.Server {
	dev := cfg.IsDevelopment()

	extractHandler := api.NewExtractHandler(c.Fetcher, c.Dispatcher, c.Engine, c.Metrics)
	authHandler := api.NewAuthHandler(c.JWT, c.JWT, cfg.Auth.TokenExpiry, dev)

	return server.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithHost(cfg.Service.Host).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout, cfg.Server.ShutdownTimeout).
		WithBodyLimit(cfg.Server.BodyLimit).
		WithCORS(server.CORSConfig{
			AllowedOrigins:   cfg.CORS.Origins,
			AllowCredentials: true,
			MaxAge:           cfg.CORS.MaxAge,
		}).
		WithMiddleware(c.Metrics.GinMiddleware()).
		WithStartTime(startTime).
		WithRoutes(func(router *gin.Engine) {
			api.SetupRoutes(router, api.Routes{
				Extract:     extractHandler,
				Auth:        authHandler,
				RequireAuth: auth.Middleware(c.JWT, dev),
				Metrics:     c.Metrics.Handler(),
				Development: dev,
			})
		}).
		Build()
}
