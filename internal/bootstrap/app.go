// Package bootstrap handles application initialization and lifecycle management
// for the extraction service.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/capykyo/capy-book-fetch/internal/api"
	"github.com/capykyo/capy-book-fetch/internal/config"
	"github.com/capykyo/capy-book-fetch/internal/extractor"
	"github.com/capykyo/capy-book-fetch/internal/logger"
	"github.com/capykyo/capy-book-fetch/internal/metrics"
	"github.com/capykyo/capy-book-fetch/internal/profiling"
	"github.com/capykyo/capy-book-fetch/internal/server"
)

// App owns the wired service. Components are built once, on first use.
type App struct {
	cfg       *config.Config
	log       logger.Logger
	startTime time.Time

	fetcherOverride api.Fetcher

	once       sync.Once
	initErr    error
	components *Components
	server     *server.Server
}

// Option configures an App.
type Option func(*App)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f api.Fetcher) Option {
	return func(a *App) { a.fetcherOverride = f }
}

// WithStartTime sets the reference time for reported uptime.
func WithStartTime(t time.Time) Option {
	return func(a *App) { a.startTime = t }
}

// New creates an App. Nothing is built until Init, Handler or Run.
func New(cfg *config.Config, log logger.Logger, opts ...Option) *App {
	a := &App{
		cfg:       cfg,
		log:       log,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init builds the components and the HTTP server. Repeated calls return the first result.
func (a *App) Init() error {
	a.once.Do(func() {
		a.initErr = a.init()
	})
	return a.initErr
}

func (a *App) init() error {
	if a.cfg.UsesDefaultSecret() && !a.cfg.IsDevelopment() {
		a.log.Warn("JWT_SECRET is not set; tokens are signed with the built-in default secret",
			logger.String("environment", a.cfg.Service.Environment),
		)
	}

	jwtManager, err := NewJWTManager(a.cfg)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	m := metrics.New()

	f := a.fetcherOverride
	if f == nil {
		f = NewFetcher(a.cfg, a.log, m)
	}

	a.components = &Components{
		JWT:        jwtManager,
		Fetcher:    f,
		Dispatcher: extractor.DefaultDispatcher(),
		Engine:     extractor.NewEngine(),
		Metrics:    m,
	}
	a.server = SetupHTTPServer(a.cfg, a.components, a.log, a.startTime)
	return nil
}

// Components returns the wired components, building them if needed.
func (a *App) Components() (*Components, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}
	return a.components, nil
}

// Handler returns the HTTP handler, building the app if needed.
func (a *App) Handler() (http.Handler, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}
	return a.server.Router(), nil
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	a.log.Info("Extraction service listening",
		logger.String("address", a.cfg.Address()),
		logger.String("environment", a.cfg.Service.Environment),
		logger.Bool("auth_bypass", a.cfg.IsDevelopment()),
	)

	return a.server.RunWithGracefulShutdown(ctx)
}

// Start creates the logger and profilers for cfg and runs the service until shutdown.
func Start(ctx context.Context, cfg *config.Config) error {
	log, logErr := CreateLogger(cfg)
	if logErr != nil {
		return fmt.Errorf("logger: %w", logErr)
	}
	defer func() { _ = log.Sync() }()

	if pprofSrv := profiling.StartPprofServer(log); pprofSrv != nil {
		defer func() { _ = pprofSrv.Close() }()
	}
	profiler, profErr := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log)
	if profErr != nil {
		log.Warn("Continuous profiling disabled", logger.Error(profErr))
	}
	defer func() { _ = profiler.Stop() }()

	log.Info("Starting capy-book-fetch",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	if runErr := New(cfg, log).Run(ctx); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server: %w", runErr)
	}

	log.Info("capy-book-fetch stopped")
	return nil
}
