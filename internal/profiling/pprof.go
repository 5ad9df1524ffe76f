// Package profiling starts the optional pprof endpoint and Pyroscope
// continuous profiling. Both are gated by environment variables.
package profiling

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/capykyo/capy-book-fetch/internal/logger"
)

const (
	defaultPprofPort  = "6060"
	pprofReadTimeout  = 10 * time.Second
	pprofWriteTimeout = 60 * time.Second
)

// PprofEnabled reports whether ENABLE_PROFILING=true.
func PprofEnabled() bool {
	return os.Getenv("ENABLE_PROFILING") == "true"
}

// PprofAddr returns the localhost address for the pprof server, using PPROF_PORT.
func PprofAddr() string {
	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPprofPort
	}
	return net.JoinHostPort("localhost", port)
}

// PprofHandler serves the standard /debug/pprof/ endpoints.
func PprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartPprofServer starts the pprof server on localhost when ENABLE_PROFILING=true.
// It returns the server so callers can close it, or nil when disabled.
func StartPprofServer(log logger.Logger) *http.Server {
	if !PprofEnabled() {
		return nil
	}

	srv := &http.Server{
		Addr:         PprofAddr(),
		Handler:      PprofHandler(),
		ReadTimeout:  pprofReadTimeout,
		WriteTimeout: pprofWriteTimeout,
	}

	go func() {
		log.Info("Starting pprof server",
			logger.String("address", srv.Addr),
			logger.String("profiles", "http://"+srv.Addr+"/debug/pprof/"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("pprof server error", logger.Error(err))
		}
	}()

	return srv
}
