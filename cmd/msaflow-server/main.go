// Command msaflow-server provides a REST API for MSAFlow operations.
//
// Usage:
//
//	msaflow-server [options]
//
// Options:
//
//	-config   Path to a config file (default: ./msaflow.yaml if present)
//	-addr     Address to listen on, overrides server.addr
//
// Every setting can also be given as an MSAFLOW_* environment variable,
// e.g. MSAFLOW_SERVER_ADDR or MSAFLOW_LOG_FORMAT=json. A .env file in the
// working directory is loaded first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/aria-lang/msaflow-go/api/handlers"
	"github.com/aria-lang/msaflow-go/api/middleware"
	"github.com/aria-lang/msaflow-go/internal/config"
	"github.com/aria-lang/msaflow-go/internal/registry"
	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

func main() {
	configFile := flag.String("config", "", "Path to a config file")
	addr := flag.String("addr", "", "Address to listen on")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	v := config.New(*configFile)
	if *addr != "" {
		v.Set("server.addr", *addr)
	}
	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown", "err", err)
			os.Exit(1)
		}
		close(done)
	}()

	logger.Info("MSAFlow API server starting", "addr", cfg.Server.Addr, "version", msaflow.Version())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("could not listen", "addr", cfg.Server.Addr, "err", err)
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}

func newRouter(cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.MaxBody(cfg.Server.MaxUploadBytes))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	h := handlers.New(registry.NewMemoryStore(), cfg, logger)
	r.Route("/api", h.Routes)

	return r
}
