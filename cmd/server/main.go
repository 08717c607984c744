package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/watchtogether/internal/auth"
	"github.com/mmynk/watchtogether/internal/config"
	"github.com/mmynk/watchtogether/internal/groups"
	"github.com/mmynk/watchtogether/internal/joincode"
	"github.com/mmynk/watchtogether/internal/middleware"
	"github.com/mmynk/watchtogether/internal/moviecache"
	"github.com/mmynk/watchtogether/internal/service"
	"github.com/mmynk/watchtogether/internal/storage/sqlite"
	"github.com/mmynk/watchtogether/internal/swipe"
	"github.com/mmynk/watchtogether/internal/tmdb"
	"github.com/mmynk/watchtogether/pkg/api"
	"github.com/mmynk/watchtogether/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet.
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	if cfg.TMDB.Token == "" {
		slog.Warn("TMDB_API_TOKEN is not set; movie lookups will fail as unauthorized")
	}
	movieClient := tmdb.NewClient(tmdb.Config{
		BaseURL:           cfg.TMDB.BaseURL,
		Token:             cfg.TMDB.Token,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Timeout:           cfg.TMDB.Timeout,
	})

	var cacheOpts []moviecache.Option
	if cfg.Cache.Coalesce {
		cacheOpts = append(cacheOpts, moviecache.WithCoalescing())
	}
	movies := moviecache.New(movieClient, cacheOpts...)

	codes := joincode.NewAllocator(store, joincode.WithMaxAttempts(cfg.Groups.JoinCodeMaxAttempts))
	groupManager := groups.NewManager(store, codes)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	ratingService := service.NewRatingService(
		store,
		service.NewGenreCandidates(movieClient, store),
		service.RatingConfig{
			Thresholds:  swipe.Thresholds{Swipe: cfg.Swipe.Threshold, Skip: cfg.Swipe.SkipThreshold},
			Target:      cfg.Swipe.Target,
			SessionIdle: cfg.Swipe.SessionIdle,
		},
	)

	public := connect.WithInterceptors(middleware.LoggingInterceptor())
	protected := connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, slog.Default()), public))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(groupManager, store, movies), protected))
	mux.Handle(api.NewMovieServiceHandler(service.NewMovieService(movies), protected))
	mux.Handle(api.NewRatingServiceHandler(ratingService, protected))
	mux.Handle(api.NewPreferenceServiceHandler(service.NewPreferenceService(store), protected))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Add logging and CORS middleware
	handler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, "+service.ErrorKindHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
