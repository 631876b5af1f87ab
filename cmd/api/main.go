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

	"github.com/spf13/cobra"

	"librarian/internal/book"
	"librarian/internal/config"
	"librarian/internal/httpx"
	"librarian/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		seedFile   string
		idStrategy string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:          "api",
		Short:        "Serve the library catalog API on /api/books",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("seed") {
				cfg.SeedFile = seedFile
			}
			if flags.Changed("id-strategy") {
				if cfg.IDStrategy, err = book.ParseIDStrategy(idStrategy); err != nil {
					return err
				}
			}
			if flags.Changed("strict") {
				cfg.StrictValidation = strict
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (overrides APP_ADDR)")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file (overrides SEED_FILE)")
	cmd.Flags().StringVar(&idStrategy, "id-strategy", string(book.IDStrategyMax), "Id assignment: max or counter (overrides ID_STRATEGY)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Answer malformed bodies with 400 (overrides STRICT_VALIDATION)")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	handler, limiter, err := newHandler(cfg, logger)
	if err != nil {
		return err
	}
	go limiter.Run(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "id_strategy", cfg.IDStrategy, "strict_validation", cfg.StrictValidation)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "err", err)
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newHandler wires the store, the book routes and the middleware chain. The
// returned limiter's janitor must be started by the caller.
func newHandler(cfg config.Config, logger *slog.Logger) (http.Handler, *httpx.RateLimitMiddleware, error) {
	seed, err := book.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, nil, err
	}
	store := book.NewStore(seed, book.WithIDStrategy(cfg.IDStrategy))
	service := book.NewService(store)
	bookHandler := book.NewHTTPHandler(service,
		book.WithLogger(logger),
		book.WithStrictValidation(cfg.StrictValidation),
	)
	logger.Info("catalog loaded", "books", len(seed), "seed_file", cfg.SeedFile)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := service.Ready(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	bookHandler.Register(router)

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
	return handler, limiter, nil
}
