package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/config"
	"github.com/heartmarshall/kindergarten-backend/internal/transport/middleware"
	"github.com/heartmarshall/kindergarten-backend/internal/transport/rest"
)

// Run is the server entry point. It loads configuration, connects to the
// database, applies the core schema, and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if err := postgres.ApplySchema(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := os.MkdirAll(cfg.Images.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	svc := NewServices(logger, pool, cfg)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	mux := rest.NewRouter(rest.Handlers{
		Health:       rest.NewHealthHandler(pool, cfg.Images.UploadDir, BuildVersion()),
		Images:       rest.NewImageHandler(svc.Images, cfg.Images.MaxSize, logger),
		Changelog:    rest.NewChangelogHandler(svc.Changelog, logger),
		Transactions: rest.NewTransactionHandler(svc.Audit, logger),
	}, limiter.Limit(cfg.Images.RateLimit))
	mountUploads(mux, cfg.Images)

	handler := middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.UserID(),
		middleware.Logger(logger),
	)(mux)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(ctx, logger, srv, cfg.Server.ShutdownTimeout)
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, logger *slog.Logger, srv *http.Server, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// mountUploads serves stored images when BaseURL is a local path.
func mountUploads(mux *http.ServeMux, cfg config.ImagesConfig) {
	if !strings.HasPrefix(cfg.BaseURL, "/") {
		return
	}
	prefix := strings.TrimRight(cfg.BaseURL, "/") + "/"
	mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir))))
}
