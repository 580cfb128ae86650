package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/blogd/internal/auth"
	"github.com/abduss/blogd/internal/post"
	"github.com/abduss/blogd/internal/server"
	"github.com/abduss/blogd/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	images, err := storage.OpenImages(ctx, cfg, log)
	if err != nil {
		return err
	}

	authService := auth.NewService(auth.NewRepository(dbPool), cfg.Auth)
	postService := post.NewService(post.NewRepository(dbPool), images.Lifecycle, log)

	deps := server.Dependencies{
		Config:      cfg,
		DB:          dbPool,
		AuthService: authService,
		PostService: postService,
		Lifecycle:   images.Lifecycle,
		Logger:      log,
	}
	if images.Mirror != nil {
		deps.ObjectStore = images.Mirror
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      server.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("blogd API listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("image_root", cfg.Images.Root),
			zap.Bool("mirror", images.Mirror != nil),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
		return err
	}
	return nil
}
