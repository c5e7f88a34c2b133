package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paysheet/paysheet/go/factory"
	paysheethttp "github.com/paysheet/paysheet/go/http"
	paysheetgin "github.com/paysheet/paysheet/go/pkg/gin"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(global *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the init endpoint over HTTP",
		Long: `Start an HTTP server exposing POST /v1/paysheet/init.

Examples:
  paysheet serve
  paysheet serve --addr :9090 --config paysheet.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")

	return cmd
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/v1/paysheet/init", handler)
	return router
}

func runServe(cmd *cobra.Command, global *globalFlags, addr string) error {
	cfg, logger, err := global.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if addr == "" {
		addr = cfg.HTTP.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initializer, cleanup, err := factory.NewInitializer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if !global.debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := paysheetgin.InitHandler(initializer,
		paysheethttp.WithLogger(logger),
		paysheethttp.WithTimeout(cfg.Timeout),
	)

	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("store", cfg.Store.Driver))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
