// Command orchestratord serves the cognitive workflow orchestrator over
// HTTP: intent detection, workflow routing, input mapping and execution
// behind a single POST /orchestrate endpoint, plus health and metrics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "orchestratord: config error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "orchestratord: startup failed:", err)
		os.Exit(1)
	}

	if err := a.revalid.Start(ctx, cfg.RevalidationInterval); err != nil {
		a.log.WithError(err).Fatal("failed to start node revalidation job")
	}

	e := setupEcho()
	setupMiddleware(e)
	registerRoutes(e, a)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- e.Start(fmt.Sprintf(":%d", cfg.HTTPPort))
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			a.log.WithError(err).Error("server error")
		}
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("graceful shutdown failed, forcing close")
		_ = e.Close()
	}
	a.Shutdown(shutdownCtx)
}

func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
}

func registerRoutes(e *echo.Echo, a *app) {
	e.POST("/orchestrate", a.handleOrchestrate)
	e.DELETE("/intents/:id", a.handleDeleteIntent)
	e.GET("/internal/revalidation", a.handleRevalidationStatus)
	e.GET("/workflows/:id/execution-order", a.handleWorkflowExecutionOrder)

	e.GET("/healthz", echo.WrapHandler(a.health.LivenessHandler()))
	e.GET("/readyz", echo.WrapHandler(a.health.ReadinessHandler()))
	e.GET("/health", echo.WrapHandler(a.health.HTTPHandler()))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
