package main

import (
	// Standard library
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// External dependencies
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/houzhh15/taskable/cmd/server/internal/api"
	"github.com/houzhh15/taskable/cmd/server/internal/config"
	"github.com/houzhh15/taskable/cmd/server/internal/middleware"
	"github.com/houzhh15/taskable/pkg/logger"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logInstance, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		Format:      cfg.LogFormat(),
		File:        cfg.Log.File,
		WithSource:  !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "gateway")

	// Validate configuration
	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port, "usable_api", cfg.Usable.APIURL)
	if cfg.IsDevelopment() {
		fmt.Fprintln(os.Stderr, cfg.PrintConfig())
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := newRouter(cfg, time.Now())

	serverAddr := cfg.GetServerAddr()
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("server listening", "addr", serverAddr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}

// newRouter 组装中间件与路由
func newRouter(cfg *config.Config, startTime time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Security.CORSAllowedOrigins))

	// Health and metrics endpoints (no authentication required)
	r.GET("/health", healthCheckHandler(cfg, startTime))
	r.GET("/api/v1/health", healthCheckHandler(cfg, startTime))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := api.NewHandler(api.NewClientFactory(cfg.Usable.APIURL, logger.Component("usable")), logger.Component("api"))
	h.Register(r.Group("/api", middleware.BearerAuth()))

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})
	return r
}

// HealthCheckResponse represents the response from the health check endpoint
type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
	Env       string    `json:"env"`
	UsableAPI string    `json:"usableApi"`
}

// healthCheckHandler returns the liveness check handler
func healthCheckHandler(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthCheckResponse{
			Status:    "healthy",
			Service:   "taskable-gateway",
			Version:   version,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Timestamp: time.Now(),
			Env:       cfg.Server.Env,
			UsableAPI: cfg.Usable.APIURL,
		}
		c.JSON(http.StatusOK, response)
	}
}
