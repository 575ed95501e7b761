// Package server exposes the query pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"erpassist/internal/llm"
	"erpassist/internal/logging"
	"erpassist/internal/router"
)

// Pipeline is the part of the router the server needs.
type Pipeline interface {
	Route(ctx context.Context, query, conversationID string, variant llm.Variant) (*router.Result, error)
	ClearContext(conversationID string) bool
}

// Config holds server settings.
type Config struct {
	Host        string
	Port        int
	CORSEnabled bool
}

// Server serves the query API.
type Server struct {
	config   Config
	pipeline Pipeline
	engine   *gin.Engine
}

// New creates a server over the given pipeline.
func New(config Config, pipeline Pipeline) *Server {
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port <= 0 {
		config.Port = 5000
	}

	s := &Server{config: config, pipeline: pipeline}
	s.buildRouter()
	return s
}

func (s *Server) buildRouter() {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())
	if s.config.CORSEnabled {
		engine.Use(corsMiddleware())
	}

	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/api")
	{
		api.POST("/query", s.handleQuery)
		api.DELETE("/context/:conversationId", s.handleClearContext)
	}

	s.engine = engine
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	logging.Server("Starting HTTP server on %s", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Server("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
