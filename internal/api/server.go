// Package api exposes the scanner, detector, explainer and deletion over
// HTTP for the browser front end.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yubota24504/FileVizDedup/internal/services"
)

const shutdownGrace = 5 * time.Second

type Dependencies struct {
	Validator services.RootValidator
	Scanner   services.Scanner
	Finder    services.DuplicateFinder
	Explainer services.Explainer
	Actions   services.Actions
}

type Options struct {
	Listen         string
	AllowedOrigins []string
	SafeMode       bool
}

type Server struct {
	deps    Dependencies
	options Options
	logger  zerolog.Logger
	engine  *gin.Engine
}

func New(deps Dependencies, options Options, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	server := &Server{
		deps:    deps,
		options: options,
		logger:  logger,
		engine:  gin.New(),
	}
	server.routes()
	return server
}

func (server *Server) Handler() http.Handler {
	return server.engine
}

func (server *Server) routes() {
	router := server.engine
	router.Use(requestID(), accessLog(server.logger), gin.Recovery())
	if len(server.options.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     server.options.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader, skippedHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", server.health)

	routes := router.Group("/api")
	{
		routes.POST("/scan", server.scan)
		routes.POST("/duplicates", server.duplicates)
		routes.POST("/duplicates/explain", server.explain)
		routes.POST("/delete", server.delete)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (server *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              server.options.Listen,
		Handler:           server.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info().Str("listen", server.options.Listen).Msg("http server started")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		server.logger.Info().Msg("http server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}
