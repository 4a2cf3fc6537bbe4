// Package server exposes the chat engine over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toolscout-core/server/internal/agent/model"
	logx "github.com/toolscout-core/server/pkg/logger"
	"github.com/toolscout-core/server/pkg/metrics"
)

type Server struct {
	cfg    model.ServerConfig
	router *gin.Engine
}

func New(engine ChatEngine, cfg model.ServerConfig) *Server {
	h := NewHandler(engine, cfg.SessionCookie)

	r := gin.New()
	r.Use(TraceMiddleware(), LoggingMiddleware(), gin.CustomRecovery(h.Recover))

	r.POST("/api/chat", h.Chat)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &Server{cfg: cfg, router: r}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	logx.Info().Dur("timeout", s.cfg.ShutdownTimeout).Msg("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
