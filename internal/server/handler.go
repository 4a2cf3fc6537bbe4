package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toolscout-core/server/internal/agent/model"
	errx "github.com/toolscout-core/server/internal/core/error"
	logx "github.com/toolscout-core/server/pkg/logger"
)

// ChatEngine turns one chat request into its envelope and status.
type ChatEngine interface {
	Handle(ctx context.Context, req model.ChatRequest, meta model.RequestMeta) (model.Envelope, int)
	Reject(meta model.RequestMeta, appErr *errx.AppError) (model.Envelope, int)
}

// Handler handles the chat HTTP endpoints
type Handler struct {
	engine        ChatEngine
	sessionCookie string
}

func NewHandler(engine ChatEngine, sessionCookie string) *Handler {
	return &Handler{engine: engine, sessionCookie: sessionCookie}
}

// Chat handles POST /api/chat
func (h *Handler) Chat(c *gin.Context) {
	meta := h.meta(c)

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		env, status := h.engine.Reject(meta, errx.InputInvalid(err))
		c.JSON(status, env)
		return
	}

	env, status := h.engine.Handle(c.Request.Context(), req, meta)
	c.JSON(status, env)
}

// Health handles GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Recover turns a panic into the INTERNAL envelope.
func (h *Handler) Recover(c *gin.Context, recovered any) {
	meta := h.meta(c)
	log := logx.With(meta.TraceID)
	log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
	env, status := h.engine.Reject(meta, errx.Internal(fmt.Errorf("panic: %v", recovered)))
	c.AbortWithStatusJSON(status, env)
}

func (h *Handler) meta(c *gin.Context) model.RequestMeta {
	sessionID, _ := c.Cookie(h.sessionCookie)
	return model.RequestMeta{
		TraceID:   TraceID(c),
		SessionID: sessionID,
		ClientKey: c.ClientIP(),
	}
}
