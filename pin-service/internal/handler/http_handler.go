package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/pin-service/internal/domain"
	"github.com/weiawesome/wes-io-live/pin-service/internal/service"
	"github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
	"github.com/weiawesome/wes-io-live/pkg/response"
)

// Handler handles HTTP requests for pin service.
type Handler struct {
	pinService     service.PinService
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler. A nil auth middleware leaves the
// API open.
func NewHandler(pinService service.PinService, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		pinService:     pinService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	issue := []gin.HandlerFunc{h.IssuePins}
	if h.authMiddleware != nil {
		api.Use(h.authMiddleware.RequireAuth())
		issue = append([]gin.HandlerFunc{h.authMiddleware.RequireScope(domain.ScopeIssuePins)}, issue...)
	}
	{
		api.POST("/streams/:id/pins", issue...)
		api.GET("/streams/:id", h.GetStream)
		api.POST("/pins/validate", h.ValidatePin)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// IssuePins issues ?count= PINs (default 1) from a stream.
func (h *Handler) IssuePins(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamID := c.Param("id")

	var req domain.IssuePinsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "count must be an integer")
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	batch, err := h.pinService.NextBatch(ctx, streamID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStreamID), errors.Is(err, service.ErrInvalidCount):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrUnavailable), errors.Is(err, service.ErrClosed):
			l.Error().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to issue pins")
			response.ServiceUnavailable(c, "pin stream unavailable, retry later")
		default:
			l.Error().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to issue pins")
			response.InternalError(c, "failed to issue pins")
		}
		return
	}

	evt := l.Info().
		Str(log.FieldStreamID, streamID).
		Int(log.FieldCount, len(batch.Pins)).
		Uint64(log.FieldGeneration, batch.Generation)
	if subject := middleware.GetSubject(c); subject != "" {
		evt = evt.Str(log.FieldSubject, subject)
	}
	evt.Msg("pins issued")
	response.Created(c, batch)
}

// GetStream returns the position of a stream.
func (h *Handler) GetStream(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	streamID := c.Param("id")

	status, err := h.pinService.Status(ctx, streamID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStreamID):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrStreamNotFound):
			response.NotFound(c, "stream not found")
		case errors.Is(err, service.ErrUnavailable), errors.Is(err, service.ErrClosed):
			l.Error().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to get stream status")
			response.ServiceUnavailable(c, "pin stream unavailable, retry later")
		default:
			l.Error().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to get stream status")
			response.InternalError(c, "failed to get stream status")
		}
		return
	}

	response.Success(c, status)
}

// ValidatePin checks a PIN against the configured space.
func (h *Handler) ValidatePin(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ValidatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind validate pin request")
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, h.pinService.Validate(req.Pin))
}
