package handler

import (
	"net/http"

	"signal-desk/internal/auth"
	"signal-desk/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// StreamServer upgrades a request into a live signal feed.
type StreamServer interface {
	Serve(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	tracer        trace.Tracer
	authService   *auth.Service
	signalService *service.SignalService
	stream        StreamServer
}

func New(
	tracer trace.Tracer,
	authService *auth.Service,
	signalService *service.SignalService,
	stream StreamServer,
) *Handler {
	return &Handler{
		tracer:        tracer,
		authService:   authService,
		signalService: signalService,
		stream:        stream,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", h.Logout)
	r.PUT("/api/settings", h.RequireAdmin(), h.PutSettings)

	api := r.Group("/api", h.RequireUser())
	api.GET("/auth/profile", h.Profile)
	api.GET("/pairs", h.GetPairs)
	api.GET("/signals", h.GetSignals)
	api.GET("/signals/stream", h.StreamSignals)
	api.GET("/trends", h.GetTrends)
	api.GET("/settings", h.GetSettings)
}

// Health godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
