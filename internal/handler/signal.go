package handler

import (
	"net/http"
	"strconv"
	"strings"

	"signal-desk/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPairs godoc
// @Summary      Supported currency pairs
// @Tags         signals
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/pairs [get]
func (h *Handler) GetPairs(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": h.signalService.Pairs()})
}

// GetSignals godoc
// @Summary      Recent quality-filtered signals
// @Description  Returns the newest signals at or above the minimum quality, optionally for one pair
// @Tags         signals
// @Produce      json
// @Param        pair   query  string  false  "Currency pair (e.g., EUR/USD)"
// @Param        limit  query  int     false  "Number of signals (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals [get]
func (h *Handler) GetSignals(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	filter := domain.SignalFilter{
		Pair: strings.ToUpper(strings.TrimSpace(c.Query("pair"))),
	}
	if filter.Pair != "" {
		span.SetAttributes(attribute.String("pair", filter.Pair))
		if !domain.IsSupportedPair(filter.Pair) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":           "unsupported pair: " + filter.Pair,
				"supported_pairs": domain.SupportedPairs,
			})
			return
		}
	}

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	signals, err := h.signalService.ListSignals(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signals": signals})
}

// GetTrends godoc
// @Summary      Trend state per pair
// @Tags         signals
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/trends [get]
func (h *Handler) GetTrends(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trends")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"trends": h.signalService.Trends(ctx)})
}

// StreamSignals godoc
// @Summary      Websocket feed of new signals
// @Tags         signals
// @Param        pair  query  string  false  "Currency pair filter"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /api/signals/stream [get]
func (h *Handler) StreamSignals(c *gin.Context) {
	if h.stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal stream unavailable"})
		return
	}
	h.stream.Serve(c.Writer, c.Request)
}
