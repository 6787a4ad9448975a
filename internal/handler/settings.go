package handler

import (
	"errors"
	"net/http"

	"signal-desk/internal/domain"

	"github.com/gin-gonic/gin"
)

// both fields are required; pointers tell a missing field from a zero value
type settingsRequest struct {
	MinimumSignalQuality *int     `json:"minimumSignalQuality" binding:"required"`
	IndicatorSensitivity *float64 `json:"indicatorSensitivity" binding:"required"`
}

// GetSettings godoc
// @Summary      Current settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": h.signalService.Settings()})
}

// PutSettings godoc
// @Summary      Replace settings (admin only)
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body  domain.Settings  true  "Settings"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/settings [put]
func (h *Handler) PutSettings(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.put-settings")
	defer span.End()

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updated, err := h.signalService.UpdateSettings(ctx, user.Role, domain.Settings{
		MinimumSignalQuality: *req.MinimumSignalQuality,
		IndicatorSensitivity: *req.IndicatorSensitivity,
	})
	switch {
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": updated})
}
