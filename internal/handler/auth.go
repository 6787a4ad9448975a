package handler

import (
	"errors"
	"net/http"
	"strings"

	"signal-desk/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	sessionCookie  = "session"
	currentUserKey = "currentUser"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// RequireUser resolves the bearer token or session cookie and stores the user on the
// context. Requests without a live session are rejected with 401.
func (h *Handler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.authService == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
			return
		}

		user, err := h.authService.Authenticate(c.Request.Context(), requestToken(c))
		if err != nil {
			if !errors.Is(err, domain.ErrAuthorization) {
				log.Error().Err(err).Msg("session lookup failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin authenticates the caller itself and answers 403 to anyone who is not
// an admin, signed in or not.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.authService == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
			return
		}

		user, err := h.authService.Authenticate(c.Request.Context(), requestToken(c))
		if err != nil && !errors.Is(err, domain.ErrAuthorization) {
			log.Error().Err(err).Msg("session lookup failed")
		}
		if err != nil || user.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// Login godoc
// @Summary      Open a session
// @Description  Verifies credentials and returns a session token, also set as the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  loginRequest  true  "Credentials"
// @Success      200  {object}  loginResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	if h.authService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.login")
	defer span.End()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if errors.Is(err, domain.ErrAuthentication) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.authService.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, loginResponse{User: user, Token: token})
}

// Logout godoc
// @Summary      Revoke the current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if h.authService != nil {
		ctx, span := h.tracer.Start(c.Request.Context(), "handler.logout")
		defer span.End()

		if err := h.authService.Logout(ctx, requestToken(c)); err != nil {
			log.Warn().Err(err).Msg("session revoke failed")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Profile godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// requestToken prefers the Authorization header over the session cookie.
func requestToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

func currentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}
