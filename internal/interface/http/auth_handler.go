package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/metrics"
	"github.com/oksasatya/starter-webapi/internal/interface/middleware"
	"github.com/oksasatya/starter-webapi/pkg/response"
)

type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.input())
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		writeError(c, h.Logger, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	if h.Logger != nil {
		h.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	response.JSON(c, response.Success(c, http.StatusCreated, u, "user registered", nil))
}

// Login POST /api/auth/login. Every credential failure is a 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.EmailAddress, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		if errors.Is(err, application.ErrAuthenticationFailed) {
			response.JSON(c, response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil))
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	response.JSON(c, response.Success(c, http.StatusOK, res, "login successful", nil))
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("logout", "success").Inc()
	response.JSON(c, response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil))
}
