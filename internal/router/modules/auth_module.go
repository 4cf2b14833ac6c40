package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/container"
	handlers "github.com/oksasatya/starter-webapi/internal/interface/http"
	"github.com/oksasatya/starter-webapi/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.TokenParser
	Revoker application.TokenRevoker
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenParser, revoker application.TokenRevoker) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, Revoker: revoker}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()
	limiter := middleware.RateLimit(container.GetRedis(), cfg.AuthRateLimit, cfg.AuthRateWindow, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", limiter, m.Handler.Register)
	rg.POST("/auth/login", limiter, m.Handler.Login)
	rg.POST("/auth/logout", middleware.BearerAuth(m.Tokens, m.Revoker), m.Handler.Logout)
}
