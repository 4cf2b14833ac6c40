package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/container"
	handlers "github.com/oksasatya/starter-webapi/internal/interface/http"
	"github.com/oksasatya/starter-webapi/internal/interface/middleware"
)

// UserModule serves /users. Every route needs a bearer token.
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  middleware.TokenParser
	Revoker application.TokenRevoker
}

func NewUserModule(h *handlers.UserHandler, tokens middleware.TokenParser, revoker application.TokenRevoker) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens, Revoker: revoker}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.BearerAuth(m.Tokens, m.Revoker),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		users.GET("/me", m.Handler.Me)
		users.GET("/search", m.Handler.Search)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
	}
}
