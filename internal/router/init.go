package router

import (
	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/container"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/redisstore"
	handlers "github.com/oksasatya/starter-webapi/internal/interface/http"
	"github.com/oksasatya/starter-webapi/internal/router/modules"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
)

type moduleDeps struct {
	Service *application.Service
	JWT     *application.JWTService
	Revoker application.TokenRevoker
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := container.GetUserRepo()

	jwtSvc := application.NewJWTService(cfg.JWT, repo, logger)

	var revoker application.TokenRevoker
	if rdb := container.GetRedis(); rdb != nil {
		revoker = redisstore.NewTokenDenylist(rdb)
	}

	svc := application.NewService(
		repo,
		jwtSvc,
		helpers.NewPasswordHasher(cfg.PasswordSalt),
		container.GetPublisher(),
		container.GetIndexer(),
		revoker,
		logger,
	)
	return moduleDeps{Service: svc, JWT: jwtSvc, Revoker: revoker}
}

// InitModules builds services from the container and registers every module.
// Call once at startup, after the container is populated.
func InitModules(r *Registry) {
	deps := buildDeps()
	logger := container.GetLogger()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(deps.Service, logger), deps.JWT, deps.Revoker))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(deps.Service, logger), deps.JWT, deps.Revoker))
	r.AddRoot(modules.NewOpsModule(container.GetPinger()))
}
