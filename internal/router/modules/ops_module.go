package modules

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/starter-webapi/internal/container"
	"github.com/oksasatya/starter-webapi/internal/interface/middleware"
	"github.com/oksasatya/starter-webapi/pkg/response"
)

// OpsModule serves /healthz and, when enabled, /metrics and /debug/vars.
// /debug/vars answers private-network clients only.
type OpsModule struct {
	DB interface{ Ping() error }
}

func NewOpsModule(db interface{ Ping() error }) *OpsModule { return &OpsModule{DB: db} }

func (m *OpsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.health)

	if cfg := container.GetConfig(); cfg == nil || cfg.DebugMetricsEnabled {
		rg.GET("/metrics", gin.WrapH(promhttp.Handler()))
		rg.GET("/debug/vars", middleware.RequireAllowed(middleware.AllowPrivateIP()), gin.WrapH(expvar.Handler()))
	}
}

func (m *OpsModule) health(c *gin.Context) {
	if m.DB != nil {
		if err := m.DB.Ping(); err != nil {
			response.JSON(c, response.Error[any](c, http.StatusServiceUnavailable, "database unreachable", nil))
			return
		}
	}
	response.JSON(c, response.Success[any](c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil))
}
