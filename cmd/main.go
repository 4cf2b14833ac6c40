package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/container"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/events"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/search"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/store"
	"github.com/oksasatya/starter-webapi/internal/interface/middleware"
	"github.com/oksasatya/starter-webapi/internal/router"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
	"github.com/oksasatya/starter-webapi/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).WithField("driver", cfg.DBDriver).Fatal("failed to open store")
	}
	defer st.Close()

	// Optional backends; each one is skipped when unconfigured and degraded
	// to nil when unreachable.
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable; logout revocation and rate limiting disabled")
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	if cfg.RabbitMQURL != "" {
		pub, err := events.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; user events disabled")
		} else {
			defer pub.Close()
			container.SetPublisher(pub)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		if idx, err := newUserIndex(ctx, cfg, logger); err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; user search disabled")
		} else {
			container.SetIndexer(idx)
		}
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepo(st.Repo)
	container.SetPinger(st)

	go recordPoolMetrics(ctx, st)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxyList())
	if err != nil {
		logger.WithError(err).Fatal("invalid TRUSTED_PROXIES")
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		logger.WithError(err).Fatal("invalid TRUSTED_PROXIES")
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.RealIP(proxies...), middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "driver": cfg.DBDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server exited properly")
}

func newUserIndex(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*search.UserIndex, error) {
	es, err := search.NewClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		return nil, err
	}
	idx := search.NewUserIndex(es, cfg.ESUsersIndex, logger)
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func recordPoolMetrics(ctx context.Context, st *store.Store) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		st.RecordMetrics()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
