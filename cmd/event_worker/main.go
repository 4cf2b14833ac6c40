package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/events"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/search"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/store"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
)

// event_worker keeps the Elasticsearch user index in step with the database
// by consuming user.* events from RabbitMQ.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env, cfg.LogLevel)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQIndexQueue == "" {
		logger.Info("RABBITMQ_URL not set; event worker disabled")
		return
	}
	if len(cfg.ESAddrs()) == 0 {
		logger.Info("ELASTICSEARCH_ADDRS not set; event worker disabled")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()

	es, err := search.NewClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Fatal("elasticsearch client")
	}
	idx := search.NewUserIndex(es, cfg.ESUsersIndex, logger)
	if err := idx.EnsureIndex(ctx); err != nil {
		logger.WithError(err).Fatal("ensure user index")
	}

	sync := application.NewIndexSync(st.Repo, idx, logger)
	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQIndexQueue, "exchange": cfg.RabbitMQExchange}).Info("event worker listening")

	// Reconnect with a fixed backoff until the process is signalled.
	for {
		err := events.Consume(ctx, cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQIndexQueue, 16, logger, sync.Handle)
		if ctx.Err() != nil {
			break
		}
		logger.WithError(err).Warn("consumer stopped; reconnecting")
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
		if ctx.Err() != nil {
			break
		}
	}
	logger.Info("shutting down...")
}
