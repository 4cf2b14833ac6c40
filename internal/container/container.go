package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/application"
	repo "github.com/oksasatya/starter-webapi/internal/domain/repository"
)

// Process-wide components set once by main. Router modules read them to
// auto-wire services and handlers.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	userRepo    repo.UserRepository
	redisClient *redis.Client
	publisher   application.EventPublisher
	indexer     application.UserIndexer
	pinger      Pinger
)

// Pinger reports whether the primary store is reachable.
type Pinger interface {
	Ping() error
}

// PingFunc adapts a function to Pinger.
type PingFunc func() error

func (f PingFunc) Ping() error { return f() }

func SetConfig(c *config.Config)                { cfg = c }
func GetConfig() *config.Config                 { return cfg }
func SetLogger(l *logrus.Logger)                { logger = l }
func GetLogger() *logrus.Logger                 { return logger }
func SetUserRepo(r repo.UserRepository)         { userRepo = r }
func GetUserRepo() repo.UserRepository          { return userRepo }
func SetRedis(r *redis.Client)                  { redisClient = r }
func GetRedis() *redis.Client                   { return redisClient }
func SetPublisher(p application.EventPublisher) { publisher = p }
func GetPublisher() application.EventPublisher  { return publisher }
func SetIndexer(i application.UserIndexer)      { indexer = i }
func GetIndexer() application.UserIndexer       { return indexer }
func SetPinger(p Pinger)                        { pinger = p }
func GetPinger() Pinger                         { return pinger }

// Reset clears every component; tests use it between cases.
func Reset() {
	cfg, logger, userRepo, redisClient, publisher, indexer, pinger = nil, nil, nil, nil, nil, nil, nil
}
