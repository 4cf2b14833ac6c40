package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingJWTSettings = errors.New("JWT_KEY, JWT_ISSUER and JWT_AUDIENCE must be set")

// JWTParameters are the signing settings handed to the JWT service.
type JWTParameters struct {
	Key      string
	Issuer   string
	Audience string
}

// Complete reports whether every JWT setting is present.
func (p JWTParameters) Complete() bool {
	return p.Key != "" && p.Issuer != "" && p.Audience != ""
}

// Config holds application configuration loaded from environment variables
type Config struct {
	AppName  string
	Env      string // development, staging, production
	Port     string
	GinMode  string
	LogLevel string

	// Database
	DBDriver      string // postgres or sqlite
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration
	DBConnectTry  int
	SQLitePath    string

	// Auth
	JWT          JWTParameters
	PasswordSalt string

	// Redis; empty addr disables logout and rate limiting
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Auth endpoint rate limit per client IP
	AuthRateLimit  int
	AuthRateWindow time.Duration

	CORSAllowedOrigins string // comma-separated

	// Proxies whose forwarding headers are believed; comma-separated IPs or
	// CIDRs. Empty trusts none.
	TrustedProxies string

	// RabbitMQ; empty url disables user events
	RabbitMQURL        string
	RabbitMQExchange   string
	RabbitMQIndexQueue string // consumed by cmd/event_worker

	// Elasticsearch; empty addrs disables search
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESUsersIndex       string

	// /debug/vars and /metrics
	DebugMetricsEnabled bool
	HTTPLogEnabled      bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// devOnly returns def in development and "" elsewhere, so Validate catches
// settings that must be supplied explicitly outside development.
func devOnly(env, def string) string {
	if env == "development" {
		return def
	}
	return ""
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getenv("APP_ENV", "development")
	return &Config{
		AppName:  getenv("APP_NAME", "starter-webapi"),
		Env:      env,
		Port:     getenv("PORT", "8080"),
		GinMode:  getenv("GIN_MODE", "release"),
		LogLevel: getenv("LOG_LEVEL", ""),

		DBDriver:      getenv("DB_DRIVER", "postgres"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "starter"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),
		DBConnectTry:  getint("DB_CONNECT_ATTEMPTS", 5),
		SQLitePath:    getenv("SQLITE_PATH", "starter.db"),

		JWT: JWTParameters{
			Key:      os.Getenv("JWT_KEY"),
			Issuer:   os.Getenv("JWT_ISSUER"),
			Audience: os.Getenv("JWT_AUDIENCE"),
		},
		PasswordSalt: getenv("PASSWORD_SALT", devOnly(env, "starter-webapi-dev-salt")),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		AuthRateLimit:  getint("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getdur("AUTH_RATE_WINDOW", time.Minute),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),
		TrustedProxies:     getenv("TRUSTED_PROXIES", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQExchange:   getenv("RABBITMQ_EXCHANGE", "users"),
		RabbitMQIndexQueue: getenv("RABBITMQ_INDEX_QUEUE", "user-index"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESUsersIndex:       getenv("ES_USERS_INDEX", "users"),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),
		HTTPLogEnabled:      getbool("HTTP_LOG_ENABLED", false),
	}
}

// Validate fails when the service cannot issue tokens or open its store.
func (c *Config) Validate() error {
	if !c.JWT.Complete() {
		return ErrMissingJWTSettings
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be postgres or sqlite, got " + strconv.Quote(c.DBDriver))
	}
	if c.PasswordSalt == "" {
		return errors.New("PASSWORD_SALT must not be empty")
	}
	return nil
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }

// TrustedProxyList returns the trusted proxy IPs/CIDRs.
func (c *Config) TrustedProxyList() []string { return splitList(c.TrustedProxies) }
