package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	"github.com/oksasatya/starter-webapi/internal/infrastructure/store"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
)

// seed creates an Admin user so the admin-only routes can be used.
func main() {
	_ = godotenv.Load()

	email := flag.String("email", envOr("SEED_ADMIN_EMAIL", "admin@example.com"), "admin email address")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password (required)")
	flag.Parse()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	if *password == "" {
		logger.Fatal("admin password is required: pass -password or set SEED_ADMIN_PASSWORD")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()

	addr, err := entity.NewAddress("1 Admin Way", "Springfield", "", "00000", "US")
	if err != nil {
		logger.WithError(err).Fatal("invalid seed address")
	}
	hash := helpers.NewPasswordHasher(cfg.PasswordSalt).Hash(*password)
	u, err := entity.NewUser(uuid.NewString(), *email, hash, "Admin", "User",
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), entity.GenderOther, entity.RoleAdmin, "", addr)
	if err != nil {
		logger.WithError(err).Fatal("invalid seed user")
	}

	created, err := st.Repo.CreateUser(ctx, u)
	if errors.Is(err, entity.ErrEmailAlreadyExists) {
		logger.WithField("email", *email).Info("admin already exists; nothing to do")
		return
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithFields(logrus.Fields{"id": created.ID, "email": created.EmailAddress}).Info("seeded admin user")
	fmt.Printf("seeded admin: id=%s email=%s\n", created.ID, created.EmailAddress)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
