package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/emart/internal/repo"
	"github.com/Skotchmaster/emart/internal/service"
	"github.com/Skotchmaster/emart/pkg/config"
	pkgdb "github.com/Skotchmaster/emart/pkg/db"
	"github.com/Skotchmaster/emart/pkg/logging"
)

// createadmin creates the admin account from ADMIN_EMAIL/ADMIN_PASSWORD, or
// promotes an existing user with that email and resets its password.
func main() {
	name := flag.String("name", "Admin User", "display name for a newly created admin")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("notice: no .env loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.AdminEmail, "ADMIN_EMAIL")
	config.MustNonEmpty(cfg.AdminPassword, "ADMIN_PASSWORD")
	logger := logging.New(cfg.LogLevel).With("cmd", "createadmin")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	db, err := pkgdb.Open(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("mongo open: %v", err)
	}
	defer pkgdb.Close(context.Background(), db)

	store := &repo.MongoRepo{DB: db}
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("ensure_indexes_error", "error", err)
	}

	svc := &service.AuthService{Users: store}
	user, created, err := svc.EnsureAdmin(ctx, *name, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("ensure admin: %v", err)
	}
	if created {
		logger.Info("admin_created", "user_id", user.ID.Hex(), "email", user.Email)
	} else {
		logger.Info("admin_promoted", "user_id", user.ID.Hex(), "email", user.Email)
	}
}
