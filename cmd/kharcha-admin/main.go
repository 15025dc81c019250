// kharcha-admin provisions accounts that the public API will not create.
// Self-registration only grants regular users, so the first admin (and any
// later ones) is created here, directly against the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"kharcha/internal/auth"
	"kharcha/internal/config"
	"kharcha/internal/storage"
)

func main() {
	username := flag.String("username", "", "username for the new account")
	password := flag.String("password", "", "password for the new account")
	admin := flag.Bool("admin", true, "grant admin access")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if err := auth.ValidateUsername(*username); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -username: %v\n", err)
		os.Exit(2)
	}
	if err := auth.ValidatePassword(*password); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -password: %v\n", err)
		os.Exit(2)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry)
	hash, err := authSvc.HashPassword(*password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		os.Exit(1)
	}

	if err := repo.CreateUser(context.Background(), *username, hash, *admin); err != nil {
		if errors.Is(err, storage.ErrDuplicateUser) {
			fmt.Fprintf(os.Stderr, "user %q already exists\n", *username)
			os.Exit(2)
		}
		logger.Error("Failed to create user", "error", err, "username", *username)
		os.Exit(1)
	}

	logger.Info("User created", "username", *username, "admin", *admin)
}
