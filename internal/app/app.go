// Package app assembles the catalog from configuration: store, service and
// session resolver. Commands share it so every entry point is wired the same way.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/product-catalog/internal/auth"
	"github.com/crucial707/product-catalog/internal/catalog"
	"github.com/crucial707/product-catalog/internal/config"
	"github.com/crucial707/product-catalog/internal/db"
	"github.com/crucial707/product-catalog/internal/memstore"
	"github.com/crucial707/product-catalog/internal/repo"
	"github.com/crucial707/product-catalog/internal/session"
)

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    catalog.Store
	Service  *catalog.Service
	Resolver *session.Resolver

	// DB is nil when running on the memory store.
	DB *sql.DB
	// Users is the Postgres user table, nil on the memory store.
	Users *repo.UserRepo
}

// Open connects the configured store and wires the service around it.
func Open(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Store == "memory" {
		logger.Warn("using in-memory store; data is lost on exit")
		return New(cfg, logger, memstore.New(), nil), nil
	}

	conn, err := db.Connect(
		db.DSN(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass),
		db.Options{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns},
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	store := repo.NewStore(conn)
	a := New(cfg, logger, store, conn)
	a.Users = store.Users()
	return a, nil
}

// New wires an App around an existing store. conn may be nil.
func New(cfg config.Config, logger *slog.Logger, store catalog.Store, conn *sql.DB) *App {
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), nil)
	svc := catalog.NewService(store, auth.Hasher{Cost: cfg.BcryptCost}, tokens, catalog.Options{
		TokenTTL: time.Duration(cfg.TokenTTLMinutes) * time.Minute,
		Logger:   logger,
	})
	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Service:  svc,
		Resolver: session.NewResolver(tokens, store, logger),
		DB:       conn,
	}
}

// MigrationURL is the golang-migrate URL for the configured database.
func (a *App) MigrationURL() string {
	c := a.Config
	return db.URL(c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass)
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
