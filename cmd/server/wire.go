//go:build wireinject
// +build wireinject

package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/cascadeslots/engine/internal/api/handler"
	"github.com/cascadeslots/engine/internal/api/middleware"
	"github.com/cascadeslots/engine/internal/audit"
	"github.com/cascadeslots/engine/internal/config"
	"github.com/cascadeslots/engine/internal/db"
	"github.com/cascadeslots/engine/internal/game/engine"
	gsync "github.com/cascadeslots/engine/internal/game/sync"
	"github.com/cascadeslots/engine/internal/infra/archive"
	"github.com/cascadeslots/engine/internal/infra/repository"
	infraWallet "github.com/cascadeslots/engine/internal/infra/wallet"
	"github.com/cascadeslots/engine/internal/pkg/cache"
	"github.com/cascadeslots/engine/internal/pkg/crypto"
	"github.com/cascadeslots/engine/internal/pkg/logger"
	"github.com/cascadeslots/engine/internal/server"
	"github.com/cascadeslots/engine/internal/service"
)

// Application holds all application dependencies
type Application struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               *gorm.DB
	Cache            *cache.Cache
	App              *fiber.App
	RateLimiter      *middleware.RateLimiter
	SpinHandler      *handler.SpinHandler
	FreeSpinsHandler *handler.FreeSpinsHandler
	IntegrityHandler *handler.IntegrityHandler
	SyncHandler      *handler.SyncHandler
}

// InitializeApplication creates a fully initialized application using Wire
func InitializeApplication() (*Application, error) {
	wire.Build(
		// Config
		config.ProviderSet,

		// Logger
		logger.ProviderSet,

		// Database
		db.ProviderSet,

		// Audit sink
		audit.ProviderSet,

		// Crypto
		crypto.ProviderSet,

		// Game Engine
		engine.ProviderSet,

		// Cascade sync session manager
		gsync.ProviderSet,

		// Wallet
		infraWallet.ProviderSet,

		// Repositories
		repository.ProviderSet,

		// Archive
		archive.ProviderSet,

		// Services
		service.ProviderSet,

		// Handlers
		handler.ProviderSet,

		// Fiber App
		server.ProviderSet,

		// Cache
		cache.ProviderSet,

		// Middleware
		middleware.ProviderSet,

		// Application struct
		wire.Struct(new(Application), "*"),
	)

	return &Application{}, nil
}

// Shutdown gracefully shuts down all application resources
func (a *Application) Shutdown() error {
	a.Logger.Info().Msg("Starting graceful shutdown...")

	if err := a.App.Shutdown(); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to shutdown Fiber server")
	} else {
		a.Logger.Info().Msg("Fiber server shutdown complete")
	}

	if a.Cache != nil {
		a.Cache.Close()
		a.Logger.Info().Msg("Cache closed")
	}

	if a.DB != nil {
		if err := db.Close(a.DB, a.Logger); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close database")
			return err
		}
	}

	a.Logger.Info().Msg("Graceful shutdown complete")
	return nil
}
