package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/cascadeslots/engine/internal/config"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// ProviderSet is the Wire provider set for server
var ProviderSet = wire.NewSet(
	ProvideFiberApp,
)

// ProvideFiberApp creates a new Fiber application
func ProvideFiberApp(cfg *config.Config, log *logger.Logger) *fiber.App {
	return NewFiberApp(cfg, log)
}
