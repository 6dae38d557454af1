package engine

import (
	"github.com/google/wire"

	"github.com/cascadeslots/engine/internal/audit"
)

// ProviderSet is the Wire provider set for the spin engine.
var ProviderSet = wire.NewSet(
	ProvideEngine,
)

// ProvideEngine constructs the engine with the application's audit sink.
func ProvideEngine(sink audit.Sink) *Engine {
	return New(sink)
}
