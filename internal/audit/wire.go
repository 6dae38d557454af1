package audit

import (
	"github.com/google/wire"

	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// ProviderSet is the Wire provider set for the audit sink.
var ProviderSet = wire.NewSet(
	NewLogSink,
	wire.Bind(new(Sink), new(*LogSink)),
)
