package handler

import (
	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for HTTP handlers. Unlike the
// teacher's player/session/admin/trial surface, there is no authentication
// layer in front of this API — every handler here is reachable directly.
var ProviderSet = wire.NewSet(
	NewSpinHandler,
	NewFreeSpinsHandler,
	NewIntegrityHandler,
	NewSyncHandler,
)
