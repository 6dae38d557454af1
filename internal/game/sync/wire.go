package sync

import (
	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for the in-memory cascade sync
// session manager.
var ProviderSet = wire.NewSet(
	NewManager,
)
