package service

import (
	"github.com/google/wire"

	"github.com/cascadeslots/engine/domain/freespins"
	"github.com/cascadeslots/engine/domain/integrity"
	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/domain/syncsession"
)

// ProviderSet is the Wire provider set for services. Mirrors the
// teacher's provider-set layout; unlike the teacher's player/session/
// reelstrip services, every service here binds directly to its domain
// interface since nothing downstream needs the concrete struct.
var ProviderSet = wire.NewSet(
	NewSpinService,
	NewFreeSpinsService,
	NewIntegrityService,
	NewSyncService,
)

// compile-time interface assertions, documentation-parity with the
// wire.Bind directives the teacher's generated wire_gen.go would emit.
var (
	_ spin.Service        = (*SpinService)(nil)
	_ freespins.Service   = (*FreeSpinsService)(nil)
	_ integrity.Service   = (*IntegrityService)(nil)
	_ syncsession.Service = (*SyncService)(nil)
)
