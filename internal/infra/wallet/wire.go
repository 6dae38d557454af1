package wallet

import (
	"github.com/google/wire"

	"github.com/cascadeslots/engine/domain/wallet"
)

// ProviderSet is the Wire provider set for the wallet adapter. MemoryWallet
// is the reference adapter described in the wallet non-goal: production
// deployments bind domain/wallet.Wallet to an external ledger service
// instead of swapping this provider set.
var ProviderSet = wire.NewSet(
	NewMemoryWallet,
	wire.Bind(new(wallet.Wallet), new(*MemoryWallet)),
)
