package crypto

import (
	"github.com/google/wire"

	"github.com/cascadeslots/engine/internal/config"
)

// ProviderSet is the Wire provider set for crypto primitives.
var ProviderSet = wire.NewSet(
	ProvideAESEncryptor,
)

// ProvideAESEncryptor builds the encryptor used to seal RNG seeds at rest,
// keyed by the same encryption key the teacher used for its server seed.
func ProvideAESEncryptor(cfg *config.Config) (*AESEncryptor, error) {
	return NewAESEncryptor(cfg.Integrity.EncryptionKey)
}
