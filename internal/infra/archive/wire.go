package archive

import (
	"fmt"

	"github.com/google/wire"

	"github.com/cascadeslots/engine/internal/config"
)

// ProviderSet is the Wire provider set for the spin-result archive.
var ProviderSet = wire.NewSet(
	ProvideArchive,
)

// ProvideArchive selects the archive backend by config, the same switch the
// teacher's storage package used to pick between MinIO and GCS asset stores.
func ProvideArchive(cfg *config.Config) (Archive, error) {
	switch cfg.Storage.Provider {
	case "gcs":
		return NewGCSArchive(&cfg.Storage)
	case "minio", "":
		return NewMinIOArchive(&cfg.Storage)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}
