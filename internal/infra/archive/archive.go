package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Archive persists sealed spin records as JSON blobs for long-term audit
// retention, independent of the operational database. The payload is the
// JSON-encoded integrity.Seal row (not the full spin result); Store is
// called once per IntegrityService.Seal call, after that row is persisted.
type Archive interface {
	// Store writes the sealed payload for spinID and returns its public URL.
	Store(ctx context.Context, spinID uuid.UUID, sealedAt time.Time, payload []byte) (string, error)
	// Fetch retrieves a previously archived payload.
	Fetch(ctx context.Context, spinID uuid.UUID, sealedAt time.Time) ([]byte, error)
	// Exists reports whether spinID has already been archived for sealedAt.
	Exists(ctx context.Context, spinID uuid.UUID, sealedAt time.Time) (bool, error)
}

// objectKey lays spins out by year/month so a bucket listing stays usable
// at audit-retention scale instead of one flat directory of millions of
// objects.
func objectKey(spinID uuid.UUID, sealedAt time.Time) string {
	return fmt.Sprintf("spins/%04d/%02d/%s.json", sealedAt.Year(), int(sealedAt.Month()), spinID.String())
}
