package integrity

import (
	"context"

	"github.com/google/uuid"
)

// Service seals spins at settlement time and answers later disputes by
// revealing and verifying the sealed material.
type Service interface {
	// Seal encrypts rngSeed and persists a Seal for spinID, returning it.
	// Called once per spin, right after the spin itself is persisted.
	Seal(ctx context.Context, playerID, spinID uuid.UUID, rngSeed, hashSalt, validationHash string) (*Seal, error)

	// Reveal decrypts and returns the sealed RNG seed for spinID, for
	// dispute resolution. The plaintext seed never appears in logs.
	Reveal(ctx context.Context, spinID uuid.UUID) (string, error)

	// Verify recomputes spinID's validation hash from candidate and
	// compares it against the sealed one, reporting whether they match.
	Verify(ctx context.Context, spinID uuid.UUID, candidate interface{}) (bool, error)
}
