package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/integrity"
	"github.com/cascadeslots/engine/internal/infra/archive"
	gintegrity "github.com/cascadeslots/engine/internal/game/integrity"
	"github.com/cascadeslots/engine/internal/pkg/crypto"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// IntegrityService implements integrity.Service, adapted from the
// teacher's ProvablyFairService: instead of a per-session hash chain, it
// seals each spin independently with the hasher in internal/game/integrity
// and encrypts the spin's RNG seed at rest with AESEncryptor, the same
// encryption the teacher used for its server seed.
type IntegrityService struct {
	repo      integrity.Repository
	archive   archive.Archive
	encryptor *crypto.AESEncryptor
	logger    *logger.Logger
}

// NewIntegrityService creates a new integrity sealing service.
func NewIntegrityService(
	repo integrity.Repository,
	arch archive.Archive,
	encryptor *crypto.AESEncryptor,
	log *logger.Logger,
) integrity.Service {
	return &IntegrityService{
		repo:      repo,
		archive:   arch,
		encryptor: encryptor,
		logger:    log,
	}
}

// Seal encrypts rngSeed and persists the spin's integrity seal.
func (s *IntegrityService) Seal(ctx context.Context, playerID, spinID uuid.UUID, rngSeed, hashSalt, validationHash string) (*integrity.Seal, error) {
	encryptedSeed, err := s.encryptor.Encrypt(rngSeed)
	if err != nil {
		return nil, fmt.Errorf("seal spin: encrypt rng seed: %w", err)
	}

	seal := &integrity.Seal{
		ID:               uuid.New(),
		SpinID:           spinID,
		PlayerID:         playerID,
		EncryptedRngSeed: encryptedSeed,
		HashSalt:         hashSalt,
		ValidationHash:   validationHash,
	}
	if err := s.repo.Create(ctx, seal); err != nil {
		return nil, fmt.Errorf("seal spin: %w", err)
	}

	s.logger.WithSpinID(spinID).Debug().
		Str("validation_hash", gintegrity.Prefix(validationHash, 12)).
		Msg("spin sealed")

	s.archiveAsync(seal)

	return seal, nil
}

// archiveAsync writes the sealed record to long-term object storage in the
// background. Archival failures never fail the spin: the seal is already
// durable in the operational database, and the archive is a regulatory
// copy, not the system of record.
func (s *IntegrityService) archiveAsync(seal *integrity.Seal) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(seal)
	if err != nil {
		s.logger.WithSpinID(seal.SpinID).Error().Err(err).Msg("failed to marshal seal for archival")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.archive.Store(ctx, seal.SpinID, time.Now(), payload); err != nil {
			s.logger.WithSpinID(seal.SpinID).Error().Err(err).Msg("failed to archive sealed spin")
		}
	}()
}

// Reveal decrypts and returns the sealed RNG seed for a spin.
func (s *IntegrityService) Reveal(ctx context.Context, spinID uuid.UUID) (string, error) {
	seal, err := s.repo.GetBySpinID(ctx, spinID)
	if err != nil {
		return "", err
	}

	seed, err := s.encryptor.Decrypt(seal.EncryptedRngSeed)
	if err != nil {
		s.logger.WithSpinID(spinID).Error().Err(err).Msg("failed to decrypt sealed rng seed")
		return "", integrity.ErrDecryptFailed
	}
	return seed, nil
}

// Verify recomputes candidate's canonical hash under the sealed salt and
// compares it against the sealed validation hash.
func (s *IntegrityService) Verify(ctx context.Context, spinID uuid.UUID, candidate interface{}) (bool, error) {
	seal, err := s.repo.GetBySpinID(ctx, spinID)
	if err != nil {
		return false, err
	}

	match, err := gintegrity.Verify(candidate, seal.HashSalt, seal.ValidationHash)
	if err != nil {
		return false, fmt.Errorf("verify spin: %w", err)
	}
	if !match {
		s.logger.WithSpinID(spinID).Warn().Msg("validation hash mismatch on verify")
	}
	return match, nil
}
