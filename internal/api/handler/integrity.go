package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/integrity"
	"github.com/cascadeslots/engine/internal/api/dto"
	"github.com/cascadeslots/engine/internal/pkg/ctxutil"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// IntegrityHandler exposes the per-spin reveal/verify endpoints backing
// the integrity hasher (spec.md §4.9).
type IntegrityHandler struct {
	integrityService integrity.Service
	logger           *logger.Logger
}

// NewIntegrityHandler creates a new integrity handler.
func NewIntegrityHandler(integrityService integrity.Service, log *logger.Logger) *IntegrityHandler {
	return &IntegrityHandler{integrityService: integrityService, logger: log}
}

// Reveal decrypts and returns the RNG seed sealed for a spin.
func (h *IntegrityHandler) Reveal(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	spinID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_spin_id",
			Message: "invalid spin id",
		})
	}

	seed, err := h.integrityService.Reveal(ctxutil.WithTraceInfo(c.Context(), c), spinID)
	if err != nil {
		log.Error().Err(err).Str("spin_id", spinID.String()).Msg("failed to reveal spin seed")
		if errors.Is(err, integrity.ErrSealNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:   "seal_not_found",
				Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "failed_to_reveal",
			Message: "failed to reveal spin seed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.RevealResponse{SpinID: spinID.String(), Seed: seed})
}

// Verify recomputes a candidate spin payload's hash and compares it
// against the sealed validation hash.
func (h *IntegrityHandler) Verify(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	spinID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_spin_id",
			Message: "invalid spin id",
		})
	}

	var req dto.VerifySpinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
		})
	}

	valid, err := h.integrityService.Verify(ctxutil.WithTraceInfo(c.Context(), c), spinID, req.Candidate)
	if err != nil {
		log.Error().Err(err).Str("spin_id", spinID.String()).Msg("failed to verify spin")
		if errors.Is(err, integrity.ErrSealNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:   "seal_not_found",
				Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "failed_to_verify",
			Message: "failed to verify spin",
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.VerifySpinResponse{SpinID: spinID.String(), Valid: valid})
}
