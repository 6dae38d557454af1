package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/freespins"
	"github.com/cascadeslots/engine/internal/api/dto"
	"github.com/cascadeslots/engine/internal/pkg/ctxutil"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// FreeSpinsHandler handles free spins endpoints
type FreeSpinsHandler struct {
	freeSpinsService freespins.Service
	logger           *logger.Logger
}

// NewFreeSpinsHandler creates a new free spins handler
func NewFreeSpinsHandler(freeSpinsService freespins.Service, log *logger.Logger) *FreeSpinsHandler {
	return &FreeSpinsHandler{freeSpinsService: freeSpinsService, logger: log}
}

// GetStatus retrieves the free spins status for a free spins session.
func (h *FreeSpinsHandler) GetStatus(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_free_spins_session_id",
			Message: "invalid free spins session id",
		})
	}

	status, err := h.freeSpinsService.GetStatus(ctxutil.WithTraceInfo(c.Context(), c), id)
	if err != nil {
		log.Error().Err(err).Str("free_spins_session_id", id.String()).Msg("failed to get free spins status")
		if errors.Is(err, freespins.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:   "free_spins_not_found",
				Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "failed_to_get_status",
			Message: "failed to retrieve free spins status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.FreeSpinsStatusResponse{
		Active:                status.Active,
		FreeSpinsSessionID:    status.FreeSpinsSessionID.String(),
		TriggerType:           string(status.TriggerType),
		TotalSpinsAwarded:     status.TotalSpinsAwarded,
		SpinsCompleted:        status.SpinsCompleted,
		RemainingSpins:        status.RemainingSpins,
		LockedBetAmount:       status.LockedBetAmount,
		AccumulatedMultiplier: status.AccumulatedMultiplier,
		TotalWon:              status.TotalWon,
	})
}

// GetActiveSession retrieves a player's active free spins session, if any.
func (h *FreeSpinsHandler) GetActiveSession(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	playerID, err := uuid.Parse(c.Params("playerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_player_id",
			Message: "invalid player id",
		})
	}

	session, err := h.freeSpinsService.GetActiveSession(ctxutil.WithTraceInfo(c.Context(), c), playerID)
	if err != nil {
		if errors.Is(err, freespins.ErrNotFound) {
			return c.Status(fiber.StatusOK).JSON(dto.FreeSpinsStatusResponse{Active: false})
		}
		log.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to get active free spins session")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "failed_to_get_active_session",
			Message: "failed to retrieve active free spins session",
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.FreeSpinsStatusResponse{
		Active:                session.IsActive,
		FreeSpinsSessionID:    session.ID.String(),
		TriggerType:           string(session.TriggerType),
		TotalSpinsAwarded:     session.TotalSpinsAwarded,
		SpinsCompleted:        session.SpinsCompleted,
		RemainingSpins:        session.RemainingSpins,
		LockedBetAmount:       session.LockedBetAmount,
		AccumulatedMultiplier: session.AccumulatedMultiplier,
		TotalWon:              session.TotalWon,
	})
}

// ExecuteFreeSpin executes one spin within an active free spins session.
func (h *FreeSpinsHandler) ExecuteFreeSpin(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	var req dto.ExecuteFreeSpinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
		})
	}

	freeSpinsSessionID, err := uuid.Parse(req.FreeSpinsSessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_free_spins_session_id",
			Message: "invalid free_spins_session_id",
		})
	}

	result, err := h.freeSpinsService.ExecuteFreeSpin(ctxutil.WithTraceInfo(c.Context(), c), freeSpinsSessionID, req.QuickSpin)
	if err != nil {
		log.Error().Err(err).Str("free_spins_session_id", freeSpinsSessionID.String()).Msg("failed to execute free spin")

		switch {
		case errors.Is(err, freespins.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:   "free_spins_not_found",
				Message: err.Error(),
			})
		case errors.Is(err, freespins.ErrNotActive), errors.Is(err, freespins.ErrAlreadyCompleted), errors.Is(err, freespins.ErrNoRemainingSpins):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error:   "free_spins_not_active",
				Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error:   "failed_to_execute_free_spin",
				Message: "failed to execute free spin",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(spinToResponse(result))
}

// TriggerFreeSpins starts a new session from an out-of-band scatter
// trigger report (e.g. replaying an already-audited spin).
func (h *FreeSpinsHandler) TriggerFreeSpins(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	var req dto.TriggerFreeSpinsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
		})
	}

	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_player_id",
			Message: "invalid player_id",
		})
	}
	spinID, err := uuid.Parse(req.SpinID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_spin_id",
			Message: "invalid spin_id",
		})
	}

	session, err := h.freeSpinsService.TriggerFreeSpins(ctxutil.WithTraceInfo(c.Context(), c), playerID, spinID, req.ScatterCount, req.BetAmount)
	if err != nil {
		log.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to trigger free spins")

		switch {
		case errors.Is(err, freespins.ErrInvalidScatterCount):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   "invalid_scatter_count",
				Message: err.Error(),
			})
		case errors.Is(err, freespins.ErrActiveFreeSpinsExists):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error:   "active_free_spins_exists",
				Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error:   "failed_to_trigger_free_spins",
				Message: "failed to trigger free spins",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FreeSpinsStatusResponse{
		Active:                session.IsActive,
		FreeSpinsSessionID:    session.ID.String(),
		TriggerType:           string(session.TriggerType),
		TotalSpinsAwarded:     session.TotalSpinsAwarded,
		SpinsCompleted:        session.SpinsCompleted,
		RemainingSpins:        session.RemainingSpins,
		LockedBetAmount:       session.LockedBetAmount,
		AccumulatedMultiplier: session.AccumulatedMultiplier,
		TotalWon:              session.TotalWon,
	})
}

// RetriggerFreeSpins adds additional spins to an active session following
// an in-session scatter hit.
func (h *FreeSpinsHandler) RetriggerFreeSpins(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_free_spins_session_id",
			Message: "invalid free spins session id",
		})
	}

	var req dto.RetriggerFreeSpinsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
		})
	}

	if err := h.freeSpinsService.RetriggerFreeSpins(ctxutil.WithTraceInfo(c.Context(), c), id, req.ScatterCount); err != nil {
		log.Error().Err(err).Str("free_spins_session_id", id.String()).Msg("failed to retrigger free spins")

		switch {
		case errors.Is(err, freespins.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:   "free_spins_not_found",
				Message: err.Error(),
			})
		case errors.Is(err, freespins.ErrNotActive):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error:   "free_spins_not_active",
				Message: err.Error(),
			})
		case errors.Is(err, freespins.ErrInvalidScatterCount):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   "invalid_scatter_count",
				Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error:   "failed_to_retrigger_free_spins",
				Message: "failed to retrigger free spins",
			})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}
