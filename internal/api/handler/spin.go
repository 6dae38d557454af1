package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/internal/api/dto"
	"github.com/cascadeslots/engine/internal/game/cascade"
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/multiplier"
	"github.com/cascadeslots/engine/internal/game/wins"
	"github.com/cascadeslots/engine/internal/pkg/ctxutil"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// SpinHandler handles spin-related endpoints
type SpinHandler struct {
	spinService spin.Service
	logger      *logger.Logger
}

// NewSpinHandler creates a new spin handler
func NewSpinHandler(spinService spin.Service, log *logger.Logger) *SpinHandler {
	return &SpinHandler{spinService: spinService, logger: log}
}

// ExecuteSpin executes a base-game spin, or one step of an active free
// spins session when free_spins_session_id is set.
func (h *SpinHandler) ExecuteSpin(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	var req dto.ExecuteSpinRequest
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
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_session_id",
			Message: "invalid session_id",
		})
	}

	var freeSpinsSessionID *uuid.UUID
	if req.FreeSpinsSessionID != "" {
		id, err := uuid.Parse(req.FreeSpinsSessionID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   "invalid_free_spins_session_id",
				Message: "invalid free_spins_session_id",
			})
		}
		freeSpinsSessionID = &id
	}

	log.Info().
		Str("player_id", playerID.String()).
		Float64("bet", req.BetAmount).
		Bool("quick_spin", req.QuickSpin).
		Msg("spin request received")

	result, err := h.spinService.ExecuteSpin(ctxutil.WithTraceInfo(c.Context(), c), playerID, sessionID, req.BetAmount, freeSpinsSessionID, req.QuickSpin)
	if err != nil {
		return spinError(c, log, err)
	}

	return c.Status(fiber.StatusOK).JSON(spinToResponse(result))
}

// BuyFreeSpins debits the buy-feature cost and starts a purchased free
// spins session.
func (h *SpinHandler) BuyFreeSpins(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	var req dto.BuyFreeSpinsRequest
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
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_session_id",
			Message: "invalid session_id",
		})
	}

	result, err := h.spinService.BuyFreeSpins(ctxutil.WithTraceInfo(c.Context(), c), playerID, sessionID, req.BetAmount)
	if err != nil {
		return spinError(c, log, err)
	}

	return c.Status(fiber.StatusOK).JSON(spinToResponse(result))
}

// GetSpinDetails retrieves a single sealed spin by ID.
func (h *SpinHandler) GetSpinDetails(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	spinID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_spin_id",
			Message: "invalid spin id",
		})
	}

	result, err := h.spinService.GetSpinDetails(ctxutil.WithTraceInfo(c.Context(), c), spinID)
	if err != nil {
		return spinError(c, log, err)
	}

	return c.Status(fiber.StatusOK).JSON(spinToResponse(result))
}

// GetSpinHistory retrieves the player's spin history.
func (h *SpinHandler) GetSpinHistory(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	playerID, err := uuid.Parse(c.Params("playerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_player_id",
			Message: "invalid player id",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	history, err := h.spinService.GetSpinHistory(ctxutil.WithTraceInfo(c.Context(), c), playerID, page, limit)
	if err != nil {
		log.Error().Err(err).Str("player_id", playerID.String()).Msg("failed to get spin history")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "failed_to_get_history",
			Message: "failed to retrieve spin history",
		})
	}

	summaries := make([]dto.SpinSummary, len(history.Spins))
	for i, s := range history.Spins {
		summaries[i] = dto.SpinSummary{
			SpinID:    s.ID.String(),
			SessionID: s.SessionID.String(),
			Bet:       s.Bet,
			GameMode:  string(s.GameMode),
			TotalWin:  s.TotalWin,
			CreatedAt: s.CreatedAt,
		}
	}

	return c.Status(fiber.StatusOK).JSON(dto.SpinHistoryResponse{
		Page:  history.Page,
		Limit: history.Limit,
		Total: history.Total,
		Spins: summaries,
	})
}

// spinError maps a domain/engine error to its HTTP response.
func spinError(c *fiber.Ctx, log *logger.Logger, err error) error {
	log.Error().Err(err).Msg("spin request failed")

	switch {
	case errors.Is(err, spin.ErrInsufficientBalance):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "insufficient_funds",
			Message: err.Error(),
		})
	case errors.Is(err, spin.ErrInvalidBetAmount), errors.Is(err, spin.ErrInvalidSession):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_bet",
			Message: err.Error(),
		})
	case errors.Is(err, spin.ErrCascadeLimitReached):
		return c.Status(fiber.StatusOK).JSON(dto.ErrorResponse{
			Error:   "cascade_limit_reached",
			Message: err.Error(),
		})
	case errors.Is(err, spin.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error:   "spin_not_found",
			Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "spin_failed",
			Message: "failed to execute spin",
		})
	}
}

func spinToResponse(s *spin.Spin) dto.SpinResponse {
	resp := dto.SpinResponse{
		SpinID:                s.ID.String(),
		SessionID:             s.SessionID.String(),
		PlayerID:              s.PlayerID.String(),
		Bet:                   s.Bet,
		GameMode:              string(s.GameMode),
		InitialGrid:           convertGrid(s.InitialGrid.Grid),
		CascadeSteps:          convertCascadeSteps(s.CascadeSteps.Steps),
		FinalGrid:             convertGrid(s.FinalGrid.Grid),
		BaseWin:               s.BaseWin,
		AccumulatedMultiplier: s.AccumulatedMultiplier,
		TotalWin:              s.TotalWin,
		Bonus:                 convertBonus(s.Bonus.Bonus),
		ValidationHash:        s.ValidationHash,
		HashSalt:              s.HashSalt,
		Timestamp:             s.CreatedAt,
	}
	if s.FreeSpinsSessionID != nil {
		resp.FreeSpinsSessionID = s.FreeSpinsSessionID.String()
	}
	return resp
}

func convertGrid(g *grid.Grid) [][]string {
	if g == nil {
		return nil
	}
	out := make([][]string, grid.Cols)
	for col := 0; col < grid.Cols; col++ {
		out[col] = make([]string, grid.Rows)
		for row := 0; row < grid.Rows; row++ {
			out[col][row] = string(g.Get(col, row))
		}
	}
	return out
}

func convertPositions(positions []wins.Position) []dto.Position {
	out := make([]dto.Position, len(positions))
	for i, p := range positions {
		out[i] = dto.Position{Col: p.Col, Row: p.Row}
	}
	return out
}

func convertCascadeSteps(steps []*cascade.Step) []dto.CascadeStepResponse {
	out := make([]dto.CascadeStepResponse, len(steps))
	for i, step := range steps {
		matches := make([]dto.ClusterResponse, len(step.Matches))
		for j, m := range step.Matches {
			matches[j] = dto.ClusterResponse{Symbol: string(m.Symbol), Positions: convertPositions(m.Positions)}
		}
		clusterWins := make([]dto.ClusterPayoutResponse, len(step.ClusterWins))
		for j, cw := range step.ClusterWins {
			clusterWins[j] = dto.ClusterPayoutResponse{
				Cluster: dto.ClusterResponse{Symbol: string(cw.Cluster.Symbol), Positions: convertPositions(cw.Cluster.Positions)},
				Payout:  cw.Payout,
			}
		}
		dropPattern := make([]dto.DropEntryResponse, len(step.DropPattern))
		for j, d := range step.DropPattern {
			dropPattern[j] = dto.DropEntryResponse{Col: d.Col, SrcRow: d.SrcRow, DstRow: d.DstRow}
		}
		out[i] = dto.CascadeStepResponse{
			Index:       step.Index,
			GridBefore:  convertGrid(step.GridBefore),
			GridAfter:   convertGrid(step.GridAfter),
			Matches:     matches,
			ClusterWins: clusterWins,
			StepWin:     step.StepWin,
			DropPattern: dropPattern,
			Timing:      convertTiming(step.Timing),
		}
	}
	return out
}

func convertTiming(t cascade.Timing) dto.TimingResponse {
	return dto.TimingResponse{
		MatchHighlightMs:  t.MatchHighlight.Milliseconds(),
		SymbolRemovalMs:   t.SymbolRemoval.Milliseconds(),
		SymbolDropMs:      t.SymbolDrop.Milliseconds(),
		GridSettleMs:      t.GridSettle.Milliseconds(),
		WinPresentationMs: t.WinPresentation.Milliseconds(),
		TotalMs:           t.Total.Milliseconds(),
	}
}

func convertBonus(b spin.Bonus) dto.BonusResponse {
	multipliers := make([]dto.RandomMultiplierResponse, len(b.RandomMultipliers))
	for i, m := range b.RandomMultipliers {
		multipliers[i] = convertRandomMultiplier(m)
	}
	return dto.BonusResponse{
		FreeSpinsTriggered: b.FreeSpinsTriggered,
		FreeSpinsAwarded:   b.FreeSpinsAwarded,
		RandomMultipliers:  multipliers,
		SpecialFeatures:    b.SpecialFeatures,
	}
}

func convertRandomMultiplier(m multiplier.RandomMultiplier) dto.RandomMultiplierResponse {
	return dto.RandomMultiplierResponse{Value: m.Value, Position: m.Position, Character: m.Character}
}
