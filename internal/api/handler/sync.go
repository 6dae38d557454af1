package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/syncsession"
	"github.com/cascadeslots/engine/internal/api/dto"
	"github.com/cascadeslots/engine/internal/pkg/ctxutil"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// SyncHandler drives the cascade sync wire protocol (spec.md §6.4) over a
// single websocket connection per sync_id, plus a plain HTTP status read
// for clients that poll instead of holding a live socket.
type SyncHandler struct {
	syncService syncsession.Service
	logger      *logger.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncService syncsession.Service, log *logger.Logger) *SyncHandler {
	return &SyncHandler{syncService: syncService, logger: log}
}

// GetStatus returns the current state of a sync session.
func (h *SyncHandler) GetStatus(c *fiber.Ctx) error {
	log := h.logger.WithTrace(c)

	syncID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "invalid_sync_id",
			Message: "invalid sync id",
		})
	}

	session, err := h.syncService.GetStatus(ctxutil.WithTraceInfo(c.Context(), c), syncID)
	if err != nil {
		log.Error().Err(err).Str("sync_id", syncID.String()).Msg("failed to get sync session status")
		if errors.Is(err, syncsession.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:   "sync_session_not_found",
				Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "failed_to_get_status",
			Message: "failed to retrieve sync session status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(statusResponse(session))
}

// UpgradeMiddleware rejects non-websocket requests before Stream runs,
// mirroring the teacher's pattern of guarding websocket.New handlers.
func (h *SyncHandler) UpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream upgrades to a websocket and drives sync_id event loops for the
// lifetime of the connection. Unlike the HTTP handlers, event dispatch
// here runs against context.Background() — there is no inbound request
// to derive a context from once the socket is open.
func (h *SyncHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		log := h.logger
		var syncID uuid.UUID

		defer func() {
			if syncID == uuid.Nil {
				return
			}
			if err := h.syncService.Cancel(context.Background(), syncID); err != nil && !errors.Is(err, syncsession.ErrNotFound) {
				log.Error().Err(err).Str("sync_id", syncID.String()).Msg("failed to cancel sync session on disconnect")
			}
		}()

		for {
			var env dto.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}

			resp, id, err := h.dispatch(context.Background(), env)
			if id != uuid.Nil {
				syncID = id
			}
			if err != nil {
				log.Error().Err(err).Str("type", env.Type).Msg("sync event handling failed")
				_ = conn.WriteJSON(dto.Envelope{Type: "SYNC_RESPONSE", Payload: dto.SyncResponsePayload{
					RequestType: env.Type,
					Success:     false,
				}})
				continue
			}
			if resp != nil {
				if err := conn.WriteJSON(resp); err != nil {
					return
				}
			}
		}
	})
}

// dispatch decodes one client→server event and runs it against the sync
// service, returning the envelope to write back (if any) and the
// session's sync_id for cleanup bookkeeping.
func (h *SyncHandler) dispatch(ctx context.Context, env dto.Envelope) (*dto.Envelope, uuid.UUID, error) {
	switch env.Type {
	case "CASCADE_STEP_START":
		var p dto.CascadeStepStartPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, uuid.Nil, err
		}
		syncID, err := uuid.Parse(p.SyncID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		session, err := h.syncService.AckInit(ctx, syncID, p.ExpectedHash != "")
		if err != nil {
			return nil, syncID, err
		}
		return statusEnvelope(session), syncID, nil

	case "CASCADE_STEP_COMPLETE":
		var p dto.CascadeStepCompletePayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, uuid.Nil, err
		}
		syncID, err := uuid.Parse(p.SyncID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		session, err := h.syncService.AckStep(ctx, syncID, p.StepIndex, p.ClientHash != "")
		if err != nil {
			return nil, syncID, err
		}
		return statusEnvelope(session), syncID, nil

	case "CASCADE_DESYNC_DETECTED":
		var p dto.CascadeDesyncDetectedPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, uuid.Nil, err
		}
		syncID, err := uuid.Parse(p.SyncID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		session, err := h.syncService.ReportDesync(ctx, syncID, p.StepIndex, p.DesyncType)
		if err != nil {
			return nil, syncID, err
		}
		return statusEnvelope(session), syncID, nil

	case "SYNC_REQUEST":
		var p dto.SyncRequestPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return nil, uuid.Nil, err
		}
		if p.SyncID == "" {
			return &dto.Envelope{Type: "SYNC_RESPONSE", Payload: dto.SyncResponsePayload{
				RequestType: p.RequestType,
				Success:     false,
			}}, uuid.Nil, nil
		}
		syncID, err := uuid.Parse(p.SyncID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		var session *syncsession.SyncSession
		switch p.RequestType {
		case "init_sync":
			session, err = h.syncService.AckInit(ctx, syncID, true)
		default:
			session, err = h.syncService.GetStatus(ctx, syncID)
		}
		if err != nil {
			return nil, syncID, err
		}
		return &dto.Envelope{Type: "SYNC_RESPONSE", Payload: dto.SyncResponsePayload{
			SyncID:      syncID.String(),
			RequestType: p.RequestType,
			Success:     true,
			Payload:     statusResponse(session),
		}}, syncID, nil

	default:
		return nil, uuid.Nil, errors.New("unknown sync event type: " + env.Type)
	}
}

// decodePayload re-marshals a loosely-typed envelope payload (decoded by
// encoding/json into map[string]interface{}) into its concrete struct.
func decodePayload(payload interface{}, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func statusResponse(session *syncsession.SyncSession) dto.SyncSessionStatusResponse {
	return dto.SyncSessionStatusResponse{
		SyncID:           session.ID.String(),
		SpinID:           session.SpinID.String(),
		State:            session.State,
		TotalSteps:       session.TotalSteps,
		CurrentStep:      session.CurrentStep,
		RecoveryAttempts: len(session.RecoveryAttempts.Attempts),
	}
}

func statusEnvelope(session *syncsession.SyncSession) *dto.Envelope {
	return &dto.Envelope{Type: "SYNC_RESPONSE", Payload: dto.SyncResponsePayload{
		SyncID:      session.ID.String(),
		RequestType: "state_sync",
		Success:     true,
		Payload:     statusResponse(session),
	}}
}
