// Package engine composes C1–C7 into the single processSpin pipeline of
// spec component C8, grounded on the teacher's GameEngine composition
// style in engine/engine.go (a struct wiring the RNG plus each
// subsystem together), generalized from reel-strip orchestration to the
// cluster-pays cascade pipeline of spec.md §4.8.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cascadeslots/engine/domain/spin"
	"github.com/cascadeslots/engine/internal/audit"
	"github.com/cascadeslots/engine/internal/game/cascade"
	"github.com/cascadeslots/engine/internal/game/freespins"
	"github.com/cascadeslots/engine/internal/game/grid"
	"github.com/cascadeslots/engine/internal/game/integrity"
	"github.com/cascadeslots/engine/internal/game/multiplier"
	"github.com/cascadeslots/engine/internal/game/rng"
	"github.com/cascadeslots/engine/internal/game/wins"
)

// MinBet and MaxBet bound a single spin's wager (spec.md §4.8).
const (
	MinBet = 0.40
	MaxBet = 2000.00
)

var (
	// ErrInvalidBet is returned when bet falls outside [MinBet, MaxBet].
	ErrInvalidBet = errors.New("engine: bet must be between 0.40 and 2000.00")

	// ErrFreeSpinsContextMismatch is returned when the caller asks for a
	// free-spins spin without an owning session id.
	ErrFreeSpinsContextMismatch = errors.New("engine: free_spins_active requires an owning free spins session id")
)

// Context carries the caller's free-spins state into one spin. A base
// game spin passes the zero value.
type Context struct {
	FreeSpinsActive       bool
	FreeSpinsSessionID    *uuid.UUID
	AccumulatedMultiplier float64
	QuickSpin             bool
}

// Outcome bundles a sealed Spin with the side information the calling
// service needs to drive free-spins/session bookkeeping — none of it is
// persisted redundantly, it is derived again from the sealed Spin by
// whichever caller needs it.
type Outcome struct {
	Spin            *spin.Spin
	ScatterTrigger  freespins.TriggerResult
	ScatterRetrigger freespins.RetriggerResult
	CascadeLimitHit bool
}

// Engine runs processSpin. It holds no mutable state — every spin is an
// independent, side-effect-free computation except for the audit sink.
type Engine struct {
	sink audit.Sink
}

// New builds an Engine that reports RNG draws, cascade-limit breaches,
// and win-cap applications to sink.
func New(sink audit.Sink) *Engine {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Engine{sink: sink}
}

// ProcessSpin runs the full C1–C7 pipeline for one spin and returns the
// sealed result (spec.md §4.8). The caller supplies playerID/sessionID
// for persistence and spinCtx to select the base-game or free-spins
// pipeline.
func (e *Engine) ProcessSpin(ctx context.Context, playerID, sessionID uuid.UUID, bet float64, spinCtx Context) (*Outcome, error) {
	if bet < MinBet || bet > MaxBet {
		return nil, ErrInvalidBet
	}
	if spinCtx.FreeSpinsActive && spinCtx.FreeSpinsSessionID == nil {
		return nil, ErrFreeSpinsContextMismatch
	}

	spinID := uuid.New()

	seed, err := rng.GenerateSeed("spin", e.sink)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	gridStream, err := rng.NewStream(seed, "grid", e.sink)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	gridStream.WithSpinID(spinID.String())

	current := grid.Generate(gridStream, spinCtx.FreeSpinsActive)
	scatters0 := current.CountScatters()
	initialGrid := current.Clone()

	accMult := 1.0
	if spinCtx.FreeSpinsActive && spinCtx.AccumulatedMultiplier > 0 {
		accMult = spinCtx.AccumulatedMultiplier
	}

	var steps []*cascade.Step
	var randomMultipliers []multiplier.RandomMultiplier
	total := 0.0
	cascadeLimitHit := false

	for n := 0; n < cascade.MaxCascades; n++ {
		matches := wins.FindClusters(current)
		if len(matches) == 0 {
			break
		}
		scored := wins.Score(matches, bet)
		stepWin := wins.SumPayouts(scored)
		if spinCtx.FreeSpinsActive {
			stepWin *= accMult
		}
		total += stepWin

		step, err := cascade.Apply(current, matches, scored, seed, n, spinCtx.QuickSpin, spinCtx.FreeSpinsActive, e.sink)
		if err != nil {
			return nil, fmt.Errorf("engine: cascade %d: %w", n, err)
		}

		if spinCtx.FreeSpinsActive && n >= 1 {
			mulStream, err := rng.NewStream(seed, fmt.Sprintf("multiplier:cascade:%d", n), e.sink)
			if err != nil {
				return nil, fmt.Errorf("engine: %w", err)
			}
			mulStream.WithSpinID(spinID.String())
			if m := multiplier.CascadeRoll(mulStream, n); m != nil {
				randomMultipliers = append(randomMultipliers, *m)
				accMult += float64(m.Value)
			}
		}

		steps = append(steps, step)
		current = step.GridAfter

		if n == cascade.MaxCascades-1 {
			cascadeLimitHit = true
			e.sink.Record(audit.Record{
				Kind:   audit.KindCascadeLimit,
				SpinID: spinID.String(),
				At:     time.Now().UTC(),
				Fields: map[string]interface{}{"cascades": cascade.MaxCascades},
			})
		}
	}

	if scatters0 >= wins.MinScatterCount {
		total += wins.ScatterPayout(scatters0, bet)
	}

	if !spinCtx.FreeSpinsActive && total >= multiplier.MinWinForTrigger {
		baseStream, err := rng.NewStream(seed, "multiplier:base", e.sink)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		baseStream.WithSpinID(spinID.String())
		if m := multiplier.BaseRoll(baseStream, total); m != nil {
			randomMultipliers = append(randomMultipliers, *m)
			total *= float64(m.Value)
		}
	}

	if wins.IsWinCapped(total, bet) {
		e.sink.Record(audit.Record{
			Kind:   audit.KindWinCapApplied,
			SpinID: spinID.String(),
			At:     time.Now().UTC(),
			Fields: map[string]interface{}{"bet": bet, "uncapped_total": total},
		})
	}
	total = wins.Round2(wins.ApplyMaxWinCap(total, bet))

	baseWin := total
	if accMult != 0 {
		baseWin = total / accMult
	}
	baseWin = wins.Round2(baseWin)

	mode := spin.ModeBase
	if spinCtx.FreeSpinsActive {
		mode = spin.ModeFreeSpins
	}

	var scatterTrigger freespins.TriggerResult
	var scatterRetrigger freespins.RetriggerResult
	triggered := false
	awarded := 0
	if spinCtx.FreeSpinsActive {
		scatterRetrigger = freespins.CheckRetrigger(initialGrid)
		triggered = scatterRetrigger.Retriggered
		awarded = scatterRetrigger.AdditionalSpins
	} else {
		scatterTrigger = freespins.CheckTrigger(initialGrid)
		triggered = scatterTrigger.Triggered
		awarded = scatterTrigger.SpinsAwarded
	}

	salt, err := integrity.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	result := &spin.Spin{
		ID:           spinID,
		SessionID:    sessionID,
		PlayerID:     playerID,
		Bet:          bet,
		GameMode:     mode,
		RngSeed:      seed,
		HashSalt:     salt,
		InitialGrid:  spin.JSONGrid{Grid: initialGrid},
		CascadeSteps: spin.JSONSteps{Steps: steps},
		FinalGrid:    spin.JSONGrid{Grid: current},
		BaseWin:      baseWin,
		AccumulatedMultiplier: accMult,
		TotalWin:              total,
		Bonus: spin.JSONBonus{Bonus: spin.Bonus{
			FreeSpinsTriggered: triggered,
			FreeSpinsAwarded:   awarded,
			RandomMultipliers:  randomMultipliers,
		}},
		FreeSpinsSessionID: spinCtx.FreeSpinsSessionID,
		CreatedAt:          time.Now().UTC(),
	}

	hash, err := integrity.Hash(result, salt)
	if err != nil {
		return nil, fmt.Errorf("engine: seal: %w", err)
	}
	result.ValidationHash = hash

	return &Outcome{
		Spin:             result,
		ScatterTrigger:   scatterTrigger,
		ScatterRetrigger: scatterRetrigger,
		CascadeLimitHit:  cascadeLimitHit,
	}, nil
}
