// Package audit funnels the structured audit events produced by the game
// engine (RNG draws, cascade-limit breaches, win-cap events, sync recovery
// transitions) through a single sink instead of scattering logger calls
// across every package.
package audit

import (
	"time"

	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// Kind identifies the category of an audit record.
type Kind string

const (
	KindRNGDraw          Kind = "rng_draw"
	KindSeedGenerated     Kind = "seed_generated"
	KindCascadeLimit      Kind = "cascade_limit_reached"
	KindWinCapApplied     Kind = "win_cap_applied"
	KindSyncStateChange   Kind = "sync_state_change"
	KindSyncRecovery      Kind = "sync_recovery"
	KindValidationFailure Kind = "validation_failure"
	KindFraudScore        Kind = "fraud_score"
)

// Record is one structured audit event. Fields is a flat map so it can be
// attached to a zerolog event without reflection.
type Record struct {
	Kind      Kind
	SpinID    string
	SessionID string
	At        time.Time
	Fields    map[string]interface{}
}

// Sink receives audit records. The default Sink writes through the
// application logger; a persistence-backed Sink can be substituted without
// changing any call site.
type Sink interface {
	Record(r Record)
}

// LogSink writes audit records as structured zerolog events.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink wraps an application logger as an audit Sink.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Record(r Record) {
	evt := s.log.Info().
		Str("audit_kind", string(r.Kind)).
		Time("audit_at", r.At)
	if r.SpinID != "" {
		evt = evt.Str("spin_id", r.SpinID)
	}
	if r.SessionID != "" {
		evt = evt.Str("session_id", r.SessionID)
	}
	for k, v := range r.Fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg("audit")
}

// NopSink discards every record. Useful in tests that don't care about the
// audit trail.
type NopSink struct{}

func (NopSink) Record(Record) {}
