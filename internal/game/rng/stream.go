package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/crypto/hkdf"

	"github.com/cascadeslots/engine/internal/audit"
	gintegrity "github.com/cascadeslots/engine/internal/game/integrity"
)

// GenerateSeed produces a fresh 32-byte hex-encoded seed for one spin.
//
// OS entropy (crypto/rand, via CryptoRNG.Bytes) is the actual source of
// randomness. Before it is handed out, it is passed through HKDF
// (RFC 5869 extract and expand, via hkdf.New) salted with the caller-supplied label so
// that seeds minted for different purposes in the same process (spin
// seeds, free-spins session seeds, sync nonce material) are
// cryptographically domain-separated even if the OS entropy pool were
// ever to repeat across calls. This does not change the seed's shape —
// callers still receive an uninterpreted 32-byte hex string, and
// DeriveStream's formula over that string is unaffected.
func GenerateSeed(label string, sink audit.Sink) (string, error) {
	raw := make([]byte, 32)
	if err := NewCryptoRNG().Bytes(raw); err != nil {
		return "", fmt.Errorf("generate seed: %w", err)
	}

	hkdfReader := hkdf.New(sha256.New, raw, []byte(label), []byte("cascadeslots/seed-v1"))
	seed := make([]byte, 32)
	if _, err := io.ReadFull(hkdfReader, seed); err != nil {
		return "", fmt.Errorf("generate seed: hkdf expand: %w", err)
	}

	hexSeed := hex.EncodeToString(seed)
	if sink != nil {
		digest := sha256.Sum256(seed)
		sink.Record(audit.Record{
			Kind: audit.KindSeedGenerated,
			Fields: map[string]interface{}{
				"label":        label,
				"seed_sha_pfx": hex.EncodeToString(digest[:8]),
			},
		})
	}
	return hexSeed, nil
}

// Stream implements the engine's deterministic derive_stream(seed, label)
// contract:
//
//	derive_stream(seed, label) = SHA256(seed || label || k)[:4] / 2^32
//
// where k is a per-(seed,label) stream an atomic counter starting at 0 and
// incrementing on every draw. Two Streams built from the same seed and
// label produce byte-identical sequences of draws, which is what makes a
// replay with a pinned seed reproduce an historical spin exactly.
type Stream struct {
	seed    []byte
	label   string
	counter uint64
	sink    audit.Sink
	spinID  string
}

// NewStream builds a derive_stream generator for one (seed, label) pair.
// seed must be the hex string produced by GenerateSeed (or an externally
// pinned replay seed — both are treated as opaque byte strings).
func NewStream(hexSeed, label string, sink audit.Sink) (*Stream, error) {
	seed, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, fmt.Errorf("derive_stream: invalid seed encoding: %w", err)
	}
	return &Stream{seed: seed, label: label, sink: sink}, nil
}

// WithSpinID attaches a spin identifier to subsequent audit records.
func (s *Stream) WithSpinID(spinID string) *Stream {
	s.spinID = spinID
	return s
}

// Next returns the next float64 in [0, 1) from this stream.
func (s *Stream) Next() float64 {
	k := atomic.AddUint64(&s.counter, 1) - 1

	buf := make([]byte, 0, len(s.seed)+len(s.label)+8)
	buf = append(buf, s.seed...)
	buf = append(buf, []byte(s.label)...)
	var kBytes [8]byte
	binary.BigEndian.PutUint64(kBytes[:], k)
	buf = append(buf, kBytes[:]...)

	digest := sha256.Sum256(buf)
	u32 := binary.BigEndian.Uint32(digest[:4])
	value := float64(u32) / 4294967296.0 // 2^32

	if s.sink != nil {
		// spec.md §4.1: raw draw values are never logged, only a SHA-256
		// prefix of the digest that produced them.
		s.sink.Record(audit.Record{
			Kind:   audit.KindRNGDraw,
			SpinID: s.spinID,
			Fields: map[string]interface{}{
				"label":    s.label,
				"k":        k,
				"draw_pfx": gintegrity.Prefix(hex.EncodeToString(digest[:]), 12),
			},
		})
	}
	return value
}

// NextInt returns a uniform integer in [0, n).
func (s *Stream) NextInt(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Next() * float64(n))
}

// Draws returns how many values have been produced so far.
func (s *Stream) Draws() uint64 {
	return atomic.LoadUint64(&s.counter)
}

// WeightedPick selects an index proportionally to weights using a single
// draw from the stream.
func (s *Stream) WeightedPick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	target := s.Next() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Shuffle performs an in-place Fisher-Yates shuffle driven by the stream.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.NextInt(i + 1)
		swap(i, j)
	}
}
