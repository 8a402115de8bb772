// Package award selects the winning member for a prize distribution.
//
// Selection is index = keccak256(height ‖ time ‖ difficulty) mod memberCount,
// with each input encoded as a 32-byte big-endian word. Anyone who can observe
// or influence those inputs can predict or bias the outcome; the formula is
// kept deterministic-given-seed so tests can pin it. A verifiable random
// function can be plugged in as an EntropySource without touching Select.
package award

import (
	"context"
	"encoding/binary"
	"math/big"
	"time"

	"golang.org/x/crypto/sha3"

	dErrors "awardregistry/pkg/domain-errors"
)

// Seed carries the entropy inputs for one selection.
type Seed struct {
	Height     uint64
	Time       time.Time
	Difficulty uint64
}

// EntropySource supplies the seed for a distribution.
type EntropySource interface {
	Seed(ctx context.Context) (Seed, error)
}

// Digest returns keccak256 over the packed seed words.
func (s Seed) Digest() []byte {
	var packed [96]byte
	binary.BigEndian.PutUint64(packed[24:32], s.Height)
	binary.BigEndian.PutUint64(packed[56:64], uint64(s.Time.Unix()))
	binary.BigEndian.PutUint64(packed[88:96], s.Difficulty)

	h := sha3.NewLegacyKeccak256()
	h.Write(packed[:])
	return h.Sum(nil)
}

// Select maps seed onto a position in [0, count).
func Select(seed Seed, count int) (int, error) {
	if count <= 0 {
		return 0, dErrors.New(dErrors.CodeEmptyCollection, "no candidates to select from")
	}
	n := new(big.Int).SetBytes(seed.Digest())
	n.Mod(n, big.NewInt(int64(count)))
	return int(n.Int64()), nil
}
