package escrow

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"

	"dice-settle/internal/pubkey"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

// ProgramID namespaces every address derived by this service.
var ProgramID = pubkey.Key(sha256.Sum256([]byte("dice-settle/escrow")))

var (
	ErrMaxSeedLength = errors.New("derivation seed too long")
	ErrOnCurve       = errors.New("derived address lies on the ed25519 curve")
	ErrNoBump        = errors.New("no viable bump seed")
)

// CreateAddress derives an address that has no private key. Addresses that
// decode as a curve point are rejected since a key could exist for them.
func CreateAddress(seeds ...[]byte) (pubkey.Key, error) {
	if len(seeds) > MaxSeeds {
		return pubkey.Key{}, ErrMaxSeedLength
	}

	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return pubkey.Key{}, ErrMaxSeedLength
		}
		h.Write(s)
	}
	h.Write(ProgramID[:])
	h.Write([]byte(pdaMarker))

	var addr pubkey.Key
	copy(addr[:], h.Sum(nil))

	if _, err := new(edwards25519.Point).SetBytes(addr[:]); err == nil {
		return pubkey.Key{}, ErrOnCurve
	}
	return addr, nil
}

// FindAddress returns the first off-curve address searching bumps from 255 down.
func FindAddress(seeds ...[]byte) (pubkey.Key, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateAddress(withBump...)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return pubkey.Key{}, 0, err
		}
	}
	return pubkey.Key{}, 0, ErrNoBump
}
