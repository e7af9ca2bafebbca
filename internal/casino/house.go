package casino

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"dice-settle/internal/pubkey"
	"dice-settle/internal/sigverify"
)

// HouseSigner signs committed bets. The server never holds one; it exists
// for operators and tests.
type HouseSigner struct {
	priv ed25519.PrivateKey
	Key  pubkey.Key
}

func NewHouseSigner(seed []byte) (*HouseSigner, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Errorf("house seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	key, err := pubkey.FromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &HouseSigner{priv: priv, Key: key}, nil
}

func (h *HouseSigner) Sign(bet *Bet) []byte {
	return ed25519.Sign(h.priv, bet.Bytes())
}

// Reveal signs the bet and wraps the signature in the verify record that
// must accompany the settlement request.
func (h *HouseSigner) Reveal(bet *Bet) ([]byte, sigverify.Record, error) {
	sig := h.Sign(bet)
	rec, err := sigverify.NewRecord(h.Key, sig, bet.Bytes())
	if err != nil {
		return nil, sigverify.Record{}, err
	}
	return sig, rec, nil
}
