package escrow

import (
	"encoding/binary"
	"errors"

	"dice-settle/internal/pubkey"
)

const (
	VaultLabel = "vault"
	BetLabel   = "bet"
)

var (
	ErrUnauthorized = errors.New("transfer authority does not derive the source account")
	ErrZeroAmount   = errors.New("transfer amount is zero")
)

// Handle is the capability to spend from a derived account: the owner
// identity, a fixed label and the bump that together derive the address.
type Handle struct {
	Owner pubkey.Key
	Label string
	Bump  uint8
}

// FindVault returns the canonical vault handle owned by the house key.
func FindVault(owner pubkey.Key) (Handle, error) {
	_, bump, err := FindAddress([]byte(VaultLabel), owner[:])
	if err != nil {
		return Handle{}, err
	}
	return Handle{Owner: owner, Label: VaultLabel, Bump: bump}, nil
}

// Address derives the handle's account. Only the canonical bump, the one
// FindAddress settles on, is accepted.
func (h Handle) Address() (pubkey.Key, error) {
	addr, bump, err := FindAddress([]byte(h.Label), h.Owner[:])
	if err != nil {
		return pubkey.Key{}, err
	}
	if bump != h.Bump {
		return pubkey.Key{}, ErrUnauthorized
	}
	return addr, nil
}

// Transfer is a directive to move Amount from From to To, authorized by a
// derivation rather than a signature.
type Transfer struct {
	From      pubkey.Key
	To        pubkey.Key
	Amount    uint64
	Authority Handle
}

func (h Handle) AuthorizeTransfer(to pubkey.Key, amount uint64) (Transfer, error) {
	if amount == 0 {
		return Transfer{}, ErrZeroAmount
	}
	from, err := h.Address()
	if err != nil {
		return Transfer{}, err
	}
	return Transfer{From: from, To: to, Amount: amount, Authority: h}, nil
}

// Authorized re-derives the authority and checks it owns the source.
func (t Transfer) Authorized() error {
	addr, err := t.Authority.Address()
	if err != nil {
		return err
	}
	if addr != t.From {
		return ErrUnauthorized
	}
	return nil
}

// BetAddress derives the account of bet seed under a vault.
func BetAddress(vault pubkey.Key, seed uint64) (pubkey.Key, uint8, error) {
	return FindAddress([]byte(BetLabel), vault[:], SeedBytes(seed))
}

// SeedBytes encodes a seed as a 128-bit little-endian integer.
func SeedBytes(seed uint64) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b, seed)
	return b
}
