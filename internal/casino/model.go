package casino

import (
	"encoding/binary"

	"dice-settle/internal/escrow"
	"dice-settle/internal/pubkey"
)

// MessageSize is the length of a bet's canonical encoding.
const MessageSize = pubkey.Size + 16 + 8 + 8 + 1 + 1

type BetStatus string

const (
	BetPending  BetStatus = "pending"
	BetSettled  BetStatus = "settled"
	BetRefunded BetStatus = "refunded"
)

type Bet struct {
	Address pubkey.Key `json:"address"`
	Vault   pubkey.Key `json:"vault"`
	Player  pubkey.Key `json:"player"`
	Seed    uint64     `json:"seed"`
	Slot    uint64     `json:"slot"`
	Amount  uint64     `json:"amount"`
	Roll    uint8      `json:"roll"`
	Bump    uint8      `json:"bump"`

	Status    BetStatus `json:"status"`
	Outcome   uint8     `json:"outcome,omitempty"`
	Payout    uint64    `json:"payout,omitempty"`
	Signature string    `json:"signature,omitempty"`
	CreatedAt int64     `json:"created_at"`
	SettledAt int64     `json:"settled_at,omitempty"`
}

// Bytes is the canonical encoding the house signs:
// player | seed (u128 LE) | slot | amount | roll | bump.
func (b *Bet) Bytes() []byte {
	out := make([]byte, 0, MessageSize)
	out = append(out, b.Player[:]...)
	out = append(out, escrow.SeedBytes(b.Seed)...)
	out = binary.LittleEndian.AppendUint64(out, b.Slot)
	out = binary.LittleEndian.AppendUint64(out, b.Amount)
	out = append(out, b.Roll, b.Bump)
	return out
}

// ParseBet decodes the fields carried by a canonical bet message. The
// derived address and vault are not part of the message and stay zero.
func ParseBet(msg []byte) (*Bet, error) {
	if len(msg) != MessageSize {
		return nil, ErrInvalidBet
	}
	b := &Bet{}
	copy(b.Player[:], msg[:pubkey.Size])
	msg = msg[pubkey.Size:]

	if binary.LittleEndian.Uint64(msg[8:16]) != 0 {
		return nil, ErrInvalidBet
	}
	b.Seed = binary.LittleEndian.Uint64(msg[0:8])
	b.Slot = binary.LittleEndian.Uint64(msg[16:24])
	b.Amount = binary.LittleEndian.Uint64(msg[24:32])
	b.Roll = msg[32]
	b.Bump = msg[33]
	return b, nil
}

type PlaceRequest struct {
	Player pubkey.Key
	Seed   uint64
	Amount uint64
	Roll   uint8
}

type Result struct {
	Bet        pubkey.Key `json:"bet"`
	Player     pubkey.Key `json:"player"`
	Roll       uint8      `json:"roll"`
	Outcome    uint8      `json:"outcome"`
	Win        bool       `json:"win"`
	Amount     uint64     `json:"amount"`
	Payout     uint64     `json:"payout"`
	Multiplier string     `json:"multiplier"`
	Signature  string     `json:"signature"`
	State      State      `json:"state"`
	SettledAt  int64      `json:"settled_at"`
}

type Vault struct {
	Address   pubkey.Key `json:"address"`
	Owner     pubkey.Key `json:"owner"`
	Bump      uint8      `json:"bump"`
	CreatedAt int64      `json:"created_at"`
}

func (v *Vault) Handle() escrow.Handle {
	return escrow.Handle{Owner: v.Owner, Label: escrow.VaultLabel, Bump: v.Bump}
}
