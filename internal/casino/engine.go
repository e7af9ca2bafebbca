package casino

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	MinRoll = 1
	MaxRoll = 99

	chunkSize = 16
)

var u128Mask = uint256.Int{math.MaxUint64, math.MaxUint64, 0, 0}

// RollFromSignature maps a signature to an outcome in [1,100]. The digest is
// folded as little-endian u128 chunks with wrapping addition, then reduced
// mod 100. This is a plain mixing step, not a PRF: a signer able to grind
// signatures could look for bias in the sum.
func RollFromSignature(sig []byte) uint8 {
	digest := sha256.Sum256(sig)

	var acc uint256.Int
	for chunk := digest[:]; len(chunk) > 0; chunk = chunk[chunkSize:] {
		v := uint256.Int{
			binary.LittleEndian.Uint64(chunk[0:8]),
			binary.LittleEndian.Uint64(chunk[8:16]),
			0, 0,
		}
		acc.Add(&acc, &v)
		acc.And(&acc, &u128Mask)
	}

	acc.Mod(&acc, uint256.NewInt(100))
	return uint8(acc.Uint64()) + 1
}

// IsWin requires the outcome to strictly exceed the roll.
func IsWin(outcome, roll uint8) bool {
	return outcome > roll
}

// Payout returns amount * 10000 / roll / 100, truncating at each division.
// Every step must stay within 128 bits and the result within 64.
func Payout(amount uint64, roll uint8) (uint64, error) {
	if roll == 0 {
		return 0, ErrOverflow
	}

	p, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), uint256.NewInt(10000))
	if overflow || p.BitLen() > 128 {
		return 0, ErrOverflow
	}
	p.Div(p, uint256.NewInt(uint64(roll)))
	p.Div(p, uint256.NewInt(100))

	if !p.IsUint64() {
		return 0, ErrOverflow
	}
	return p.Uint64(), nil
}

// Multiplier is the nominal return for a roll, for display only.
func Multiplier(roll uint8) string {
	if roll == 0 {
		return "0"
	}
	return decimal.NewFromInt(100).DivRound(decimal.NewFromInt(int64(roll)), 4).StringFixed(4)
}
