package casino

import (
	"crypto/rand"
	"crypto/sha256"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceRoll folds the digest with math/big to cross-check the uint256 path.
func referenceRoll(sig []byte) uint8 {
	digest := sha256.Sum256(sig)
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	acc := new(big.Int)
	for i := 0; i < len(digest); i += 16 {
		chunk := make([]byte, 16)
		for j := 0; j < 16; j++ {
			chunk[j] = digest[i+15-j]
		}
		acc.Add(acc, new(big.Int).SetBytes(chunk))
		acc.Mod(acc, mod)
	}
	acc.Mod(acc, big.NewInt(100))
	return uint8(acc.Uint64()) + 1
}

func TestRollFromSignatureMatchesReference(t *testing.T) {
	sig := make([]byte, 64)
	for i := 0; i < 500; i++ {
		_, err := rand.Read(sig)
		require.NoError(t, err)

		got := RollFromSignature(sig)
		assert.Equal(t, referenceRoll(sig), got)
		assert.GreaterOrEqual(t, got, uint8(1))
		assert.LessOrEqual(t, got, uint8(100))
	}
}

func TestRollFromSignatureDeterministic(t *testing.T) {
	sig := make([]byte, 64)
	for i := range sig {
		sig[i] = byte(i)
	}
	first := RollFromSignature(sig)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RollFromSignature(sig))
	}
}

func TestIsWinBoundaries(t *testing.T) {
	assert.False(t, IsWin(50, 50), "outcome equal to roll loses")
	assert.True(t, IsWin(51, 50))
	assert.True(t, IsWin(100, 99))
	for roll := uint8(MinRoll); roll <= MaxRoll; roll++ {
		assert.False(t, IsWin(1, roll))
	}
}

func TestPayout(t *testing.T) {
	p, err := Payout(1_000_000, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), p)

	// floor after each division: 1000*10000/3 = 3333333, /100 = 33333
	p, err = Payout(1000, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(33333), p)

	p, err = Payout(1_000_000, 99)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_010_101), p)

	p, err = Payout(1_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), p)
}

func TestPayoutMonotonicInRoll(t *testing.T) {
	const amount = 1_000_000
	prev := uint64(math.MaxUint64)
	for roll := uint8(MinRoll); roll <= MaxRoll; roll++ {
		p, err := Payout(amount, roll)
		require.NoError(t, err)
		assert.LessOrEqual(t, p, prev)
		assert.Greater(t, p, uint64(amount))
		prev = p
	}
}

func TestPayoutOverflow(t *testing.T) {
	_, err := Payout(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Payout(math.MaxUint64-1, 99)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Payout(1, 0)
	assert.ErrorIs(t, err, ErrOverflow)

	// largest amount whose 100x payout still fits
	p, err := Payout(math.MaxUint64/100, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/100*100), p)
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, "2.0000", Multiplier(50))
	assert.Equal(t, "100.0000", Multiplier(1))
	assert.Equal(t, "1.0101", Multiplier(99))
}
