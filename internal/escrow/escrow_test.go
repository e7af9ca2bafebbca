package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice-settle/internal/pubkey"
)

var house = pubkey.Key{0xAA, 0x01}

func TestFindVaultDeterministic(t *testing.T) {
	h1, err := FindVault(house)
	require.NoError(t, err)
	h2, err := FindVault(house)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	a1, err := h1.Address()
	require.NoError(t, err)
	a2, _, err := FindAddress([]byte(VaultLabel), house[:])
	require.NoError(t, err)
	assert.Equal(t, a2, a1)

	other, err := FindVault(pubkey.Key{0xBB})
	require.NoError(t, err)
	a3, err := other.Address()
	require.NoError(t, err)
	assert.NotEqual(t, a1, a3)
}

func TestCreateAddressSeedLimits(t *testing.T) {
	_, err := CreateAddress(make([]byte, MaxSeedLength+1))
	assert.ErrorIs(t, err, ErrMaxSeedLength)

	seeds := make([][]byte, MaxSeeds+1)
	_, err = CreateAddress(seeds...)
	assert.ErrorIs(t, err, ErrMaxSeedLength)
}

func TestAuthorizeTransfer(t *testing.T) {
	h, err := FindVault(house)
	require.NoError(t, err)
	player := pubkey.Key{0x42}

	tr, err := h.AuthorizeTransfer(player, 500)
	require.NoError(t, err)
	assert.Equal(t, player, tr.To)
	assert.Equal(t, uint64(500), tr.Amount)
	assert.NoError(t, tr.Authorized())

	_, err = h.AuthorizeTransfer(player, 0)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestTransferWithForeignAuthority(t *testing.T) {
	h, err := FindVault(house)
	require.NoError(t, err)
	tr, err := h.AuthorizeTransfer(pubkey.Key{0x42}, 1)
	require.NoError(t, err)

	tr.Authority.Owner = pubkey.Key{0xCC}
	assert.Error(t, tr.Authorized())

	tr, err = h.AuthorizeTransfer(pubkey.Key{0x42}, 1)
	require.NoError(t, err)
	tr.Authority.Bump--
	assert.Error(t, tr.Authorized())
}

func TestBetAddressPerSeed(t *testing.T) {
	h, err := FindVault(house)
	require.NoError(t, err)
	vault, err := h.Address()
	require.NoError(t, err)

	a1, _, err := BetAddress(vault, 1)
	require.NoError(t, err)
	a2, _, err := BetAddress(vault, 2)
	require.NoError(t, err)
	again, _, err := BetAddress(vault, 1)
	require.NoError(t, err)

	assert.NotEqual(t, a1, a2)
	assert.Equal(t, a1, again)
	assert.Len(t, SeedBytes(7), 16)
}

func TestNonCanonicalBumpRejected(t *testing.T) {
	h, err := FindVault(house)
	require.NoError(t, err)

	forged := h
	for forged.Bump--; ; forged.Bump-- {
		if _, err := CreateAddress([]byte(VaultLabel), house[:], []byte{forged.Bump}); err == nil {
			break
		}
	}

	_, err = forged.Address()
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = forged.AuthorizeTransfer(pubkey.Key{0x42}, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// a transfer carrying the forged handle against the canonical source
	tr, err := h.AuthorizeTransfer(pubkey.Key{0x42}, 1)
	require.NoError(t, err)
	tr.Authority = forged
	assert.ErrorIs(t, tr.Authorized(), ErrUnauthorized)
}
