package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice-settle/internal/pubkey"
)

func TestLoadDefaults(t *testing.T) {
	house := pubkey.Key{1, 2, 3}
	t.Setenv("API_KEY", "k")
	t.Setenv("ADMIN_TOKEN", "a")
	t.Setenv("HOUSE_PUBKEY", house.String())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, house, cfg.HousePubkey)
	assert.Equal(t, 10*time.Minute, cfg.BetTimeout)
	assert.Equal(t, uint64(1000000000000), cfg.MaxBet)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadRequiresHouse(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("ADMIN_TOKEN", "a")
	t.Setenv("HOUSE_PUBKEY", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("HOUSE_PUBKEY", "not-base58!")
	_, err = Load()
	assert.Error(t, err)
}
