package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"

	"dice-settle/internal/pubkey"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBPath     string `env:"DB_PATH" envDefault:"db.sqlite"`
	APIKey     string `env:"API_KEY,required"`
	AdminToken string `env:"ADMIN_TOKEN,required"`

	// HousePubkey is the base58 key whose signatures settle bets.
	HousePubkey pubkey.Key `env:"HOUSE_PUBKEY,required"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	MaxBet         uint64        `env:"MAX_BET" envDefault:"1000000000000"`
	BetTimeout     time.Duration `env:"BET_TIMEOUT" envDefault:"10m"`
	RefundInterval time.Duration `env:"REFUND_INTERVAL" envDefault:"30s"`
	ResultTTL      time.Duration `env:"RESULT_TTL" envDefault:"24h"`
	LogDevelopment bool          `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if cfg.HousePubkey.IsZero() {
		return nil, errors.New("HOUSE_PUBKEY must not be the zero key")
	}
	return cfg, nil
}
