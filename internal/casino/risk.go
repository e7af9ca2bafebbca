package casino

import "math"

type RiskEngine struct {
	MaxBet uint64
}

func NewRisk(maxBet uint64) *RiskEngine {
	if maxBet == 0 || maxBet > math.MaxInt64 {
		maxBet = math.MaxInt64
	}
	return &RiskEngine{
		MaxBet: maxBet,
	}
}

func (r *RiskEngine) Validate(amount uint64, roll uint8) error {
	if amount == 0 {
		return ErrInvalidBet
	}
	if amount > r.MaxBet {
		return ErrMaxBet
	}
	if roll < MinRoll || roll > MaxRoll {
		return ErrInvalidRoll
	}
	return nil
}
