package casino

import (
	"math/big"
	"sync"

	"github.com/shopspring/decimal"
)

type RTPController struct {
	mu          sync.Mutex
	Bets        uint64
	Wins        uint64
	TotalBet    decimal.Decimal
	TotalPayout decimal.Decimal
}

type RTPSnapshot struct {
	Bets        uint64 `json:"bets"`
	Wins        uint64 `json:"wins"`
	TotalBet    string `json:"total_bet"`
	TotalPayout string `json:"total_payout"`
	RTP         string `json:"rtp"`
}

func NewRTP() *RTPController {
	return &RTPController{
		TotalBet:    decimal.Zero,
		TotalPayout: decimal.Zero,
	}
}

func (r *RTPController) Record(bet, payout uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Bets++
	if payout > 0 {
		r.Wins++
	}
	r.TotalBet = r.TotalBet.Add(decimal.NewFromBigInt(new(big.Int).SetUint64(bet), 0))
	r.TotalPayout = r.TotalPayout.Add(decimal.NewFromBigInt(new(big.Int).SetUint64(payout), 0))
}

// Snapshot reports realised return to player as payout / wagered.
func (r *RTPController) Snapshot() RTPSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	rtp := decimal.Zero
	if !r.TotalBet.IsZero() {
		rtp = r.TotalPayout.DivRound(r.TotalBet, 4)
	}

	return RTPSnapshot{
		Bets:        r.Bets,
		Wins:        r.Wins,
		TotalBet:    r.TotalBet.String(),
		TotalPayout: r.TotalPayout.String(),
		RTP:         rtp.StringFixed(4),
	}
}
