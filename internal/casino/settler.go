package casino

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"dice-settle/internal/escrow"
	"dice-settle/internal/pubkey"
)

type State string

const (
	StatePending     State = "pending"
	StateVerifying   State = "verifying"
	StateRejected    State = "rejected"
	StateVerified    State = "verified"
	StateSettling    State = "settling"
	StateSettledWin  State = "settled_win"
	StateSettledLoss State = "settled_loss"
	StateFailed      State = "failed"
)

var transitions = map[State][]State{
	StatePending:   {StateVerifying},
	StateVerifying: {StateRejected, StateVerified},
	StateVerified:  {StateSettling},
	StateSettling:  {StateSettledWin, StateSettledLoss, StateFailed},
}

// Attempt tracks one settlement attempt. Rejected and Failed leave the bet
// untouched; the settled states retire it.
type Attempt struct {
	state State
}

func NewAttempt() *Attempt {
	return &Attempt{state: StatePending}
}

func (a *Attempt) State() State {
	return a.state
}

func (a *Attempt) Advance(next State) error {
	for _, s := range transitions[a.state] {
		if s == next {
			a.state = next
			return nil
		}
	}
	return fmt.Errorf("settlement: illegal transition %s -> %s", a.state, next)
}

// Transferrer executes an authorized escrow transfer inside tx.
type Transferrer interface {
	Execute(tx *sql.Tx, t escrow.Transfer) error
}

type Settlement struct {
	Outcome  uint8
	Win      bool
	Payout   uint64
	Transfer *escrow.Transfer
}

type Settler struct {
	wallet Transferrer
}

func NewSettler(wallet Transferrer) *Settler {
	return &Settler{wallet: wallet}
}

// Settle derives the outcome from an already bound signature and pays the
// player on a win. The vault handle must derive the escrow recorded on the bet.
func (s *Settler) Settle(tx *sql.Tx, sig []byte, bet *Bet, vault escrow.Handle, player pubkey.Key) (*Settlement, error) {
	outcome := RollFromSignature(sig)
	res := &Settlement{Outcome: outcome}

	if !IsWin(outcome, bet.Roll) {
		return res, nil
	}

	payout, err := Payout(bet.Amount, bet.Roll)
	if err != nil {
		return nil, err
	}

	from, err := vault.Address()
	if err != nil {
		return nil, errors.Wrapf(ErrTransferFailed, "vault authority: %v", err)
	}
	if from != bet.Vault {
		return nil, errors.Wrapf(ErrTransferFailed, "vault %s does not hold bet", from)
	}

	t, err := vault.AuthorizeTransfer(player, payout)
	if err != nil {
		return nil, errors.Wrapf(ErrTransferFailed, "authorize: %v", err)
	}
	if err := s.wallet.Execute(tx, t); err != nil {
		return nil, errors.Wrapf(ErrTransferFailed, "execute: %v", err)
	}

	res.Win = true
	res.Payout = payout
	res.Transfer = &t
	return res, nil
}
