package casino

import (
	"context"
	"database/sql"
	"encoding/hex"

	"github.com/pkg/errors"

	"dice-settle/internal/pubkey"
)

const betColumns = `address, vault, player, seed, slot, amount, roll, bump, status,
	outcome, payout, signature, created_at, settled_at`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBet(row scanner) (*Bet, error) {
	var (
		b                        Bet
		seed, slot, amount       int64
		roll, bump               int64
		outcome, payout, settled sql.NullInt64
		sig                      sql.NullString
		status                   string
	)

	err := row.Scan(&b.Address, &b.Vault, &b.Player, &seed, &slot, &amount, &roll, &bump, &status,
		&outcome, &payout, &sig, &b.CreatedAt, &settled)
	if err != nil {
		return nil, err
	}

	b.Seed = uint64(seed)
	b.Slot = uint64(slot)
	b.Amount = uint64(amount)
	b.Roll = uint8(roll)
	b.Bump = uint8(bump)
	b.Status = BetStatus(status)
	b.Outcome = uint8(outcome.Int64)
	b.Payout = uint64(payout.Int64)
	b.Signature = sig.String
	b.SettledAt = settled.Int64

	return &b, nil
}

func (s *Service) pendingBet(ctx context.Context, q queryer, address pubkey.Key) (*Bet, error) {
	row := q.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE address=? AND status=?`,
		address, BetPending)
	bet, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, ErrBetNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load bet")
	}
	return bet, nil
}

func scanVault(row scanner) (*Vault, error) {
	var (
		v    Vault
		bump int64
	)
	if err := row.Scan(&v.Address, &v.Owner, &bump, &v.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVaultNotFound
		}
		return nil, errors.Wrap(err, "load vault")
	}
	v.Bump = uint8(bump)
	return &v, nil
}

func (s *Service) vaultByOwner(ctx context.Context, q queryer, owner pubkey.Key) (*Vault, error) {
	return scanVault(q.QueryRowContext(ctx, `
	SELECT address, owner, bump, created_at FROM vaults WHERE owner=?
	`, owner))
}

func (s *Service) vaultByAddress(ctx context.Context, q queryer, address pubkey.Key) (*Vault, error) {
	return scanVault(q.QueryRowContext(ctx, `
	SELECT address, owner, bump, created_at FROM vaults WHERE address=?
	`, address))
}

// retireBet marks a pending bet settled. Zero rows means another settlement
// got there first.
func retireBet(ctx context.Context, tx *sql.Tx, address pubkey.Key, st *Settlement, sig []byte, now int64) error {
	res, err := tx.ExecContext(ctx, `
	UPDATE bets SET status=?, outcome=?, payout=?, signature=?, settled_at=?
	WHERE address=? AND status=?
	`, BetSettled, st.Outcome, int64(st.Payout), hex.EncodeToString(sig), now, address, BetPending)
	if err != nil {
		return errors.Wrap(err, "retire bet")
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return ErrBetNotFound
	}
	return nil
}
