package wallet

import (
	"database/sql"
	"math"

	"github.com/pkg/errors"

	"dice-settle/internal/escrow"
	"dice-settle/internal/ledger"
	"dice-settle/internal/pubkey"
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAmountRange       = errors.New("amount out of range")
)

type Ledger interface {
	Record(tx *sql.Tx, ref string, account pubkey.Key, debit, credit int64) error
}

type Service struct {
	db     *sql.DB
	ledger Ledger
}

func New(db *sql.DB, ledger Ledger) *Service {
	return &Service{db: db, ledger: ledger}
}

func checkAmount(amount uint64) (int64, error) {
	if amount == 0 || amount > math.MaxInt64 {
		return 0, ErrAmountRange
	}
	return int64(amount), nil
}

func (s *Service) Balance(account pubkey.Key) (uint64, error) {
	var amount int64
	err := s.db.QueryRow(`SELECT amount FROM balances WHERE account=?`, account).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(amount), nil
}

func (s *Service) Credit(tx *sql.Tx, account pubkey.Key, amount uint64) error {
	return s.credit(tx, ledger.NewRef(), account, amount)
}

// Transfer moves amount between two accounts under one ledger ref.
func (s *Service) Transfer(tx *sql.Tx, from, to pubkey.Key, amount uint64) error {
	ref := ledger.NewRef()
	if err := s.debit(tx, ref, from, amount); err != nil {
		return err
	}
	return s.credit(tx, ref, to, amount)
}

// Execute performs an escrow transfer after checking its authority derives
// the source account.
func (s *Service) Execute(tx *sql.Tx, t escrow.Transfer) error {
	if err := t.Authorized(); err != nil {
		return err
	}
	return s.Transfer(tx, t.From, t.To, t.Amount)
}

func (s *Service) credit(tx *sql.Tx, ref string, account pubkey.Key, amount uint64) error {
	v, err := checkAmount(amount)
	if err != nil {
		return err
	}

	var current int64
	err = tx.QueryRow(`SELECT amount FROM balances WHERE account=?`, account).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "read balance")
	}
	if current > math.MaxInt64-v {
		return ErrAmountRange
	}

	_, err = tx.Exec(`
	INSERT INTO balances(account, amount) VALUES (?, ?)
	ON CONFLICT(account) DO UPDATE SET amount = amount + excluded.amount
	`, account, v)
	if err != nil {
		return errors.Wrap(err, "credit")
	}

	return s.ledger.Record(tx, ref, account, 0, v)
}

func (s *Service) debit(tx *sql.Tx, ref string, account pubkey.Key, amount uint64) error {
	v, err := checkAmount(amount)
	if err != nil {
		return err
	}

	res, err := tx.Exec(`
	UPDATE balances SET amount = amount - ?
	WHERE account=? AND amount >= ?
	`, v, account, v)
	if err != nil {
		return errors.Wrap(err, "debit")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientFunds
	}

	return s.ledger.Record(tx, ref, account, v, 0)
}
