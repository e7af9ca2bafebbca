package ledger

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"dice-settle/internal/pubkey"
)

type Entry struct {
	Ref     string     `json:"ref"`
	Account pubkey.Key `json:"account"`
	Debit   int64      `json:"debit"`
	Credit  int64      `json:"credit"`
	TS      int64      `json:"ts"`
}

type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

func NewRef() string {
	return uuid.New().String()
}

func (s *Service) Record(tx *sql.Tx, ref string, account pubkey.Key, debit, credit int64) error {
	ts := time.Now().Unix()

	_, err := tx.Exec(`
	INSERT INTO ledger(ref,account,debit,credit,ts)
	VALUES (?,?,?,?,?)
	`, ref, account, debit, credit, ts)

	return err
}

func (s *Service) Entries(account pubkey.Key) ([]Entry, error) {
	rows, err := s.db.Query(`
	SELECT ref, account, debit, credit, ts FROM ledger
	WHERE account=? ORDER BY id
	`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Ref, &e.Account, &e.Debit, &e.Credit, &e.TS); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
