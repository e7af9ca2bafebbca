package db

import (
	"database/sql"

	"github.com/pkg/errors"
)

var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS balances (
		account TEXT PRIMARY KEY,
		amount INTEGER NOT NULL DEFAULT 0 CHECK (amount >= 0)
	);`,
	`
	CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ref TEXT,
		account TEXT,
		debit INTEGER,
		credit INTEGER,
		ts INTEGER
	);`,
	`
	CREATE TABLE IF NOT EXISTS vaults (
		address TEXT PRIMARY KEY,
		owner TEXT NOT NULL UNIQUE,
		bump INTEGER NOT NULL,
		created_at INTEGER
	);`,
	`
	CREATE TABLE IF NOT EXISTS bets (
		address TEXT PRIMARY KEY,
		vault TEXT NOT NULL REFERENCES vaults(address),
		player TEXT NOT NULL,
		seed INTEGER NOT NULL,
		slot INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		roll INTEGER NOT NULL,
		bump INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		outcome INTEGER,
		payout INTEGER,
		signature TEXT,
		created_at INTEGER,
		settled_at INTEGER,
		UNIQUE (vault, seed)
	);`,
	`CREATE INDEX IF NOT EXISTS bets_status_slot ON bets (status, slot);`,
	`
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor TEXT,
		action TEXT,
		metadata TEXT,
		created_at INTEGER
	);`,
}

func Migrate(db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}
