package wallet

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice-settle/internal/db"
	"dice-settle/internal/escrow"
	"dice-settle/internal/ledger"
	"dice-settle/internal/pubkey"
)

func setup(t *testing.T) (*sql.DB, *Service, *ledger.Service) {
	conn, err := db.Init(filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	l := ledger.New(conn)
	return conn, New(conn, l), l
}

func inTx(t *testing.T, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.Begin()
	require.NoError(t, err)
	if err := fn(tx); err != nil {
		require.NoError(t, tx.Rollback())
		return err
	}
	return tx.Commit()
}

func TestTransferMovesBalance(t *testing.T) {
	conn, w, l := setup(t)
	a, b := pubkey.Key{1}, pubkey.Key{2}

	require.NoError(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Credit(tx, a, 100) }))
	require.NoError(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Transfer(tx, a, b, 40) }))

	ba, _ := w.Balance(a)
	bb, _ := w.Balance(b)
	assert.Equal(t, uint64(60), ba)
	assert.Equal(t, uint64(40), bb)

	ea, err := l.Entries(a)
	require.NoError(t, err)
	eb, err := l.Entries(b)
	require.NoError(t, err)
	require.Len(t, ea, 2)
	require.Len(t, eb, 1)
	assert.Equal(t, int64(40), ea[1].Debit)
	assert.Equal(t, ea[1].Ref, eb[0].Ref)
}

func TestTransferInsufficient(t *testing.T) {
	conn, w, _ := setup(t)
	a, b := pubkey.Key{1}, pubkey.Key{2}

	require.NoError(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Credit(tx, a, 10) }))
	err := inTx(t, conn, func(tx *sql.Tx) error { return w.Transfer(tx, a, b, 11) })
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	ba, _ := w.Balance(a)
	assert.Equal(t, uint64(10), ba)
}

func TestAmountRange(t *testing.T) {
	conn, w, _ := setup(t)
	a := pubkey.Key{1}

	assert.ErrorIs(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Credit(tx, a, 0) }), ErrAmountRange)
	assert.ErrorIs(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Credit(tx, a, math.MaxInt64+1) }), ErrAmountRange)

	require.NoError(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Credit(tx, a, math.MaxInt64) }))
	assert.ErrorIs(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Credit(tx, a, 1) }), ErrAmountRange)
}

func TestExecuteChecksAuthority(t *testing.T) {
	conn, w, _ := setup(t)
	house, player := pubkey.Key{7}, pubkey.Key{8}

	h, err := escrow.FindVault(house)
	require.NoError(t, err)
	vault, err := h.Address()
	require.NoError(t, err)
	require.NoError(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Credit(tx, vault, 500) }))

	tr, err := h.AuthorizeTransfer(player, 200)
	require.NoError(t, err)
	require.NoError(t, inTx(t, conn, func(tx *sql.Tx) error { return w.Execute(tx, tr) }))

	forged := tr
	forged.Authority.Owner = player
	err = inTx(t, conn, func(tx *sql.Tx) error { return w.Execute(tx, forged) })
	assert.Error(t, err)

	bv, _ := w.Balance(vault)
	bp, _ := w.Balance(player)
	assert.Equal(t, uint64(300), bv)
	assert.Equal(t, uint64(200), bp)
}
