package casino

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"dice-settle/internal/cache"
	"dice-settle/internal/escrow"
	"dice-settle/internal/event"
	"dice-settle/internal/logger"
	"dice-settle/internal/monitoring"
	"dice-settle/internal/pubkey"
	"dice-settle/internal/sigverify"
)

const resultKeyPrefix = "dice:result:"

type Wallet interface {
	Transferrer
	Transfer(tx *sql.Tx, from, to pubkey.Key, amount uint64) error
	Balance(account pubkey.Key) (uint64, error)
}

type Auditor interface {
	Log(actor string, action string, metadata string)
}

type Publisher interface {
	Publish(event string, payload interface{})
}

type Options struct {
	House      pubkey.Key
	MaxBet     uint64
	BetTimeout time.Duration
	Verifier   sigverify.Verifier
	Cache      cache.Cache
	ResultTTL  time.Duration
	Now        func() time.Time
}

type Service struct {
	db     *sql.DB
	wallet Wallet
	audit  Auditor
	bus    Publisher
	cache  cache.Cache

	facility    *sigverify.Facility
	binder      *Binder
	settler     *Settler
	risk        *RiskEngine
	rtp         *RTPController
	leaderboard *Leaderboard

	house     pubkey.Key
	timeout   time.Duration
	resultTTL time.Duration
	now       func() time.Time
}

func NewService(db *sql.DB, wallet Wallet, audit Auditor, bus Publisher, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BetTimeout <= 0 {
		opts.BetTimeout = 10 * time.Minute
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = 24 * time.Hour
	}

	return &Service{
		db:          db,
		wallet:      wallet,
		audit:       audit,
		bus:         bus,
		cache:       opts.Cache,
		facility:    sigverify.NewFacility(opts.Verifier),
		binder:      NewBinder(),
		settler:     NewSettler(wallet),
		risk:        NewRisk(opts.MaxBet),
		rtp:         NewRTP(),
		leaderboard: NewLeaderboard(),
		house:       opts.House,
		timeout:     opts.BetTimeout,
		resultTTL:   opts.ResultTTL,
		now:         opts.Now,
	}
}

func (s *Service) House() pubkey.Key {
	return s.house
}

// OpenVault creates the house vault record if it does not exist yet.
func (s *Service) OpenVault(ctx context.Context) (*Vault, error) {
	h, err := escrow.FindVault(s.house)
	if err != nil {
		return nil, err
	}
	addr, err := h.Address()
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO vaults(address, owner, bump, created_at)
	VALUES (?,?,?,?)
	`, addr, s.house, h.Bump, s.now().Unix())
	if err != nil {
		return nil, errors.Wrap(err, "insert vault")
	}

	vault, err := s.vaultByOwner(ctx, s.db, s.house)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Log.Info("vault opened", zap.Stringer("vault", vault.Address), zap.Uint8("bump", vault.Bump))
		s.bus.Publish(event.EventVaultOpened, vault)
	}
	return vault, nil
}

func (s *Service) Vault(ctx context.Context) (*Vault, error) {
	return s.vaultByOwner(ctx, s.db, s.house)
}

// FundVault moves house money from an account into the vault.
func (s *Service) FundVault(ctx context.Context, from pubkey.Key, amount uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	vault, err := s.vaultByOwner(ctx, tx, s.house)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := s.wallet.Transfer(tx, from, vault.Address, amount); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// PlaceBet escrows the wager in the vault and records the bet the house
// will sign.
func (s *Service) PlaceBet(ctx context.Context, req PlaceRequest) (*Bet, error) {
	if req.Player.IsZero() {
		return nil, ErrInvalidBet
	}
	if err := s.risk.Validate(req.Amount, req.Roll); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	vault, err := s.vaultByOwner(ctx, tx, s.house)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	addr, bump, err := escrow.BetAddress(vault.Address, req.Seed)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM bets WHERE address=?`, addr).Scan(&exists)
	if err == nil {
		tx.Rollback()
		return nil, ErrSeedInUse
	}
	if err != sql.ErrNoRows {
		tx.Rollback()
		return nil, errors.Wrap(err, "lookup bet")
	}

	if err := s.wallet.Transfer(tx, req.Player, vault.Address, req.Amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := s.now().Unix()
	bet := &Bet{
		Address:   addr,
		Vault:     vault.Address,
		Player:    req.Player,
		Seed:      req.Seed,
		Slot:      uint64(now),
		Amount:    req.Amount,
		Roll:      req.Roll,
		Bump:      bump,
		Status:    BetPending,
		CreatedAt: now,
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO bets(address, vault, player, seed, slot, amount, roll, bump, status, created_at)
	VALUES (?,?,?,?,?,?,?,?,?,?)
	`, bet.Address, bet.Vault, bet.Player, int64(bet.Seed), int64(bet.Slot), int64(bet.Amount),
		bet.Roll, bet.Bump, bet.Status, bet.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "insert bet")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit bet")
	}

	monitoring.BetsPlaced.Inc()
	s.bus.Publish(event.EventBetPlaced, bet)
	logger.Log.Info("bet placed",
		zap.Stringer("bet", bet.Address),
		zap.Stringer("player", bet.Player),
		zap.Uint64("amount", bet.Amount),
		zap.Uint8("roll", bet.Roll))

	return bet, nil
}

// Settle binds sig to the pending bet, derives the outcome and pays a win,
// all in one transaction. On any error the bet and balances are unchanged.
func (s *Service) Settle(ctx context.Context, address pubkey.Key, sig []byte, records []sigverify.Record) (*Result, error) {
	attempt := NewAttempt()
	log := logger.Log.With(zap.Stringer("bet", address))

	if err := s.facility.Execute(records); err != nil {
		s.step(attempt, StateVerifying)
		s.step(attempt, StateRejected)
		s.reject(address, attempt, err)
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	s.step(attempt, StateVerifying)

	bet, err := s.pendingBet(ctx, tx, address)
	if err != nil {
		s.step(attempt, StateRejected)
		tx.Rollback()
		s.reject(address, attempt, err)
		return nil, err
	}
	vault, err := s.vaultByAddress(ctx, tx, bet.Vault)
	if err != nil {
		s.step(attempt, StateRejected)
		tx.Rollback()
		s.reject(address, attempt, err)
		return nil, err
	}

	if err := s.binder.Verify(records, sig, bet, s.house); err != nil {
		s.step(attempt, StateRejected)
		tx.Rollback()
		s.reject(address, attempt, err)
		return nil, err
	}
	s.step(attempt, StateVerified)

	s.step(attempt, StateSettling)
	st, err := s.settler.Settle(tx, sig, bet, vault.Handle(), bet.Player)
	if err != nil {
		s.step(attempt, StateFailed)
		tx.Rollback()
		s.reject(address, attempt, err)
		return nil, err
	}

	now := s.now().Unix()
	if err := retireBet(ctx, tx, address, st, sig, now); err != nil {
		s.step(attempt, StateFailed)
		tx.Rollback()
		s.reject(address, attempt, err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.step(attempt, StateFailed)
		s.reject(address, attempt, err)
		return nil, errors.Wrap(err, "commit settlement")
	}

	final := StateSettledLoss
	if st.Win {
		final = StateSettledWin
	}
	s.step(attempt, final)

	result := &Result{
		Bet:        bet.Address,
		Player:     bet.Player,
		Roll:       bet.Roll,
		Outcome:    st.Outcome,
		Win:        st.Win,
		Amount:     bet.Amount,
		Payout:     st.Payout,
		Multiplier: Multiplier(bet.Roll),
		Signature:  hex.EncodeToString(sig),
		State:      attempt.State(),
		SettledAt:  now,
	}

	s.rtp.Record(bet.Amount, st.Payout)
	s.leaderboard.Record(bet.Player, bet.Amount, st.Payout)
	monitoring.Settlements.WithLabelValues(string(final)).Inc()
	if st.Win {
		monitoring.PayoutTotal.Add(float64(st.Payout))
	}
	s.bus.Publish(event.EventBetSettled, result)

	log.Info("bet settled",
		zap.Uint8("roll", bet.Roll),
		zap.Uint8("outcome", st.Outcome),
		zap.Bool("win", st.Win),
		zap.Uint64("payout", st.Payout))

	return result, nil
}

// RefundBet returns the wager of an expired pending bet to the player.
func (s *Service) RefundBet(ctx context.Context, address pubkey.Key) (*Bet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	bet, err := s.pendingBet(ctx, tx, address)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := s.now()
	if now.Before(time.Unix(int64(bet.Slot), 0).Add(s.timeout)) {
		tx.Rollback()
		return nil, ErrBetNotExpired
	}

	vault, err := s.vaultByAddress(ctx, tx, bet.Vault)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	t, err := vault.Handle().AuthorizeTransfer(bet.Player, bet.Amount)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrapf(ErrTransferFailed, "authorize: %v", err)
	}
	if err := s.wallet.Execute(tx, t); err != nil {
		tx.Rollback()
		return nil, errors.Wrapf(ErrTransferFailed, "execute: %v", err)
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE bets SET status=?, settled_at=? WHERE address=? AND status=?
	`, BetRefunded, now.Unix(), address, BetPending)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "refund bet")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit refund")
	}

	bet.Status = BetRefunded
	bet.SettledAt = now.Unix()

	monitoring.Refunds.Inc()
	s.bus.Publish(event.EventBetRefunded, bet)
	logger.Log.Info("bet refunded", zap.Stringer("bet", address), zap.Uint64("amount", bet.Amount))

	return bet, nil
}

// RefundExpired refunds every pending bet past its timeout.
func (s *Service) RefundExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.timeout).Unix()

	rows, err := s.db.QueryContext(ctx, `
	SELECT address FROM bets WHERE status=? AND slot <= ?
	`, BetPending, cutoff)
	if err != nil {
		return 0, err
	}

	var expired []pubkey.Key
	for rows.Next() {
		var k pubkey.Key
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return 0, err
		}
		expired = append(expired, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	refunded := 0
	for _, addr := range expired {
		if _, err := s.RefundBet(ctx, addr); err != nil {
			logger.Log.Warn("refund failed", zap.Stringer("bet", addr), zap.Error(err))
			continue
		}
		refunded++
	}
	return refunded, nil
}

func (s *Service) Bet(ctx context.Context, address pubkey.Key) (*Bet, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE address=?`, address)
	bet, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, ErrBetNotFound
	}
	return bet, err
}

// Result returns the settlement of a bet, reading through the cache.
func (s *Service) Result(ctx context.Context, address pubkey.Key) (*Result, error) {
	key := resultKeyPrefix + address.String()

	if v, err := s.cache.Get(ctx, key); err == nil {
		var r Result
		if err := json.Unmarshal([]byte(v), &r); err == nil {
			return &r, nil
		}
	}

	bet, err := s.Bet(ctx, address)
	if err != nil {
		return nil, err
	}
	if bet.Status != BetSettled {
		return nil, ErrBetNotFound
	}

	r := ResultFromBet(bet)
	s.CacheResult(ctx, r)
	return r, nil
}

func (s *Service) CacheResult(ctx context.Context, r *Result) {
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, resultKeyPrefix+r.Bet.String(), string(b), s.resultTTL); err != nil {
		logger.Log.Warn("cache result failed", zap.Stringer("bet", r.Bet), zap.Error(err))
	}
}

func ResultFromBet(bet *Bet) *Result {
	state := StateSettledLoss
	if bet.Payout > 0 {
		state = StateSettledWin
	}
	return &Result{
		Bet:        bet.Address,
		Player:     bet.Player,
		Roll:       bet.Roll,
		Outcome:    bet.Outcome,
		Win:        bet.Payout > 0,
		Amount:     bet.Amount,
		Payout:     bet.Payout,
		Multiplier: Multiplier(bet.Roll),
		Signature:  bet.Signature,
		State:      state,
		SettledAt:  bet.SettledAt,
	}
}

func (s *Service) RTP() RTPSnapshot {
	return s.rtp.Snapshot()
}

func (s *Service) Leaderboard(n int) []LeaderboardEntry {
	return s.leaderboard.Top(n)
}

func (s *Service) step(a *Attempt, next State) {
	if err := a.Advance(next); err != nil {
		logger.Log.DPanic("settlement state", zap.Error(err))
	}
}

// reject records a failed attempt. It must run after the transaction is
// rolled back so the audit write gets a connection.
func (s *Service) reject(address pubkey.Key, a *Attempt, err error) {
	monitoring.Settlements.WithLabelValues(string(a.State())).Inc()
	s.audit.Log(address.String(), "settle_"+string(a.State()), err.Error())
	s.bus.Publish(event.EventSettlementRejected, map[string]interface{}{
		"bet":   address,
		"state": a.State(),
		"error": err.Error(),
	})
	logger.Log.Warn("settlement aborted",
		zap.Stringer("bet", address),
		zap.String("state", string(a.State())),
		zap.Error(err))
}
