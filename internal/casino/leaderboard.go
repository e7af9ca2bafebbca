package casino

import (
	"sort"
	"sync"

	"dice-settle/internal/pubkey"
)

type LeaderboardEntry struct {
	Player pubkey.Key `json:"player"`
	Profit int64      `json:"profit"`
}

type Leaderboard struct {
	data map[pubkey.Key]int64
	mu   sync.Mutex
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		data: make(map[pubkey.Key]int64),
	}
}

// Record adds payout - wager to the player's running profit.
func (l *Leaderboard) Record(player pubkey.Key, wager, payout uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.data[player] += int64(payout) - int64(wager)
}

func (l *Leaderboard) Top(n int) []LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]LeaderboardEntry, 0, len(l.data))

	for player, profit := range l.data {
		entries = append(entries, LeaderboardEntry{
			Player: player,
			Profit: profit,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Profit == entries[j].Profit {
			return entries[i].Player.String() < entries[j].Player.String()
		}
		return entries[i].Profit > entries[j].Profit
	})

	if len(entries) > n {
		return entries[:n]
	}

	return entries
}
