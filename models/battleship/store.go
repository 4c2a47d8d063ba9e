package battleship

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

// MatchStore persists matches for the MatchManager. Implementations must
// hand out copies: mutating a *Match returned by Get has no effect until
// it is passed to Update.
type MatchStore interface {
	Add(ctx context.Context, match *Match) error
	Get(ctx context.Context, matchId string) (*Match, error)
	Update(ctx context.Context, match *Match) error
	Delete(ctx context.Context, matchId string) error

	// Leaderboard bookkeeping. The engine writes these and never reads
	// them back; Leaderboard only serves them to clients.
	RecordWin(ctx context.Context, playerId string) error
	RecordLoss(ctx context.Context, playerId string) error
	RecordShipSunk(ctx context.Context, playerId string) error
	Leaderboard(ctx context.Context) ([]PlayerStats, error)
}

type PlayerStats struct {
	PlayerID  string `json:"player_id"`
	Wins      int64  `json:"wins"`
	Losses    int64  `json:"losses"`
	ShipsSunk int64  `json:"ships_sunk"`
}

type storedMatch struct {
	match     *Match
	updatedAt time.Time
}

type MemoryMatchStore struct {
	matches map[string]storedMatch
	stats   map[string]*PlayerStats
	mu      sync.RWMutex
}

var _ MatchStore = (*MemoryMatchStore)(nil)

func NewMemoryMatchStore() *MemoryMatchStore {
	return &MemoryMatchStore{
		matches: make(map[string]storedMatch, 10),
		stats:   make(map[string]*PlayerStats),
	}
}

func (ms *MemoryMatchStore) Add(_ context.Context, match *Match) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, prs := ms.matches[match.ID]; prs {
		return cerr.ErrMatchExists(match.ID)
	}
	ms.matches[match.ID] = storedMatch{match: match.Clone(), updatedAt: time.Now()}
	return nil
}

func (ms *MemoryMatchStore) Get(_ context.Context, matchId string) (*Match, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	stored, prs := ms.matches[matchId]
	if !prs {
		return nil, cerr.ErrMatchNotExists(matchId)
	}
	return stored.match.Clone(), nil
}

func (ms *MemoryMatchStore) Update(_ context.Context, match *Match) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, prs := ms.matches[match.ID]; !prs {
		return cerr.ErrMatchNotExists(match.ID)
	}
	ms.matches[match.ID] = storedMatch{match: match.Clone(), updatedAt: time.Now()}
	return nil
}

func (ms *MemoryMatchStore) Delete(_ context.Context, matchId string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, prs := ms.matches[matchId]; !prs {
		return cerr.ErrMatchNotExists(matchId)
	}
	delete(ms.matches, matchId)
	return nil
}

func (ms *MemoryMatchStore) playerStats(playerId string) *PlayerStats {
	stats, prs := ms.stats[playerId]
	if !prs {
		stats = &PlayerStats{PlayerID: playerId}
		ms.stats[playerId] = stats
	}
	return stats
}

func (ms *MemoryMatchStore) RecordWin(_ context.Context, playerId string) error {
	ms.mu.Lock()
	ms.playerStats(playerId).Wins++
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryMatchStore) RecordLoss(_ context.Context, playerId string) error {
	ms.mu.Lock()
	ms.playerStats(playerId).Losses++
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryMatchStore) RecordShipSunk(_ context.Context, playerId string) error {
	ms.mu.Lock()
	ms.playerStats(playerId).ShipsSunk++
	ms.mu.Unlock()
	return nil
}

// Leaderboard lists players by wins, then by ships sunk.
func (ms *MemoryMatchStore) Leaderboard(_ context.Context) ([]PlayerStats, error) {
	ms.mu.RLock()
	board := make([]PlayerStats, 0, len(ms.stats))
	for _, s := range ms.stats {
		board = append(board, *s)
	}
	ms.mu.RUnlock()

	sort.Slice(board, func(i, j int) bool {
		if board[i].Wins != board[j].Wins {
			return board[i].Wins > board[j].Wins
		}
		if board[i].ShipsSunk != board[j].ShipsSunk {
			return board[i].ShipsSunk > board[j].ShipsSunk
		}
		return board[i].PlayerID < board[j].PlayerID
	})
	return board, nil
}

// Evict removes matches untouched for longer than maxAge and returns
// their ids.
func (ms *MemoryMatchStore) Evict(maxAge time.Duration) []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	toDelete := make([]string, 0, 5)
	for id, stored := range ms.matches {
		if time.Since(stored.updatedAt) > maxAge {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range toDelete {
		delete(ms.matches, id)
	}
	return toDelete
}

// To ensure abandoned matches do not pile up, the store evicts the ones
// idle for longer than maxAge every interval until ctx is done. onEvict,
// if set, is called with the id of every evicted match.
func (ms *MemoryMatchStore) CleanupPeriodically(ctx context.Context, interval, maxAge time.Duration, onEvict func(matchId string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range ms.Evict(maxAge) {
				log.Info("match evicted", "match", id)
				if onEvict != nil {
					onEvict(id)
				}
			}
		}
	}
}
