package battleship

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type RollbackPolicy uint8

const (
	// Undo exactly the last record.
	RollbackRecord RollbackPolicy = iota
	// Undo the computer reply together with the shot it answered.
	RollbackTurn
)

func ParseRollbackPolicy(s string) (RollbackPolicy, error) {
	switch s {
	case "", "record":
		return RollbackRecord, nil
	case "turn":
		return RollbackTurn, nil
	default:
		return 0, fmt.Errorf("unknown rollback policy: %q", s)
	}
}

const createMatchAttempts = 3

type MatchOptions struct {
	GridSize   int
	Difficulty Difficulty
	PlayerOne  string
	// Ignored for solo matches. May be left empty for a multiplayer match
	// and filled later with JoinMatch.
	PlayerTwo string
}

type ShotOutcome struct {
	Target Coordinates `json:"target"`
	Hit    bool        `json:"hit"`
	Sunk   bool        `json:"sunk"`
	Won    bool        `json:"won"`
}

type AttackOutcome struct {
	Player ShotOutcome `json:"player"`
	// Set only for solo matches, when the computer replied.
	Computer *ShotOutcome `json:"computer,omitempty"`
}

type RollbackOutcome struct {
	RestoredPlayer   *Coordinates `json:"restored_player,omitempty"`
	RestoredComputer *Coordinates `json:"restored_computer,omitempty"`
}

type GameManager interface {
	CreateMatch(ctx context.Context, opts MatchOptions) (string, error)
	JoinMatch(ctx context.Context, matchId, playerId string) error
	PlaceFleet(ctx context.Context, matchId, playerId string, fleet Fleet) error
	Attack(ctx context.Context, matchId, playerId string, target Coordinates) (AttackOutcome, error)
	Rollback(ctx context.Context, matchId string) (RollbackOutcome, error)
	GetMatch(ctx context.Context, matchId string) (*Match, error)
	DeleteMatch(ctx context.Context, matchId string) error
	Leaderboard(ctx context.Context) ([]PlayerStats, error)
}

// MatchManager is the only writer of match state. Mutations of one match
// are serialized by a per-match lock held across the store round trip.
type MatchManager struct {
	store          MatchStore
	rng            *rand.Rand
	rollbackPolicy RollbackPolicy

	locks   map[string]*sync.Mutex
	locksMu sync.Mutex
}

var _ GameManager = (*MatchManager)(nil)

type Option func(*MatchManager) error

func NewMatchManager(store MatchStore, optFuncs ...Option) *MatchManager {
	mm := MatchManager{
		store: store,
		locks: make(map[string]*sync.Mutex, 10),
	}
	for _, opt := range optFuncs {
		if err := opt(&mm); err != nil {
			panic(err)
		}
	}
	if mm.rng == nil {
		mm.rng = rand.New(&lockedSource{src: rand.NewPCG(rand.Uint64(), rand.Uint64())})
	}
	return &mm
}

func WithSeed(seed uint64) Option {
	return func(mm *MatchManager) error {
		mm.rng = rand.New(&lockedSource{src: rand.NewPCG(seed, seed)})
		return nil
	}
}

func WithRollbackPolicy(policy RollbackPolicy) Option {
	return func(mm *MatchManager) error {
		if policy != RollbackRecord && policy != RollbackTurn {
			return fmt.Errorf("invalid rollback policy: %d", policy)
		}
		mm.rollbackPolicy = policy
		return nil
	}
}

// rand.Rand keeps no state of its own, so guarding the source is enough
// to share one generator across matches.
type lockedSource struct {
	src rand.Source
	mu  sync.Mutex
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (mm *MatchManager) lockMatch(matchId string) func() {
	mm.locksMu.Lock()
	l, prs := mm.locks[matchId]
	if !prs {
		l = &sync.Mutex{}
		mm.locks[matchId] = l
	}
	mm.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

func (mm *MatchManager) forgetLock(matchId string) {
	mm.locksMu.Lock()
	delete(mm.locks, matchId)
	mm.locksMu.Unlock()
}

// ForgetMatch drops the lock kept for a match the store no longer holds,
// e.g. one removed by MemoryMatchStore.CleanupPeriodically.
func (mm *MatchManager) ForgetMatch(matchId string) {
	mm.forgetLock(matchId)
}

// loadMatch fetches a match and refuses to work on a corrupt one.
func (mm *MatchManager) loadMatch(ctx context.Context, matchId string) (*Match, error) {
	match, err := mm.store.Get(ctx, matchId)
	if err != nil {
		if errors.Is(err, cerr.ErrNotFound) {
			mm.forgetLock(matchId)
		}
		return nil, err
	}
	if err := match.checkInvariants(); err != nil {
		log.Error("stored match is corrupt", "match", matchId, "err", err)
		return nil, err
	}
	return match, nil
}

func (mm *MatchManager) CreateMatch(ctx context.Context, opts MatchOptions) (string, error) {
	if opts.GridSize == 0 {
		opts.GridSize = GridSizeDefault
	}
	if !IsGridSizeValid(opts.GridSize) {
		return "", cerr.ErrInvalidGridSize(opts.GridSize, GridSizeMin, GridSizeMax)
	}
	if !opts.Difficulty.IsValid() {
		return "", cerr.ErrInvalidMatchDifficulty(int(opts.Difficulty))
	}
	if opts.PlayerOne == "" || opts.PlayerOne == ComputerPlayerID {
		return "", fmt.Errorf("%w: invalid player one id: %q", cerr.ErrInvalidOption, opts.PlayerOne)
	}
	if opts.PlayerTwo == opts.PlayerOne {
		return "", fmt.Errorf("%w: players must differ", cerr.ErrInvalidOption)
	}
	if !opts.Difficulty.IsSolo() && opts.PlayerTwo == ComputerPlayerID {
		return "", fmt.Errorf("%w: invalid player two id: %q", cerr.ErrInvalidOption, opts.PlayerTwo)
	}

	var match *Match
	for attempt := 1; ; attempt++ {
		match = newMatch(opts.GridSize, opts.Difficulty, opts.PlayerOne, opts.PlayerTwo)
		if opts.Difficulty.IsSolo() {
			fleet, err := RandomFleet(match.GridSize, mm.rng)
			if err != nil {
				return "", err
			}
			match.Players[1].Fleet = fleet
		}

		err := mm.store.Add(ctx, match)
		if err == nil {
			break
		}
		if !errors.Is(err, cerr.ErrAlreadyExists) || attempt == createMatchAttempts {
			return "", err
		}
		log.Warn("match id collision, retrying", "match", match.ID, "attempt", attempt)
	}
	log.Info("match created", "match", match.ID, "grid", match.GridSize, "difficulty", match.Difficulty)
	return match.ID, nil
}

func (mm *MatchManager) JoinMatch(ctx context.Context, matchId, playerId string) error {
	unlock := mm.lockMatch(matchId)
	defer unlock()

	match, err := mm.loadMatch(ctx, matchId)
	if err != nil {
		return err
	}
	if !match.Multiplayer {
		return fmt.Errorf("%w: match %s is a solo match", cerr.ErrInvalidOption, matchId)
	}
	if _, err := match.FindPlayer(playerId); err == nil {
		return nil
	}
	if playerId == "" || playerId == ComputerPlayerID {
		return fmt.Errorf("%w: invalid player id: %q", cerr.ErrInvalidOption, playerId)
	}
	if match.Players[1].ID != "" {
		return cerr.ErrSeatTaken(matchId)
	}

	match.Players[1] = NewPlayer(playerId)
	if err := mm.store.Update(ctx, match); err != nil {
		return err
	}
	log.Info("player joined match", "match", matchId, "player", playerId)
	return nil
}

func (mm *MatchManager) PlaceFleet(ctx context.Context, matchId, playerId string, fleet Fleet) error {
	unlock := mm.lockMatch(matchId)
	defer unlock()

	match, err := mm.loadMatch(ctx, matchId)
	if err != nil {
		return err
	}
	player, err := match.FindPlayer(playerId)
	if err != nil {
		return err
	}
	if player.IsReady() {
		return cerr.ErrFleetAlreadyPlaced(playerId)
	}

	fleet = fleet.Normalize()
	for i := range fleet {
		for j := range fleet[i].Coordinates {
			fleet[i].Coordinates[j].Hit = false
		}
	}
	if err := ValidateFleet(fleet, match.GridSize); err != nil {
		return err
	}

	player.Fleet = fleet
	if err := mm.store.Update(ctx, match); err != nil {
		return err
	}
	log.Info("fleet placed", "match", matchId, "player", playerId, "state", match.State())
	return nil
}

// fire resolves one shot of shooterId against the opponent and appends it
// to the history.
func (mm *MatchManager) fire(match *Match, shooterId string, target Coordinates) (ShotOutcome, error) {
	shooter, err := match.FindPlayer(shooterId)
	if err != nil {
		return ShotOutcome{}, err
	}
	defender, err := match.Opponent(shooterId)
	if err != nil {
		return ShotOutcome{}, err
	}

	hit, sunk, updated := defender.Fleet.Resolve(target)
	defender.Fleet = updated
	match.History = append(match.History, AttackRecord{
		Coordinates: target,
		PlayerID:    shooterId,
		Hit:         hit,
		Sunk:        sunk,
	})

	outcome := ShotOutcome{Target: target, Hit: hit, Sunk: sunk}
	if hit && updated.AllSunk() {
		shooter.HasWon = true
		outcome.Won = true
	}
	return outcome, nil
}

// Attack fires playerId's shot and, in solo matches, the computer's reply.
// Both are applied to a copy and persisted together.
func (mm *MatchManager) Attack(ctx context.Context, matchId, playerId string, target Coordinates) (AttackOutcome, error) {
	unlock := mm.lockMatch(matchId)
	defer unlock()

	match, err := mm.loadMatch(ctx, matchId)
	if err != nil {
		return AttackOutcome{}, err
	}

	switch match.State() {
	case MatchStateFinished:
		return AttackOutcome{}, cerr.ErrMatchFinished(matchId)
	case MatchStateAwaitingFleets:
		return AttackOutcome{}, cerr.ErrMatchNotStarted(matchId)
	}
	if err := match.CanMove(playerId); err != nil {
		return AttackOutcome{}, err
	}

	target = NewCoordinates(target.X, target.Y)
	if !target.InBounds(match.GridSize) {
		return AttackOutcome{}, cerr.ErrXorYOutOfGridBound(target.X, target.Y)
	}

	var outcome AttackOutcome
	if outcome.Player, err = mm.fire(match, playerId, target); err != nil {
		return AttackOutcome{}, err
	}

	if !match.Multiplayer && !outcome.Player.Won {
		reply, err := mm.computerTurn(match)
		if err != nil {
			return AttackOutcome{}, err
		}
		outcome.Computer = &reply
	}

	if err := mm.store.Update(ctx, match); err != nil {
		return AttackOutcome{}, err
	}

	mm.recordCounters(ctx, match, playerId, outcome.Player)
	if outcome.Computer != nil {
		mm.recordCounters(ctx, match, ComputerPlayerID, *outcome.Computer)
	}
	if match.IsFinished() {
		log.Info("match finished", "match", matchId, "winner", winnerOf(match))
	}
	return outcome, nil
}

func (mm *MatchManager) computerTurn(match *Match) (ShotOutcome, error) {
	strategy, ok := match.Difficulty.Strategy()
	if !ok {
		return ShotOutcome{}, cerr.ErrCorruptMatch(match.ID, cerr.ErrInvalidMatchDifficulty(int(match.Difficulty)))
	}
	if err := match.CanMove(ComputerPlayerID); err != nil {
		return ShotOutcome{}, cerr.ErrCorruptMatch(match.ID, err)
	}

	target, err := strategy.SelectTarget(match, mm.rng)
	if err != nil {
		return ShotOutcome{}, err
	}
	return mm.fire(match, ComputerPlayerID, target)
}

// Counter failures never undo a persisted move; they are only logged.
func (mm *MatchManager) recordCounters(ctx context.Context, match *Match, shooterId string, shot ShotOutcome) {
	if shooterId != ComputerPlayerID && shot.Sunk {
		if err := mm.store.RecordShipSunk(ctx, shooterId); err != nil {
			log.Error("failed to record sunk ship", "player", shooterId, "err", err)
		}
	}
	if !shot.Won {
		return
	}

	loser, _ := match.Opponent(shooterId)
	if shooterId != ComputerPlayerID {
		if err := mm.store.RecordWin(ctx, shooterId); err != nil {
			log.Error("failed to record win", "player", shooterId, "err", err)
		}
	}
	if loser != nil && !loser.IsComputer() {
		if err := mm.store.RecordLoss(ctx, loser.ID); err != nil {
			log.Error("failed to record loss", "player", loser.ID, "err", err)
		}
	}
}

// Rollback undoes the tail of a solo match history, restoring the hit
// flag of every cell it had marked.
func (mm *MatchManager) Rollback(ctx context.Context, matchId string) (RollbackOutcome, error) {
	unlock := mm.lockMatch(matchId)
	defer unlock()

	match, err := mm.loadMatch(ctx, matchId)
	if err != nil {
		return RollbackOutcome{}, err
	}
	if match.Multiplayer {
		return RollbackOutcome{}, cerr.ErrRollbackUnavailable(matchId, "multiplayer match")
	}
	if match.IsFinished() {
		return RollbackOutcome{}, cerr.ErrRollbackUnavailable(matchId, "match finished")
	}
	if len(match.History) == 0 {
		return RollbackOutcome{}, cerr.ErrRollbackUnavailable(matchId, "empty history")
	}

	var outcome RollbackOutcome
	last, err := undoLast(match)
	if err != nil {
		return RollbackOutcome{}, err
	}
	outcome.set(last)

	if mm.rollbackPolicy == RollbackTurn && last.PlayerID == ComputerPlayerID && len(match.History) > 0 {
		prev, err := undoLast(match)
		if err != nil {
			return RollbackOutcome{}, err
		}
		outcome.set(prev)
	}

	if err := mm.store.Update(ctx, match); err != nil {
		return RollbackOutcome{}, err
	}
	log.Info("rolled back", "match", matchId, "history", len(match.History))
	return outcome, nil
}

func (ro *RollbackOutcome) set(r AttackRecord) {
	c := NewCoordinates(r.Coordinates.X, r.Coordinates.Y)
	if r.PlayerID == ComputerPlayerID {
		ro.RestoredComputer = &c
	} else {
		ro.RestoredPlayer = &c
	}
}

// Only a record that was a hit marked a cell; misses and repeat shots
// leave the defender's fleet untouched.
func undoLast(match *Match) (AttackRecord, error) {
	last := match.History[len(match.History)-1]
	match.History = match.History[:len(match.History)-1]

	defender, err := match.Opponent(last.PlayerID)
	if err != nil {
		return AttackRecord{}, cerr.ErrCorruptMatch(match.ID, err)
	}
	if last.Hit && !defender.Fleet.Unmark(last.Coordinates) {
		return AttackRecord{}, cerr.ErrCorruptMatch(match.ID, fmt.Errorf("recorded hit at x: %d y: %d is not marked", last.Coordinates.X, last.Coordinates.Y))
	}
	return last, nil
}

func (mm *MatchManager) GetMatch(ctx context.Context, matchId string) (*Match, error) {
	return mm.store.Get(ctx, matchId)
}

func (mm *MatchManager) DeleteMatch(ctx context.Context, matchId string) error {
	unlock := mm.lockMatch(matchId)
	defer unlock()
	defer mm.forgetLock(matchId)

	if err := mm.store.Delete(ctx, matchId); err != nil {
		return err
	}
	log.Info("match deleted", "match", matchId)
	return nil
}

func (mm *MatchManager) Leaderboard(ctx context.Context) ([]PlayerStats, error) {
	return mm.store.Leaderboard(ctx)
}

func winnerOf(match *Match) string {
	for _, p := range match.Players {
		if p.HasWon {
			return p.ID
		}
	}
	return ""
}
