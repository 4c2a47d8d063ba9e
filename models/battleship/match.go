package battleship

import (
	"slices"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type Difficulty uint8

const (
	DifficultyNone Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
)

func (d Difficulty) IsValid() bool {
	return d <= DifficultyHard
}

// Solo matches are the ones played against the computer.
func (d Difficulty) IsSolo() bool {
	return d != DifficultyNone && d.IsValid()
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyNone:
		return "none"
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "invalid"
	}
}

type MatchState uint8

const (
	MatchStateAwaitingFleets MatchState = iota
	MatchStateInProgress
	MatchStateFinished
)

func (s MatchState) String() string {
	switch s {
	case MatchStateAwaitingFleets:
		return "awaiting_fleets"
	case MatchStateInProgress:
		return "in_progress"
	default:
		return "finished"
	}
}

type AttackRecord struct {
	Coordinates Coordinates `json:"coordinates"`
	PlayerID    string      `json:"player_id"`
	Hit         bool        `json:"hit"`
	Sunk        bool        `json:"sunk"`
}

type Match struct {
	ID          string         `json:"id"`
	GridSize    int            `json:"grid_size"`
	Difficulty  Difficulty     `json:"difficulty"`
	Players     [2]Player      `json:"players"`
	History     []AttackRecord `json:"history"`
	Multiplayer bool           `json:"multiplayer"`
	CreatedAt   time.Time      `json:"created_at"`
}

func newMatch(gridSize int, difficulty Difficulty, playerOne, playerTwo string) *Match {
	m := &Match{
		ID:          uuid.NewString(),
		GridSize:    gridSize,
		Difficulty:  difficulty,
		Players:     [2]Player{NewPlayer(playerOne), NewPlayer(playerTwo)},
		History:     make([]AttackRecord, 0, gridSize*gridSize),
		Multiplayer: !difficulty.IsSolo(),
		CreatedAt:   time.Now().UTC(),
	}
	if difficulty.IsSolo() {
		m.Players[1] = NewPlayer(ComputerPlayerID)
	}
	return m
}

func (m *Match) State() MatchState {
	if m.Players[0].HasWon || m.Players[1].HasWon {
		return MatchStateFinished
	}
	if m.Players[0].IsReady() && m.Players[1].IsReady() {
		return MatchStateInProgress
	}
	return MatchStateAwaitingFleets
}

func (m *Match) IsFinished() bool {
	return m.State() == MatchStateFinished
}

func (m *Match) playerIndex(playerId string) (int, bool) {
	if playerId == "" {
		return -1, false
	}
	for i := range m.Players {
		if m.Players[i].ID == playerId {
			return i, true
		}
	}
	return -1, false
}

// FindPlayer returns a pointer into the match so callers may mutate it.
func (m *Match) FindPlayer(playerId string) (*Player, error) {
	i, ok := m.playerIndex(playerId)
	if !ok {
		return nil, cerr.ErrPlayerNotInMatch(m.ID, playerId)
	}
	return &m.Players[i], nil
}

func (m *Match) Opponent(playerId string) (*Player, error) {
	i, ok := m.playerIndex(playerId)
	if !ok {
		return nil, cerr.ErrPlayerNotInMatch(m.ID, playerId)
	}
	return &m.Players[1-i], nil
}

// CanMove decides from the history alone whether playerId may fire now.
// Player one opens; afterwards the author of the last record waits.
func (m *Match) CanMove(playerId string) error {
	if _, ok := m.playerIndex(playerId); !ok {
		return cerr.ErrPlayerNotInMatch(m.ID, playerId)
	}
	if len(m.History) == 0 {
		if m.Players[0].ID != playerId {
			return cerr.ErrNotPlayerTurn(playerId)
		}
		return nil
	}
	if m.History[len(m.History)-1].PlayerID == playerId {
		return cerr.ErrNotPlayerTurn(playerId)
	}
	return nil
}

// Records fired by playerId, oldest first.
func (m *Match) ShotsBy(playerId string) []AttackRecord {
	shots := make([]AttackRecord, 0, len(m.History)/2+1)
	for _, r := range m.History {
		if r.PlayerID == playerId {
			shots = append(shots, r)
		}
	}
	return shots
}

func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	out := *m
	out.Players = [2]Player{m.Players[0].clone(), m.Players[1].clone()}
	out.History = slices.Clone(m.History)
	if out.History == nil {
		out.History = []AttackRecord{}
	}
	return &out
}

// checkInvariants reports stored state the engine could never have
// produced: a placed fleet that is not legal.
func (m *Match) checkInvariants() error {
	if !IsGridSizeValid(m.GridSize) {
		return cerr.ErrCorruptMatch(m.ID, cerr.ErrInvalidGridSize(m.GridSize, GridSizeMin, GridSizeMax))
	}
	for _, p := range m.Players {
		if !p.IsReady() {
			continue
		}
		if err := ValidateFleet(p.Fleet, m.GridSize); err != nil {
			return cerr.ErrCorruptMatch(m.ID, err)
		}
	}
	return nil
}
