package battleship

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// soloMatch returns a started solo match where the human plays testFleet.
func soloMatch(gridSize int, difficulty Difficulty) *Match {
	m := newMatch(gridSize, difficulty, hostId, "")
	m.Players[0].Fleet = testFleet()
	m.Players[1].Fleet = testFleet()
	return m
}

// computerFires applies a computer shot the way the manager does, with a
// human record in between so the history keeps alternating.
func computerFires(m *Match, target Coordinates) {
	m.History = append(m.History, AttackRecord{Coordinates: NewCoordinates(0, 0), PlayerID: hostId})

	hit, sunk, updated := m.Players[0].Fleet.Resolve(target)
	m.Players[0].Fleet = updated
	m.History = append(m.History, AttackRecord{Coordinates: target, PlayerID: ComputerPlayerID, Hit: hit, Sunk: sunk})
}

func TestStrategyPerDifficulty(t *testing.T) {
	_, ok := DifficultyNone.Strategy()
	require.False(t, ok)
	_, ok = Difficulty(9).Strategy()
	require.False(t, ok)

	for d, want := range map[Difficulty]TargetingStrategy{
		DifficultyEasy:   EasyStrategy{},
		DifficultyMedium: MediumStrategy{},
		DifficultyHard:   HardStrategy{},
	} {
		got, ok := d.Strategy()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestTargetingNeverRepeats(t *testing.T) {
	const gridSize = 6

	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		t.Run(d.String(), func(t *testing.T) {
			strategy, _ := d.Strategy()
			m := soloMatch(gridSize, d)
			rng := newTestRand(uint64(d))
			seen := make(map[cell]struct{}, gridSize*gridSize)

			for i := 0; i < gridSize*gridSize; i++ {
				target, err := strategy.SelectTarget(m, rng)
				require.NoError(t, err)
				require.True(t, target.InBounds(gridSize), "target: %+v", target)

				_, repeated := seen[target.key()]
				require.False(t, repeated, "target fired twice: %+v", target)
				seen[target.key()] = struct{}{}

				computerFires(m, target)
			}

			_, err := strategy.SelectTarget(m, rng)
			require.ErrorIs(t, err, cerr.ErrNoTargetsRemaining)
		})
	}
}

func TestTargetingChasesLastHit(t *testing.T) {
	for _, strategy := range []TargetingStrategy{MediumStrategy{}, HardStrategy{}} {
		m := soloMatch(10, DifficultyMedium)
		rng := newTestRand(3)

		// (4,1) hits the battleship standing on x=4.
		computerFires(m, NewCoordinates(4, 1))
		target, err := strategy.SelectTarget(m, rng)
		require.NoError(t, err)
		require.Equal(t, NewCoordinates(3, 1), target, "left neighbour comes first")

		computerFires(m, target)
		target, err = strategy.SelectTarget(m, rng)
		require.NoError(t, err)
		require.Equal(t, NewCoordinates(5, 1), target, "a miss keeps the last hit as anchor")

		computerFires(m, target)
		target, err = strategy.SelectTarget(m, rng)
		require.NoError(t, err)
		require.Equal(t, NewCoordinates(4, 0), target)

		// The new hit at (4,0) becomes the anchor; (3,0) is its first legal neighbour.
		computerFires(m, target)
		target, err = strategy.SelectTarget(m, rng)
		require.NoError(t, err)
		require.Equal(t, NewCoordinates(3, 0), target)
	}
}

func TestTargetingSkipsNeighboursOffTheGrid(t *testing.T) {
	m := soloMatch(10, DifficultyHard)
	computerFires(m, NewCoordinates(0, 0))

	target, err := HardStrategy{}.SelectTarget(m, newTestRand(1))
	require.NoError(t, err)
	require.Equal(t, NewCoordinates(1, 0), target)
}

func TestHardSearchesCheckerboardFirst(t *testing.T) {
	const gridSize = 5
	m := soloMatch(gridSize, DifficultyHard)
	// Nothing to hit, so every shot is a search shot.
	m.Players[0].Fleet = Fleet{}
	rng := newTestRand(11)

	checkerboardCells := (gridSize*gridSize + 1) / 2
	for i := 0; i < checkerboardCells; i++ {
		target, err := HardStrategy{}.SelectTarget(m, rng)
		require.NoError(t, err)
		require.True(t, isCheckerboardCell(target), "shot %d at %+v", i, target)
		if i == 0 {
			require.Equal(t, NewCoordinates(0, 0), target)
		}
		computerFires(m, target)
	}

	target, err := HardStrategy{}.SelectTarget(m, rng)
	require.NoError(t, err)
	require.False(t, isCheckerboardCell(target))
}

func TestTargetingIgnoresHumanShots(t *testing.T) {
	m := soloMatch(5, DifficultyEasy)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			m.History = append(m.History, AttackRecord{Coordinates: NewCoordinates(x, y), PlayerID: hostId})
		}
	}

	target, err := EasyStrategy{}.SelectTarget(m, newTestRand(5))
	require.NoError(t, err)
	require.True(t, target.InBounds(5))
}
