package battleship

import (
	"math/rand/v2"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

const (
	// Random candidates drawn by the medium tier before it resamples.
	mediumCandidatePool = 5
	// Per-cell budget for random sampling before falling back to a sweep.
	samplesPerCell = 4
)

// TargetingStrategy picks the computer's next shot from the match history.
// The returned cell is in bounds and was never fired on by the computer.
type TargetingStrategy interface {
	SelectTarget(m *Match, rng *rand.Rand) (Coordinates, error)
}

type (
	EasyStrategy   struct{}
	MediumStrategy struct{}
	HardStrategy   struct{}
)

var _ TargetingStrategy = EasyStrategy{}
var _ TargetingStrategy = MediumStrategy{}
var _ TargetingStrategy = HardStrategy{}

// Strategy returns the targeting strategy bound to a solo tier.
func (d Difficulty) Strategy() (TargetingStrategy, bool) {
	switch d {
	case DifficultyEasy:
		return EasyStrategy{}, true
	case DifficultyMedium:
		return MediumStrategy{}, true
	case DifficultyHard:
		return HardStrategy{}, true
	default:
		return nil, false
	}
}

// shotBoard is the computer's view of its own shots.
type shotBoard struct {
	gridSize int
	fired    map[cell]struct{}
	lastHit  *Coordinates
}

func newShotBoard(m *Match) shotBoard {
	shots := m.ShotsBy(ComputerPlayerID)
	b := shotBoard{gridSize: m.GridSize, fired: make(map[cell]struct{}, len(shots))}
	for i, r := range shots {
		b.fired[r.Coordinates.key()] = struct{}{}
		if r.Hit {
			c := shots[i].Coordinates
			b.lastHit = &c
		}
	}
	return b
}

func (b shotBoard) isLegal(c Coordinates) bool {
	if !c.InBounds(b.gridSize) {
		return false
	}
	_, fired := b.fired[c.key()]
	return !fired
}

func (b shotBoard) exhausted() bool {
	return len(b.fired) >= b.gridSize*b.gridSize
}

func (b shotBoard) randomCell(rng *rand.Rand) Coordinates {
	return NewCoordinates(rng.IntN(b.gridSize), rng.IntN(b.gridSize))
}

// First legal orthogonal neighbour of the last hit.
func (b shotBoard) neighbourTarget() (Coordinates, bool) {
	if b.lastHit == nil {
		return Coordinates{}, false
	}
	for _, n := range b.lastHit.Neighbours() {
		if b.isLegal(n) {
			return n, true
		}
	}
	return Coordinates{}, false
}

// Resamples until a legal cell is drawn. The attempt budget is bounded;
// once spent, a row-major sweep takes the first unfired cell.
func (b shotBoard) randomTarget(rng *rand.Rand) (Coordinates, error) {
	if b.exhausted() {
		return Coordinates{}, cerr.ErrNoTargets(b.gridSize)
	}
	for attempt := 0; attempt < samplesPerCell*b.gridSize*b.gridSize; attempt++ {
		if c := b.randomCell(rng); b.isLegal(c) {
			return c, nil
		}
	}
	return b.sweep(func(Coordinates) bool { return true })
}

func (b shotBoard) sweep(include func(Coordinates) bool) (Coordinates, error) {
	for y := 0; y < b.gridSize; y++ {
		for x := 0; x < b.gridSize; x++ {
			c := NewCoordinates(x, y)
			if include(c) && b.isLegal(c) {
				return c, nil
			}
		}
	}
	return Coordinates{}, cerr.ErrNoTargets(b.gridSize)
}

func (EasyStrategy) SelectTarget(m *Match, rng *rand.Rand) (Coordinates, error) {
	return newShotBoard(m).randomTarget(rng)
}

// Hunt-then-target: chase the last hit, otherwise draw a small pool of
// random cells and keep the first legal one.
func (MediumStrategy) SelectTarget(m *Match, rng *rand.Rand) (Coordinates, error) {
	b := newShotBoard(m)
	if c, ok := b.neighbourTarget(); ok {
		return c, nil
	}
	if b.exhausted() {
		return Coordinates{}, cerr.ErrNoTargets(b.gridSize)
	}

	for i := 0; i < mediumCandidatePool; i++ {
		if c := b.randomCell(rng); b.isLegal(c) {
			return c, nil
		}
	}
	return b.randomTarget(rng)
}

// Like medium, but searches on the checkerboard parity, which meets every
// ship of length two or more, before going random.
func (HardStrategy) SelectTarget(m *Match, rng *rand.Rand) (Coordinates, error) {
	b := newShotBoard(m)
	if c, ok := b.neighbourTarget(); ok {
		return c, nil
	}
	if c, err := b.sweep(isCheckerboardCell); err == nil {
		return c, nil
	}
	return b.randomTarget(rng)
}

func isCheckerboardCell(c Coordinates) bool {
	return (c.X+c.Y)%2 == 0
}
