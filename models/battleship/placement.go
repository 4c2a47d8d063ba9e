package battleship

import (
	"fmt"
	"math/rand/v2"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

const (
	maxShipPlacementTries  = 200
	maxFleetPlacementTries = 500
)

// RandomFleet places the canonical fleet at random on a gridSize grid.
// Each ship gets a random start cell and orientation until it fits; a fleet
// that cannot be completed is discarded and started over.
func RandomFleet(gridSize int, rng *rand.Rand) (Fleet, error) {
	if !IsGridSizeValid(gridSize) {
		return nil, cerr.ErrInvalidGridSize(gridSize, GridSizeMin, GridSizeMax)
	}

	for try := 0; try < maxFleetPlacementTries; try++ {
		fleet, ok := tryRandomFleet(gridSize, rng)
		if !ok {
			continue
		}
		if err := ValidateFleet(fleet, gridSize); err != nil {
			return nil, fmt.Errorf("%w: random fleet rejected: %v", cerr.ErrInvariantViolation, err)
		}
		return fleet, nil
	}
	return nil, fmt.Errorf("%w: could not place a fleet on a %dx%d grid", cerr.ErrInvariantViolation, gridSize, gridSize)
}

func tryRandomFleet(gridSize int, rng *rand.Rand) (Fleet, bool) {
	fleet := make(Fleet, 0, ShipsPerFleet)
	occupied := make(map[cell]struct{}, OccupiedPerFleet)

	for _, length := range FleetShipLengths {
		placed := false
		for try := 0; try < maxShipPlacementTries && !placed; try++ {
			ship := NewShipAt(rng.IntN(gridSize), rng.IntN(gridSize), length, rng.IntN(2) == 0)
			if !fits(ship, gridSize, occupied) {
				continue
			}
			for _, c := range ship.Coordinates {
				occupied[c.key()] = struct{}{}
			}
			fleet = append(fleet, ship)
			placed = true
		}
		if !placed {
			return nil, false
		}
	}
	return fleet, true
}

func fits(ship Ship, gridSize int, occupied map[cell]struct{}) bool {
	for _, c := range ship.Coordinates {
		if !c.InBounds(gridSize) {
			return false
		}
		if _, taken := occupied[c.key()]; taken {
			return false
		}
	}
	return true
}
