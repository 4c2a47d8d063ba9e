package battleship

import (
	"slices"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type Fleet []Ship

// ValidateFleet proves a placement is legal for a grid of gridSize.
// It never mutates the fleet.
func ValidateFleet(fleet Fleet, gridSize int) error {
	if len(fleet) != ShipsPerFleet {
		return cerr.NewValidationError(cerr.WrongShipCount, "fleet must have %d ships, got: %d", ShipsPerFleet, len(fleet))
	}

	lengths := make([]int, 0, len(fleet))
	for _, sh := range fleet {
		if err := sh.validateSize(); err != nil {
			return err
		}
		lengths = append(lengths, len(sh.Coordinates))
	}
	slices.Sort(lengths)
	slices.Reverse(lengths)
	if !slices.Equal(lengths, FleetShipLengths[:]) {
		return cerr.NewValidationError(cerr.InvalidShipSize, "fleet ship lengths must be %v, got: %v", FleetShipLengths, lengths)
	}

	for _, sh := range fleet {
		for _, c := range sh.Coordinates {
			if !c.InBounds(gridSize) {
				return cerr.NewValidationError(cerr.OutOfBounds, "x: %d\ty: %d\tgrid size: %d", c.X, c.Y, gridSize)
			}
		}
	}

	occupied := make(map[cell]struct{}, OccupiedPerFleet)
	for _, sh := range fleet {
		for _, c := range sh.Coordinates {
			if _, taken := occupied[c.key()]; taken {
				return cerr.NewValidationError(cerr.Overlap, "x: %d\ty: %d is occupied more than once", c.X, c.Y)
			}
			occupied[c.key()] = struct{}{}
		}
	}

	for _, sh := range fleet {
		if !sh.isStraight() {
			return cerr.NewValidationError(cerr.NotStraight, "%s is not a contiguous line", sh.Class)
		}
	}
	return nil
}

// Resolve fires at target. The receiver is left untouched; the marked
// fleet is returned. Firing at a cell that was already hit is a miss.
func (f Fleet) Resolve(target Coordinates) (hit, sunk bool, updated Fleet) {
	updated = f.Clone()
	for i := range updated {
		for j, c := range updated[i].Coordinates {
			if c.SameCell(target) && !c.Hit {
				updated[i].Coordinates[j].Hit = true
				return true, updated[i].IsSunk(), updated
			}
		}
	}
	return false, false, updated
}

// Unmark clears the hit flag at target, reporting whether a cell changed.
func (f Fleet) Unmark(target Coordinates) bool {
	for i := range f {
		for j, c := range f[i].Coordinates {
			if c.SameCell(target) && c.Hit {
				f[i].Coordinates[j].Hit = false
				return true
			}
		}
	}
	return false
}

func (f Fleet) AllSunk() bool {
	if len(f) == 0 {
		return false
	}
	for _, sh := range f {
		if !sh.IsSunk() {
			return false
		}
	}
	return true
}

func (f Fleet) SunkCount() int {
	var n int
	for _, sh := range f {
		if sh.IsSunk() {
			n++
		}
	}
	return n
}

func (f Fleet) Clone() Fleet {
	if f == nil {
		return nil
	}
	out := make(Fleet, len(f))
	for i, sh := range f {
		out[i] = sh.clone()
	}
	return out
}

// Normalize derives every ship class from its length.
func (f Fleet) Normalize() Fleet {
	out := f.Clone()
	for i := range out {
		class, _ := ClassForLength(len(out[i].Coordinates))
		out[i].Class = class
	}
	return out
}
