package battleship

import (
	"slices"
	"sort"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type ShipClass string

const (
	ShipClassCarrier   ShipClass = "Carrier"
	ShipClassCruiser   ShipClass = "Cruiser"
	ShipClassDestroyer ShipClass = "Destroyer"
	ShipClassSubmarine ShipClass = "Submarine"
)

const (
	ShipsPerFleet    = 5
	OccupiedPerFleet = 17
)

// Canonical fleet composition, largest first. Random placement follows
// this order.
var FleetShipLengths = [ShipsPerFleet]int{5, 4, 3, 3, 2}

var shipClassLength = map[ShipClass]int{
	ShipClassCarrier:   5,
	ShipClassCruiser:   4,
	ShipClassDestroyer: 3,
	ShipClassSubmarine: 2,
}

// ClassForLength returns the class of a ship with the given length.
func ClassForLength(length int) (ShipClass, bool) {
	for class, l := range shipClassLength {
		if l == length {
			return class, true
		}
	}
	return "", false
}

func (sc ShipClass) Length() int {
	return shipClassLength[sc]
}

type Ship struct {
	Class       ShipClass     `json:"class"`
	Coordinates []Coordinates `json:"coordinates"`
}

func NewShip(coords ...Coordinates) Ship {
	class, _ := ClassForLength(len(coords))
	return Ship{Class: class, Coordinates: coords}
}

// Builds a ship of the given length starting at (x, y) growing
// right, or down when vertical.
func NewShipAt(x, y, length int, vertical bool) Ship {
	coords := make([]Coordinates, length)
	for i := 0; i < length; i++ {
		if vertical {
			coords[i] = NewCoordinates(x, y+i)
		} else {
			coords[i] = NewCoordinates(x+i, y)
		}
	}
	return NewShip(coords...)
}

func (sh Ship) IsSunk() bool {
	for _, c := range sh.Coordinates {
		if !c.Hit {
			return false
		}
	}
	return len(sh.Coordinates) > 0
}

func (sh Ship) clone() Ship {
	return Ship{Class: sh.Class, Coordinates: slices.Clone(sh.Coordinates)}
}

func (sh Ship) isStraight() bool {
	if len(sh.Coordinates) < 2 {
		return true
	}

	sameX, sameY := true, true
	for _, c := range sh.Coordinates[1:] {
		sameX = sameX && c.X == sh.Coordinates[0].X
		sameY = sameY && c.Y == sh.Coordinates[0].Y
	}
	if !sameX && !sameY {
		return false
	}

	axis := make([]int, len(sh.Coordinates))
	for i, c := range sh.Coordinates {
		if sameX {
			axis[i] = c.Y
		} else {
			axis[i] = c.X
		}
	}
	sort.Ints(axis)
	for i := 1; i < len(axis); i++ {
		if axis[i] != axis[i-1]+1 {
			return false
		}
	}
	return true
}

func (sh Ship) validateSize() error {
	if _, ok := ClassForLength(len(sh.Coordinates)); !ok {
		return cerr.NewValidationError(cerr.InvalidShipSize, "no ship class has length %d", len(sh.Coordinates))
	}
	return nil
}
