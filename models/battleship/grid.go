package battleship

const (
	GridSizeMin     int = 5
	GridSizeMax     int = 20
	GridSizeDefault int = 10
)

// Coordinates is a cell on the grid. Hit is set once the cell has been
// fired upon while occupied by a ship.
type Coordinates struct {
	X   int  `json:"x"`
	Y   int  `json:"y"`
	Hit bool `json:"hit,omitempty"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

func (c Coordinates) InBounds(gridSize int) bool {
	return c.X >= 0 && c.X < gridSize && c.Y >= 0 && c.Y < gridSize
}

// SameCell compares positions only, ignoring the hit flag.
func (c Coordinates) SameCell(other Coordinates) bool {
	return c.X == other.X && c.Y == other.Y
}

// Orthogonal neighbours in the order left, right, up, down.
// Bounds are not checked.
func (c Coordinates) Neighbours() [4]Coordinates {
	return [4]Coordinates{
		NewCoordinates(c.X-1, c.Y),
		NewCoordinates(c.X+1, c.Y),
		NewCoordinates(c.X, c.Y-1),
		NewCoordinates(c.X, c.Y+1),
	}
}

type cell struct{ x, y int }

func (c Coordinates) key() cell {
	return cell{c.X, c.Y}
}

func IsGridSizeValid(gridSize int) bool {
	return gridSize >= GridSizeMin && gridSize <= GridSizeMax
}
