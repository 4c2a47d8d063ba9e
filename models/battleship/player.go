package battleship

// Identifier of the synthetic opponent in solo matches.
const ComputerPlayerID = "AI"

type Player struct {
	ID     string `json:"id"`
	Fleet  Fleet  `json:"fleet,omitempty"`
	HasWon bool   `json:"has_won"`
}

func NewPlayer(id string) Player {
	return Player{ID: id}
}

// A player is ready once their fleet has been placed.
func (p Player) IsReady() bool {
	return len(p.Fleet) > 0
}

func (p Player) IsComputer() bool {
	return p.ID == ComputerPlayerID
}

func (p Player) clone() Player {
	p.Fleet = p.Fleet.Clone()
	return p
}
