package connection

import (
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

type ReqCreateMatch struct {
	GridSize   int `json:"grid_size"`
	Difficulty int `json:"difficulty"`
}

type ReqJoinMatch struct {
	MatchId string `json:"match_id"`
}

type ReqPlaceFleet struct {
	MatchId string    `json:"match_id"`
	Ships   []mb.Ship `json:"ships"`
}

type ReqAttack struct {
	MatchId string `json:"match_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

type ReqRollback struct {
	MatchId string `json:"match_id"`
}

type ReqMatchState struct {
	MatchId string `json:"match_id"`
}
