package connection

import (
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateMatch struct {
	MatchId  string `json:"match_id"`
	GridSize int    `json:"grid_size"`
}

type RespJoinMatch struct {
	MatchId  string `json:"match_id"`
	PlayerId string `json:"player_id"`
}

type RespPlaceFleet struct {
	MatchId    string `json:"match_id"`
	MatchState string `json:"match_state"`
}

type RespAttack struct {
	MatchId     string          `json:"match_id"`
	PlayerId    string          `json:"player_id"`
	TargetCoord mb.Coordinates  `json:"target_coord"`
	PlayerHit   bool            `json:"player_hit"`
	PlayerSunk  bool            `json:"player_sunk"`
	PlayerWon   bool            `json:"player_won"`
	AiCoord     *mb.Coordinates `json:"ai_coord,omitempty"`
	AiHit       *bool           `json:"ai_hit,omitempty"`
	AiSunk      *bool           `json:"ai_sunk,omitempty"`
	AiWon       *bool           `json:"ai_won,omitempty"`
}

func NewRespAttack(matchId, playerId string, outcome mb.AttackOutcome) RespAttack {
	resp := RespAttack{
		MatchId:     matchId,
		PlayerId:    playerId,
		TargetCoord: outcome.Player.Target,
		PlayerHit:   outcome.Player.Hit,
		PlayerSunk:  outcome.Player.Sunk,
		PlayerWon:   outcome.Player.Won,
	}
	if ai := outcome.Computer; ai != nil {
		target := ai.Target
		resp.AiCoord = &target
		resp.AiHit = &ai.Hit
		resp.AiSunk = &ai.Sunk
		resp.AiWon = &ai.Won
	}
	return resp
}

type RespRollback struct {
	MatchId             string          `json:"match_id"`
	RestoredPlayerCoord *mb.Coordinates `json:"restored_player_coord,omitempty"`
	RestoredAiCoord     *mb.Coordinates `json:"restored_ai_coord,omitempty"`
}

// Only the requesting player's own fleet is revealed.
type RespMatchState struct {
	MatchId     string            `json:"match_id"`
	GridSize    int               `json:"grid_size"`
	Difficulty  int               `json:"difficulty"`
	MatchState  string            `json:"match_state"`
	Fleet       mb.Fleet          `json:"fleet,omitempty"`
	History     []mb.AttackRecord `json:"history"`
	OpponentId  string            `json:"opponent_id,omitempty"`
	SunkenShips int               `json:"sunken_ships"`
}

type RespLeaderboard struct {
	Players []mb.PlayerStats `json:"players"`
}

type RespEndMatch struct {
	WinnerId string `json:"winner_id"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
