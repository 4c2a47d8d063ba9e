package api

import (
	"context"
	"encoding/json"
	"errors"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

// Request wraps one incoming payload. Every handler answers with a message
// carrying either a payload or an error, never both.
type Request struct {
	payload []byte
}

func NewRequest(payload ...[]byte) Request {
	if len(payload) == 0 {
		return Request{}
	}
	return Request{payload: payload[0]}
}

// decode unmarshals the request payload, or builds the failure response
// the handler should send back.
func decode[Req, Resp any](r Request, code uint8) (Req, *mc.Message[Resp]) {
	var req mc.Message[Req]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		msg := mc.NewMessage[Resp](code)
		msg.AddError(err.Error(), "invalid payload")
		return req.Payload, &msg
	}
	return req.Payload, nil
}

// errorMessage gives the caller a stable, user facing label per error kind.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, cerr.ErrValidation):
		if kind, ok := cerr.KindOf(err); ok {
			return kind.String()
		}
		return "invalid fleet"
	case errors.Is(err, cerr.ErrTurnViolation):
		return "not your turn"
	case errors.Is(err, cerr.ErrNotFound):
		return "match not found"
	case errors.Is(err, cerr.ErrAlreadyPlaced):
		return "fleet already placed"
	case errors.Is(err, cerr.ErrAlreadyFinished):
		return "match already finished"
	case errors.Is(err, cerr.ErrNoRollbackAvailable):
		return "no rollback available"
	case errors.Is(err, cerr.ErrNotStarted):
		return "match has not started"
	case errors.Is(err, cerr.ErrInvalidOption):
		return "invalid request"
	default:
		return "internal error"
	}
}

func failed[T any](code uint8, err error) mc.Message[T] {
	msg := mc.NewMessage[T](code)
	msg.AddError(err.Error(), errorMessage(err))
	return msg
}

func (r Request) HandleCreateMatch(ctx context.Context, gm mb.GameManager, playerId string) mc.Message[mc.RespCreateMatch] {
	req, bad := decode[mc.ReqCreateMatch, mc.RespCreateMatch](r, mc.CodeCreateMatch)
	if bad != nil {
		return *bad
	}
	if req.Difficulty < 0 || req.Difficulty > int(mb.DifficultyHard) {
		return failed[mc.RespCreateMatch](mc.CodeCreateMatch, cerr.ErrInvalidMatchDifficulty(req.Difficulty))
	}

	matchId, err := gm.CreateMatch(ctx, mb.MatchOptions{
		GridSize:   req.GridSize,
		Difficulty: mb.Difficulty(req.Difficulty),
		PlayerOne:  playerId,
	})
	if err != nil {
		return failed[mc.RespCreateMatch](mc.CodeCreateMatch, err)
	}
	match, err := gm.GetMatch(ctx, matchId)
	if err != nil {
		return failed[mc.RespCreateMatch](mc.CodeCreateMatch, err)
	}

	resp := mc.NewMessage[mc.RespCreateMatch](mc.CodeCreateMatch)
	resp.AddPayload(mc.RespCreateMatch{MatchId: matchId, GridSize: match.GridSize})
	return resp
}

func (r Request) HandleJoinMatch(ctx context.Context, gm mb.GameManager, playerId string) mc.Message[mc.RespJoinMatch] {
	req, bad := decode[mc.ReqJoinMatch, mc.RespJoinMatch](r, mc.CodeJoinMatch)
	if bad != nil {
		return *bad
	}
	if err := gm.JoinMatch(ctx, req.MatchId, playerId); err != nil {
		return failed[mc.RespJoinMatch](mc.CodeJoinMatch, err)
	}

	resp := mc.NewMessage[mc.RespJoinMatch](mc.CodeJoinMatch)
	resp.AddPayload(mc.RespJoinMatch{MatchId: req.MatchId, PlayerId: playerId})
	return resp
}

func (r Request) HandlePlaceFleet(ctx context.Context, gm mb.GameManager, playerId string) mc.Message[mc.RespPlaceFleet] {
	req, bad := decode[mc.ReqPlaceFleet, mc.RespPlaceFleet](r, mc.CodePlaceFleet)
	if bad != nil {
		return *bad
	}
	if err := gm.PlaceFleet(ctx, req.MatchId, playerId, mb.Fleet(req.Ships)); err != nil {
		return failed[mc.RespPlaceFleet](mc.CodePlaceFleet, err)
	}
	match, err := gm.GetMatch(ctx, req.MatchId)
	if err != nil {
		return failed[mc.RespPlaceFleet](mc.CodePlaceFleet, err)
	}

	resp := mc.NewMessage[mc.RespPlaceFleet](mc.CodePlaceFleet)
	resp.AddPayload(mc.RespPlaceFleet{MatchId: req.MatchId, MatchState: match.State().String()})
	return resp
}

func (r Request) HandleAttack(ctx context.Context, gm mb.GameManager, playerId string) mc.Message[mc.RespAttack] {
	req, bad := decode[mc.ReqAttack, mc.RespAttack](r, mc.CodeAttack)
	if bad != nil {
		return *bad
	}
	outcome, err := gm.Attack(ctx, req.MatchId, playerId, mb.NewCoordinates(req.X, req.Y))
	if err != nil {
		return failed[mc.RespAttack](mc.CodeAttack, err)
	}

	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)
	resp.AddPayload(mc.NewRespAttack(req.MatchId, playerId, outcome))
	return resp
}

func (r Request) HandleRollback(ctx context.Context, gm mb.GameManager, playerId string) mc.Message[mc.RespRollback] {
	req, bad := decode[mc.ReqRollback, mc.RespRollback](r, mc.CodeRollback)
	if bad != nil {
		return *bad
	}
	// Only a seated player may undo moves of a match.
	match, err := gm.GetMatch(ctx, req.MatchId)
	if err != nil {
		return failed[mc.RespRollback](mc.CodeRollback, err)
	}
	if _, err := match.FindPlayer(playerId); err != nil {
		return failed[mc.RespRollback](mc.CodeRollback, err)
	}
	outcome, err := gm.Rollback(ctx, req.MatchId)
	if err != nil {
		return failed[mc.RespRollback](mc.CodeRollback, err)
	}

	resp := mc.NewMessage[mc.RespRollback](mc.CodeRollback)
	resp.AddPayload(mc.RespRollback{
		MatchId:             req.MatchId,
		RestoredPlayerCoord: outcome.RestoredPlayer,
		RestoredAiCoord:     outcome.RestoredComputer,
	})
	return resp
}

func (r Request) HandleMatchState(ctx context.Context, gm mb.GameManager, playerId string) mc.Message[mc.RespMatchState] {
	req, bad := decode[mc.ReqMatchState, mc.RespMatchState](r, mc.CodeMatchState)
	if bad != nil {
		return *bad
	}
	match, err := gm.GetMatch(ctx, req.MatchId)
	if err != nil {
		return failed[mc.RespMatchState](mc.CodeMatchState, err)
	}
	player, err := match.FindPlayer(playerId)
	if err != nil {
		return failed[mc.RespMatchState](mc.CodeMatchState, err)
	}
	opponent, _ := match.Opponent(playerId)

	resp := mc.NewMessage[mc.RespMatchState](mc.CodeMatchState)
	resp.AddPayload(mc.RespMatchState{
		MatchId:     match.ID,
		GridSize:    match.GridSize,
		Difficulty:  int(match.Difficulty),
		MatchState:  match.State().String(),
		Fleet:       player.Fleet,
		History:     match.History,
		OpponentId:  opponent.ID,
		SunkenShips: player.Fleet.SunkCount(),
	})
	return resp
}

// Leaderboard requests carry no payload.
func (r Request) HandleLeaderboard(ctx context.Context, gm mb.GameManager) mc.Message[mc.RespLeaderboard] {
	board, err := gm.Leaderboard(ctx)
	if err != nil {
		return failed[mc.RespLeaderboard](mc.CodeLeaderboard, err)
	}

	resp := mc.NewMessage[mc.RespLeaderboard](mc.CodeLeaderboard)
	resp.AddPayload(mc.RespLeaderboard{Players: board})
	return resp
}
