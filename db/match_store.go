package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-engine/db/sqlc"
	cerr "github.com/saeidalz13/battleship-engine/internal/error"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

const (
	leaderboardLimit = 100

	uniqueViolation pq.ErrorCode = "23505"
)

// PostgresMatchStore keeps one row per match. Fleets and history are JSONB;
// a fleet column stays NULL until its owner places it.
type PostgresMatchStore struct {
	q sqlc.Querier
}

var _ mb.MatchStore = (*PostgresMatchStore)(nil)

func NewPostgresMatchStore(q sqlc.Querier) *PostgresMatchStore {
	return &PostgresMatchStore{q: q}
}

func (ps *PostgresMatchStore) Add(ctx context.Context, match *mb.Match) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	fleetOne, err := marshalFleet(match.Players[0].Fleet)
	if err != nil {
		return err
	}
	fleetTwo, err := marshalFleet(match.Players[1].Fleet)
	if err != nil {
		return err
	}
	history, err := marshalHistory(match.History)
	if err != nil {
		return err
	}

	err = ps.q.CreateMatch(ctx, sqlc.CreateMatchParams{
		ID:             match.ID,
		GridSize:       int16(match.GridSize),
		Difficulty:     int16(match.Difficulty),
		Multiplayer:    match.Multiplayer,
		PlayerOneID:    match.Players[0].ID,
		PlayerTwoID:    nullString(match.Players[1].ID),
		PlayerOneFleet: fleetOne,
		PlayerTwoFleet: fleetTwo,
		History:        history,
		CreatedAt:      match.CreatedAt,
	})
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return cerr.ErrMatchExists(match.ID)
	}
	return err
}

func (ps *PostgresMatchStore) Get(ctx context.Context, matchId string) (*mb.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	row, err := ps.q.GetMatch(ctx, matchId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.ErrMatchNotExists(matchId)
		}
		return nil, err
	}

	match := &mb.Match{
		ID:          row.ID,
		GridSize:    int(row.GridSize),
		Difficulty:  mb.Difficulty(row.Difficulty),
		Multiplayer: row.Multiplayer,
		CreatedAt:   row.CreatedAt,
		Players: [2]mb.Player{
			{ID: row.PlayerOneID, HasWon: row.PlayerOneWon},
			{ID: row.PlayerTwoID.String, HasWon: row.PlayerTwoWon},
		},
	}
	if match.Players[0].Fleet, err = unmarshalFleet(row.PlayerOneFleet); err != nil {
		return nil, cerr.ErrCorruptMatch(matchId, err)
	}
	if match.Players[1].Fleet, err = unmarshalFleet(row.PlayerTwoFleet); err != nil {
		return nil, cerr.ErrCorruptMatch(matchId, err)
	}
	if err := json.Unmarshal(row.History, &match.History); err != nil {
		return nil, cerr.ErrCorruptMatch(matchId, err)
	}
	if match.History == nil {
		match.History = []mb.AttackRecord{}
	}
	return match, nil
}

func (ps *PostgresMatchStore) Update(ctx context.Context, match *mb.Match) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	fleetOne, err := marshalFleet(match.Players[0].Fleet)
	if err != nil {
		return err
	}
	fleetTwo, err := marshalFleet(match.Players[1].Fleet)
	if err != nil {
		return err
	}
	history, err := marshalHistory(match.History)
	if err != nil {
		return err
	}

	affected, err := ps.q.UpdateMatch(ctx, sqlc.UpdateMatchParams{
		ID:             match.ID,
		PlayerTwoID:    nullString(match.Players[1].ID),
		PlayerOneFleet: fleetOne,
		PlayerTwoFleet: fleetTwo,
		PlayerOneWon:   match.Players[0].HasWon,
		PlayerTwoWon:   match.Players[1].HasWon,
		History:        history,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return cerr.ErrMatchNotExists(match.ID)
	}
	return nil
}

func (ps *PostgresMatchStore) Delete(ctx context.Context, matchId string) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	affected, err := ps.q.DeleteMatch(ctx, matchId)
	if err != nil {
		return err
	}
	if affected == 0 {
		return cerr.ErrMatchNotExists(matchId)
	}
	return nil
}

func (ps *PostgresMatchStore) RecordWin(ctx context.Context, playerId string) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	return ps.q.IncrementPlayerWins(ctx, playerId)
}

func (ps *PostgresMatchStore) RecordLoss(ctx context.Context, playerId string) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	return ps.q.IncrementPlayerLosses(ctx, playerId)
}

func (ps *PostgresMatchStore) RecordShipSunk(ctx context.Context, playerId string) error {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	return ps.q.IncrementPlayerShipsSunk(ctx, playerId)
}

func (ps *PostgresMatchStore) Leaderboard(ctx context.Context) ([]mb.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	rows, err := ps.q.ListLeaderboard(ctx, leaderboardLimit)
	if err != nil {
		return nil, err
	}
	board := make([]mb.PlayerStats, len(rows))
	for i, r := range rows {
		board[i] = mb.PlayerStats{PlayerID: r.PlayerID, Wins: r.Wins, Losses: r.Losses, ShipsSunk: r.ShipsSunk}
	}
	return board, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func marshalFleet(fleet mb.Fleet) (pqtype.NullRawMessage, error) {
	if len(fleet) == 0 {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(fleet)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("marshal fleet: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

func unmarshalFleet(raw pqtype.NullRawMessage) (mb.Fleet, error) {
	if !raw.Valid {
		return nil, nil
	}
	var fleet mb.Fleet
	if err := json.Unmarshal(raw.RawMessage, &fleet); err != nil {
		return nil, fmt.Errorf("unmarshal fleet: %w", err)
	}
	return fleet, nil
}

func marshalHistory(history []mb.AttackRecord) (json.RawMessage, error) {
	if history == nil {
		history = []mb.AttackRecord{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	return raw, nil
}
