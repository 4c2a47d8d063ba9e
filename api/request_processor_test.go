package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/require"

	"github.com/saeidalz13/battleship-engine/db/sqlc"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

var dialer = websocket.Dialer{
	HandshakeTimeout: 10 * time.Second,
}

type Test[T, K any] struct {
	name string

	expectedCode uint8
	expectErr    bool

	reqPayload  T
	respPayload K
}

func newTestServer(t *testing.T) (string, *mb.MatchManager) {
	t.Helper()

	gm := mb.NewMatchManager(mb.NewMemoryMatchStore(), mb.WithSeed(21))
	rp := NewRequestProcessor(mc.NewBattleshipSessionManager(), gm, nil)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/battleship", gm
}

// dial connects a client and returns it with its session id.
func dial(t *testing.T, wsUrl string) (*websocket.Conn, string) {
	t.Helper()

	conn, _, err := dialer.Dial(wsUrl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	var resp mc.Message[mc.RespSessionId]
	require.NoError(t, conn.ReadJSON(&resp))
	require.Equal(t, mc.CodeSessionID, resp.Code)
	require.NotEmpty(t, resp.Payload.SessionID)
	return conn, resp.Payload.SessionID
}

func roundTrip[T, K any](t *testing.T, conn *websocket.Conn, test Test[T, K]) K {
	t.Helper()
	require.NoError(t, conn.WriteJSON(test.reqPayload))
	require.NoError(t, conn.ReadJSON(&test.respPayload))
	return test.respPayload
}

func fleetShips() []mb.Ship {
	return []mb.Ship{
		mb.NewShipAt(0, 0, 5, false),
		mb.NewShipAt(0, 2, 4, false),
		mb.NewShipAt(0, 4, 3, false),
		mb.NewShipAt(0, 6, 3, false),
		mb.NewShipAt(0, 8, 2, false),
	}
}

func TestInvalidCode(t *testing.T) {
	wsUrl, _ := newTestServer(t)
	conn, _ := dial(t, wsUrl)

	tests := []Test[mc.Message[mc.NoPayload], mc.Message[mc.NoPayload]]{
		{
			name:         "random invalid code",
			expectedCode: mc.CodeInvalidSignal,
			reqPayload:   mc.NewMessage[mc.NoPayload](255),
		},
		{
			name:         "push only code",
			expectedCode: mc.CodeInvalidSignal,
			reqPayload:   mc.NewMessage[mc.NoPayload](mc.CodeEndMatch),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := roundTrip(t, conn, test)
			require.Equal(t, test.expectedCode, resp.Code)
			require.NotNil(t, resp.Error)
		})
	}

	t.Run("absent code", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"payload":{}}`)))
		var resp mc.Message[mc.NoPayload]
		require.NoError(t, conn.ReadJSON(&resp))
		require.Equal(t, mc.CodeSignalAbsent, resp.Code)
	})
}

func TestCreateMatch(t *testing.T) {
	wsUrl, _ := newTestServer(t)
	conn, _ := dial(t, wsUrl)

	tests := []Test[mc.Message[mc.ReqCreateMatch], mc.Message[mc.RespCreateMatch]]{
		{
			name:         "default grid",
			expectedCode: mc.CodeCreateMatch,
			reqPayload:   mc.Message[mc.ReqCreateMatch]{Code: mc.CodeCreateMatch, Payload: mc.ReqCreateMatch{Difficulty: 1}},
		},
		{
			name:         "custom grid",
			expectedCode: mc.CodeCreateMatch,
			reqPayload:   mc.Message[mc.ReqCreateMatch]{Code: mc.CodeCreateMatch, Payload: mc.ReqCreateMatch{GridSize: 15, Difficulty: 3}},
		},
		{
			name:         "invalid difficulty",
			expectedCode: mc.CodeCreateMatch,
			expectErr:    true,
			reqPayload:   mc.Message[mc.ReqCreateMatch]{Code: mc.CodeCreateMatch, Payload: mc.ReqCreateMatch{Difficulty: 5}},
		},
		{
			name:         "grid too large",
			expectedCode: mc.CodeCreateMatch,
			expectErr:    true,
			reqPayload:   mc.Message[mc.ReqCreateMatch]{Code: mc.CodeCreateMatch, Payload: mc.ReqCreateMatch{GridSize: 50}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := roundTrip(t, conn, test)
			require.Equal(t, test.expectedCode, resp.Code)
			if test.expectErr {
				require.NotNil(t, resp.Error)
				require.Equal(t, "invalid request", resp.Error.Message)
				return
			}
			require.Nil(t, resp.Error)
			require.NotEmpty(t, resp.Payload.MatchId)
		})
	}
}

func TestSoloMatchFlow(t *testing.T) {
	wsUrl, gm := newTestServer(t)
	conn, sessionId := dial(t, wsUrl)

	created := roundTrip(t, conn, Test[mc.Message[mc.ReqCreateMatch], mc.Message[mc.RespCreateMatch]]{
		reqPayload: mc.Message[mc.ReqCreateMatch]{Code: mc.CodeCreateMatch, Payload: mc.ReqCreateMatch{Difficulty: 2}},
	})
	require.Nil(t, created.Error)
	require.Equal(t, mb.GridSizeDefault, created.Payload.GridSize)
	matchId := created.Payload.MatchId

	t.Run("attack before placing", func(t *testing.T) {
		resp := roundTrip(t, conn, Test[mc.Message[mc.ReqAttack], mc.Message[mc.RespAttack]]{
			reqPayload: mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{MatchId: matchId}},
		})
		require.NotNil(t, resp.Error)
		require.Equal(t, "match has not started", resp.Error.Message)
	})

	t.Run("invalid fleet", func(t *testing.T) {
		ships := fleetShips()
		ships[4] = mb.NewShipAt(1, 0, 2, true)
		resp := roundTrip(t, conn, Test[mc.Message[mc.ReqPlaceFleet], mc.Message[mc.RespPlaceFleet]]{
			reqPayload: mc.Message[mc.ReqPlaceFleet]{Code: mc.CodePlaceFleet, Payload: mc.ReqPlaceFleet{MatchId: matchId, Ships: ships}},
		})
		require.NotNil(t, resp.Error)
		require.Equal(t, "overlap", resp.Error.Message)
	})

	t.Run("place fleet", func(t *testing.T) {
		resp := roundTrip(t, conn, Test[mc.Message[mc.ReqPlaceFleet], mc.Message[mc.RespPlaceFleet]]{
			reqPayload: mc.Message[mc.ReqPlaceFleet]{Code: mc.CodePlaceFleet, Payload: mc.ReqPlaceFleet{MatchId: matchId, Ships: fleetShips()}},
		})
		require.Nil(t, resp.Error)
		require.Equal(t, mb.MatchStateInProgress.String(), resp.Payload.MatchState)
	})

	var aiCoord mb.Coordinates
	t.Run("attack", func(t *testing.T) {
		resp := roundTrip(t, conn, Test[mc.Message[mc.ReqAttack], mc.Message[mc.RespAttack]]{
			reqPayload: mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{MatchId: matchId, X: 9, Y: 9}},
		})
		require.Nil(t, resp.Error)
		require.Equal(t, sessionId, resp.Payload.PlayerId)
		require.Equal(t, mb.NewCoordinates(9, 9), resp.Payload.TargetCoord)
		require.NotNil(t, resp.Payload.AiCoord)
		require.NotNil(t, resp.Payload.AiHit)
		aiCoord = *resp.Payload.AiCoord
	})

	t.Run("attack out of grid", func(t *testing.T) {
		resp := roundTrip(t, conn, Test[mc.Message[mc.ReqAttack], mc.Message[mc.RespAttack]]{
			reqPayload: mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{MatchId: matchId, X: 10, Y: 0}},
		})
		require.NotNil(t, resp.Error)
		require.Equal(t, "out of bounds", resp.Error.Message)
	})

	t.Run("match state", func(t *testing.T) {
		resp := roundTrip(t, conn, Test[mc.Message[mc.ReqMatchState], mc.Message[mc.RespMatchState]]{
			reqPayload: mc.Message[mc.ReqMatchState]{Code: mc.CodeMatchState, Payload: mc.ReqMatchState{MatchId: matchId}},
		})
		require.Nil(t, resp.Error)
		require.Len(t, resp.Payload.History, 2)
		require.Equal(t, mb.ComputerPlayerID, resp.Payload.OpponentId)
		require.Len(t, resp.Payload.Fleet, mb.ShipsPerFleet)
	})

	t.Run("rollback", func(t *testing.T) {
		resp := roundTrip(t, conn, Test[mc.Message[mc.ReqRollback], mc.Message[mc.RespRollback]]{
			reqPayload: mc.Message[mc.ReqRollback]{Code: mc.CodeRollback, Payload: mc.ReqRollback{MatchId: matchId}},
		})
		require.Nil(t, resp.Error)
		require.NotNil(t, resp.Payload.RestoredAiCoord)
		require.Equal(t, aiCoord, *resp.Payload.RestoredAiCoord)
		require.Nil(t, resp.Payload.RestoredPlayerCoord)

		match, err := gm.GetMatch(context.Background(), matchId)
		require.NoError(t, err)
		require.Len(t, match.History, 1)
	})

	t.Run("rollback by a stranger", func(t *testing.T) {
		other, _ := dial(t, wsUrl)
		resp := roundTrip(t, other, Test[mc.Message[mc.ReqRollback], mc.Message[mc.RespRollback]]{
			reqPayload: mc.Message[mc.ReqRollback]{Code: mc.CodeRollback, Payload: mc.ReqRollback{MatchId: matchId}},
		})
		require.NotNil(t, resp.Error)
		require.Equal(t, "not your turn", resp.Error.Message)
	})
}

func TestMultiplayerNotifications(t *testing.T) {
	wsUrl, _ := newTestServer(t)
	hostConn, hostId := dial(t, wsUrl)
	joinConn, joinId := dial(t, wsUrl)

	created := roundTrip(t, hostConn, Test[mc.Message[mc.ReqCreateMatch], mc.Message[mc.RespCreateMatch]]{
		reqPayload: mc.Message[mc.ReqCreateMatch]{Code: mc.CodeCreateMatch, Payload: mc.ReqCreateMatch{}},
	})
	require.Nil(t, created.Error)
	matchId := created.Payload.MatchId

	joined := roundTrip(t, joinConn, Test[mc.Message[mc.ReqJoinMatch], mc.Message[mc.RespJoinMatch]]{
		reqPayload: mc.Message[mc.ReqJoinMatch]{Code: mc.CodeJoinMatch, Payload: mc.ReqJoinMatch{MatchId: matchId}},
	})
	require.Nil(t, joined.Error)
	require.Equal(t, joinId, joined.Payload.PlayerId)

	var opponentJoined mc.Message[mc.RespJoinMatch]
	require.NoError(t, hostConn.ReadJSON(&opponentJoined))
	require.Equal(t, mc.CodeOpponentJoined, opponentJoined.Code)
	require.Equal(t, joinId, opponentJoined.Payload.PlayerId)

	placeFleet := Test[mc.Message[mc.ReqPlaceFleet], mc.Message[mc.RespPlaceFleet]]{
		reqPayload: mc.Message[mc.ReqPlaceFleet]{Code: mc.CodePlaceFleet, Payload: mc.ReqPlaceFleet{MatchId: matchId, Ships: fleetShips()}},
	}
	placed := roundTrip(t, hostConn, placeFleet)
	require.Nil(t, placed.Error)
	require.Equal(t, mb.MatchStateAwaitingFleets.String(), placed.Payload.MatchState)

	placed = roundTrip(t, joinConn, placeFleet)
	require.Nil(t, placed.Error)
	require.Equal(t, mb.MatchStateInProgress.String(), placed.Payload.MatchState)

	var fleetsReady mc.Message[mc.NoPayload]
	require.NoError(t, hostConn.ReadJSON(&fleetsReady))
	require.Equal(t, mc.CodeFleetsReady, fleetsReady.Code)

	attack := roundTrip(t, hostConn, Test[mc.Message[mc.ReqAttack], mc.Message[mc.RespAttack]]{
		reqPayload: mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{MatchId: matchId, X: 0, Y: 0}},
	})
	require.Nil(t, attack.Error)
	require.True(t, attack.Payload.PlayerHit)
	require.Nil(t, attack.Payload.AiCoord)

	var moved mc.Message[mc.RespAttack]
	require.NoError(t, joinConn.ReadJSON(&moved))
	require.Equal(t, mc.CodeOpponentMoved, moved.Code)
	require.Equal(t, hostId, moved.Payload.PlayerId)
	require.Equal(t, mb.NewCoordinates(0, 0), moved.Payload.TargetCoord)

	again := roundTrip(t, hostConn, Test[mc.Message[mc.ReqAttack], mc.Message[mc.RespAttack]]{
		reqPayload: mc.Message[mc.ReqAttack]{Code: mc.CodeAttack, Payload: mc.ReqAttack{MatchId: matchId, X: 1, Y: 0}},
	})
	require.NotNil(t, again.Error)
	require.Equal(t, "not your turn", again.Error.Message)

	rollback := roundTrip(t, joinConn, Test[mc.Message[mc.ReqRollback], mc.Message[mc.RespRollback]]{
		reqPayload: mc.Message[mc.ReqRollback]{Code: mc.CodeRollback, Payload: mc.ReqRollback{MatchId: matchId}},
	})
	require.NotNil(t, rollback.Error)
	require.Equal(t, "no rollback available", rollback.Error.Message)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	wsUrl, gm := newTestServer(t)
	conn, _ := dial(t, wsUrl)

	matchId, err := gm.CreateMatch(ctx, mb.MatchOptions{Difficulty: mb.DifficultyEasy, PlayerOne: "veteran"})
	require.NoError(t, err)
	require.NoError(t, gm.PlaceFleet(ctx, matchId, "veteran", fleetShips()))

	match, err := gm.GetMatch(ctx, matchId)
	require.NoError(t, err)
	for _, ship := range match.Players[1].Fleet {
		for _, c := range ship.Coordinates {
			_, err := gm.Attack(ctx, matchId, "veteran", mb.NewCoordinates(c.X, c.Y))
			require.NoError(t, err)
		}
	}

	resp := roundTrip(t, conn, Test[mc.Message[mc.NoPayload], mc.Message[mc.RespLeaderboard]]{
		reqPayload: mc.NewMessage[mc.NoPayload](mc.CodeLeaderboard),
	})
	require.Equal(t, mc.CodeLeaderboard, resp.Code)
	require.Nil(t, resp.Error)
	require.Equal(t, []mb.PlayerStats{{PlayerID: "veteran", Wins: 1, ShipsSunk: mb.ShipsPerFleet}}, resp.Payload.Players)
}

func TestCreateMatchIsCounted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gm := mb.NewMatchManager(mb.NewMemoryMatchStore(), mb.WithSeed(3))
	rp := NewRequestProcessor(mc.NewBattleshipSessionManager(), gm, sqlc.NewAnalyticsManager(sqlc.New(db)))
	require.NotNil(t, rp.GetIpNet().IP)

	srv := httptest.NewServer(rp)
	defer srv.Close()
	conn, _ := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO game_server_analytics")).
		WithArgs(pqtype.Inet{IPNet: rp.GetIpNet(), Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := roundTrip(t, conn, Test[mc.Message[mc.ReqCreateMatch], mc.Message[mc.RespCreateMatch]]{
		reqPayload: mc.Message[mc.ReqCreateMatch]{Code: mc.CodeCreateMatch, Payload: mc.ReqCreateMatch{Difficulty: 1}},
	})
	require.Nil(t, resp.Error)
	require.NoError(t, mock.ExpectationsWereMet())
}
