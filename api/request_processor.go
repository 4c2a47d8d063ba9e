package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-engine/db/sqlc"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	mc "github.com/saeidalz13/battleship-engine/models/connection"
)

const (
	requestTimeout = time.Second * 10
)

var (
	upgrader = websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// RequestProcessor adapts the match engine to websocket sessions. The
// session id is the player id the engine sees.
type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	ipnet          net.IPNet
}

// analytics may be nil, in which case nothing is counted.
func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	analytics *sqlc.AnalyticsManager,
) RequestProcessor {
	rp := RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		analytics:      analytics,
	}
	if analytics != nil {
		rp.ipnet = serverIpNet()
	}
	return rp
}

// serverIpNet returns the first non-loopback address of the host, or the
// loopback address when there is none.
func serverIpNet() net.IPNet {
	fallback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn("failed to list network interfaces", "err", err)
		return fallback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			return net.IPNet{IP: ipnet.IP.To4(), Mask: net.CIDRMask(32, 32)}
		}
	}
	return fallback
}

// Expose this method to use it in testing
func (rp RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "err", err)
		return
	}

	log.Info("a new connection established", "remote", conn.RemoteAddr().String())
	rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))
}

func (rp RequestProcessor) countMatchCreated() {
	if rp.analytics == nil {
		return
	}
	inet := pqtype.Inet{IPNet: rp.ipnet, Valid: true}
	if err := rp.analytics.IncrementGamesCreatedCount(context.Background(), inet); err != nil {
		// for now not failing the match for it
		log.Warn("failed to count created match", "err", err)
	}
}

// notifyOpponent pushes msg to the other seated human of a match.
func (rp RequestProcessor) notifyOpponent(ctx context.Context, matchId, playerId string, msg interface{}) {
	match, err := rp.gameManager.GetMatch(ctx, matchId)
	if err != nil {
		return
	}
	opponent, err := match.Opponent(playerId)
	if err != nil || opponent.ID == "" || opponent.IsComputer() {
		return
	}
	if err := rp.sessionManager.Communicate(opponent.ID, msg, mc.MessageTypeJSON); err != nil {
		log.Warn("failed to notify opponent", "match", matchId, "opponent", opponent.ID, "err", err)
	}
}

func (rp RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()

	defer func() {
		if session.Conn() != nil {
			session.Conn().Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

sessionLoop:
	for {
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			break sessionLoop
		}

		code, err := mc.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError(err.Error(), "incoming req payload must contain 'code' field")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		var out interface{}
		req := NewRequest(payload)

		switch code {
		case mc.CodeCreateMatch:
			respMsg := req.HandleCreateMatch(ctx, rp.gameManager, sessionId)
			if respMsg.Error == nil {
				rp.countMatchCreated()
			}
			out = respMsg

		case mc.CodeJoinMatch:
			respMsg := req.HandleJoinMatch(ctx, rp.gameManager, sessionId)
			if respMsg.Error == nil {
				joined := mc.NewMessage[mc.RespJoinMatch](mc.CodeOpponentJoined)
				joined.AddPayload(respMsg.Payload)
				rp.notifyOpponent(ctx, respMsg.Payload.MatchId, sessionId, joined)
			}
			out = respMsg

		// Once both fleets are in, the other player learns the match began
		case mc.CodePlaceFleet:
			respMsg := req.HandlePlaceFleet(ctx, rp.gameManager, sessionId)
			if respMsg.Error == nil && respMsg.Payload.MatchState == mb.MatchStateInProgress.String() {
				rp.notifyOpponent(ctx, respMsg.Payload.MatchId, sessionId, mc.NewMessage[mc.NoPayload](mc.CodeFleetsReady))
			}
			out = respMsg

		// The defender of a multiplayer match receives the same outcome
		// and, when it ended the match, the end signal.
		case mc.CodeAttack:
			respMsg := req.HandleAttack(ctx, rp.gameManager, sessionId)
			if respMsg.Error == nil {
				moved := mc.NewMessage[mc.RespAttack](mc.CodeOpponentMoved)
				moved.AddPayload(respMsg.Payload)
				rp.notifyOpponent(ctx, respMsg.Payload.MatchId, sessionId, moved)

				if respMsg.Payload.PlayerWon {
					end := mc.NewMessage[mc.RespEndMatch](mc.CodeEndMatch)
					end.AddPayload(mc.RespEndMatch{WinnerId: sessionId})
					rp.notifyOpponent(ctx, respMsg.Payload.MatchId, sessionId, end)
				}
			}
			out = respMsg

		case mc.CodeRollback:
			out = req.HandleRollback(ctx, rp.gameManager, sessionId)

		case mc.CodeMatchState:
			out = req.HandleMatchState(ctx, rp.gameManager, sessionId)

		case mc.CodeLeaderboard:
			out = req.HandleLeaderboard(ctx, rp.gameManager)

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			out = respInvalidSignal
		}
		cancel()

		if err := rp.sessionManager.WriteToSessionConn(session, out, mc.MessageTypeJSON); err != nil {
			break sessionLoop
		}
	}
}
