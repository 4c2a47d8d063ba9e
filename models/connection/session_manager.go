package connection

import (
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	Communicate(receiverSessionId string, msg interface{}, msgType uint8) error
	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
}

type BattleshipSessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

func NewBattleshipSessionManager() *BattleshipSessionManager {
	return &BattleshipSessionManager{
		sessions: make(map[string]*Session, 10),
	}
}

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs || session == nil {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}
	return session, nil
}

func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	delete(bsm.sessions, sessionId)
	bsm.mu.Unlock()
	log.Info("session terminated", "session", sessionId)
}

// This method sends the msg from one session to another
func (bsm *BattleshipSessionManager) Communicate(receiverSessionId string, msg interface{}, msgType uint8) error {
	receiverSession, err := bsm.FindSession(receiverSessionId)
	if err != nil {
		return err
	}
	return bsm.WriteToSessionConn(receiverSession, msg, msgType)
}

func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	return session.writeToConnWithRetry(msg, msgType)
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		messageType, payload, err := session.conn.ReadMessage()
		if err == nil {
			session.touch()
			return messageType, payload, nil
		}

		if session.handleReadFromConnErr(err, retries) == ConnLoopContinue {
			retries++
			continue
		}
		return -1, nil, NewConnErr(ConnLoopBreak).AddDesc(err.Error())
	}
}

// To ensure that there is no dangling connections,
// server session manager marks the sessions that neither
// read nor wrote for more than maxIdle as stale and deletes them.
func (bsm *BattleshipSessionManager) CleanupPeriodically(interval, maxIdle time.Duration) {
	for {
		time.Sleep(interval)
		for _, id := range bsm.removeIdle(maxIdle) {
			log.Info("stale session removed", "session", id)
		}
	}
}

func (bsm *BattleshipSessionManager) removeIdle(maxIdle time.Duration) []string {
	bsm.mu.Lock()
	defer bsm.mu.Unlock()

	removed := make([]string, 0, 5)
	for id, session := range bsm.sessions {
		if session.IdleFor() > maxIdle {
			delete(bsm.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func FetchCodeFromMsg(payload []byte) (uint8, error) {
	var signal struct {
		Code *uint8 `json:"code"`
	}
	if err := json.Unmarshal(payload, &signal); err != nil {
		return CodeSignalAbsent, err
	}
	if signal.Code == nil {
		return CodeSignalAbsent, cerr.ErrKeyNotExists("code")
	}
	return *signal.Code, nil
}
