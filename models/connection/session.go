package connection

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	maxWsRetries  uint8 = 2
	backOffFactor uint8 = 2
)

const (
	MessageTypeBytes uint8 = iota
	MessageTypeJSON
)

// Session is one websocket connection. Its id doubles as the player id
// handed to the match engine.
type Session struct {
	id   string
	conn *websocket.Conn

	// unix nanoseconds of the last successful read or write
	lastActive atomic.Int64

	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

func NewSession(id string, conn *websocket.Conn) *Session {
	s := &Session{
		id:   id,
		conn: conn,
	}
	s.touch()
	return s
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *Session) IdleFor() time.Duration {
	return time.Since(time.Unix(0, s.lastActive.Load()))
}

func (s *Session) onConnErr(err error) uint8 {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Warn("timeout error", "session", s.id, "err", err)
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		log.Warn("high server load/traffic error", "session", s.id, "err", err)
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
		log.Info("connection closed", "session", s.id, "err", err)
		return ConnLoopBreak
	}

	/*
		Payloads the server cannot understand (binary frames, broken UTF-8,
		oversized messages) most likely do not come from the application.
		Breaking keeps them from overwhelming the server.
	*/
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation, websocket.CloseNoStatusReceived) {
		log.Warn("non-critical error", "session", s.id, "err", err)
		return ConnLoopBreak
	}

	log.Error("unexpected error", "session", s.id, "err", err)
	return ConnLoopBreak
}

// Writes to the connection of that session, retrying with a linear
// back off on transient failures.
func (s *Session) writeToConnWithRetry(msg interface{}, msgType uint8) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var retries uint8
	for {
		var err error

		switch msgType {
		case MessageTypeJSON:
			err = s.conn.WriteJSON(msg)

		case MessageTypeBytes:
			respBytes, ok := msg.([]byte)
			if !ok {
				return NewConnErr(ConnInvalidMsgType).AddDesc("msg type expected: []byte got invalid")
			}
			err = s.conn.WriteMessage(websocket.TextMessage, respBytes)

		default:
			return NewConnErr(ConnInvalidMsgType).AddDesc("invalid message type to write with retry")
		}

		if err == nil {
			s.touch()
			return nil
		}

		if s.onConnErr(err) == ConnLoopRetry && retries < maxWsRetries {
			retries++
			log.Warn("writing to ws failed; retrying", "session", s.id, "retry", retries)
			time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
			continue
		}
		return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop due to: " + err.Error())
	}
}

// Decides whether a failed read is worth another attempt.
func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	if s.onConnErr(err) != ConnLoopRetry {
		return ConnLoopBreak
	}
	if retries >= maxWsRetries {
		return ConnLoopBreak
	}

	log.Warn("failed to read from ws; retrying", "session", s.id, "retry", retries+1)
	time.Sleep(time.Duration((retries+1)*backOffFactor) * time.Second)
	return ConnLoopContinue
}
