package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerr "github.com/saeidalz13/battleship-engine/internal/error"
)

func TestFetchCodeFromMsg(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		expectedCode uint8
		expectedErr  bool
	}{
		{name: "attack code", payload: `{"code":4,"payload":{"x":1}}`, expectedCode: CodeAttack},
		{name: "session code is zero", payload: `{"code":0}`, expectedCode: CodeSessionID},
		{name: "missing code", payload: `{"payload":{}}`, expectedCode: CodeSignalAbsent, expectedErr: true},
		{name: "not json", payload: `code=4`, expectedCode: CodeSignalAbsent, expectedErr: true},
		{name: "code out of range", payload: `{"code":300}`, expectedCode: CodeSignalAbsent, expectedErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, err := FetchCodeFromMsg([]byte(test.payload))
			require.Equal(t, test.expectedCode, code)
			if test.expectedErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	bsm := NewBattleshipSessionManager()

	session := bsm.GenerateNewSession(nil)
	require.NotEmpty(t, session.Id())

	found, err := bsm.FindSession(session.Id())
	require.NoError(t, err)
	require.Same(t, session, found)

	other := bsm.GenerateNewSession(nil)
	require.NotEqual(t, session.Id(), other.Id())

	bsm.TerminateSession(session.Id())
	_, err = bsm.FindSession(session.Id())
	require.ErrorIs(t, err, cerr.ErrNotFound)

	err = bsm.Communicate(session.Id(), NewSignal(CodeEndMatch), MessageTypeJSON)
	require.ErrorIs(t, err, cerr.ErrNotFound)
}

func TestRemoveIdleSessions(t *testing.T) {
	bsm := NewBattleshipSessionManager()

	// A session that just talked is not stale.
	active := bsm.GenerateNewSession(nil)
	active.touch()

	idle := bsm.GenerateNewSession(nil)
	idle.lastActive.Store(time.Now().Add(-time.Hour).UnixNano())

	require.Equal(t, []string{idle.Id()}, bsm.removeIdle(time.Minute))
	require.GreaterOrEqual(t, idle.IdleFor(), time.Hour)

	_, err := bsm.FindSession(idle.Id())
	require.ErrorIs(t, err, cerr.ErrNotFound)
	found, err := bsm.FindSession(active.Id())
	require.NoError(t, err)
	require.Same(t, active, found)
}
