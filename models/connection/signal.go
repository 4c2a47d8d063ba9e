package connection

const (
	CodeSessionID uint8 = iota
	CodeCreateMatch
	CodeJoinMatch
	CodePlaceFleet
	CodeAttack
	CodeRollback
	CodeMatchState
	CodeLeaderboard

	// Pushed to the other player of a multiplayer match
	CodeOpponentJoined
	CodeOpponentMoved
	CodeFleetsReady
	CodeEndMatch

	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
