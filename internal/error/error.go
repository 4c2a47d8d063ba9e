package error

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("fleet validation failed")
	ErrTurnViolation       = errors.New("player not allowed to play this turn")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyPlaced       = errors.New("fleet already placed")
	ErrAlreadyFinished     = errors.New("match already finished")
	ErrNoRollbackAvailable = errors.New("no rollback available")
	ErrNoTargetsRemaining  = errors.New("no targets remaining")
	ErrNotStarted          = errors.New("match has not started")
	ErrInvalidOption       = errors.New("invalid match option")
	ErrAlreadyExists       = errors.New("already exists")

	// Returned when stored state breaks an engine invariant. This is a bug,
	// never a user error.
	ErrInvariantViolation = errors.New("engine invariant violated")
)

type ValidationKind uint8

const (
	WrongShipCount ValidationKind = iota + 1
	InvalidShipSize
	OutOfBounds
	Overlap
	NotStraight
)

func (k ValidationKind) String() string {
	switch k {
	case WrongShipCount:
		return "wrong ship count"
	case InvalidShipSize:
		return "invalid ship size"
	case OutOfBounds:
		return "out of bounds"
	case Overlap:
		return "overlap"
	case NotStraight:
		return "not straight"
	default:
		return "unknown"
	}
}

type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Kind, e.Detail)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(kind ValidationKind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Reports the validation kind of err, if any.
func KindOf(err error) (ValidationKind, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return 0, false
}

func ErrMatchNotExists(matchId string) error {
	return fmt.Errorf("%w: match with this id does not exist, id: %s", ErrNotFound, matchId)
}

func ErrMatchExists(matchId string) error {
	return fmt.Errorf("%w: match with this id is already stored, id: %s", ErrAlreadyExists, matchId)
}

func ErrPlayerNotInMatch(matchId, playerId string) error {
	return fmt.Errorf("%w: player %s is not part of match %s", ErrTurnViolation, playerId, matchId)
}

func ErrNotPlayerTurn(playerId string) error {
	return fmt.Errorf("%w: player: %s", ErrTurnViolation, playerId)
}

func ErrFleetAlreadyPlaced(playerId string) error {
	return fmt.Errorf("%w: player: %s", ErrAlreadyPlaced, playerId)
}

func ErrMatchFinished(matchId string) error {
	return fmt.Errorf("%w: id: %s", ErrAlreadyFinished, matchId)
}

func ErrMatchNotStarted(matchId string) error {
	return fmt.Errorf("%w: both fleets must be placed, id: %s", ErrNotStarted, matchId)
}

func ErrRollbackUnavailable(matchId, reason string) error {
	return fmt.Errorf("%w: %s, id: %s", ErrNoRollbackAvailable, reason, matchId)
}

func ErrNoTargets(gridSize int) error {
	return fmt.Errorf("%w: every cell of the %dx%d grid was fired upon", ErrNoTargetsRemaining, gridSize, gridSize)
}

func ErrInvalidGridSize(gridSize, min, max int) error {
	return fmt.Errorf("%w: grid size must be within [%d, %d], got: %d", ErrInvalidOption, min, max, gridSize)
}

func ErrInvalidMatchDifficulty(difficulty int) error {
	return fmt.Errorf("%w: invalid difficulty: %d", ErrInvalidOption, difficulty)
}

func ErrSeatTaken(matchId string) error {
	return fmt.Errorf("%w: match %s already has two players", ErrInvalidOption, matchId)
}

func ErrCorruptMatch(matchId string, cause error) error {
	return fmt.Errorf("%w: match %s: %v", ErrInvariantViolation, matchId, cause)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return NewValidationError(OutOfBounds, "incoming x or y is out of game grid bound\tx: %d\ty: %d", x, y)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("%w: session with this id does not exist, id: %s", ErrNotFound, sessionId)
}

func ErrKeyNotExists(key string) error {
	return fmt.Errorf("the key does not exist:\t%s", key)
}
