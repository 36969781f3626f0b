package game

import "errors"

// Phase represents the current stage of a match.
type Phase string

const (
	PhaseAwaitingShot    Phase = "AWAITING_SHOT"
	PhaseBallsMoving     Phase = "BALLS_MOVING"
	PhaseTurnResolution  Phase = "TURN_RESOLUTION"
	PhaseColourSelection Phase = "COLOUR_SELECTION"
	PhaseGameOver        Phase = "GAME_OVER"
)

// CueEnabled reports whether a shot may be fired in this phase.
func (p Phase) CueEnabled() bool {
	return p == PhaseAwaitingShot
}

var (
	ErrInvalidConfig     = errors.New("invalid table configuration")
	ErrDuplicateBall     = errors.New("duplicate ball identity")
	ErrWhiteBall         = errors.New("table needs exactly one white ball")
	ErrWrongPhase        = errors.New("command not allowed in current phase")
	ErrInvalidNomination = errors.New("nomination must target a colour ball")
	ErrNoFreePosition    = errors.New("no free position for replacement")
	ErrEngineStopped     = errors.New("engine stopped")
)
