package governor

import "time"

// #region mode

// Mode is the governor's operating mode. The set is closed; anything outside
// these four values is a bug.
type Mode string

const (
	ModeCritical    Mode = "critical"
	ModeStabilizing Mode = "stabilizing"
	ModeExploring   Mode = "exploring"
	ModeOptimal     Mode = "optimal"
)

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeCritical, ModeStabilizing, ModeExploring, ModeOptimal:
		return true
	}
	return false
}

// #endregion mode

// #region state

// State is the governor's published state. Mutated only by Step, on the
// governor loop; readers get copies.
type State struct {
	Mode             Mode      `json:"mode"`
	Eta              float64   `json:"eta"`
	Frozen           bool      `json:"frozen"`
	LastTransitionAt time.Time `json:"last_transition_at"`
}

// #endregion state

// #region step-result

// StepResult reports what one governor cycle did.
type StepResult struct {
	State        State
	Transitioned bool
	PrevMode     Mode
	Reason       string
}

// #endregion step-result
