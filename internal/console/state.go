package console

// RunState names one stage of a click-to-completion cycle. Making the
// machine explicit keeps suspension points and error boundaries
// enumerable instead of implied by call order.
type RunState int

const (
	StateIdle RunState = iota
	StateValidating
	StateAwaitingDetection
	StatePresenting
	StateAwaitingSensor
	StateDone
	StateErrorTerminal
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateAwaitingDetection:
		return "awaiting_detection"
	case StatePresenting:
		return "presenting"
	case StateAwaitingSensor:
		return "awaiting_sensor"
	case StateDone:
		return "done"
	case StateErrorTerminal:
		return "error"
	default:
		return "unknown"
	}
}

// transitions is the full table of legal moves. StateDone and
// StateErrorTerminal are the only exits.
var transitions = map[RunState][]RunState{
	StateIdle:              {StateValidating},
	StateValidating:        {StateAwaitingDetection, StateErrorTerminal},
	StateAwaitingDetection: {StatePresenting, StateErrorTerminal},
	StatePresenting:        {StateAwaitingSensor, StateDone},
	StateAwaitingSensor:    {StateDone},
}

func canTransition(from, to RunState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
