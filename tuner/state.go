package tuner

// State is the lifecycle phase of a DetectionLoop
type State int32

const (
	// StateIdle: created, not started
	StateIdle State = iota
	// StateActive: ticking on the loop goroutine
	StateActive
	// StateCancelled is terminal. Nothing is published once it is reached.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
