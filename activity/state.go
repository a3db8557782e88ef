package activity

// State is the externally visible condition of a Poller.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateTicking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateTicking:
		return "ticking"
	default:
		return "unknown"
	}
}
