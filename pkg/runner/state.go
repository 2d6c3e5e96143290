package runner

// State of a runner's lifecycle.
// Idle -> Loading -> Running -> {Stopped, Finished, Failed}
type State int32

const (
	StateIdle     State = iota // Constructed, not started
	StateLoading               // Model load in progress
	StateRunning               // Pulling frames and publishing results
	StateStopped               // Cooperative stop was requested and honored
	StateFinished              // The source was exhausted
	StateFailed                // An unrecoverable error ended the run
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal returns true once the run can never produce another result.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateFinished || s == StateFailed
}
