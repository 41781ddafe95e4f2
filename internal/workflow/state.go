package workflow

// State is a point in the pipeline. The states are strictly ordered; a run
// only moves forward.
type State int

const (
	StateInit State = iota
	StateRegistered
	StateScheduled
	StateResultFetched
	StateLogDownloaded
)

var stateNames = map[State]string{
	StateInit:          "init",
	StateRegistered:    "registered",
	StateScheduled:     "scheduled",
	StateResultFetched: "result-fetched",
	StateLogDownloaded: "log-downloaded",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
