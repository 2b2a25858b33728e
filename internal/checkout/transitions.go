package checkout

// State is a step of the payment flow.
type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

func (s State) Match(in State) bool {
	return s == in
}

var flowTransitionChart = StateTransitionChart{
	StateIdle:       {StateCollecting},
	StateCollecting: {StateSubmitting, StateIdle},
	StateSubmitting: {StateSuccess, StateFailed},
	StateFailed:     {StateCollecting},
	StateSuccess:    {StateIdle},
}

type StateTransitionChart map[State][]State

func (s StateTransitionChart) Allowed(from, to State) bool {
	list, exists := s[from]
	if !exists {
		return false
	}
	for _, status := range list {
		if status.Match(to) {
			return true
		}
	}
	return false
}
