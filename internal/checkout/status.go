package checkout

type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusValidating Status = "VALIDATING"
	StatusSubmitting Status = "SUBMITTING"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

var transitions = map[Status][]Status{
	StatusIdle:       {StatusValidating},
	StatusValidating: {StatusIdle, StatusSubmitting},
	StatusSubmitting: {StatusSucceeded, StatusFailed},
	StatusSucceeded:  {StatusIdle, StatusValidating},
	StatusFailed:     {StatusIdle},
}

func CanTransitionTo(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Busy reports whether a submission owns the orchestrator.
func (s Status) Busy() bool {
	return s == StatusValidating || s == StatusSubmitting
}

func (s Status) String() string {
	return string(s)
}
