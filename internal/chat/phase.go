// Package chat runs conversation turns through the interpret, fetch and
// summarize pipeline and keeps the session transcript.
package chat

// Phase is the position of a turn in the pipeline.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseSubmitted         Phase = "submitted"
	PhaseUnderstanding     Phase = "understanding"
	PhaseGeneralAnswer     Phase = "general_answer"
	PhaseFetching          Phase = "fetching"
	PhaseFetchFailed       Phase = "fetch_failed"
	PhaseSyntheticFetching Phase = "synthetic_fetching"
	PhaseSummarizing       Phase = "summarizing"
	PhaseResolved          Phase = "resolved"
)

// Status labels shown while a turn is in flight.
const (
	StatusUnderstanding = "Understanding your query…"
	StatusRetrieving    = "Retrieving data…"
	StatusSummarizing   = "Summarizing the data…"
)

// Policy controls whether turns of one conversation may overlap.
type Policy string

const (
	// PolicyOverlap lets a new turn start while earlier ones are in flight.
	// Assistant messages land in resolution order.
	PolicyOverlap Policy = "overlap"
	// PolicySerial admits one turn at a time in arrival order.
	PolicySerial Policy = "serial"
)

func ParsePolicy(s string) (Policy, bool) {
	switch Policy(s) {
	case "", PolicyOverlap:
		return PolicyOverlap, true
	case PolicySerial:
		return PolicySerial, true
	default:
		return "", false
	}
}
