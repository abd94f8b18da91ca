package model

// OutcomeKind classifies the terminal state of one mission-processing cycle.
type OutcomeKind int

const (
	// OutcomeConfirmed means the dispatch submission went through (or no
	// indicator was rendered, which the game treats as success).
	OutcomeConfirmed OutcomeKind = iota
	// OutcomePersonnelShortage means the submission was rejected because one
	// or more units lacked crew or qualification.
	OutcomePersonnelShortage
	// OutcomeFailed covers any other rejection; the mission is retried on
	// the next cycle.
	OutcomeFailed
	// OutcomeAlreadySatisfied means nothing was required and nothing was
	// submitted.
	OutcomeAlreadySatisfied
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomePersonnelShortage:
		return "personnel_shortage"
	case OutcomeFailed:
		return "failed"
	case OutcomeAlreadySatisfied:
		return "already_satisfied"
	}
	return "unknown"
}

// Outcome is the result of processing a single mission.
type Outcome struct {
	Kind         OutcomeKind
	Message      string
	Source       string // requirement strategy that produced the profile
	Requirements Profile
	Committed    []string         // unit ids committed during selection
	OutOfService []string         // unit ids moved to status 6
	Shortfall    map[Category]int // requirement counts left unfilled
}
