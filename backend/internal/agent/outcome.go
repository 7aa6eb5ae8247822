package agent

// OutcomeKind classifies how an agent run ended.
type OutcomeKind int

const (
	// OutcomeFinalized means the model produced a final answer (possibly
	// empty when a tool already posted the visible output).
	OutcomeFinalized OutcomeKind = iota

	// OutcomeDeferred means destructive actions are waiting for the
	// requester's confirmation. The run is over; a later interaction
	// resolves the batch.
	OutcomeDeferred

	// OutcomeIterationsExceeded means the loop hit its iteration cap while
	// the model was still issuing tool calls.
	OutcomeIterationsExceeded

	// OutcomeFailed means the run aborted on an unrecoverable error.
	OutcomeFailed
)

// Outcome is the terminal state of one agent run.
type Outcome struct {
	Kind    OutcomeKind
	Content string // final reply text; empty on a silent finish

	// ConfirmationID and Prompt are set when Kind is OutcomeDeferred.
	ConfirmationID string
	Prompt         string

	// SearchResults carries the formatted text of the last successful web
	// search, so delivery can offer it as a paste link when it is long.
	SearchResults string

	// Acted reports whether any state-changing tool ran during the loop,
	// regardless of how the run ended.
	Acted bool

	Err error // set when Kind is OutcomeFailed
}
