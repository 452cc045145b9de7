package reconcile

import "fmt"

// State is the terminal state of a single entity's reconciliation.
// The only multi-hop path is pending -> created-attempt -> updated, taken
// when the create is rejected with a duplicate-object conflict. Everything
// else resolves in one hop.
type State string

const (
	// StateCreated means the entity was created upstream.
	StateCreated State = "created"
	// StateUpdated means the create hit a conflict and the follow-up
	// update succeeded.
	StateUpdated State = "updated"
	// StateDisabled means the soft-deleted entity was deactivated.
	StateDisabled State = "disabled"
	// StateFailed means the entity could not be reconciled.
	StateFailed State = "failed"
)

// Result records what happened to one entity of a batch.
type Result struct {
	// Index is the entity's position in the input batch.
	Index int `json:"index"`
	// Identity is the resolved upstream identity, empty when none was found.
	Identity string `json:"identity,omitempty"`
	// State is the terminal state.
	State State `json:"state"`
	// Err is the failure cause for StateFailed results.
	Err error `json:"-"`
}

// Summary aggregates the outcome of a batch run.
type Summary struct {
	Total    int `json:"total"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Disabled int `json:"disabled"`
	Failed   int `json:"failed"`
}

// summarize tallies results into a Summary.
func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.State {
		case StateCreated:
			s.Created++
		case StateUpdated:
			s.Updated++
		case StateDisabled:
			s.Disabled++
		case StateFailed:
			s.Failed++
		}
	}
	return s
}

// MissingIdentityError reports an entity that carries neither an id nor a
// principal name, so no upstream resource can be addressed for it.
type MissingIdentityError struct {
	// Index is the entity's position in the input batch.
	Index int
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("entity %d has no usable identity, at least id or userPrincipalName needed", e.Index)
}
