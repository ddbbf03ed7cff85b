package harness

import (
	"github.com/roach88/storefront/internal/state"
)

// Snapshot is the observable session after a step.
type Snapshot struct {
	Catalog       []int64  `json:"catalog"`
	Fetching      bool     `json:"fetching"`
	FetchDone     bool     `json:"fetchDone"`
	Bag           []int64  `json:"bag"`
	Wishlist      []int64  `json:"wishlist"`
	Authenticated bool     `json:"authenticated"`
	User          string   `json:"user,omitempty"`
	Persisted     bool     `json:"persisted"`
	View          string   `json:"view"`
	Path          string   `json:"path"`
	SearchText    string   `json:"searchText,omitempty"`
	Category      string   `json:"category,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// TraceEvent is one executed step.
type TraceEvent struct {
	Seq     int      `json:"seq"`
	Command string   `json:"command"`
	Error   string   `json:"error,omitempty"`
	State   Snapshot `json:"state"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is false when any step expectation or assertion failed.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Output is the shell transcript of all steps.
	Output string `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Final returns the snapshot after the last step.
func (r *Result) Final() Snapshot {
	if len(r.Trace) == 0 {
		return Snapshot{}
	}
	return r.Trace[len(r.Trace)-1].State
}

func ids(in []int64) []int64 {
	return append([]int64{}, in...)
}

func catalogIDs(st state.State) []int64 {
	out := make([]int64, 0, len(st.Catalog))
	for _, it := range st.Catalog {
		out = append(out, it.ID)
	}
	return out
}
