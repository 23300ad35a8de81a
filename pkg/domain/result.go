package domain

import (
	"encoding/json"
	"time"
)

// Results maps entry names to their recorded outcome for one run.
// A failed entry holds an *ErrorRecord instead of a result value.
type Results map[string]any

// Failed reports whether the named entry recorded an error.
func (r Results) Failed(name string) bool {
	_, ok := r[name].(*ErrorRecord)
	return ok
}

// Err returns the error record for the named entry, or nil.
func (r Results) Err(name string) *ErrorRecord {
	rec, _ := r[name].(*ErrorRecord)
	return rec
}

// ErrorRecord is the in-band representation of a contained entry failure.
// Runs do not abort on entry failures; callers inspect result slots instead.
type ErrorRecord struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NewErrorRecord captures err with optional diagnostic details.
func NewErrorRecord(err error, details string) *ErrorRecord {
	rec := &ErrorRecord{Details: details}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// RunRecord is a finished run as persisted by a RunStore.
type RunRecord struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	Workflow   string    `json:"workflow"`
	Results    Results   `json:"results"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// unresolvedValue is the sentinel bound to parameters whose source path did
// not resolve. It stringifies and marshals visibly so failures show up in
// materialized payloads instead of being blanked.
type unresolvedValue struct{}

func (unresolvedValue) String() string { return "<unresolved>" }

func (unresolvedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal("<unresolved>")
}

// Unresolved is the sentinel value for parameters that failed to resolve.
var Unresolved unresolvedValue

// IsUnresolved reports whether v is the unresolved sentinel.
func IsUnresolved(v any) bool {
	_, ok := v.(unresolvedValue)
	return ok
}
