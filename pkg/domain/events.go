package domain

// Event names emitted by the workflow executor. Organizations re-emit every
// event of a contained Group under "<group>.<event>", so a single top-level
// subscription observes the full nested activity stream.
const (
	EventRunStart = "run-start"
	EventRunEnd   = "run-end"

	EventEntryStart         = "entry-start"
	EventEntryInputPrepared = "entry-input-prepared"
	EventEntrySuccess       = "entry-success"
	EventEntryError         = "entry-error"

	EventBatchStart = "parallel-batch-start"
	EventBatchEnd   = "parallel-batch-end"

	// Diagnostics. Non-fatal by design: an unresolved path binds the
	// sentinel, a missing output key stores the full result.
	EventResolveWarning    = "resolve-warning"
	EventOutputKeyFallback = "output-key-fallback"
)
