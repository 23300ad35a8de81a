package domain

import "errors"

// ErrUnknownWorkflow is the one fatal run-time configuration error: invoking
// a workflow name that was never declared aborts the run with no results.
var ErrUnknownWorkflow = errors.New("unknown workflow")

// ErrUnknownJob is returned when a single-job invocation names a job that is
// not registered on the group.
var ErrUnknownJob = errors.New("unknown job")

// ErrUnknownGroup is returned when a step references a group that is not
// registered on the organization.
var ErrUnknownGroup = errors.New("unknown group")

// ErrUnknownUnit is returned when a job references a unit that is not
// registered on the group at run time.
var ErrUnknownUnit = errors.New("unknown unit")

// ErrRunNotFound is returned by run stores for missing run IDs.
var ErrRunNotFound = errors.New("run not found")
