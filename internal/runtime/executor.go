// Package runtime implements the workflow execution engine shared by both
// container levels: Groups coordinating units and Organizations coordinating
// groups run the exact same algorithm over a list of configured entries.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/avells/cadre/pkg/bus"
	"github.com/avells/cadre/pkg/domain"
)

// Target dispatches one materialized input to the entry's runnable: a unit
// for group-level jobs, a group for organization-level steps.
type Target func(ctx context.Context, input string, shared map[string]any) (any, error)

// Entry is one workflow position, fully bound: binding configuration from
// the Job/Step definition plus the resolved dispatch target.
type Entry struct {
	Name      string
	Parallel  bool
	Mapping   map[string]Ref
	Template  string
	OutputKey string

	Target Target

	// ConfigErr carries a run-time configuration failure (e.g. the job
	// references a unit that is not registered). The entry then records an
	// error result without aborting the run.
	ConfigErr error
}

// Executor runs entry lists for one owning container.
type Executor struct {
	owner  string
	bus    *bus.Bus
	logger *slog.Logger
}

// New creates an executor emitting on b and logging to logger. Both may be
// nil; a nop bus and logger are substituted.
func New(owner string, b *bus.Bus, logger *slog.Logger) *Executor {
	if b == nil {
		b = bus.New(owner)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{owner: owner, bus: b, logger: logger}
}

// Run executes the declared entry list and returns the per-run results
// mapping. Per-entry failures are contained in-band as *domain.ErrorRecord;
// Run itself never fails.
//
// Results are a fresh value threaded through the walk, not instance state,
// so concurrent runs on one executor do not interleave.
func (x *Executor) Run(ctx context.Context, workflow string, entries []Entry, initial, shared map[string]any) domain.Results {
	started := time.Now()
	results := make(domain.Results, len(entries))

	x.bus.Emit(domain.EventRunStart, map[string]any{
		"workflow": workflow,
		"entries":  len(entries),
	})

	i := 0
	for i < len(entries) {
		if !entries[i].Parallel {
			e := entries[i]
			input := x.prepare(e, i == 0, results, initial, shared)
			val, rec := x.dispatch(ctx, e, input, shared)
			x.record(e, results, val, rec)
			i++
			continue
		}

		// Maximal contiguous run of parallel-marked entries forms one batch.
		j := i
		for j < len(entries) && entries[j].Parallel {
			j++
		}
		batch := entries[i:j]
		x.runBatch(ctx, batch, i == 0, results, initial, shared)
		i = j
	}

	failures := 0
	for name := range results {
		if results.Failed(name) {
			failures++
		}
	}
	x.bus.Emit(domain.EventRunEnd, map[string]any{
		"workflow": workflow,
		"duration": time.Since(started).Seconds(),
		"errors":   failures,
	})
	return results
}

// RunSingle executes one entry outside the declared workflow order and
// returns its processed result directly. The first-entry input rule applies:
// with no mapping, non-empty initial inputs pass through verbatim.
func (x *Executor) RunSingle(ctx context.Context, e Entry, initial, shared map[string]any) (any, error) {
	input := x.prepare(e, true, domain.Results{}, initial, shared)
	val, rec := x.dispatch(ctx, e, input, shared)
	if rec != nil {
		x.bus.Emit(domain.EventEntryError, map[string]any{"entry": e.Name, "error": rec.Error})
		return nil, fmt.Errorf("entry %s: %s", e.Name, rec.Error)
	}
	x.bus.Emit(domain.EventEntrySuccess, map[string]any{"entry": e.Name})
	return val, nil
}

// runBatch resolves every member's input against the pre-batch results,
// dispatches all members concurrently, and joins before advancing. A failing
// member records its own error slot and never aborts its siblings.
func (x *Executor) runBatch(ctx context.Context, batch []Entry, firstInRun bool, results domain.Results, initial, shared map[string]any) {
	names := make([]string, len(batch))
	inputs := make([]string, len(batch))
	for k, e := range batch {
		names[k] = e.Name
		// Members see only results completed before the batch started.
		inputs[k] = x.prepare(e, firstInRun && k == 0, results, initial, shared)
	}

	x.bus.Emit(domain.EventBatchStart, map[string]any{
		"entries": names,
		"size":    len(batch),
	})

	vals := make([]any, len(batch))
	recs := make([]*domain.ErrorRecord, len(batch))

	var wg sync.WaitGroup
	for k := range batch {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			// Each member writes only its own slot; no lock needed.
			vals[k], recs[k] = x.dispatch(ctx, batch[k], inputs[k], shared)
		}(k)
	}
	wg.Wait()

	// Record and report in declared order for a deterministic event stream.
	for k, e := range batch {
		x.record(e, results, vals[k], recs[k])
	}

	x.bus.Emit(domain.EventBatchEnd, map[string]any{
		"entries": names,
		"size":    len(batch),
	})
}

// prepare resolves the entry's parameters and materializes its input.
//
// An entry without a mapping receives the raw initial inputs when it is the
// first of the run and the run was seeded with any, otherwise an empty
// parameter map. The asymmetry is deliberate and load-bearing for callers
// that seed the opening entry directly.
func (x *Executor) prepare(e Entry, first bool, results domain.Results, initial, shared map[string]any) string {
	x.bus.Emit(domain.EventEntryStart, map[string]any{
		"entry":    e.Name,
		"parallel": e.Parallel,
	})

	var params map[string]any
	switch {
	case len(e.Mapping) > 0:
		src := Sources{Initial: initial, Results: results, Context: shared}
		params = make(map[string]any, len(e.Mapping))
		for name, ref := range e.Mapping {
			val, ok := ref.Resolve(src)
			if !ok {
				x.logger.Warn("input path did not resolve",
					"entry", e.Name, "param", name, "path", ref.Raw)
				x.bus.Emit(domain.EventResolveWarning, map[string]any{
					"entry": e.Name,
					"param": name,
					"path":  ref.Raw,
				})
			}
			params[name] = val
		}
	case first && len(initial) > 0:
		params = make(map[string]any, len(initial))
		for k, v := range initial {
			params[k] = v
		}
	default:
		params = map[string]any{}
	}

	input := Materialize(params, e.Template)
	x.bus.Emit(domain.EventEntryInputPrepared, map[string]any{
		"entry": e.Name,
		"input": input,
	})
	return input
}

// dispatch invokes the entry's target, containing configuration errors,
// rejections and panics as error records.
func (x *Executor) dispatch(ctx context.Context, e Entry, input string, shared map[string]any) (any, *domain.ErrorRecord) {
	if e.ConfigErr != nil {
		return nil, domain.NewErrorRecord(e.ConfigErr, "entry "+e.Name)
	}
	if e.Target == nil {
		return nil, domain.NewErrorRecord(fmt.Errorf("entry %s has no dispatch target", e.Name), "")
	}

	raw, details, err := x.call(ctx, e, input, shared)
	if err != nil {
		return nil, domain.NewErrorRecord(err, details)
	}
	return x.extract(e, raw), nil
}

func (x *Executor) call(ctx context.Context, e Entry, input string, shared map[string]any) (raw any, details string, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			details = string(debug.Stack())
			err = fmt.Errorf("panic in entry %s: %v", e.Name, r)
		}
	}()
	raw, err = e.Target(ctx, input, shared)
	if err != nil {
		details = fmt.Sprintf("entry %s: %v", e.Name, err)
	}
	return raw, details, err
}

// extract applies output-key extraction. A declared key missing from the
// result (or a non-structured result) stores the full raw value and emits a
// diagnostic, never a hard failure.
func (x *Executor) extract(e Entry, raw any) any {
	if e.OutputKey == "" {
		return raw
	}
	if m, ok := asMap(raw); ok {
		if val, ok := m[e.OutputKey]; ok {
			return val
		}
	}
	x.logger.Debug("output key missing, storing full result",
		"entry", e.Name, "key", e.OutputKey)
	x.bus.Emit(domain.EventOutputKeyFallback, map[string]any{
		"entry": e.Name,
		"key":   e.OutputKey,
	})
	return raw
}

func (x *Executor) record(e Entry, results domain.Results, val any, rec *domain.ErrorRecord) {
	if rec != nil {
		results[e.Name] = rec
		x.logger.Error("entry failed", "entry", e.Name, "err", rec.Error)
		x.bus.Emit(domain.EventEntryError, map[string]any{
			"entry": e.Name,
			"error": rec.Error,
		})
		return
	}
	results[e.Name] = val
	x.bus.Emit(domain.EventEntrySuccess, map[string]any{
		"entry": e.Name,
	})
}
