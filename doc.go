/*
Package cadre is a hierarchical workflow engine for named runnable units.

It composes three structurally identical layers. A Unit is the smallest
runnable thing: it accepts one textual input plus a run-scoped shared context
and returns text or a structured object. A Group owns named Units and Jobs
(configured unit invocations) and executes them as one declared workflow. An
Organization owns named Groups and Steps and executes named workflows over
them, the same algorithm one level up.

Later entries bind their inputs to earlier results, to the caller's initial
inputs, or to the shared context by dot-path expressions:

	group := cadre.NewGroup("research")
	group.AddUnit(unit.Func("fetcher", "fetches sources", nil, fetch))
	group.AddUnit(unit.Func("writer", "summarizes", nil, write))
	group.AddJob(domain.Job{Name: "gather", UnitName: "fetcher"})
	group.AddJob(domain.Job{
		Name:         "summarize",
		UnitName:     "writer",
		InputMapping: map[string]string{"sources": "results.gather"},
	})
	group.SetWorkflow([]string{"gather", "summarize"})

	results, err := group.Run(ctx, map[string]any{"topic": "go"}, nil)

Failures are contained: an entry that cannot dispatch, rejects or panics
records an *domain.ErrorRecord under its own name and the run continues.
The one fatal error is invoking an organization workflow name that was never
declared. Adjacent entries marked Parallel form a batch that is dispatched
concurrently and joined before the workflow advances.

Every run emits a synchronous event stream on the container's bus (see
pkg/bus); an Organization re-emits all events of its Groups under a
"<group>." prefix so one subscription observes the whole tree.
*/
package cadre
