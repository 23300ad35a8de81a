package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/avells/cadre/internal/runtime"
	"github.com/avells/cadre/pkg/bus"
	"github.com/avells/cadre/pkg/domain"
)

func mustRef(t *testing.T, path string) runtime.Ref {
	t.Helper()
	ref, err := runtime.ParseRef(path)
	if err != nil {
		t.Fatalf("ParseRef(%q): %v", path, err)
	}
	return ref
}

// echoTarget records the input it received and returns result.
func echoTarget(got *[]string, mu *sync.Mutex, result any) runtime.Target {
	return func(ctx context.Context, input string, shared map[string]any) (any, error) {
		mu.Lock()
		*got = append(*got, input)
		mu.Unlock()
		return result, nil
	}
}

func TestRun_SequentialOrderAndBinding(t *testing.T) {
	var order []string
	var mu sync.Mutex

	entries := []runtime.Entry{
		{
			Name:   "jobA",
			Target: echoTarget(&order, &mu, "a-result"),
		},
		{
			Name:    "jobB",
			Mapping: map[string]runtime.Ref{"x": mustRef(t, "results.jobA")},
			Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
				mu.Lock()
				order = append(order, input)
				mu.Unlock()
				return "b-result", nil
			},
		},
	}

	x := runtime.New("g", nil, nil)
	results := x.Run(context.Background(), "main", entries, map[string]any{"q": "hi"}, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 result slots, got %d", len(results))
	}
	if results["jobA"] != "a-result" || results["jobB"] != "b-result" {
		t.Errorf("unexpected results: %v", results)
	}

	// jobA has no mapping and is first: raw initial inputs pass through
	// (single param, direct value).
	if order[0] != "hi" {
		t.Errorf("jobA expected raw initial input 'hi', got %q", order[0])
	}
	// jobB's x resolves to jobA's stored result.
	if order[1] != "a-result" {
		t.Errorf("jobB expected 'a-result', got %q", order[1])
	}
}

func TestRun_MappinglessNonFirstGetsEmptyInput(t *testing.T) {
	var inputs []string
	var mu sync.Mutex

	entries := []runtime.Entry{
		{Name: "first", Target: echoTarget(&inputs, &mu, "r1")},
		{Name: "second", Target: echoTarget(&inputs, &mu, "r2")},
	}

	x := runtime.New("g", nil, nil)
	x.Run(context.Background(), "main", entries, map[string]any{"seed": "s"}, nil)

	if inputs[0] != "s" {
		t.Errorf("first entry: expected seeded input, got %q", inputs[0])
	}
	if inputs[1] != "" {
		t.Errorf("second entry: expected empty input, got %q", inputs[1])
	}
}

func TestRun_ParallelBatchJoinsBeforeAdvancing(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)

	blocking := func(name string, result any) runtime.Target {
		return func(ctx context.Context, input string, shared map[string]any) (any, error) {
			started <- name
			<-release
			return result, nil
		}
	}

	var cInput string
	entries := []runtime.Entry{
		{Name: "jobA", Parallel: true, Target: blocking("jobA", "ra")},
		{Name: "jobB", Parallel: true, Target: blocking("jobB", "rb")},
		{
			Name: "jobC",
			Mapping: map[string]runtime.Ref{
				"a": mustRef(t, "results.jobA"),
				"b": mustRef(t, "results.jobB"),
			},
			Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
				cInput = input
				return "rc", nil
			},
		},
	}

	done := make(chan domain.Results, 1)
	x := runtime.New("g", nil, nil)
	go func() {
		done <- x.Run(context.Background(), "main", entries, nil, nil)
	}()

	// Both batch members must be dispatched before either resolves.
	<-started
	<-started
	close(release)

	results := <-done
	if results["jobA"] != "ra" || results["jobB"] != "rb" || results["jobC"] != "rc" {
		t.Fatalf("unexpected results: %v", results)
	}
	// jobC ran after the join and saw both batch results.
	for _, want := range []string{"ra", "rb"} {
		if !strings.Contains(cInput, want) {
			t.Errorf("jobC input missing %q: %s", want, cInput)
		}
	}
}

func TestRun_ParallelFailureIsContained(t *testing.T) {
	entries := []runtime.Entry{
		{Name: "ok", Parallel: true, Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return "fine", nil
		}},
		{Name: "bad", Parallel: true, Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return nil, errors.New("exploded")
		}},
		{Name: "after", Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return "still ran", nil
		}},
	}

	x := runtime.New("g", nil, nil)
	results := x.Run(context.Background(), "main", entries, nil, nil)

	if results["ok"] != "fine" {
		t.Errorf("sibling result lost: %v", results["ok"])
	}
	if !results.Failed("bad") {
		t.Fatalf("expected error record for 'bad', got %v", results["bad"])
	}
	if results.Err("bad").Error != "exploded" {
		t.Errorf("unexpected error message: %q", results.Err("bad").Error)
	}
	if results["after"] != "still ran" {
		t.Errorf("run did not continue past failing batch: %v", results["after"])
	}
}

func TestRun_ConfigErrorRecordedAndRunContinues(t *testing.T) {
	entries := []runtime.Entry{
		{Name: "broken", ConfigErr: fmt.Errorf("%w: ghost", domain.ErrUnknownUnit)},
		{Name: "next", Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return "ok", nil
		}},
	}

	x := runtime.New("g", nil, nil)
	results := x.Run(context.Background(), "main", entries, nil, nil)

	rec := results.Err("broken")
	if rec == nil {
		t.Fatal("expected error record for 'broken'")
	}
	if !strings.Contains(rec.Error, "unknown unit") {
		t.Errorf("expected unit-not-found error, got %q", rec.Error)
	}
	if results["next"] != "ok" {
		t.Errorf("subsequent entry did not run: %v", results["next"])
	}
}

func TestRun_PanicRecoveredWithTrace(t *testing.T) {
	entries := []runtime.Entry{
		{Name: "panicky", Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			panic("unit blew up")
		}},
	}

	x := runtime.New("g", nil, nil)
	results := x.Run(context.Background(), "main", entries, nil, nil)

	rec := results.Err("panicky")
	if rec == nil {
		t.Fatal("expected error record")
	}
	if !strings.Contains(rec.Error, "unit blew up") {
		t.Errorf("panic message missing: %q", rec.Error)
	}
	if rec.Details == "" {
		t.Error("expected stack trace in details")
	}
}

func TestRun_OutputKeyExtraction(t *testing.T) {
	structured := map[string]any{"a": 1, "b": 2}

	entries := []runtime.Entry{
		{Name: "hit", OutputKey: "b", Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return structured, nil
		}},
		{Name: "miss", OutputKey: "c", Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return structured, nil
		}},
		{Name: "text", OutputKey: "b", Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return "not structured", nil
		}},
	}

	b := bus.New("g")
	var fallbacks []string
	b.On(domain.EventOutputKeyFallback, func(e bus.Event) {
		fallbacks = append(fallbacks, e.Payload["entry"].(string))
	})

	x := runtime.New("g", b, nil)
	results := x.Run(context.Background(), "main", entries, nil, nil)

	if results["hit"] != 2 {
		t.Errorf("expected extracted value 2, got %v", results["hit"])
	}
	if got, ok := results["miss"].(map[string]any); !ok || got["a"] != 1 {
		t.Errorf("expected full fallback result, got %v", results["miss"])
	}
	if results["text"] != "not structured" {
		t.Errorf("expected raw result, got %v", results["text"])
	}
	if len(fallbacks) != 2 {
		t.Errorf("expected 2 fallback diagnostics, got %v", fallbacks)
	}
}

func TestRun_EventStream(t *testing.T) {
	b := bus.New("g")
	var names []string
	b.OnAny(func(e bus.Event) { names = append(names, e.Name) })

	entries := []runtime.Entry{
		{Name: "p1", Parallel: true, Target: func(ctx context.Context, input string, shared map[string]any) (any, error) { return 1, nil }},
		{Name: "p2", Parallel: true, Target: func(ctx context.Context, input string, shared map[string]any) (any, error) { return 2, nil }},
		{Name: "s1", Target: func(ctx context.Context, input string, shared map[string]any) (any, error) { return 3, nil }},
	}

	x := runtime.New("g", b, nil)
	x.Run(context.Background(), "main", entries, nil, nil)

	want := []string{
		domain.EventRunStart,
		domain.EventEntryStart, domain.EventEntryInputPrepared, // p1
		domain.EventEntryStart, domain.EventEntryInputPrepared, // p2
		domain.EventBatchStart,
		domain.EventEntrySuccess, domain.EventEntrySuccess,
		domain.EventBatchEnd,
		domain.EventEntryStart, domain.EventEntryInputPrepared, domain.EventEntrySuccess, // s1
		domain.EventRunEnd,
	}
	if len(names) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(names), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestRun_ResolveWarningEmitted(t *testing.T) {
	b := bus.New("g")
	var warned []string
	b.On(domain.EventResolveWarning, func(e bus.Event) {
		warned = append(warned, e.Payload["path"].(string))
	})

	var got string
	entries := []runtime.Entry{
		{
			Name:     "lonely",
			Mapping:  map[string]runtime.Ref{"x": mustRef(t, "results.nothing")},
			Template: "value: {{x}}",
			Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
				got = input
				return nil, nil
			},
		},
	}

	x := runtime.New("g", b, nil)
	x.Run(context.Background(), "main", entries, nil, nil)

	if len(warned) != 1 || warned[0] != "results.nothing" {
		t.Errorf("expected resolve warning for results.nothing, got %v", warned)
	}
	if got != "value: {{x}}" {
		t.Errorf("unresolved placeholder should stay literal, got %q", got)
	}
}

func TestRunSingle(t *testing.T) {
	x := runtime.New("g", nil, nil)

	val, err := x.RunSingle(context.Background(), runtime.Entry{
		Name: "solo",
		Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return "solo:" + input, nil
		},
	}, map[string]any{"seed": "s"}, nil)
	if err != nil {
		t.Fatalf("RunSingle failed: %v", err)
	}
	// Single-entry invocation applies the first-entry input rule.
	if val != "solo:s" {
		t.Errorf("unexpected result: %v", val)
	}

	_, err = x.RunSingle(context.Background(), runtime.Entry{
		Name: "failing",
		Target: func(ctx context.Context, input string, shared map[string]any) (any, error) {
			return nil, errors.New("nope")
		},
	}, nil, nil)
	if err == nil {
		t.Fatal("expected error from failing single entry")
	}
}
