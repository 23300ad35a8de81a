package observability_test

import (
	"testing"

	"github.com/avells/cadre/pkg/bus"
	"github.com/avells/cadre/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_MergesMultipleBuses(t *testing.T) {
	a := observability.NewAggregator(16)
	defer a.Close()

	b1 := bus.New("research")
	b2 := bus.New("review")
	a.Watch(b1)
	a.Watch(b2)

	b1.Emit("run-start", nil)
	b2.Emit("run-start", nil)
	b1.Emit("run-end", nil)

	var sources []string
	for i := 0; i < 3; i++ {
		e := <-a.Events()
		sources = append(sources, e.Source)
	}
	assert.Equal(t, []string{"research", "review", "research"}, sources)
}

func TestAggregator_DropsWhenFull(t *testing.T) {
	a := observability.NewAggregator(1)
	defer a.Close()

	b := bus.New("busy")
	a.Watch(b)

	b.Emit("one", nil)
	b.Emit("two", nil)

	assert.Equal(t, uint64(1), a.Dropped())
	e := <-a.Events()
	assert.Equal(t, "one", e.Name)
}

func TestAggregator_CloseDetachesAndClosesChannel(t *testing.T) {
	a := observability.NewAggregator(4)
	b := bus.New("src")
	a.Watch(b)

	b.Emit("before", nil)
	a.Close()
	b.Emit("after", nil)

	e, ok := <-a.Events()
	require.True(t, ok)
	assert.Equal(t, "before", e.Name)

	_, ok = <-a.Events()
	assert.False(t, ok, "channel must be closed")
}
