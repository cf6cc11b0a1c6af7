package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfilerScopesAndCounters(t *testing.T) {
	p := NewProfiler()
	clock := time.Unix(0, 0)
	p.now = func() time.Time { return clock }

	p.BeginScope("shadows")
	clock = clock.Add(2 * time.Millisecond)
	p.EndScope("shadows")
	p.BeginScope("batch")
	clock = clock.Add(time.Millisecond)
	p.EndScope("batch")

	p.SetCount("draws", 4)
	p.AddCount("shadow failures", 1)
	p.AddCount("shadow failures", 2)

	assert.Equal(t, 3*time.Millisecond, p.Total())
	assert.Equal(t, []string{
		"shadows        2.00 ms",
		"batch          1.00 ms",
		"draws          4",
		"shadow failures 3",
	}, p.Lines())

	p.Reset()
	assert.Zero(t, p.Total())
	assert.Zero(t, p.Counts["shadow failures"])
	assert.Equal(t, []string{"shadows", "batch"}, p.Order)
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	p.BeginScope("x")
	p.EndScope("x")
	p.AddCount("x", 1)
	p.Reset()
	assert.Nil(t, p.Lines())
}
