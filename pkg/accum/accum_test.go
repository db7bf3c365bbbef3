package accum

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/sindy-3/pkg/substrate"
)

func TestCounterCountsEveryAdd(t *testing.T) {
	c := &Counter{}
	for i := 0; i < 5; i++ {
		c.Add(i)
	}
	require.Equal(t, uint64(5), c.Count())
}

func TestCounterConcurrentAdds(t *testing.T) {
	c := &Counter{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(nil)
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(100), c.Count())
}

func TestExactDistinctSet(t *testing.T) {
	s := NewExactDistinctSet()
	s.AddValue("a")
	s.AddValue("b")
	s.AddValue("a")
	require.Equal(t, uint64(2), s.Estimate())
}

func TestApproxDistinctSetRoughlyAccurate(t *testing.T) {
	s := NewApproxDistinctSet()
	for i := 0; i < 1000; i++ {
		s.AddValue("value-" + strconv.Itoa(i))
	}
	estimate := s.Estimate()
	require.InDelta(t, 1000, estimate, 100)
}

func TestDistinctAccumulatorExtractsKey(t *testing.T) {
	set := NewExactDistinctSet()
	acc := NewDistinctAccumulator(set, func(r substrate.Record) string { return r.(string) })
	acc.Add("x")
	acc.Add("y")
	acc.Add("x")
	require.Equal(t, uint64(2), acc.Estimate())
}

func TestMaxTracker(t *testing.T) {
	m := NewMaxTracker()
	m.Observe(1, 3)
	m.Observe(1, 7)
	m.Observe(1, 2)
	m.Observe(2, 9)
	require.Equal(t, uint32(7), m.Get(1))
	require.Equal(t, uint32(9), m.Get(2))
	require.Equal(t, uint32(0), m.Get(3))

	snap := m.Snapshot()
	require.Equal(t, map[uint32]uint32{1: 7, 2: 9}, snap)
}
