package substrate

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type countAccumulator struct {
	mu    sync.Mutex
	count int
}

func (c *countAccumulator) Add(Record) {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func TestFlatMapExpandsRecords(t *testing.T) {
	sub := NewLocal()
	src := FromSlice([]Record{1, 2, 3})
	doubled := sub.FlatMap(src, func(r Record) ([]Record, error) {
		n := r.(int)
		return []Record{n, n}, nil
	})

	var out []Record
	sub.Output(doubled, func(r Record) error {
		out = append(out, r)
		return nil
	})
	_, err := sub.Execute(context.Background(), "flatmap-test")
	require.NoError(t, err)
	require.Len(t, out, 6)
}

func TestGroupByReduceSumsPerKey(t *testing.T) {
	sub := NewLocal()
	type pair struct {
		key string
		val int
	}
	src := FromSlice([]Record{
		pair{"a", 1}, pair{"b", 2}, pair{"a", 3},
	})
	grouped := sub.GroupByReduce(src,
		func(r Record) string { return r.(pair).key },
		func(key string, values []Record) (Record, error) {
			sum := 0
			for _, v := range values {
				sum += v.(pair).val
			}
			return pair{key, sum}, nil
		},
	)

	var out []pair
	var mu sync.Mutex
	sub.Output(grouped, func(r Record) error {
		mu.Lock()
		out = append(out, r.(pair))
		mu.Unlock()
		return nil
	})
	_, err := sub.Execute(context.Background(), "group-test")
	require.NoError(t, err)

	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	require.Equal(t, []pair{{"a", 4}, {"b", 2}}, out)
}

func TestGroupByReduceHintedRunsSequentially(t *testing.T) {
	sub := NewLocalHinted(true)
	type pair struct {
		key string
		val int
	}
	src := FromSlice([]Record{
		pair{"a", 1}, pair{"b", 2}, pair{"a", 3},
	})
	var inFlight, maxInFlight int32
	grouped := sub.GroupByReduce(src,
		func(r Record) string { return r.(pair).key },
		func(key string, values []Record) (Record, error) {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for m := atomic.LoadInt32(&maxInFlight); n > m && !atomic.CompareAndSwapInt32(&maxInFlight, m, n); m = atomic.LoadInt32(&maxInFlight) {
			}
			sum := 0
			for _, v := range values {
				sum += v.(pair).val
			}
			return pair{key, sum}, nil
		},
	)

	var out []pair
	sub.Output(grouped, func(r Record) error {
		out = append(out, r.(pair))
		return nil
	})
	_, err := sub.Execute(context.Background(), "group-hinted-test")
	require.NoError(t, err)

	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	require.Equal(t, []pair{{"a", 4}, {"b", 2}}, out)
	require.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestBroadcastFeedsAccumulatorAndPassesThrough(t *testing.T) {
	sub := NewLocal()
	src := FromSlice([]Record{1, 2, 3, 4})
	acc := &countAccumulator{}
	broadcasted := sub.Broadcast(src, "count", acc)

	var out []Record
	sub.Output(broadcasted, func(r Record) error {
		out = append(out, r)
		return nil
	})
	result, err := sub.Execute(context.Background(), "broadcast-test")
	require.NoError(t, err)
	require.Len(t, out, 4)
	require.Equal(t, 4, acc.count)
	require.Same(t, acc, result.GetAccumulatorResult("count"))
}

func TestExecutePropagatesStageError(t *testing.T) {
	sub := NewLocal()
	src := FromSlice([]Record{1})
	failing := sub.FlatMap(src, func(r Record) ([]Record, error) {
		return nil, context.DeadlineExceeded
	})
	sub.Output(failing, func(r Record) error { return nil })
	_, err := sub.Execute(context.Background(), "fail-test")
	require.Error(t, err)
}
