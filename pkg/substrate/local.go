package substrate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
)

// Local is the in-process default Substrate implementation. It drives
// every stage with golang.org/x/sync/errgroup: a group-by/reduce
// stage materializes its input sequentially (the keying step must see
// every record of a group before reducing it) and then, by default,
// reduces groups concurrently, one goroutine per group, exactly the
// fan-out/fan-in shape pkg/ccl/sqlccl/csv.go uses to convert CSV files
// in parallel.
type Local struct {
	mu                    sync.Mutex
	outputs               []outputStage
	accumulators          map[string]Accumulator
	sequentialGroupReduce bool
}

type outputStage struct {
	source Source
	sink   func(Record) error
}

// NewLocal creates an empty Local substrate that reduces groups
// concurrently.
func NewLocal() *Local {
	return &Local{accumulators: make(map[string]Accumulator)}
}

// NewLocalHinted creates an empty Local substrate, honoring
// config.Config.NotUseGroupOperators: when set, GroupByReduce reduces
// every group sequentially on the calling goroutine instead of
// fanning out one goroutine per group, per spec.md §6's "hint the
// execution substrate to avoid combiner-style group operators".
func NewLocalHinted(notUseGroupOperators bool) *Local {
	return &Local{accumulators: make(map[string]Accumulator), sequentialGroupReduce: notUseGroupOperators}
}

// FlatMap implements Substrate.
func (l *Local) FlatMap(source Source, fn FlatMapFunc) Source {
	return flatMapSource{parent: source, fn: fn}
}

type flatMapSource struct {
	parent Source
	fn     FlatMapFunc
}

func (s flatMapSource) Emit(ctx context.Context, fn func(Record) error) error {
	return s.parent.Emit(ctx, func(r Record) error {
		outs, err := s.fn(r)
		if err != nil {
			return err
		}
		for _, o := range outs {
			if err := fn(o); err != nil {
				return err
			}
		}
		return nil
	})
}

// GroupByReduce implements Substrate.
func (l *Local) GroupByReduce(source Source, keyFn KeyFunc, combineFn CombineFunc) Source {
	return groupReduceSource{parent: source, keyFn: keyFn, combineFn: combineFn, sequential: l.sequentialGroupReduce}
}

type groupReduceSource struct {
	parent     Source
	keyFn      KeyFunc
	combineFn  CombineFunc
	sequential bool
}

func (s groupReduceSource) Emit(ctx context.Context, fn func(Record) error) error {
	groups := make(map[string][]Record)
	order := make([]string, 0)
	if err := s.parent.Emit(ctx, func(r Record) error {
		k := s.keyFn(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
		return nil
	}); err != nil {
		return err
	}

	if s.sequential {
		for _, k := range order {
			rec, err := s.combineFn(k, groups[k])
			if err != nil {
				return sindyerr.MarkSubstrateFailure(err)
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	}

	results := make([]Record, len(order))
	grp, gctx := errgroup.WithContext(ctx)
	for i, k := range order {
		i, k := i, k
		grp.Go(func() error {
			rec, err := s.combineFn(k, groups[k])
			if err != nil {
				return err
			}
			results[i] = rec
			return gctx.Err()
		})
	}
	if err := grp.Wait(); err != nil {
		return sindyerr.MarkSubstrateFailure(err)
	}

	for _, rec := range results {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// Broadcast implements Substrate.
func (l *Local) Broadcast(source Source, accumulatorKey string, acc Accumulator) Source {
	l.mu.Lock()
	l.accumulators[accumulatorKey] = acc
	l.mu.Unlock()
	return broadcastSource{parent: source, acc: acc}
}

type broadcastSource struct {
	parent Source
	acc    Accumulator
}

func (s broadcastSource) Emit(ctx context.Context, fn func(Record) error) error {
	return s.parent.Emit(ctx, func(r Record) error {
		s.acc.Add(r)
		return fn(r)
	})
}

// Output implements Substrate.
func (l *Local) Output(source Source, sink func(Record) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, outputStage{source: source, sink: sink})
}

// Execute implements Substrate. Every registered Output stage is
// driven concurrently; a failure in any stage cancels the rest via the
// shared errgroup context.
func (l *Local) Execute(ctx context.Context, jobName string) (JobResult, error) {
	l.mu.Lock()
	outputs := append([]outputStage(nil), l.outputs...)
	accumulators := make(map[string]Accumulator, len(l.accumulators))
	for k, v := range l.accumulators {
		accumulators[k] = v
	}
	l.mu.Unlock()

	grp, gctx := errgroup.WithContext(ctx)
	for _, o := range outputs {
		o := o
		grp.Go(func() error {
			return o.source.Emit(gctx, o.sink)
		})
	}
	if err := grp.Wait(); err != nil {
		return JobResult{}, sindyerr.MarkSubstrateFailure(err)
	}
	// Reset for the next job phase (a fresh Local is typically used per
	// arity by the run controller, but resetting keeps a single
	// instance reusable across passes too).
	l.mu.Lock()
	l.outputs = nil
	l.mu.Unlock()

	_ = jobName
	return JobResult{accumulators: accumulators}, nil
}

var _ Substrate = (*Local)(nil)
