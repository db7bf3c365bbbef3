// Package substrate defines the data-parallel execution substrate
// named as an external collaborator in spec.md §6 (flatMap / group-by
// + reduce / broadcast / output / execute), plus a concrete in-process
// default implementation (see local.go) built on
// golang.org/x/sync/errgroup, grounded on the fan-out/fan-in pattern
// pkg/ccl/sqlccl/csv.go uses to parallelize CSV-to-relation
// conversion.
//
// Every record flowing through a Source is a Record (a type-erased
// value, mirroring how CockroachDB's row-execution engine treats rows
// as opaque tuples at the processor-graph level); the pipeline
// packages (pkg/unary, pkg/nary) are responsible for the concrete
// shapes they flatMap/group/reduce over.
package substrate

import "context"

// Record is a single value flowing through the operator graph.
type Record = interface{}

// Source produces a stream of records. Emit is called exactly once
// per Execute and must deliver every record to fn, in any order,
// before returning.
type Source interface {
	Emit(ctx context.Context, fn func(Record) error) error
}

// FlatMapFunc expands one input record into zero or more output
// records.
type FlatMapFunc func(Record) ([]Record, error)

// KeyFunc extracts the group-by key for a record.
type KeyFunc func(Record) string

// CombineFunc reduces every record belonging to one group, delivered
// as a single atomic batch. Implementations must be deterministic
// given the same multiset of inputs: spec.md §5 requires the
// substrate to deliver every value of a group to one reducer
// invocation.
type CombineFunc func(key string, values []Record) (Record, error)

// Accumulator receives values broadcast alongside the main record
// stream (spec.md §5's "broadcast-style accumulators" for
// null/distinct/width counters). Implementations must be safe for
// concurrent use: spec.md §5 requires the streaming collector (and,
// by extension, any accumulator) to be thread-safe.
type Accumulator interface {
	Add(Record)
}

// JobResult is returned by Execute.
type JobResult struct {
	accumulators map[string]Accumulator
}

// GetAccumulatorResult returns the named accumulator as registered via
// Broadcast, or nil if no such accumulator was registered in this job.
func (r JobResult) GetAccumulatorResult(key string) Accumulator {
	return r.accumulators[key]
}

// Substrate is the operator-graph interface named in spec.md §6.
type Substrate interface {
	// FlatMap returns a new Source that flat-maps every record of
	// source through fn.
	FlatMap(source Source, fn FlatMapFunc) Source

	// GroupByReduce returns a new Source that groups source's records
	// by keyFn and reduces each group (as one atomic batch) via
	// combineFn, producing one record per group.
	GroupByReduce(source Source, keyFn KeyFunc, combineFn CombineFunc) Source

	// Broadcast wires source's records into the named accumulator as a
	// side effect, while passing every record through unchanged to
	// whatever downstream stage consumes the returned Source.
	Broadcast(source Source, accumulatorKey string, acc Accumulator) Source

	// Output marks source as a terminal stage whose records are
	// delivered to sink. Execute drives every registered Output stage.
	Output(source Source, sink func(Record) error)

	// Execute runs every Output-registered stage to completion and
	// returns the job's accumulator results, or the first error
	// encountered by any stage.
	Execute(ctx context.Context, jobName string) (JobResult, error)
}

// FromSlice builds a leaf Source that emits exactly the given records.
func FromSlice(records []Record) Source {
	return sliceSource(records)
}

type sliceSource []Record

func (s sliceSource) Emit(ctx context.Context, fn func(Record) error) error {
	for _, r := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}
