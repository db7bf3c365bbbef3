// Package unary implements the unary IND pipeline (spec component C5):
// grouping emitted cells by value into attribute sets, reducing those
// attribute sets per column into inclusion sets, and turning every
// inclusion into a unary IND — alongside the null-count and
// distinct-count statistics the rest of the engine depends on. Table
// widths are not tracked by this pass.
//
// Grounded on spec.md §4.3's three-step reduction, expressed over
// pkg/substrate's flatMap/groupBy+reduce/broadcast primitives the way
// pkg/ccl/sqlccl/csv.go chains its own conversion stages.
package unary

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/vishalbelsare/sindy-3/pkg/accum"
	"github.com/vishalbelsare/sindy-3/pkg/attrset"
	"github.com/vishalbelsare/sindy-3/pkg/augment"
	"github.com/vishalbelsare/sindy-3/pkg/emit"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
	"github.com/vishalbelsare/sindy-3/pkg/substrate"
)

// Result is everything the run controller needs from one unary pass.
type Result struct {
	// INDs is every c ⊆ r discovered by the reduction, sorted by
	// ind.StandardCompare.
	INDs []ind.IND
	// IARs are the §4.3 void-column IARs, produced directly rather than
	// through the reduction.
	IARs []augment.IAR
	// NullCount and DistinctCount are keyed by column id. NullCount has
	// an entry only for columns with at least one null cell, and
	// DistinctCount only for columns with at least one non-null value;
	// any other column is absent and reads as zero.
	NullCount     map[uint32]uint64
	DistinctCount map[uint32]uint64
}

// Run executes the unary pipeline against cells (the merged per-table
// emit.UnaryCells sources for every input table) and allColumns (the
// full column universe across every table, needed for the
// void-column shortcut of §4.3, which must pair a void column against
// columns that may never appear in the cell stream at all).
// approximateDistinctCounts selects accum's HyperLogLog-backed distinct
// counter over its exact one, per config.Config.ApproximateDistinctCounts.
func Run(ctx context.Context, sub substrate.Substrate, cells substrate.Source, allColumns []uint32, approximateDistinctCounts bool) (Result, error) {
	stats := newStatsCollector(approximateDistinctCounts)

	withNullCounts := sub.Broadcast(cells, "unary.nullCount", nullCountAccumulator{stats: stats})

	grouped := sub.GroupByReduce(withNullCounts, valueGroupKey, func(key string, values []substrate.Record) (substrate.Record, error) {
		return reduceValueGroup(key, values, stats)
	})

	pairs := sub.FlatMap(grouped, explodeValueGroup)

	byColumn := sub.GroupByReduce(pairs, columnPairKey, reduceColumnPairs)

	finalINDs := sub.FlatMap(byColumn, explodeInclusionSet)

	var mu sync.Mutex
	var inds []ind.IND
	sub.Output(finalINDs, func(r substrate.Record) error {
		x := r.(ind.IND)
		mu.Lock()
		inds = append(inds, x)
		mu.Unlock()
		return nil
	})

	if _, err := sub.Execute(ctx, "unary"); err != nil {
		return Result{}, err
	}

	// c ⊆ c holds unconditionally and can never come out of the
	// reduction above: explodeValueGroup excludes c from its own
	// inclusion candidates by construction (g.columns.Without(c)).
	for _, c := range allColumns {
		inds = append(inds, ind.Unary(c, c))
	}
	sort.Slice(inds, func(i, j int) bool { return ind.StandardCompare(inds[i], inds[j]) < 0 })

	voidCols := stats.voidColumns(allColumns)
	iars := augment.VoidColumnIARs(voidCols, allColumns)

	return Result{
		INDs:          inds,
		IARs:          iars,
		NullCount:     stats.nullCountSnapshot(),
		DistinctCount: stats.distinctCountSnapshot(),
	}, nil
}

// statsCollector accumulates nullCount and distinctCount across the
// concurrent group reducers the substrate drives; every method is
// safe for concurrent use, as spec.md §5 requires of accumulators.
// distinctCount keeps an exact map-backed tally; approximate runs
// instead maintain one accum.ApproxDistinctSet per column, fed the
// actual group value so the HyperLogLog sketch sees real cardinality
// rather than a pre-deduplicated group count.
type statsCollector struct {
	mu            sync.Mutex
	nullCount     map[uint32]uint64
	distinctCount map[uint32]uint64
	distinctSets  map[uint32]accum.DistinctSet
	approximate   bool
}

func newStatsCollector(approximate bool) *statsCollector {
	return &statsCollector{
		nullCount:     make(map[uint32]uint64),
		distinctCount: make(map[uint32]uint64),
		distinctSets:  make(map[uint32]accum.DistinctSet),
		approximate:   approximate,
	}
}

func (s *statsCollector) addNull(column uint32) {
	s.mu.Lock()
	s.nullCount[column]++
	s.mu.Unlock()
}

// addDistinctObservations records one occurrence of value for every
// column in columns (§4.3's "contributes 1 to its distinct count for
// each group it appears in"), via the exact or approximate backend
// selected at construction.
func (s *statsCollector) addDistinctObservations(value string, columns []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range columns {
		if !s.approximate {
			s.distinctCount[c]++
			continue
		}
		set, ok := s.distinctSets[c]
		if !ok {
			set = accum.NewApproxDistinctSet()
			s.distinctSets[c] = set
		}
		set.AddValue(value)
	}
}

func (s *statsCollector) nullCountSnapshot() map[uint32]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint32]uint64, len(s.nullCount))
	for k, v := range s.nullCount {
		out[k] = v
	}
	return out
}

func (s *statsCollector) distinctCountSnapshot() map[uint32]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.approximate {
		out := make(map[uint32]uint64, len(s.distinctSets))
		for k, set := range s.distinctSets {
			out[k] = set.Estimate()
		}
		return out
	}
	out := make(map[uint32]uint64, len(s.distinctCount))
	for k, v := range s.distinctCount {
		out[k] = v
	}
	return out
}

// voidColumns returns, from allColumns, those with zero recorded
// distinct non-null values.
func (s *statsCollector) voidColumns(allColumns []uint32) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint32
	for _, c := range allColumns {
		if s.approximate {
			if set, ok := s.distinctSets[c]; !ok || set.Estimate() == 0 {
				out = append(out, c)
			}
			continue
		}
		if s.distinctCount[c] == 0 {
			out = append(out, c)
		}
	}
	return out
}

// nullCountAccumulator adapts statsCollector.addNull to
// substrate.Accumulator, observing every cell (including ones that
// survive to the reduction) so null counts are tallied regardless of
// how the reduction groups non-null values.
type nullCountAccumulator struct {
	stats *statsCollector
}

func (a nullCountAccumulator) Add(r substrate.Record) {
	cell := r.(emit.Cell)
	if cell.IsNull {
		a.stats.addNull(cell.Column)
	}
}

var _ substrate.Accumulator = nullCountAccumulator{}

// valueGroupKey groups emit.Cell records by the value they carry
// (step 1 of §4.3's reduction).
func valueGroupKey(r substrate.Record) string {
	return r.(emit.Cell).GroupKey
}

// valueGroup is the attribute set A of one value group, built by
// reduceValueGroup.
type valueGroup struct {
	isNull  bool
	columns attrset.Set
}

// reduceValueGroup builds the attribute set of one value group and, for
// non-null groups, records one distinct-count observation per column
// in the set (§4.3's "contributes 1 to its distinct count for each
// group it appears in").
func reduceValueGroup(key string, values []substrate.Record, stats *statsCollector) (substrate.Record, error) {
	isNull := false
	cols := make([]uint32, 0, len(values))
	for _, v := range values {
		cell := v.(emit.Cell)
		isNull = cell.IsNull
		cols = append(cols, cell.Column)
	}
	set := attrset.FromUnsorted(cols)
	if !isNull {
		stats.addDistinctObservations(key, set)
	}
	return valueGroup{isNull: isNull, columns: set}, nil
}

// columnPair is the (c, A \ {c}) record §4.3 step 2 emits for every
// column c in a value group's attribute set A.
type columnPair struct {
	column uint32
	others attrset.Set
}

// explodeValueGroup implements §4.3 step 2: for every column c in a
// non-null group's attribute set, emit the set of columns that share
// this value with c. Null groups contribute no inclusion candidates —
// they are already accounted for via nullCount.
func explodeValueGroup(r substrate.Record) ([]substrate.Record, error) {
	g := r.(valueGroup)
	if g.isNull {
		return nil, nil
	}
	out := make([]substrate.Record, 0, len(g.columns))
	for _, c := range g.columns {
		out = append(out, columnPair{column: c, others: g.columns.Without(c)})
	}
	return out, nil
}

func columnPairKey(r substrate.Record) string {
	return columnKeyOf(r.(columnPair).column)
}

func columnKeyOf(c uint32) string {
	return strconv.FormatUint(uint64(c), 10)
}

// reduceColumnPairs implements §4.3 step 3: intersect every attribute
// set observed for one column into its inclusion set.
func reduceColumnPairs(key string, values []substrate.Record) (substrate.Record, error) {
	sets := make([]attrset.Set, len(values))
	var column uint32
	for i, v := range values {
		p := v.(columnPair)
		column = p.column
		sets[i] = p.others
	}
	return inclusionSet{column: column, includes: attrset.IntersectAll(sets)}, nil
}

type inclusionSet struct {
	column   uint32
	includes attrset.Set
}

// explodeInclusionSet implements §4.3's final step: every r in inc(c)
// yields the unary IND c ⊆ r.
func explodeInclusionSet(r substrate.Record) ([]substrate.Record, error) {
	s := r.(inclusionSet)
	out := make([]substrate.Record, 0, len(s.includes))
	for _, ref := range s.includes {
		out = append(out, ind.Unary(s.column, ref))
	}
	return out, nil
}
