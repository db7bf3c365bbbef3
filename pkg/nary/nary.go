// Package nary implements the n-ary validation pass (spec components
// C6 and C7): building the column-combination indexer for one arity's
// candidate set, emitting tuples per combination, and reducing them
// exactly as the unary pipeline does but keyed by combination id
// instead of column id.
//
// Grounded on spec.md §4.4 directly ("the downstream reduction then
// proceeds exactly as in §4.3 but with combinationId in place of
// columnId"), reusing pkg/unary's three-step shape rather than
// abstracting it, since the emitted record types differ (tuples and
// combo.Ref vs. raw values and column ids).
package nary

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/vishalbelsare/sindy-3/pkg/accum"
	"github.com/vishalbelsare/sindy-3/pkg/attrset"
	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/combo"
	"github.com/vishalbelsare/sindy-3/pkg/csvsource"
	"github.com/vishalbelsare/sindy-3/pkg/emit"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
	"github.com/vishalbelsare/sindy-3/pkg/substrate"
)

// Table pairs a csvsource.Table with the table id the column codec
// assigned it, mirroring the run controller's table registry.
type Table struct {
	TableID uint32
	Table   csvsource.Table
}

// Result is everything the run controller and the candidate/augment
// stages need from one n-ary validation pass.
type Result struct {
	// INDs is every arity-(k+1) candidate confirmed by the reduction,
	// sorted by ind.StandardCompare.
	INDs []ind.IND
	// DistinctCount and NullCount are keyed by attrset.Key, the same
	// form pkg/augment.ApplyNaryRule expects.
	DistinctCount map[string]uint64
	NullCount     map[string]uint64
}

// DefaultChunkSize is the chunk size that yields a single chunk
// covering every combination; Run treats any chunkSize <= 0 this way.
const DefaultChunkSize = 0

// Run validates the candidate set (arity k+1 INDs proposed by C8)
// against tables, partitioning the underlying column-combination set
// into chunks of at most chunkSize combinations each when chunkSize >
// 0, per §4.4's "Chunking". approximateDistinctCounts selects accum's
// HyperLogLog-backed distinct counter over its exact one, per
// config.Config.ApproximateDistinctCounts.
func Run(ctx context.Context, newSubstrate func() substrate.Substrate, tables []Table, codec *colid.Codec, candidates []ind.IND, cellCfg emit.Config, chunkSize int, approximateDistinctCounts bool) (Result, error) {
	if len(candidates) == 0 {
		return Result{DistinctCount: map[string]uint64{}, NullCount: map[string]uint64{}}, nil
	}

	ix, refs := combo.BuildFromCandidates(candidates)

	allCombos := make([]emit.Combination, ix.Len())
	for id := 0; id < ix.Len(); id++ {
		cols, _ := ix.Columns(uint32(id))
		allCombos[id] = emit.Combination{ID: uint32(id), Columns: cols}
	}

	chunks := chunkCombinations(allCombos, chunkSize)

	distinctByID := make(map[uint32]uint64)
	nullByID := make(map[uint32]uint64)
	inclusion := make(map[uint32]attrset.Set)

	for _, chunk := range chunks {
		d, n, inc, err := runChunk(ctx, newSubstrate(), tables, codec, chunk, cellCfg, approximateDistinctCounts)
		if err != nil {
			return Result{}, err
		}
		for k, v := range d {
			distinctByID[k] += v
		}
		for k, v := range n {
			nullByID[k] += v
		}
		for k, v := range inc {
			inclusion[k] = v
		}
	}

	var confirmed []ind.IND
	for _, cr := range refs {
		if inclusion[cr.Dep.ID].Contains(cr.Ref.ID) {
			confirmed = append(confirmed, cr.Candidate)
		}
	}
	sort.Slice(confirmed, func(i, j int) bool { return ind.StandardCompare(confirmed[i], confirmed[j]) < 0 })

	distinctByKey := make(map[string]uint64, len(distinctByID))
	for id, v := range distinctByID {
		cols, _ := ix.Columns(id)
		distinctByKey[attrset.Key(cols)] = v
	}
	nullByKey := make(map[string]uint64, len(nullByID))
	for id, v := range nullByID {
		cols, _ := ix.Columns(id)
		nullByKey[attrset.Key(cols)] = v
	}

	return Result{INDs: confirmed, DistinctCount: distinctByKey, NullCount: nullByKey}, nil
}

// chunkCombinations partitions combos into disjoint groups of at most
// chunkSize elements each; chunkSize <= 0 yields one chunk.
func chunkCombinations(combos []emit.Combination, chunkSize int) [][]emit.Combination {
	if chunkSize <= 0 || chunkSize >= len(combos) {
		return [][]emit.Combination{combos}
	}
	var chunks [][]emit.Combination
	for i := 0; i < len(combos); i += chunkSize {
		end := i + chunkSize
		if end > len(combos) {
			end = len(combos)
		}
		chunks = append(chunks, combos[i:end])
	}
	return chunks
}

// runChunk emits and reduces one chunk of combinations across every
// table, returning per-combination distinct/null counts and inclusion
// sets (the set of combination ids that include a given combination).
func runChunk(ctx context.Context, sub substrate.Substrate, tables []Table, codec *colid.Codec, chunk []emit.Combination, cellCfg emit.Config, approximateDistinctCounts bool) (distinctCount, nullCount map[uint32]uint64, inclusion map[uint32]attrset.Set, err error) {
	sources := make([]substrate.Source, 0, len(tables))
	for _, t := range tables {
		sources = append(sources, emit.NaryCells(t.Table, t.TableID, codec, chunk, cellCfg))
	}
	cells := unionSources(sources)

	stats := newComboStats(approximateDistinctCounts)

	withNullCounts := sub.Broadcast(cells, "nary.nullCount", nullCountAccumulator{stats: stats})

	grouped := sub.GroupByReduce(withNullCounts, tupleGroupKey, func(key string, values []substrate.Record) (substrate.Record, error) {
		return reduceTupleGroup(key, values, stats)
	})

	pairs := sub.FlatMap(grouped, explodeTupleGroup)

	byCombo := sub.GroupByReduce(pairs, comboPairKey, reduceComboPairs)

	var mu sync.Mutex
	inclusion = make(map[uint32]attrset.Set)
	sub.Output(byCombo, func(r substrate.Record) error {
		s := r.(inclusionSet)
		mu.Lock()
		inclusion[s.combo] = s.includes
		mu.Unlock()
		return nil
	})

	if _, execErr := sub.Execute(ctx, "nary"); execErr != nil {
		return nil, nil, nil, execErr
	}

	return stats.distinctCountSnapshot(), stats.nullCountSnapshot(), inclusion, nil
}

// unionSources concatenates several Sources into one, emitting each in
// turn.
func unionSources(sources []substrate.Source) substrate.Source {
	return unionSource(sources)
}

type unionSource []substrate.Source

func (u unionSource) Emit(ctx context.Context, fn func(substrate.Record) error) error {
	for _, s := range u {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Emit(ctx, fn); err != nil {
			return err
		}
	}
	return nil
}

// comboStats mirrors pkg/unary's statsCollector, keyed by combination
// id rather than column id: an exact map-backed tally, or one
// accum.ApproxDistinctSet per combination fed the actual tuple value
// when approximateDistinctCounts is set.
type comboStats struct {
	mu            sync.Mutex
	nullCount     map[uint32]uint64
	distinctCount map[uint32]uint64
	distinctSets  map[uint32]accum.DistinctSet
	approximate   bool
}

func newComboStats(approximate bool) *comboStats {
	return &comboStats{
		nullCount:     make(map[uint32]uint64),
		distinctCount: make(map[uint32]uint64),
		distinctSets:  make(map[uint32]accum.DistinctSet),
		approximate:   approximate,
	}
}

func (s *comboStats) addNull(id uint32) {
	s.mu.Lock()
	s.nullCount[id]++
	s.mu.Unlock()
}

func (s *comboStats) addDistinctObservations(tuple string, ids []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if !s.approximate {
			s.distinctCount[id]++
			continue
		}
		set, ok := s.distinctSets[id]
		if !ok {
			set = accum.NewApproxDistinctSet()
			s.distinctSets[id] = set
		}
		set.AddValue(tuple)
	}
}

func (s *comboStats) distinctCountSnapshot() map[uint32]uint64 {
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

func (s *comboStats) nullCountSnapshot() map[uint32]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint32]uint64, len(s.nullCount))
	for k, v := range s.nullCount {
		out[k] = v
	}
	return out
}

type nullCountAccumulator struct {
	stats *comboStats
}

func (a nullCountAccumulator) Add(r substrate.Record) {
	cell := r.(emit.NaryCell)
	if cell.IsNull {
		a.stats.addNull(cell.Combo.ID)
	}
}

var _ substrate.Accumulator = nullCountAccumulator{}

func tupleGroupKey(r substrate.Record) string {
	return r.(emit.NaryCell).GroupKey
}

type tupleGroup struct {
	isNull bool
	combos attrset.Set
}

func reduceTupleGroup(key string, values []substrate.Record, stats *comboStats) (substrate.Record, error) {
	isNull := false
	ids := make([]uint32, 0, len(values))
	for _, v := range values {
		cell := v.(emit.NaryCell)
		isNull = cell.IsNull
		ids = append(ids, cell.Combo.ID)
	}
	set := attrset.FromUnsorted(ids)
	if !isNull {
		stats.addDistinctObservations(key, set)
	}
	return tupleGroup{isNull: isNull, combos: set}, nil
}

type comboPair struct {
	combo  uint32
	others attrset.Set
}

func explodeTupleGroup(r substrate.Record) ([]substrate.Record, error) {
	g := r.(tupleGroup)
	if g.isNull {
		return nil, nil
	}
	out := make([]substrate.Record, 0, len(g.combos))
	for _, c := range g.combos {
		out = append(out, comboPair{combo: c, others: g.combos.Without(c)})
	}
	return out, nil
}

func comboPairKey(r substrate.Record) string {
	return strconv.FormatUint(uint64(r.(comboPair).combo), 10)
}

func reduceComboPairs(key string, values []substrate.Record) (substrate.Record, error) {
	sets := make([]attrset.Set, len(values))
	var id uint32
	for i, v := range values {
		p := v.(comboPair)
		id = p.combo
		sets[i] = p.others
	}
	return inclusionSet{combo: id, includes: attrset.IntersectAll(sets)}, nil
}

type inclusionSet struct {
	combo    uint32
	includes attrset.Set
}
