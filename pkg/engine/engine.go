// Package engine implements the run controller (spec component C10):
// the INIT -> ARITY-1 -> ARITY-k* -> DONE|FAILED state machine that
// wires the column-id codec, the unary and n-ary validation passes,
// the candidate generator, and the augmentation-rule engine together
// into one discovery run.
//
// Grounded on spec.md §4.7 directly; the initialize/execute/clean-up
// shape of Run mirrors Andy.run()'s own three-phase structure, with
// metrics/log wiring at every state transition. Run holds no collector
// registry and has nothing to acquire or release: results go to the
// caller's sink, and a deferred recover turns a panic raised after
// INIT into an InternalInvariant error.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/vishalbelsare/sindy-3/pkg/attrset"
	"github.com/vishalbelsare/sindy-3/pkg/augment"
	"github.com/vishalbelsare/sindy-3/pkg/candidate"
	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/config"
	"github.com/vishalbelsare/sindy-3/pkg/csvsource"
	"github.com/vishalbelsare/sindy-3/pkg/emit"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
	"github.com/vishalbelsare/sindy-3/pkg/log"
	"github.com/vishalbelsare/sindy-3/pkg/metrics"
	"github.com/vishalbelsare/sindy-3/pkg/nary"
	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
	"github.com/vishalbelsare/sindy-3/pkg/sink"
	"github.com/vishalbelsare/sindy-3/pkg/substrate"
	"github.com/vishalbelsare/sindy-3/pkg/unary"
)

// Summary reports what one Run produced.
type Summary struct {
	TotalINDs int
	TotalIARs int
	// FinalArity is the highest arity the controller validated a
	// candidate set for (1 if the run stopped after the unary pass).
	FinalArity int
	Registry   *colid.Registry
}

// Run drives one full discovery pass over tables, delivering every
// surviving IND to out, and returns once the controller reaches DONE
// (or fails with a Configuration/Input/SubstrateFailure/Cancelled
// error, reaching FAILED).
func Run(ctx context.Context, cfg config.Config, tables []csvsource.Table, out sink.ResultSink, m *metrics.Metrics) (_ Summary, runErr error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	if len(tables) == 0 {
		return Summary{}, sindyerr.MarkConfiguration("at least one input table is required")
	}

	codec, err := colid.NewCodec(cfg.NumColumnBits)
	if err != nil {
		return Summary{}, err
	}
	registry := colid.NewRegistry(codec)

	type boundTable struct {
		tableID uint32
		table   csvsource.Table
	}
	bound := make([]boundTable, len(tables))
	var allColumns []uint32
	for i, t := range tables {
		tableID := codec.TableID(i)
		registry.Register(tableID, t.RelationName(), t.ColumnNames())
		bound[i] = boundTable{tableID: tableID, table: t}

		width := len(t.ColumnNames())
		if cfg.MaxColumns >= 0 && cfg.MaxColumns < width {
			width = cfg.MaxColumns
		}
		for c := 0; c < width; c++ {
			allColumns = append(allColumns, codec.ColumnID(tableID, c))
		}
	}

	cellCfg := emit.Config{
		DropNulls:  cfg.DropNulls,
		NullString: cfg.CSV.NullString,
		MaxColumns: cfg.MaxColumns,
		SampleRows: cfg.SampleRows,
	}

	defer func() {
		if r := recover(); r != nil {
			runErr = sindyerr.MarkInternalInvariant("run controller panicked: %v", r)
		}
	}()

	log.Infof(ctx, "run controller: INIT complete, %d tables, %d columns", len(tables), len(allColumns))

	// ARITY-1.
	start := time.Now()
	unarySources := make([]substrate.Source, 0, len(bound))
	for _, bt := range bound {
		unarySources = append(unarySources, emit.UnaryCells(bt.table, bt.tableID, codec, cellCfg))
	}
	sub := substrate.NewLocalHinted(cfg.NotUseGroupOperators)
	unaryResult, err := unary.Run(ctx, sub, unionSources(unarySources), allColumns, cfg.ApproximateDistinctCounts)
	if err != nil {
		return Summary{}, sindyerr.MarkSubstrateFailure(err)
	}

	survivors, iars := augment.ApplyUnaryRule(unaryResult.INDs, unaryResult.DistinctCount)
	allInds := implied(iars)
	allInds = candidate.Consolidate(allInds, survivors)
	allInds = candidate.Consolidate(allInds, implied(unaryResult.IARs))

	distinctByKey := keyedByColumn(unaryResult.DistinctCount)

	totalIARs := len(iars) + len(unaryResult.IARs)
	if m != nil {
		m.ObservePass(1, len(unaryResult.INDs), len(allInds), totalIARs, time.Since(start))
	}
	log.Infof(ctx, "ARITY-1: %d survivors, %d iars", len(survivors), totalIARs)

	finalArity := 1

	if cfg.OnlyCountInds {
		return finish(ctx, out, cfg, allInds, finalArity, registry, totalIARs)
	}

	// Trivial self-INDs (c ⊆ c) are a tautology, not a relationship
	// discovered by the reduction; they belong in the output but would
	// otherwise combine with every other survivor and flood candidate
	// generation with meaningless self-combinations.
	arityK := nonTrivial(survivors)
	for cfg.MaxArity == -1 || finalArity < cfg.MaxArity {
		candidates, err := candidate.Generate(arityK, allInds, cfg.NaryIndRestriction, cfg.ExcludeVoidInds(), distinctByKey)
		if err != nil {
			return Summary{}, err
		}
		if len(candidates) == 0 {
			break
		}

		naryTables := make([]nary.Table, len(bound))
		for i, bt := range bound {
			naryTables[i] = nary.Table{TableID: bt.tableID, Table: bt.table}
		}

		start = time.Now()
		naryResult, err := nary.Run(ctx, func() substrate.Substrate { return substrate.NewLocalHinted(cfg.NotUseGroupOperators) }, naryTables, codec, candidates, cellCfg, cfg.CombinationChunkSize, cfg.ApproximateDistinctCounts)
		if err != nil {
			return Summary{}, sindyerr.MarkSubstrateFailure(err)
		}

		nextSurvivors, nextIARs, err := augment.ApplyNaryRule(naryResult.INDs, naryResult.DistinctCount, naryResult.NullCount)
		if err != nil {
			return Summary{}, err
		}

		finalArity++
		allInds = candidate.Consolidate(allInds, nextSurvivors)
		allInds = candidate.Consolidate(allInds, implied(nextIARs))

		for k, v := range naryResult.DistinctCount {
			distinctByKey[k] = v
		}

		if m != nil {
			m.ObservePass(finalArity, len(candidates), len(nextSurvivors)+len(nextIARs), len(nextIARs), time.Since(start))
		}
		log.Infof(ctx, "ARITY-%d: %d candidates, %d survivors, %d iars", finalArity, len(candidates), len(nextSurvivors), len(nextIARs))

		totalIARs += len(nextIARs)
		if len(nextSurvivors) == 0 && len(nextIARs) == 0 {
			break
		}
		arityK = nonTrivial(nextSurvivors)
	}

	return finish(ctx, out, cfg, allInds, finalArity, registry, totalIARs)
}

func finish(ctx context.Context, out sink.ResultSink, cfg config.Config, allInds []ind.IND, finalArity int, registry *colid.Registry, totalIARs int) (Summary, error) {
	final := allInds
	if cfg.FilterTrivialINDs {
		filtered := make([]ind.IND, 0, len(final))
		for _, x := range final {
			if !x.IsTrivial() {
				filtered = append(filtered, x)
			}
		}
		final = filtered
	}
	sort.Slice(final, func(i, j int) bool { return ind.StandardCompare(final[i], final[j]) < 0 })

	for _, x := range final {
		if err := out.Receive(x); err != nil {
			return Summary{}, err
		}
	}

	log.Infof(ctx, "run controller: DONE, %d inds, %d iars, final arity %d", len(final), totalIARs, finalArity)
	return Summary{TotalINDs: len(final), TotalIARs: totalIARs, FinalArity: finalArity, Registry: registry}, nil
}

// nonTrivial drops reflexive self-INDs (c ⊆ c) from a survivor set
// before it seeds the next arity's candidate generation: they hold
// unconditionally and would otherwise merge with every other survivor,
// producing arity-(k+1) self-combinations no different from the
// arity-k fact already known.
func nonTrivial(inds []ind.IND) []ind.IND {
	out := make([]ind.IND, 0, len(inds))
	for _, x := range inds {
		if !x.IsTrivial() {
			out = append(out, x)
		}
	}
	return out
}

// implied extracts an IAR set's RHS INDs: facts the rule engine proved
// hold without explicit validation, which still belong in the final
// discovered set even though they no longer feed candidate generation.
func implied(iars []augment.IAR) []ind.IND {
	out := make([]ind.IND, len(iars))
	for i, r := range iars {
		out[i] = r.RHS
	}
	return out
}

// keyedByColumn re-keys a per-column distinct/null-count map (as
// pkg/unary.Result produces) into the attrset.Key-keyed form
// pkg/candidate and pkg/augment's n-ary rule expect, so a single
// cumulative map can carry both unary and n-ary statistics across
// arities.
func keyedByColumn(byColumn map[uint32]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(byColumn))
	for c, v := range byColumn {
		out[attrset.Key([]uint32{c})] = v
	}
	return out
}

type unionSource []substrate.Source

func unionSources(sources []substrate.Source) substrate.Source { return unionSource(sources) }

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
