// Package candidate implements the Apriori candidate generator (spec
// component C8): merging two arity-k INDs that share a dep/ref prefix
// into an arity-(k+1) candidate, gated by the Apriori closure check,
// the configured NaryIndRestriction, and the optional void-IND
// exclusion — plus the cross-arity consolidation step the run
// controller applies once validation is done.
//
// The mind/apriori/binder strategies spec.md §6 and §9 name are one
// function parameterised by NaryIndRestriction and the void-exclusion
// flag rather than three separate types, following Andy.java's single
// class with strategy fields and the tagged-dispatch-over-interface
// idiom pkg/jobs applies to its own job-kind variants.
//
// Grounded on spec.md §4.5 directly.
package candidate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vishalbelsare/sindy-3/pkg/attrset"
	"github.com/vishalbelsare/sindy-3/pkg/config"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
)

// Generate implements §4.5's Apriori merge: ik is the arity-k IND set
// to merge, cumulativeIK is the set the closure check looks every
// arity-k coprojection up in (the run controller passes its
// consolidated allInds, which holds ik together with lower-arity,
// trivial and IAR-implied INDs), restriction and excludeVoid are
// the configured gates, and distinctCount supplies isNonVoid lookups
// keyed by attrset.Key — entries absent from it are treated as
// non-void (optimistic admission; an actually-void merge candidate is
// still caught after validation by pkg/augment's void rule, since a
// candidate-generation-time pre-filter can only see arity-k
// statistics, never the merged arity-(k+1) combo's own).
func Generate(ik, cumulativeIK []ind.IND, restriction config.NaryIndRestriction, excludeVoid bool, distinctCount map[string]uint64) ([]ind.IND, error) {
	if len(ik) == 0 {
		return nil, nil
	}
	k := ik[0].Arity()

	sorted := append([]ind.IND(nil), ik...)
	sort.Slice(sorted, func(i, j int) bool { return ind.LexicographicalCompare(sorted[i], sorted[j]) < 0 })

	known := make(map[string]struct{}, len(cumulativeIK))
	for _, x := range cumulativeIK {
		known[x.Key()] = struct{}{}
	}

	blockOf := make(map[string][]ind.IND)
	var blockOrder []string
	for _, x := range sorted {
		key := prefixKey(x.Dep[:k-1], x.Ref[:k-1])
		if _, ok := blockOf[key]; !ok {
			blockOrder = append(blockOrder, key)
		}
		blockOf[key] = append(blockOf[key], x)
	}

	seen := make(map[string]struct{})
	var out []ind.IND
	for _, key := range blockOrder {
		block := blockOf[key]
		for i := 0; i < len(block); i++ {
			for j := i + 1; j < len(block); j++ {
				a, b := block[i], block[j]
				if a.Dep[k-1] == b.Dep[k-1] {
					continue
				}
				merged, ok, err := mergeCandidate(a, b, k)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				if !aprioriClosureHolds(merged, known) {
					continue
				}
				if !satisfiesRestriction(merged, restriction) {
					continue
				}
				if excludeVoid && (!isNonVoid(merged.Dep, distinctCount) || !isNonVoid(merged.Ref, distinctCount)) {
					continue
				}
				mkey := merged.Key()
				if _, dup := seen[mkey]; dup {
					continue
				}
				seen[mkey] = struct{}{}
				out = append(out, merged)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return ind.StandardCompare(out[i], out[j]) < 0 })
	return out, nil
}

// prefixKey renders the shared (k-1)-length dep/ref prefix as a stable
// key, preserving position (unlike attrset.Key, which sorts — dep and
// ref here are positionally paired and must not be reordered).
func prefixKey(dep, ref []uint32) string {
	var sb strings.Builder
	for _, c := range dep {
		sb.WriteString(strconv.FormatUint(uint64(c), 10))
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	for _, c := range ref {
		sb.WriteString(strconv.FormatUint(uint64(c), 10))
		sb.WriteByte(',')
	}
	return sb.String()
}

type pair struct {
	dep uint32
	ref uint32
}

// mergeCandidate builds the arity-(k+1) merge of siblings a and b,
// which share their first k-1 dep/ref positions: the shared prefix
// plus both siblings' final (dep, ref) pair, sorted by dep. ok is
// false if the union does not yield k+1 distinct dep values (a
// malformed or duplicate merge, per §4.5 step 2's "eliminate
// duplicates").
func mergeCandidate(a, b ind.IND, k int) (ind.IND, bool, error) {
	pairs := make([]pair, 0, k+1)
	for i := 0; i < k; i++ {
		pairs = append(pairs, pair{dep: a.Dep[i], ref: a.Ref[i]})
	}
	pairs = append(pairs, pair{dep: b.Dep[k-1], ref: b.Ref[k-1]})

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].dep < pairs[j].dep })

	dep := make([]uint32, len(pairs))
	ref := make([]uint32, len(pairs))
	for i, p := range pairs {
		dep[i] = p.dep
		ref[i] = p.ref
	}
	for i := 1; i < len(dep); i++ {
		if dep[i-1] == dep[i] {
			return ind.IND{}, false, nil
		}
	}

	merged, err := ind.New(dep, ref)
	if err != nil {
		return ind.IND{}, false, err
	}
	return merged, true, nil
}

// aprioriClosureHolds implements §4.5 step 3: every arity-k
// coprojection of merged must already be a member of known.
func aprioriClosureHolds(merged ind.IND, known map[string]struct{}) bool {
	for i := 0; i < merged.Arity(); i++ {
		sub, err := merged.Coproject(i)
		if err != nil {
			return false
		}
		if _, ok := known[sub.Key()]; !ok {
			return false
		}
	}
	return true
}

// satisfiesRestriction implements §4.5 step 4.
func satisfiesRestriction(x ind.IND, restriction config.NaryIndRestriction) bool {
	switch restriction {
	case config.RestrictionNoRepetitions:
		seen := make(map[uint32]struct{}, 2*x.Arity())
		for _, c := range x.Dep {
			if _, ok := seen[c]; ok {
				return false
			}
			seen[c] = struct{}{}
		}
		for _, c := range x.Ref {
			if _, ok := seen[c]; ok {
				return false
			}
			seen[c] = struct{}{}
		}
		return true
	case config.RestrictionDepRefDisjoint:
		dep := make(map[uint32]struct{}, x.Arity())
		for _, c := range x.Dep {
			dep[c] = struct{}{}
		}
		for _, c := range x.Ref {
			if _, ok := dep[c]; ok {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// isNonVoid implements §4.5's isNonVoid(columns) = distinctCount[sorted(columns)] > 0,
// treating an absent key as non-void (see Generate's doc comment).
func isNonVoid(cols []uint32, distinctCount map[string]uint64) bool {
	v, ok := distinctCount[attrset.Key(cols)]
	if !ok {
		return true
	}
	return v > 0
}

// Consolidate implements the §4.7 consolidation step: any IND in
// allInds that is logically implied by a member of newInds is
// redundant and is dropped, since it is recoverable by composing
// newInds' member with whatever relationship made it imply allInds'
// entry. The result is allInds (filtered) followed by newInds.
func Consolidate(allInds, newInds []ind.IND) []ind.IND {
	keep := make([]ind.IND, 0, len(allInds))
	for _, x := range allInds {
		redundant := false
		for _, y := range newInds {
			if x.Arity() <= y.Arity() && x.IsImpliedBy(y) {
				redundant = true
				break
			}
		}
		if !redundant {
			keep = append(keep, x)
		}
	}
	return append(keep, newInds...)
}
