// Package augment implements the augmentation-rule engine (spec
// component C9): after each arity's validation pass, it walks the
// newly discovered INDs and, wherever one is a logical consequence of
// a lower-arity IND already known to hold, replaces it with an IND
// Augmentation Rule (IAR) instead of carrying it forward explicitly.
//
// Grounded on spec.md §4.6 directly; IND.java's withholding of
// "trivially implied" results from its output set is the same
// compaction idea, reexpressed as an explicit rule value instead of a
// flag on the IND itself.
package augment

import (
	"github.com/vishalbelsare/sindy-3/pkg/attrset"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
)

// IAR is an IND Augmentation Rule: "if LHS holds, then RHS (always
// unary) holds too." LHS is ind.Empty for the unconditional,
// 0-ary-premise rules produced by the void rules.
type IAR struct {
	LHS ind.IND
	RHS ind.IND
}

// Stats is the read-only view of the per-column/per-combination
// statistics the void and distinct/null-equivalence rules consult,
// keyed by attrset.Key of the (sorted) column/combination ids
// each statistic was accumulated over.
type Stats struct {
	DistinctCount map[string]uint64
	NullCount     map[string]uint64
}

// ApplyUnaryRule implements the k=1 void rule of §4.6: for each unary
// IND c ⊆ r, if distinctCount[c] = 0 or distinctCount[r] = 1, the IND
// is logically forced (c is void, or r has a single distinct value
// that every non-null c value must equal) and is replaced by the IAR
// ([] ⊆ []) ⇒ (c ⊆ r). Surviving INDs are returned in newInds order.
func ApplyUnaryRule(newInds []ind.IND, distinctCount map[uint32]uint64) (surviving []ind.IND, iars []IAR) {
	surviving = make([]ind.IND, 0, len(newInds))
	for _, x := range newInds {
		c, r := x.Dep[0], x.Ref[0]
		if distinctCount[c] == 0 || distinctCount[r] == 1 {
			iars = append(iars, IAR{LHS: ind.Empty, RHS: x})
			continue
		}
		surviving = append(surviving, x)
	}
	return surviving, iars
}

// ApplyNaryRule implements the k>=2 rules of §4.6: the void rule
// (distinctCount[dep(ind)] = 0, coprojected at every position) and the
// distinct/null-equivalence rule (coprojecting at position i preserves
// both the referenced side's distinct count and its null count).
// combinationDistinctCount and combinationNullCount are keyed by
// attrset.Key of the (sorted) dep or ref column set. A coprojection
// whose referenced side has no entry in combinationDistinctCount is
// not compared and yields no IAR; an absent null-count entry reads as
// zero nulls.
func ApplyNaryRule(newInds []ind.IND, combinationDistinctCount, combinationNullCount map[string]uint64) (surviving []ind.IND, iars []IAR, err error) {
	surviving = make([]ind.IND, 0, len(newInds))
	for _, x := range newInds {
		if combinationDistinctCount[attrset.Key(x.Dep)] == 0 {
			produced, rerr := voidNaryIARs(x)
			if rerr != nil {
				return nil, nil, rerr
			}
			iars = append(iars, produced...)
			continue
		}

		embedded := false
		refKey := attrset.Key(x.Ref)
		refDistinct := combinationDistinctCount[refKey]
		refNull := combinationNullCount[refKey]
		for i := 0; i < x.Arity(); i++ {
			g, gerr := x.Coproject(i)
			if gerr != nil {
				return nil, nil, gerr
			}
			gRefKey := attrset.Key(g.Ref)
			if gDistinct, ok := combinationDistinctCount[gRefKey]; !ok || gDistinct != refDistinct {
				continue
			}
			if combinationNullCount[gRefKey] != refNull {
				continue
			}
			proj, perr := x.Project(i)
			if perr != nil {
				return nil, nil, perr
			}
			iars = append(iars, IAR{LHS: g, RHS: proj})
			embedded = true
		}
		if embedded {
			continue
		}
		surviving = append(surviving, x)
	}
	return surviving, iars, nil
}

func voidNaryIARs(x ind.IND) ([]IAR, error) {
	out := make([]IAR, 0, x.Arity())
	for i := 0; i < x.Arity(); i++ {
		g, err := x.Coproject(i)
		if err != nil {
			return nil, err
		}
		proj, err := x.Project(i)
		if err != nil {
			return nil, err
		}
		out = append(out, IAR{LHS: g, RHS: proj})
	}
	return out, nil
}

// VoidColumnIARs implements the §4.3 void-column shortcut: for every
// void column c (distinctCount[c] = 0) and every other column r across
// the full column universe, emit the unconditional IAR
// ([] ⊆ []) ⇒ (c ⊆ r) directly, bypassing the reduction pipeline
// entirely so the quadratic pairing is never materialised as cells.
func VoidColumnIARs(voidColumns, allColumns []uint32) []IAR {
	out := make([]IAR, 0, len(voidColumns)*len(allColumns))
	for _, c := range voidColumns {
		for _, r := range allColumns {
			if r == c {
				continue
			}
			out = append(out, IAR{LHS: ind.Empty, RHS: ind.Unary(c, r)})
		}
	}
	return out
}
