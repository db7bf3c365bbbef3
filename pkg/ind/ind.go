// Package ind implements the IND value type (spec component C2): an
// immutable pair of equal-length dependent/referenced column-id
// vectors, with the subsumption, projection, and ordering operations
// the rest of the engine relies on.
package ind

import (
	"fmt"
	"strings"

	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
)

// IND is an inclusion dependency dep[] ⊆ ref[], positionally paired:
// dep[i] is included in ref[i] for every i. For arity >= 2, Dep is
// strictly ascending; Ref is an arbitrary permutation paired to Dep.
type IND struct {
	Dep []uint32
	Ref []uint32
}

// Empty is the distinguished 0-ary IND ([] ⊆ []), used as the LHS of
// 0-ary augmentation rules.
var Empty = IND{Dep: nil, Ref: nil}

// New creates an IND from parallel dep/ref column-id slices. The
// slices are copied so the resulting IND is immutable regardless of
// what the caller does with its arguments afterward.
func New(dep, ref []uint32) (IND, error) {
	if len(dep) != len(ref) {
		return IND{}, sindyerr.MarkInternalInvariant("dep/ref length mismatch: %d vs %d", len(dep), len(ref))
	}
	d := append([]uint32(nil), dep...)
	r := append([]uint32(nil), ref...)
	if len(d) >= 2 {
		for i := 1; i < len(d); i++ {
			if d[i-1] >= d[i] {
				return IND{}, sindyerr.MarkInternalInvariant("dep[] not strictly ascending at position %d", i)
			}
		}
	}
	return IND{Dep: d, Ref: r}, nil
}

// Unary creates the unary IND dependentID ⊆ referencedID.
func Unary(dependentID, referencedID uint32) IND {
	return IND{Dep: []uint32{dependentID}, Ref: []uint32{referencedID}}
}

// Arity returns the number of column pairs in the IND.
func (x IND) Arity() int { return len(x.Dep) }

// IsTrivial reports whether dep[] and ref[] are elementwise equal.
func (x IND) IsTrivial() bool {
	if len(x.Dep) != len(x.Ref) {
		return false
	}
	for i := range x.Dep {
		if x.Dep[i] != x.Ref[i] {
			return false
		}
	}
	return true
}

// Project returns the arity-1 IND obtained by keeping only position i.
func (x IND) Project(i int) (IND, error) {
	if i < 0 || i >= x.Arity() {
		return IND{}, sindyerr.MarkInternalInvariant("project index %d out of bounds for arity %d", i, x.Arity())
	}
	return IND{Dep: []uint32{x.Dep[i]}, Ref: []uint32{x.Ref[i]}}, nil
}

// Coproject returns the arity-(n-1) IND obtained by dropping position i
// from both sides.
func (x IND) Coproject(i int) (IND, error) {
	if i < 0 || i >= x.Arity() {
		return IND{}, sindyerr.MarkInternalInvariant("coproject index %d out of bounds for arity %d", i, x.Arity())
	}
	return IND{Dep: removeAt(x.Dep, i), Ref: removeAt(x.Ref, i)}, nil
}

func removeAt(s []uint32, i int) []uint32 {
	out := make([]uint32, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}

// IsImpliedBy reports whether there exists an order-preserving
// injection φ from this IND's positions into that IND's positions
// such that this.Dep[i] = that.Dep[φ(i)] and this.Ref[i] = that.Ref[φ(i)]
// for every i. Because Dep is sorted ascending in both operands, this
// is a linear two-pointer merge over the lexicographic (dep, ref) pair
// at each position.
func (x IND) IsImpliedBy(that IND) bool {
	if x.Arity() > that.Arity() {
		return false
	}
	thisI, thatI := 0, 0
	for thisI < x.Arity() && thatI < that.Arity() && x.Arity()-thisI <= that.Arity()-thatI {
		thisDep, thatDep := x.Dep[thisI], that.Dep[thatI]
		if thisDep == thatDep {
			thisRef, thatRef := x.Ref[thisI], that.Ref[thatI]
			if thisRef == thatRef {
				thisI++
				thatI++
				continue
			}
			if thisRef > thatRef {
				thatI++
				continue
			}
			return false
		}
		if thisDep > thatDep {
			thatI++
			continue
		}
		return false
	}
	return thisI == x.Arity()
}

// Equal reports bit-identical equality of (Dep, Ref).
func (x IND) Equal(y IND) bool {
	if len(x.Dep) != len(y.Dep) {
		return false
	}
	for i := range x.Dep {
		if x.Dep[i] != y.Dep[i] || x.Ref[i] != y.Ref[i] {
			return false
		}
	}
	return true
}

// Key returns a comparable string key suitable for use as a map key,
// since Go slices cannot be map keys directly.
func (x IND) Key() string {
	var sb strings.Builder
	for _, c := range x.Dep {
		fmt.Fprintf(&sb, "%d,", c)
	}
	sb.WriteByte('|')
	for _, c := range x.Ref {
		fmt.Fprintf(&sb, "%d,", c)
	}
	return sb.String()
}

// StandardCompare orders first by arity, then lexicographically by
// Dep, then lexicographically by Ref.
func StandardCompare(a, b IND) int {
	if c := a.Arity() - b.Arity(); c != 0 {
		return sign(c)
	}
	for i := range a.Dep {
		if c := cmpU32(a.Dep[i], b.Dep[i]); c != 0 {
			return c
		}
	}
	for i := range a.Ref {
		if c := cmpU32(a.Ref[i], b.Ref[i]); c != 0 {
			return c
		}
	}
	return 0
}

// LexicographicalCompare orders by Dep (up to the shorter arity), then
// by arity (shorter first on a common prefix), then by Ref (up to the
// shorter arity). Used to bring INDs sharing a dep/ref prefix into
// contiguous runs for the C8 Apriori merge step.
func LexicographicalCompare(a, b IND) int {
	minArity := a.Arity()
	if b.Arity() < minArity {
		minArity = b.Arity()
	}
	for i := 0; i < minArity; i++ {
		if c := cmpU32(a.Dep[i], b.Dep[i]); c != 0 {
			return c
		}
	}
	if c := a.Arity() - b.Arity(); c != 0 {
		return sign(c)
	}
	for i := 0; i < minArity; i++ {
		if c := cmpU32(a.Ref[i], b.Ref[i]); c != 0 {
			return c
		}
	}
	return 0
}

func cmpU32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func sign(i int) int {
	switch {
	case i < 0:
		return -1
	case i > 0:
		return 1
	default:
		return 0
	}
}

// String renders the compact form "[d1, ...] ⊆ [r1, ...]".
func (x IND) String() string {
	return fmt.Sprintf("%s ⊆ %s", formatCols(x.Dep), formatCols(x.Ref))
}

func formatCols(cols []uint32) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Pretty renders the IND resolving table and column names via the
// given registry, e.g. "R[a, b] ⊆ S[x, y]".
func (x IND) Pretty(reg *colid.Registry) string {
	if x.Arity() == 0 {
		return "[] ⊆ []"
	}
	depTable := reg.RelationName(x.Dep[0])
	refTable := reg.RelationName(x.Ref[0])
	depCols := make([]string, len(x.Dep))
	for i, c := range x.Dep {
		depCols[i] = reg.ColumnName(c)
	}
	refCols := make([]string, len(x.Ref))
	for i, c := range x.Ref {
		refCols[i] = reg.ColumnName(c)
	}
	return fmt.Sprintf("%s[%s] ⊆ %s[%s]", depTable, strings.Join(depCols, ", "), refTable, strings.Join(refCols, ", "))
}
