// Package combo implements the column-combination indexer (spec
// component C6): a bijection between distinct column-id sequences of
// arity >= 2 and dense integer combination ids, rebuilt fresh for
// every arity from the candidate set that C8 produced. Order matters:
// a dependent-side sequence is always ascending (the IND invariant),
// but a referenced-side sequence is kept in its candidate's positional
// order, since that order is the claim being validated.
//
// Following the REDESIGN NOTE in spec.md §9, combination ids live in
// their own namespace rather than literally sharing bit-space with
// column ids: Ref is a tagged sum (Column | Combination) so the
// reducer key type used by pkg/unary and pkg/nary can never conflate
// the two, eliminating a whole class of miscasts the source's shared
// integer space was prone to.
package combo

import (
	"fmt"
	"strings"

	"github.com/vishalbelsare/sindy-3/pkg/ind"
)

// Ref identifies either a plain column or a column combination. Exactly
// one of the two forms is meaningful, selected by IsCombination.
type Ref struct {
	IsCombination bool
	ID            uint32
}

// Column builds a Ref naming a plain column id.
func Column(id uint32) Ref { return Ref{ID: id} }

// Combination builds a Ref naming a column-combination id.
func Combination(id uint32) Ref { return Ref{IsCombination: true, ID: id} }

func (r Ref) String() string {
	if r.IsCombination {
		return fmt.Sprintf("combo#%d", r.ID)
	}
	return fmt.Sprintf("col#%d", r.ID)
}

// Indexer is the bijection between column sequences (in the order
// they were interned) and combination ids for a single arity level.
type Indexer struct {
	idOf   map[string]uint32
	colsOf map[uint32][]uint32
	next   uint32
}

// NewIndexer creates an empty Indexer. Combination ids are assigned
// starting at 0 from a dense counter local to this Indexer; because
// Ref tags the namespace, these ids never need to be disjoint from
// plain column ids.
func NewIndexer() *Indexer {
	return &Indexer{
		idOf:   make(map[string]uint32),
		colsOf: make(map[uint32][]uint32),
	}
}

func key(cols []uint32) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return strings.Join(parts, ",")
}

// Intern assigns (or returns the existing) combination id for the
// given column sequence, in exactly the order passed. Intern never
// re-sorts: two sequences over the same column set but in a different
// order are distinct combinations with distinct ids, since that order
// is what pairs a dependent column with the referenced column it
// actually claims to be included in (see BuildFromCandidates). Callers
// that want sorted-ascending semantics (e.g. Dep, which the IND
// invariant already keeps ascending) must sort before calling.
func (ix *Indexer) Intern(cols []uint32) uint32 {
	k := key(cols)
	if id, ok := ix.idOf[k]; ok {
		return id
	}
	id := ix.next
	ix.next++
	ix.idOf[k] = id
	cp := append([]uint32(nil), cols...)
	ix.colsOf[id] = cp
	return id
}

// Columns returns the column sequence a combination id was interned
// with, in that same order (ascending for a Dep-side id, positional
// for a Ref-side id).
func (ix *Indexer) Columns(id uint32) ([]uint32, bool) {
	cols, ok := ix.colsOf[id]
	return cols, ok
}

// Len returns the number of distinct combinations interned so far.
func (ix *Indexer) Len() int { return int(ix.next) }

// BuildFromCandidates constructs S_{k+1} (spec.md §4.4 step 1) by
// interning both the dependent and referenced column sequences of
// every candidate IND, and returns the Indexer plus, for each
// candidate, the pair of Refs its dep/ref sides map to. Ref is interned
// in the candidate's own positional order, not sorted: ref[i] is the
// column dep[i] is claimed to be included in, and re-sorting it would
// silently validate a different dep<->ref pairing than the candidate
// actually represents.
func BuildFromCandidates(candidates []ind.IND) (*Indexer, []CandidateRefs) {
	ix := NewIndexer()
	out := make([]CandidateRefs, len(candidates))
	for i, c := range candidates {
		depID := ix.Intern(c.Dep) // Dep is already ascending per the IND invariant.
		refID := ix.Intern(c.Ref) // Ref stays in positional correspondence with Dep.
		out[i] = CandidateRefs{Candidate: c, Dep: Combination(depID), Ref: Combination(refID)}
	}
	return ix, out
}

// CandidateRefs pairs a candidate IND with the combination Refs its
// two sides were interned to.
type CandidateRefs struct {
	Candidate ind.IND
	Dep       Ref
	Ref       Ref
}
