// Package config holds the typed configuration of a sindy run,
// covering every option named in spec.md §6 plus the two options
// recovered from original_source/sindy-metanome's SINDY.java
// (FilterTrivialINDs) and this module's domain stack
// (ApproximateDistinctCounts).
//
// Grounded on pkg/cli/flags.go's pattern of collecting raw flag values
// into a single context struct, validated before any pass runs.
// Validate raises the Configuration error kind of spec.md §7; the
// column-id codec, the CLI flag resolution and the run controller's
// table check raise it as well.
package config

import (
	"github.com/vishalbelsare/sindy-3/pkg/csvsource"
	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
)

// NaryIndRestriction is one of the three restrictions spec.md §4.5
// step 4 applies to an Apriori merge candidate.
type NaryIndRestriction int

const (
	// RestrictionUnspecified marks a Config that has not set a
	// restriction; Validate rejects it unless MaxArity == 1.
	RestrictionUnspecified NaryIndRestriction = iota
	// RestrictionNone applies no restriction.
	RestrictionNone
	// RestrictionNoRepetitions forbids a column id from appearing more
	// than once across the union of dep and ref sides.
	RestrictionNoRepetitions
	// RestrictionDepRefDisjoint requires dep-side column ids to be
	// disjoint from ref-side column ids.
	RestrictionDepRefDisjoint
)

// CandidateGenerator selects among the mind/apriori/binder strategy
// variants of spec.md §4.5/§9.
type CandidateGenerator int

const (
	// GeneratorUnspecified marks a Config that has not selected a
	// strategy; Validate rejects it unless MaxArity == 1.
	GeneratorUnspecified CandidateGenerator = iota
	// GeneratorMind is the baseline Apriori-style generator without
	// void-IND exclusion.
	GeneratorMind
	// GeneratorApriori is the standard Apriori-style generator without
	// void-IND exclusion (an alias distinguished from Mind only by
	// name in the source; kept distinct here so both strategy labels
	// from SINDY.java's naryIndRestrictions selector round-trip).
	GeneratorApriori
	// GeneratorBinder sets ExcludeVoidIndsFromCandidateGeneration to
	// true, per spec.md §6.
	GeneratorBinder
)

// Config is the full set of options spec.md §6 names.
type Config struct {
	// NumColumnBits is the size of the column-index field in a column
	// id. Default 16.
	NumColumnBits int
	// MaxArity upper-bounds the discovered arity; -1 means exhaust.
	MaxArity int
	// OnlyCountInds stops after the unary pass: no n-ary pass runs.
	// The unary INDs are still delivered to the result sink and counted
	// in the run summary; there is no count-only output.
	OnlyCountInds bool
	// MaxColumns caps columns per table; -1 means unlimited.
	MaxColumns int
	// SampleRows caps rows read per table; -1 means all rows.
	SampleRows int
	// DropNulls selects whether null cells are discarded rather than
	// emitted. There is deliberately no default: the source carries two
	// near-duplicate configuration facades disagreeing on this
	// default (spec.md §9's Open Question), so this field is an
	// explicit required input — New takes it as a required parameter
	// and Validate does not default it.
	DropNulls bool
	// NotUseGroupOperators is a hint passed through to the execution
	// substrate: pkg/substrate.NewLocalHinted reduces groups
	// sequentially instead of fanning out one goroutine per group when
	// set.
	NotUseGroupOperators bool
	// ExcludeVoidIndsFromCandidateGeneration mirrors spec.md §4.5 step
	// 5. Read it through ExcludeVoidInds, which reports true for
	// GeneratorBinder regardless of what the caller set here.
	ExcludeVoidIndsFromCandidateGeneration bool
	// NaryIndRestriction is the restriction C8 applies once MaxArity
	// exceeds 1 (or is unbounded).
	NaryIndRestriction NaryIndRestriction
	// CandidateGenerator selects the mind/apriori/binder strategy.
	CandidateGenerator CandidateGenerator
	// FilterTrivialINDs drops R.a ⊆ R.a self-INDs from the final
	// consolidated set, recovered from SINDY.java's filterTrivialInds
	// property (see SPEC_FULL.md). Default false: spec.md §8 scenario 3
	// keeps trivial self-INDs by default.
	FilterTrivialINDs bool
	// ApproximateDistinctCounts selects the HyperLogLog-backed distinct
	// accumulator (pkg/accum.ApproxDistinctSet) instead of the exact
	// one for every statistics table. Default false (exact).
	ApproximateDistinctCounts bool
	// CombinationChunkSize bounds how many column combinations the n-ary
	// pass emits and reduces in a single substrate job, per spec.md
	// §4.4's Chunking note. <= 0 means one chunk covering every
	// combination.
	CombinationChunkSize int

	// CSV holds the CSV controls propagated to pkg/csvsource.
	CSV csvsource.Options
}

// New creates a Config with every spec.md §6 default applied, except
// DropNulls, which the caller must set explicitly.
func New(dropNulls bool) Config {
	return Config{
		NumColumnBits: 16,
		MaxArity:      -1,
		MaxColumns:    -1,
		SampleRows:    -1,
		DropNulls:     dropNulls,
		CSV:           csvsource.DefaultOptions(),
	}
}

// Validate checks the configuration per spec.md §4.7's INIT state and
// returns a Configuration-kind error describing the first problem
// found.
func (c Config) Validate() error {
	if c.NumColumnBits < 1 || c.NumColumnBits > 31 {
		return sindyerr.MarkConfiguration("numColumnBits must be in [1, 31], got %d", c.NumColumnBits)
	}
	if c.MaxArity != 1 {
		if c.NaryIndRestriction == RestrictionUnspecified {
			return sindyerr.MarkConfiguration("maxArity=%d requires an n-ary IND restriction to be configured", c.MaxArity)
		}
		if c.CandidateGenerator == GeneratorUnspecified {
			return sindyerr.MarkConfiguration("maxArity=%d requires a candidate generator to be configured", c.MaxArity)
		}
	}
	if c.MaxArity < -1 || c.MaxArity == 0 {
		return sindyerr.MarkConfiguration("maxArity must be -1 or >= 1, got %d", c.MaxArity)
	}
	return nil
}

// ExcludeVoidInds reports whether void INDs should be excluded from
// candidate generation, applying the GeneratorBinder override spec.md
// §6 describes.
func (c Config) ExcludeVoidInds() bool {
	if c.CandidateGenerator == GeneratorBinder {
		return true
	}
	return c.ExcludeVoidIndsFromCandidateGeneration
}
