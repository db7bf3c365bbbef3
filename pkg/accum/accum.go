// Package accum implements the broadcast-style accumulators spec.md
// §4.3 uses to track null counts, distinct counts, and table widths
// alongside a validation pass, plus the approximate distinct-count
// backend named in SPEC_FULL.md's domain stack.
//
// Two distinct-count backends share one interface: an exact
// map-backed set for small columns, and an approximate
// github.com/axiomhq/hyperloglog sketch for columns where exactness
// isn't worth the memory. Both satisfy DistinctSet; DistinctAccumulator
// adapts either one to substrate.Accumulator so it can be wired into a
// Broadcast stage.
package accum

import (
	"sync"

	"github.com/axiomhq/hyperloglog"

	"github.com/vishalbelsare/sindy-3/pkg/substrate"
)

// Counter is a thread-safe monotonic counter, used for null counts
// (spec.md §4.3's nullCount[c]) where every broadcast record
// represents one occurrence.
type Counter struct {
	mu sync.Mutex
	n  uint64
}

// Add implements substrate.Accumulator: every record increments the
// counter by one, regardless of its value.
func (c *Counter) Add(substrate.Record) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

// Count returns the current count.
func (c *Counter) Count() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

var _ substrate.Accumulator = (*Counter)(nil)

// DistinctSet is the common interface of the exact and approximate
// distinct-count backends.
type DistinctSet interface {
	AddValue(v string)
	Estimate() uint64
}

// ExactDistinctSet is a map-backed exact distinct-count accumulator.
type ExactDistinctSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewExactDistinctSet creates an empty ExactDistinctSet.
func NewExactDistinctSet() *ExactDistinctSet {
	return &ExactDistinctSet{seen: make(map[string]struct{})}
}

// AddValue records an occurrence of v.
func (e *ExactDistinctSet) AddValue(v string) {
	e.mu.Lock()
	e.seen[v] = struct{}{}
	e.mu.Unlock()
}

// Estimate returns the exact distinct count observed so far.
func (e *ExactDistinctSet) Estimate() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return uint64(len(e.seen))
}

// ApproxDistinctSet is a HyperLogLog-backed approximate distinct-count
// accumulator, for columns where exact tracking would be too costly.
type ApproxDistinctSet struct {
	mu     sync.Mutex
	sketch *hyperloglog.Sketch
}

// NewApproxDistinctSet creates an empty ApproxDistinctSet.
func NewApproxDistinctSet() *ApproxDistinctSet {
	return &ApproxDistinctSet{sketch: hyperloglog.New()}
}

// AddValue records an occurrence of v.
func (a *ApproxDistinctSet) AddValue(v string) {
	a.mu.Lock()
	a.sketch.Insert([]byte(v))
	a.mu.Unlock()
}

// Estimate returns the approximate distinct count observed so far.
func (a *ApproxDistinctSet) Estimate() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sketch.Estimate()
}

var (
	_ DistinctSet = (*ExactDistinctSet)(nil)
	_ DistinctSet = (*ApproxDistinctSet)(nil)
)

// DistinctAccumulator adapts a DistinctSet to substrate.Accumulator by
// extracting the value to count from each broadcast record via keyFn.
type DistinctAccumulator struct {
	set   DistinctSet
	keyFn func(substrate.Record) string
}

// NewDistinctAccumulator wires set to receive the string keyFn
// extracts from each broadcast record.
func NewDistinctAccumulator(set DistinctSet, keyFn func(substrate.Record) string) *DistinctAccumulator {
	return &DistinctAccumulator{set: set, keyFn: keyFn}
}

// Add implements substrate.Accumulator.
func (d *DistinctAccumulator) Add(r substrate.Record) {
	d.set.AddValue(d.keyFn(r))
}

// Estimate returns the distinct count observed so far.
func (d *DistinctAccumulator) Estimate() uint64 {
	return d.set.Estimate()
}

var _ substrate.Accumulator = (*DistinctAccumulator)(nil)

// MaxTracker tracks, per uint32 key, the maximum uint32 value observed
// (used for spec.md §3's tableWidth : tableId -> u32).
type MaxTracker struct {
	mu  sync.Mutex
	max map[uint32]uint32
}

// NewMaxTracker creates an empty MaxTracker.
func NewMaxTracker() *MaxTracker {
	return &MaxTracker{max: make(map[uint32]uint32)}
}

// Observe records that value was seen for key, updating the maximum if
// value is larger than anything previously observed for key.
func (m *MaxTracker) Observe(key, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value > m.max[key] {
		m.max[key] = value
	}
}

// Get returns the current maximum observed for key.
func (m *MaxTracker) Get(key uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.max[key]
}

// Snapshot returns a copy of the full key -> max map.
func (m *MaxTracker) Snapshot() map[uint32]uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint32]uint32, len(m.max))
	for k, v := range m.max {
		out[k] = v
	}
	return out
}
