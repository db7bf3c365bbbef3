// Package sink implements the result sink spec.md §6 names as an
// external collaborator: a per-IND callback and, optionally, a
// receiver for the consolidated run.
package sink

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
)

// ResultSink receives discovered INDs. The run controller calls
// Receive once per IND of the final consolidated set, from its own
// goroutine, after the last pass has completed; nothing is delivered
// while a pass is running. Implementations here are safe for
// concurrent use all the same.
type ResultSink interface {
	Receive(i ind.IND) error
}

// NoopSink discards every IND. Useful for OnlyCountInds runs and
// tests.
type NoopSink struct{}

// Receive implements ResultSink.
func (NoopSink) Receive(ind.IND) error { return nil }

// SliceSink accumulates every received IND into a slice, guarded by a
// mutex so concurrent Broadcast-style delivery (spec.md §5) is safe.
type SliceSink struct {
	mu    sync.Mutex
	inds  []ind.IND
}

// NewSliceSink creates an empty SliceSink.
func NewSliceSink() *SliceSink { return &SliceSink{} }

// Receive implements ResultSink.
func (s *SliceSink) Receive(i ind.IND) error {
	s.mu.Lock()
	s.inds = append(s.inds, i)
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of every IND received so far.
func (s *SliceSink) Snapshot() []ind.IND {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ind.IND(nil), s.inds...)
}

// jsonLine is the on-the-wire shape of one emitted IND in the
// JSON-lines sink.
type jsonLine struct {
	Dep    []uint32 `json:"dep"`
	Ref    []uint32 `json:"ref"`
	Pretty string   `json:"pretty,omitempty"`
}

// JSONLinesSink writes one JSON object per line, one per received IND.
// It is safe for concurrent use.
type JSONLinesSink struct {
	mu       sync.Mutex
	w        io.Writer
	enc      *json.Encoder
	registry *colid.Registry // optional, for human-readable Pretty output
}

// NewJSONLinesSink creates a sink writing to w. If registry is
// non-nil, each line also carries a human-readable Pretty rendering.
func NewJSONLinesSink(w io.Writer, registry *colid.Registry) *JSONLinesSink {
	return &JSONLinesSink{w: w, enc: json.NewEncoder(w), registry: registry}
}

// Receive implements ResultSink.
func (s *JSONLinesSink) Receive(i ind.IND) error {
	line := jsonLine{Dep: i.Dep, Ref: i.Ref}
	if s.registry != nil {
		line.Pretty = i.Pretty(s.registry)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(line)
}

var (
	_ ResultSink = NoopSink{}
	_ ResultSink = (*SliceSink)(nil)
	_ ResultSink = (*JSONLinesSink)(nil)
)
