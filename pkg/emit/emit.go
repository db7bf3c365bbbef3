// Package emit implements the cell emitter (spec component C4) and
// the n-ary cell emitter (spec component C7): turning each row of a
// table into (value, columnId) or (tuple, combinationId) records for
// the unary and n-ary validation pipelines to group and reduce.
package emit

import (
	"context"

	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/combo"
	"github.com/vishalbelsare/sindy-3/pkg/csvsource"
	"github.com/vishalbelsare/sindy-3/pkg/substrate"
)

// tupleSeparator joins the components of an n-ary tuple into one
// comparable string value. 0x1f (ASCII unit separator) is vanishingly
// unlikely to appear in ordinary tabular cell data.
const tupleSeparator = "\x1f"

// nullSentinel is the group key every null cell maps to, regardless of
// which column or table it came from, per spec.md §4.3's "sentinel
// null representation".
const nullSentinel = "\x00NULL\x00"

// Config holds the emission policy knobs spec.md §4.3/§4.4 name.
type Config struct {
	// DropNulls discards null cells instead of emitting them under the
	// null sentinel.
	DropNulls bool
	// NullString is the configured null marker a raw field value is
	// compared against.
	NullString string
	// MaxColumns caps the number of columns read per table; -1 means
	// unlimited.
	MaxColumns int
	// SampleRows caps the number of rows read per table; -1 means all
	// rows.
	SampleRows int
}

// Cell is one emitted (value, column) record from the unary emitter.
type Cell struct {
	// GroupKey is what the group-by stage keys on: the raw value, or
	// nullSentinel if IsNull.
	GroupKey string
	IsNull   bool
	Column   uint32
}

// UnaryCells builds the C4 leaf Source for one table: one Cell per
// (row, column) pair that survives the null/width/sampling policy.
func UnaryCells(table csvsource.Table, tableID uint32, codec *colid.Codec, cfg Config) substrate.Source {
	return unaryCellSource{table: table, tableID: tableID, codec: codec, cfg: cfg}
}

type unaryCellSource struct {
	table   csvsource.Table
	tableID uint32
	codec   *colid.Codec
	cfg     Config
}

func (s unaryCellSource) Emit(ctx context.Context, fn func(substrate.Record) error) error {
	it, err := s.table.GenerateNewCopy()
	if err != nil {
		return err
	}
	defer it.Close()

	width := len(s.table.ColumnNames())
	if s.cfg.MaxColumns >= 0 && s.cfg.MaxColumns < width {
		width = s.cfg.MaxColumns
	}

	rows := 0
	for {
		if s.cfg.SampleRows >= 0 && rows >= s.cfg.SampleRows {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		row, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		rows++

		n := len(row)
		if n > width {
			n = width
		}
		for i := 0; i < n; i++ {
			v := row[i]
			isNull := v == s.cfg.NullString
			if isNull && s.cfg.DropNulls {
				continue
			}
			cell := Cell{Column: s.codec.ColumnID(s.tableID, i), IsNull: isNull}
			if isNull {
				cell.GroupKey = nullSentinel
			} else {
				cell.GroupKey = v
			}
			if err := fn(cell); err != nil {
				return err
			}
		}
	}
}

// NaryCell is one emitted (tuple, combination) record from the n-ary
// emitter.
type NaryCell struct {
	GroupKey string
	IsNull   bool
	Combo    combo.Ref
}

// Combination describes one candidate column combination. Columns is
// in whatever order pkg/combo interned it: ascending for a Dep-side
// combination, positional (matching the paired Dep column-for-column)
// for a Ref-side one.
type Combination struct {
	ID      uint32
	Columns []uint32
}

// NaryCells builds the C7 leaf Source for one table: for every
// Combination whose columns all belong to tableID, one NaryCell per
// row that survives the null/sampling policy.
func NaryCells(table csvsource.Table, tableID uint32, codec *colid.Codec, combos []Combination, cfg Config) substrate.Source {
	applicable := make([]localCombination, 0, len(combos))
	for _, c := range combos {
		positions, ok := localPositions(codec, tableID, c.Columns)
		if !ok {
			continue
		}
		applicable = append(applicable, localCombination{id: c.ID, positions: positions})
	}
	return naryCellSource{table: table, applicable: applicable, cfg: cfg}
}

type localCombination struct {
	id        uint32
	positions []int
}

// localPositions returns the local column indices within tableID for
// every column in cols, or ok=false if any column belongs to a
// different table.
func localPositions(codec *colid.Codec, tableID uint32, cols []uint32) ([]int, bool) {
	positions := make([]int, len(cols))
	for i, c := range cols {
		owner, idx := codec.Decode(c)
		if owner != tableID {
			return nil, false
		}
		positions[i] = idx
	}
	return positions, true
}

type naryCellSource struct {
	table      csvsource.Table
	applicable []localCombination
	cfg        Config
}

func (s naryCellSource) Emit(ctx context.Context, fn func(substrate.Record) error) error {
	if len(s.applicable) == 0 {
		return nil
	}
	it, err := s.table.GenerateNewCopy()
	if err != nil {
		return err
	}
	defer it.Close()

	rows := 0
	for {
		if s.cfg.SampleRows >= 0 && rows >= s.cfg.SampleRows {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		row, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		rows++

		for _, combination := range s.applicable {
			tuple, isNull, ok := buildTuple(row, combination.positions, s.cfg.NullString)
			if !ok {
				continue // row too narrow for this combination
			}
			if isNull && s.cfg.DropNulls {
				continue
			}
			cell := NaryCell{Combo: combo.Combination(combination.id), IsNull: isNull}
			if isNull {
				cell.GroupKey = nullSentinel
			} else {
				cell.GroupKey = tuple
			}
			if err := fn(cell); err != nil {
				return err
			}
		}
	}
}

// buildTuple reads row at the given positions, joining them with
// tupleSeparator. ok is false if row is too short for any position;
// isNull is true if any component equals nullString.
func buildTuple(row []string, positions []int, nullString string) (tuple string, isNull bool, ok bool) {
	parts := make([]string, len(positions))
	for i, p := range positions {
		if p >= len(row) {
			return "", false, false
		}
		v := row[p]
		if v == nullString {
			isNull = true
		}
		parts[i] = v
	}
	tuple = joinWithSeparator(parts)
	return tuple, isNull, true
}

func joinWithSeparator(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	total := len(parts) - 1
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for i, p := range parts {
		if i > 0 {
			out = append(out, tupleSeparator...)
		}
		out = append(out, p...)
	}
	return string(out)
}
