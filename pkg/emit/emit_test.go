package emit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/csvsource"
)

func writeCSV(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func newCodec(t *testing.T) *colid.Codec {
	t.Helper()
	c, err := colid.NewCodec(8)
	require.NoError(t, err)
	return c
}

func TestUnaryCellsEmitsOnePerCell(t *testing.T) {
	path := writeCSV(t, "r.csv", "a,b\n1,10\n2,20\n")
	tbl, err := csvsource.NewFileTable(path, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec := newCodec(t)
	tableID := codec.TableID(0)
	src := UnaryCells(tbl, tableID, codec, Config{MaxColumns: -1, SampleRows: -1})

	var cells []Cell
	err = src.Emit(context.Background(), func(r interface{}) error {
		cells = append(cells, r.(Cell))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cells, 4)
}

func TestUnaryCellsDropsNulls(t *testing.T) {
	path := writeCSV(t, "r.csv", "a,b\n1,\n,20\n")
	tbl, err := csvsource.NewFileTable(path, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec := newCodec(t)
	tableID := codec.TableID(0)
	src := UnaryCells(tbl, tableID, codec, Config{DropNulls: true, NullString: "", MaxColumns: -1, SampleRows: -1})

	var cells []Cell
	err = src.Emit(context.Background(), func(r interface{}) error {
		cells = append(cells, r.(Cell))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cells, 2)
}

func TestUnaryCellsEmitsNullSentinelWhenNotDropped(t *testing.T) {
	path := writeCSV(t, "r.csv", "a,b\n1,\n")
	tbl, err := csvsource.NewFileTable(path, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec := newCodec(t)
	tableID := codec.TableID(0)
	src := UnaryCells(tbl, tableID, codec, Config{DropNulls: false, NullString: "", MaxColumns: -1, SampleRows: -1})

	var cells []Cell
	err = src.Emit(context.Background(), func(r interface{}) error {
		cells = append(cells, r.(Cell))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cells, 2)
	require.True(t, cells[1].IsNull)
	require.Equal(t, nullSentinel, cells[1].GroupKey)
}

func TestUnaryCellsRespectsMaxColumnsAndSampleRows(t *testing.T) {
	path := writeCSV(t, "r.csv", "a,b,c\n1,2,3\n4,5,6\n7,8,9\n")
	tbl, err := csvsource.NewFileTable(path, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec := newCodec(t)
	tableID := codec.TableID(0)
	src := UnaryCells(tbl, tableID, codec, Config{MaxColumns: 2, SampleRows: 2})

	var cells []Cell
	err = src.Emit(context.Background(), func(r interface{}) error {
		cells = append(cells, r.(Cell))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cells, 4) // 2 rows * 2 columns
}

func TestNaryCellsJoinsTupleAndFiltersByTable(t *testing.T) {
	path := writeCSV(t, "r.csv", "a,b\n1,10\n2,20\n")
	tbl, err := csvsource.NewFileTable(path, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec := newCodec(t)
	tableID := codec.TableID(0)
	otherTableID := codec.TableID(1)

	colA := codec.ColumnID(tableID, 0)
	colB := codec.ColumnID(tableID, 1)
	foreignCombo := Combination{ID: 99, Columns: []uint32{codec.ColumnID(otherTableID, 0), codec.ColumnID(otherTableID, 1)}}
	localCombo := Combination{ID: 1, Columns: []uint32{colA, colB}}

	src := NaryCells(tbl, tableID, codec, []Combination{localCombo, foreignCombo}, Config{SampleRows: -1})

	var cells []NaryCell
	err = src.Emit(context.Background(), func(r interface{}) error {
		cells = append(cells, r.(NaryCell))
		return nil
	})
	require.NoError(t, err)
	// Only localCombo applies to this table; 2 rows => 2 cells.
	require.Len(t, cells, 2)
	require.Equal(t, "1\x1f10", cells[0].GroupKey)
	require.Equal(t, "2\x1f20", cells[1].GroupKey)
}
