package unary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/emit"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
	"github.com/vishalbelsare/sindy-3/pkg/substrate"
)

func cellRecords(cells []emit.Cell) []substrate.Record {
	out := make([]substrate.Record, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

func TestRunDiscoversUnaryInclusion(t *testing.T) {
	codec, err := colid.NewCodec(8)
	require.NoError(t, err)
	tableR := codec.TableID(0)
	tableS := codec.TableID(1)
	colA := codec.ColumnID(tableR, 0)
	colX := codec.ColumnID(tableS, 0)

	cells := []emit.Cell{
		{GroupKey: "1", Column: colA},
		{GroupKey: "2", Column: colA},
		{GroupKey: "3", Column: colA},
		{GroupKey: "1", Column: colX},
		{GroupKey: "2", Column: colX},
		{GroupKey: "3", Column: colX},
		{GroupKey: "4", Column: colX},
	}

	sub := substrate.NewLocal()
	source := substrate.FromSlice(cellRecords(cells))
	result, err := Run(context.Background(), sub, source, []uint32{colA, colX}, false)
	require.NoError(t, err)

	// Every column trivially includes itself, alongside the one
	// cross-column inclusion actually discovered by the reduction.
	require.Len(t, result.INDs, 3)
	require.Contains(t, result.INDs, ind.Unary(colA, colX))
	require.Contains(t, result.INDs, ind.Unary(colA, colA))
	require.Contains(t, result.INDs, ind.Unary(colX, colX))
	require.Empty(t, result.IARs)
	require.Equal(t, uint64(3), result.DistinctCount[colA])
	require.Equal(t, uint64(4), result.DistinctCount[colX])
}

func TestRunEmitsVoidColumnIARs(t *testing.T) {
	codec, err := colid.NewCodec(8)
	require.NoError(t, err)
	tableR := codec.TableID(0)
	colA := codec.ColumnID(tableR, 0)
	colVoid := codec.ColumnID(tableR, 1)

	cells := []emit.Cell{
		{GroupKey: "1", Column: colA},
		{GroupKey: "2", Column: colA},
	}

	sub := substrate.NewLocal()
	source := substrate.FromSlice(cellRecords(cells))
	result, err := Run(context.Background(), sub, source, []uint32{colA, colVoid}, false)
	require.NoError(t, err)

	require.Len(t, result.IARs, 1)
	require.True(t, result.IARs[0].LHS.Equal(ind.Empty))
	require.True(t, result.IARs[0].RHS.Equal(ind.Unary(colVoid, colA)))
}

func TestRunWithApproximateDistinctCounts(t *testing.T) {
	codec, err := colid.NewCodec(8)
	require.NoError(t, err)
	tableR := codec.TableID(0)
	tableS := codec.TableID(1)
	colA := codec.ColumnID(tableR, 0)
	colX := codec.ColumnID(tableS, 0)

	cells := []emit.Cell{
		{GroupKey: "1", Column: colA},
		{GroupKey: "2", Column: colA},
		{GroupKey: "3", Column: colA},
		{GroupKey: "1", Column: colX},
		{GroupKey: "2", Column: colX},
		{GroupKey: "3", Column: colX},
		{GroupKey: "4", Column: colX},
	}

	sub := substrate.NewLocal()
	source := substrate.FromSlice(cellRecords(cells))
	result, err := Run(context.Background(), sub, source, []uint32{colA, colX}, true)
	require.NoError(t, err)

	// HyperLogLog is an estimator: assert it lands within tolerance of
	// the exact counts instead of demanding an exact match.
	require.InDelta(t, 3, result.DistinctCount[colA], 1)
	require.InDelta(t, 4, result.DistinctCount[colX], 1)
}

func TestRunTracksNullCount(t *testing.T) {
	codec, err := colid.NewCodec(8)
	require.NoError(t, err)
	tableR := codec.TableID(0)
	colA := codec.ColumnID(tableR, 0)
	colB := codec.ColumnID(tableR, 1)

	cells := []emit.Cell{
		{GroupKey: "1", Column: colA},
		{GroupKey: "\x00NULL\x00", IsNull: true, Column: colA},
		{GroupKey: "1", Column: colB},
	}

	sub := substrate.NewLocal()
	source := substrate.FromSlice(cellRecords(cells))
	result, err := Run(context.Background(), sub, source, []uint32{colA, colB}, false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.NullCount[colA])
	require.Equal(t, uint64(0), result.NullCount[colB])
}
