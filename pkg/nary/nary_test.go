package nary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/sindy-3/pkg/colid"
	"github.com/vishalbelsare/sindy-3/pkg/csvsource"
	"github.com/vishalbelsare/sindy-3/pkg/emit"
	"github.com/vishalbelsare/sindy-3/pkg/ind"
	"github.com/vishalbelsare/sindy-3/pkg/substrate"
)

func writeCSV(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunConfirmsBinaryCandidate(t *testing.T) {
	rPath := writeCSV(t, "r.csv", "a,b\n1,10\n2,20\n")
	sPath := writeCSV(t, "s.csv", "x,y\n1,10\n2,20\n3,30\n")
	rTbl, err := csvsource.NewFileTable(rPath, csvsource.DefaultOptions())
	require.NoError(t, err)
	sTbl, err := csvsource.NewFileTable(sPath, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec, err := colid.NewCodec(8)
	require.NoError(t, err)
	tableR := codec.TableID(0)
	tableS := codec.TableID(1)
	colA := codec.ColumnID(tableR, 0)
	colB := codec.ColumnID(tableR, 1)
	colX := codec.ColumnID(tableS, 0)
	colY := codec.ColumnID(tableS, 1)

	candidate, err := ind.New([]uint32{colA, colB}, []uint32{colX, colY})
	require.NoError(t, err)

	tables := []Table{{TableID: tableR, Table: rTbl}, {TableID: tableS, Table: sTbl}}
	result, err := Run(context.Background(), func() substrate.Substrate { return substrate.NewLocal() },
		tables, codec, []ind.IND{candidate}, emit.Config{SampleRows: -1}, 0, false)
	require.NoError(t, err)

	require.Len(t, result.INDs, 1)
	require.True(t, result.INDs[0].Equal(candidate))
}

func TestRunRejectsUnconfirmedCandidate(t *testing.T) {
	rPath := writeCSV(t, "r.csv", "a,b\n1,10\n9,90\n")
	sPath := writeCSV(t, "s.csv", "x,y\n1,10\n2,20\n")
	rTbl, err := csvsource.NewFileTable(rPath, csvsource.DefaultOptions())
	require.NoError(t, err)
	sTbl, err := csvsource.NewFileTable(sPath, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec, err := colid.NewCodec(8)
	require.NoError(t, err)
	tableR := codec.TableID(0)
	tableS := codec.TableID(1)
	colA := codec.ColumnID(tableR, 0)
	colB := codec.ColumnID(tableR, 1)
	colX := codec.ColumnID(tableS, 0)
	colY := codec.ColumnID(tableS, 1)

	candidate, err := ind.New([]uint32{colA, colB}, []uint32{colX, colY})
	require.NoError(t, err)

	tables := []Table{{TableID: tableR, Table: rTbl}, {TableID: tableS, Table: sTbl}}
	result, err := Run(context.Background(), func() substrate.Substrate { return substrate.NewLocal() },
		tables, codec, []ind.IND{candidate}, emit.Config{SampleRows: -1}, 0, false)
	require.NoError(t, err)
	require.Empty(t, result.INDs)
}

func TestRunRejectsCandidateWithWrongPositionalPairing(t *testing.T) {
	// R.a ⊆ S.x and R.b ⊆ S.y both hold, but the candidate under test
	// claims the opposite pairing: R.a ⊆ S.y, R.b ⊆ S.x. That pairing
	// does not hold, so it must be rejected even though sorting the ref
	// side ([x,y]) would make it look confirmed.
	rPath := writeCSV(t, "r.csv", "a,b\n1,10\n2,20\n")
	sPath := writeCSV(t, "s.csv", "x,y\n1,10\n2,20\n99,99\n")
	rTbl, err := csvsource.NewFileTable(rPath, csvsource.DefaultOptions())
	require.NoError(t, err)
	sTbl, err := csvsource.NewFileTable(sPath, csvsource.DefaultOptions())
	require.NoError(t, err)

	codec, err := colid.NewCodec(8)
	require.NoError(t, err)
	tableR := codec.TableID(0)
	tableS := codec.TableID(1)
	colA := codec.ColumnID(tableR, 0)
	colB := codec.ColumnID(tableR, 1)
	colX := codec.ColumnID(tableS, 0)
	colY := codec.ColumnID(tableS, 1)

	// dep=[a,b] ascending, ref=[y,x]: claims a<->y, b<->x, which is
	// false (a's values {1,2} are not a subset of y's {10,20,99}).
	candidate, err := ind.New([]uint32{colA, colB}, []uint32{colY, colX})
	require.NoError(t, err)

	tables := []Table{{TableID: tableR, Table: rTbl}, {TableID: tableS, Table: sTbl}}
	result, err := Run(context.Background(), func() substrate.Substrate { return substrate.NewLocal() },
		tables, codec, []ind.IND{candidate}, emit.Config{SampleRows: -1}, 0, false)
	require.NoError(t, err)
	require.Empty(t, result.INDs)
}

func TestChunkCombinationsPartitions(t *testing.T) {
	combos := []emit.Combination{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	chunks := chunkCombinations(combos, 2)
	require.Len(t, chunks, 3)
	require.Len(t, chunks[0], 2)
	require.Len(t, chunks[2], 1)
}
