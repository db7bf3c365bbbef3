package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
)

func writeCSV(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunDiscoversAndWritesInds(t *testing.T) {
	dir := t.TempDir()
	rPath := writeCSV(t, dir, "r.csv", "a\n1\n2\n3\n")
	sPath := writeCSV(t, dir, "s.csv", "x\n1\n2\n3\n4\n")
	outPath := filepath.Join(dir, "out.jsonl")

	err := Run([]string{
		"run",
		"--input=" + rPath,
		"--input=" + sPath,
		"--output=" + outPath,
		"--max-arity=1",
		"--drop-nulls=false",
		"--filter-trivial-inds",
	})
	require.NoError(t, err)
	require.Equal(t, 0, ExitCode(err))

	f, openErr := os.Open(outPath)
	require.NoError(t, openErr)
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	require.Equal(t, 1, lines)
}

func TestRunRejectsMissingInput(t *testing.T) {
	err := Run([]string{"run", "--max-arity=1", "--drop-nulls=false"})
	require.Error(t, err)
	require.True(t, sindyerr.IsConfiguration(err))
	require.Equal(t, 4, ExitCode(err))
}

func TestExitCodeMapsErrorKinds(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 4, ExitCode(sindyerr.MarkConfiguration("bad")))
	require.Equal(t, 1, ExitCode(sindyerr.MarkInput(os.ErrNotExist)))
	require.Equal(t, 2, ExitCode(sindyerr.MarkInternalInvariant("oops")))
}
