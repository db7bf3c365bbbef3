package ind

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustIND(t *testing.T, dep, ref []uint32) IND {
	t.Helper()
	x, err := New(dep, ref)
	require.NoError(t, err)
	return x
}

func TestArityAndTrivial(t *testing.T) {
	x := mustIND(t, []uint32{1, 2}, []uint32{1, 2})
	require.Equal(t, 2, x.Arity())
	require.True(t, x.IsTrivial())

	y := mustIND(t, []uint32{1, 2}, []uint32{3, 4})
	require.False(t, y.IsTrivial())
}

func TestNewRejectsUnsortedDep(t *testing.T) {
	_, err := New([]uint32{2, 1}, []uint32{3, 4})
	require.Error(t, err)
}

func TestProjectCoprojectRoundTrip(t *testing.T) {
	x := mustIND(t, []uint32{1, 2, 3}, []uint32{10, 20, 30})
	for i := 0; i < x.Arity(); i++ {
		p, err := x.Project(i)
		require.NoError(t, err)
		require.True(t, p.IsImpliedBy(x))

		c, err := x.Coproject(i)
		require.NoError(t, err)
		require.True(t, c.IsImpliedBy(x))
	}
}

func TestProjectOutOfBounds(t *testing.T) {
	x := mustIND(t, []uint32{1}, []uint32{2})
	_, err := x.Project(5)
	require.Error(t, err)
	_, err = x.Coproject(-1)
	require.Error(t, err)
}

func TestIsImpliedByExactMatch(t *testing.T) {
	x := mustIND(t, []uint32{1, 2}, []uint32{10, 20})
	require.True(t, x.IsImpliedBy(x))
}

func TestIsImpliedBySubset(t *testing.T) {
	small := mustIND(t, []uint32{1}, []uint32{10})
	big := mustIND(t, []uint32{1, 2}, []uint32{10, 20})
	require.True(t, small.IsImpliedBy(big))
	require.False(t, big.IsImpliedBy(small))
}

func TestIsImpliedByNonMatchingPair(t *testing.T) {
	// dep column 1 is shared but paired to a different ref column.
	small := mustIND(t, []uint32{1}, []uint32{99})
	big := mustIND(t, []uint32{1, 2}, []uint32{10, 20})
	require.False(t, small.IsImpliedBy(big))
}

func TestStandardCompareOrdersByArityThenDepThenRef(t *testing.T) {
	a := mustIND(t, []uint32{1}, []uint32{2})
	b := mustIND(t, []uint32{1, 2}, []uint32{3, 4})
	c := mustIND(t, []uint32{2}, []uint32{2})

	inds := []IND{b, c, a}
	sort.Slice(inds, func(i, j int) bool { return StandardCompare(inds[i], inds[j]) < 0 })
	require.Equal(t, a, inds[0])
	require.Equal(t, c, inds[1])
	require.Equal(t, b, inds[2])
}

func TestLexicographicalCompareGroupsSharedPrefix(t *testing.T) {
	// Both share dep-prefix [1], differ in arity and trailing dep column.
	a := mustIND(t, []uint32{1}, []uint32{5})
	b := mustIND(t, []uint32{1, 2}, []uint32{5, 6})
	c := mustIND(t, []uint32{1, 3}, []uint32{5, 7})

	inds := []IND{c, b, a}
	sort.Slice(inds, func(i, j int) bool { return LexicographicalCompare(inds[i], inds[j]) < 0 })
	// a (shorter, same prefix) sorts before b and c.
	require.Equal(t, a, inds[0])
	require.Equal(t, b, inds[1])
	require.Equal(t, c, inds[2])
}

func TestEqualAndKey(t *testing.T) {
	a := mustIND(t, []uint32{1, 2}, []uint32{3, 4})
	b := mustIND(t, []uint32{1, 2}, []uint32{3, 4})
	require.True(t, a.Equal(b))
	require.Equal(t, a.Key(), b.Key())
}

func TestStringForm(t *testing.T) {
	x := mustIND(t, []uint32{1, 2}, []uint32{3, 4})
	require.Equal(t, "[1, 2] ⊆ [3, 4]", x.String())
}
