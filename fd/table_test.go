package fd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTableSeedsStdioSlots(t *testing.T) {
	stdin := &Stdin{}
	stdout := &Stdout{}
	tbl := NewTable(stdin, stdout)

	f0, ok := tbl.Get(0)
	require.True(t, ok)
	require.Same(t, stdin, f0)

	f1, ok := tbl.Get(1)
	require.True(t, ok)
	require.Same(t, stdout, f1)

	f2, ok := tbl.Get(2)
	require.True(t, ok)
	require.Same(t, stdout, f2)
}

func TestAllocUsesLowestFreeSlot(t *testing.T) {
	tbl := NewTable(&Stdin{}, &Stdout{})
	f := &Stdout{}
	fd3 := tbl.Alloc(f)
	require.Equal(t, 3, fd3)

	require.Zero(t, tbl.Close(fd3))
	_, ok := tbl.Get(fd3)
	require.False(t, ok)

	fd3again := tbl.Alloc(f)
	require.Equal(t, 3, fd3again)
}

func TestCloseUnknownFdFails(t *testing.T) {
	tbl := NewTable(&Stdin{}, &Stdout{})
	require.NotZero(t, tbl.Close(99))
}

func TestCloneSharesUnderlyingFiles(t *testing.T) {
	tbl := NewTable(&Stdin{}, &Stdout{})
	extra := &Stdout{}
	fdN := tbl.Alloc(extra)

	clone := tbl.Clone()
	got, ok := clone.Get(fdN)
	require.True(t, ok)
	require.Same(t, extra, got)

	// closing in the clone does not affect the original (independent slots).
	clone.Close(fdN)
	_, ok = tbl.Get(fdN)
	require.True(t, ok)
}
