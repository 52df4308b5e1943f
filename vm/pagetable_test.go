package vm

import (
	"testing"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/mem"
	"github.com/stretchr/testify/require"
)

func TestPageTableMapTranslateUnmap(t *testing.T) {
	frame := mem.NewFrameAllocator(4)
	pt := NewPageTable(frame)
	defer pt.Unregister()

	ppn, ok := frame.Alloc()
	require.True(t, ok)

	vpn := VPN(3)
	pt.Map(vpn, ppn, PERM_R|PERM_W|PERM_U)

	pte, ok := pt.Translate(vpn)
	require.True(t, ok)
	require.Equal(t, ppn, pte.PPN)
	require.True(t, pt.Valid(vpn))

	pt.Unmap(vpn)
	require.False(t, pt.Valid(vpn))
}

func TestPageTableForResolvesToken(t *testing.T) {
	frame := mem.NewFrameAllocator(2)
	pt := NewPageTable(frame)
	defer pt.Unregister()

	got, ok := PageTableFor(pt.Token())
	require.True(t, ok)
	require.Same(t, pt, got)

	pt.Unregister()
	_, ok = PageTableFor(pt.Token())
	require.False(t, ok)
}

func TestTranslatedByteBufferSplitsOnPageBoundary(t *testing.T) {
	frame := mem.NewFrameAllocator(4)
	pt := NewPageTable(frame)
	defer pt.Unregister()

	p0, _ := frame.Alloc()
	p1, _ := frame.Alloc()
	pt.Map(0, p0, PERM_R|PERM_W|PERM_U)
	pt.Map(1, p1, PERM_R|PERM_W|PERM_U)

	start := config.PGSIZE - 10
	length := 20
	slices, err := TranslatedByteBuffer(pt.Token(), start, length, true)
	require.Zero(t, err)
	require.Len(t, slices, 2)
	require.Len(t, slices[0], 10)
	require.Len(t, slices[1], 10)
}

func TestTranslatedStrReadsUntilNUL(t *testing.T) {
	frame := mem.NewFrameAllocator(2)
	pt := NewPageTable(frame)
	defer pt.Unregister()

	p0, _ := frame.Alloc()
	pt.Map(0, p0, PERM_R|PERM_U)
	page := frame.Page(p0)
	copy(page[0:], []byte("hello\x00garbage"))

	s, err := TranslatedStr(pt.Token(), 0)
	require.Zero(t, err)
	require.Equal(t, "hello", s)
}

func TestTranslatedByteBufferRejectsUnmappedOrWrongPerm(t *testing.T) {
	frame := mem.NewFrameAllocator(2)
	pt := NewPageTable(frame)
	defer pt.Unregister()

	_, err := TranslatedByteBuffer(pt.Token(), 0, 8, true)
	require.NotZero(t, err)

	p0, _ := frame.Alloc()
	pt.Map(0, p0, PERM_R|PERM_U) // read-only
	_, err = TranslatedByteBuffer(pt.Token(), 0, 8, true)
	require.NotZero(t, err)
}
