package vm

import (
	"testing"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/defs"
	"github.com/oichkatzele/rvos/mem"
	"github.com/stretchr/testify/require"
)

func TestInsertFramedAreaRejectsOverlap(t *testing.T) {
	frame := mem.NewFrameAllocator(16)
	ms := NewMemorySet(frame)

	require.Zero(t, ms.InsertFramedArea(0, 2*config.PGSIZE, PERM_R|PERM_W|PERM_U))
	err := ms.InsertFramedArea(config.PGSIZE, 3*config.PGSIZE, PERM_R|PERM_U)
	require.Equal(t, defs.EFAULT, err)
}

func TestInsertFramedAreaRequiresUserBit(t *testing.T) {
	frame := mem.NewFrameAllocator(4)
	ms := NewMemorySet(frame)
	err := ms.InsertFramedArea(0, config.PGSIZE, PERM_R|PERM_W)
	require.Equal(t, defs.EINVAL, err)
}

func TestInsertFramedAreaRollsBackOnExhaustion(t *testing.T) {
	frame := mem.NewFrameAllocator(1)
	ms := NewMemorySet(frame)
	err := ms.InsertFramedArea(0, 2*config.PGSIZE, PERM_R|PERM_W|PERM_U)
	require.Equal(t, defs.ENOMEM, err)
	require.Equal(t, 1, frame.Free_count())
	require.Empty(t, ms.Areas())
}

func TestUnmapFreesAreaWhenEmpty(t *testing.T) {
	frame := mem.NewFrameAllocator(4)
	ms := NewMemorySet(frame)
	require.Zero(t, ms.InsertFramedArea(0, config.PGSIZE, PERM_R|PERM_W|PERM_U))
	require.Len(t, ms.Areas(), 1)

	ms.Unmap(0)
	require.Empty(t, ms.Areas())
	require.Equal(t, 4, frame.Free_count())
}

func TestFromExistedDeepCopiesPageContents(t *testing.T) {
	frame := mem.NewFrameAllocator(8)
	src := NewMemorySet(frame)
	require.Zero(t, src.InsertFramedArea(0, config.PGSIZE, PERM_R|PERM_W|PERM_U))

	pte, ok := src.Translate(0)
	require.True(t, ok)
	frame.Page(pte.PPN)[0] = 0x42

	dst := FromExisted(src, frame)
	dstPte, ok := dst.Translate(0)
	require.True(t, ok)
	require.Equal(t, byte(0x42), frame.Page(dstPte.PPN)[0])

	// writes on one side are invisible to the other (distinct frames).
	frame.Page(dstPte.PPN)[0] = 0x99
	require.Equal(t, byte(0x42), frame.Page(pte.PPN)[0])
}

func TestRecycleDataPagesClearsAreas(t *testing.T) {
	frame := mem.NewFrameAllocator(4)
	ms := NewMemorySet(frame)
	require.Zero(t, ms.InsertFramedArea(0, 2*config.PGSIZE, PERM_R|PERM_W|PERM_U))
	ms.RecycleDataPages()
	require.Empty(t, ms.Areas())
	require.Equal(t, 4, frame.Free_count())
}
