package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameAllocatorAllocFreeRoundTrip(t *testing.T) {
	fa := NewFrameAllocator(4)
	require.Equal(t, 4, fa.Free_count())

	p0, ok := fa.Alloc()
	require.True(t, ok)
	require.Equal(t, 3, fa.Free_count())

	page := fa.Page(p0)
	page[0] = 0xAB
	fa.Free(p0)
	require.Equal(t, 4, fa.Free_count())

	p1, ok := fa.Alloc()
	require.True(t, ok)
	// reused frames come back zeroed.
	require.Equal(t, byte(0), fa.Page(p1)[0])
}

func TestFrameAllocatorExhaustion(t *testing.T) {
	fa := NewFrameAllocator(2)
	_, ok1 := fa.Alloc()
	_, ok2 := fa.Alloc()
	_, ok3 := fa.Alloc()
	require.True(t, ok1)
	require.True(t, ok2)
	require.False(t, ok3)
	require.Equal(t, 0, fa.Free_count())
}
