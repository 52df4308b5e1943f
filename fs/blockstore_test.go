package fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	bs := NewBlockStore(8)
	ino, ok := bs.CreateInode("f0")
	require.True(t, ok)

	data := []byte("hello, world")
	n := bs.WriteAt(ino, 0, data)
	require.Equal(t, len(data), n)

	buf := make([]byte, len(data))
	n = bs.ReadAt(ino, 0, buf)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)
}

func TestWriteSpansMultipleBlocks(t *testing.T) {
	bs := NewBlockStore(8)
	ino, _ := bs.CreateInode("big")
	data := make([]byte, BSIZE+100)
	for i := range data {
		data[i] = byte(i)
	}
	n := bs.WriteAt(ino, 0, data)
	require.Equal(t, len(data), n)

	buf := make([]byte, len(data))
	bs.ReadAt(ino, 0, buf)
	require.Equal(t, data, buf)
}

func TestReadShortAtEOF(t *testing.T) {
	bs := NewBlockStore(4)
	ino, _ := bs.CreateInode("f0")
	bs.WriteAt(ino, 0, []byte("abc"))

	buf := make([]byte, 10)
	n := bs.ReadAt(ino, 0, buf)
	require.Equal(t, 3, n)
}

func TestCreateInodeFailsOnDuplicateName(t *testing.T) {
	bs := NewBlockStore(4)
	_, ok := bs.CreateInode("dup")
	require.True(t, ok)
	_, ok = bs.CreateInode("dup")
	require.False(t, ok)
}

func TestLinkUnlinkNlinkRoundTrip(t *testing.T) {
	bs := NewBlockStore(4)
	ino, _ := bs.CreateInode("f0")
	bs.WriteAt(ino, 0, []byte("hi"))

	require.Zero(t, bs.Link("f1", "f0"))
	require.Equal(t, 2, bs.CalcHardLinks(ino))

	require.Zero(t, bs.Unlink("f0"))
	require.Equal(t, 1, bs.CalcHardLinks(ino))

	id, ok := bs.FindNode("f1")
	require.True(t, ok)
	require.Equal(t, ino, id)
}

func TestUnlinkLastNameFreesBlocks(t *testing.T) {
	bs := NewBlockStore(2)
	ino, _ := bs.CreateInode("only")
	bs.WriteAt(ino, 0, []byte("data"))
	require.Less(t, len(bs.freeBlk), 2)

	bs.Unlink("only")
	require.Equal(t, 2, len(bs.freeBlk))
	_, ok := bs.FindNode("only")
	require.False(t, ok)
}

func TestClearTruncatesToZero(t *testing.T) {
	bs := NewBlockStore(4)
	ino, _ := bs.CreateInode("f0")
	bs.WriteAt(ino, 0, []byte("data"))
	bs.Clear(ino)

	buf := make([]byte, 4)
	n := bs.ReadAt(ino, 0, buf)
	require.Zero(t, n)
}
