package fd

import (
	"testing"

	"github.com/oichkatzele/rvos/fs"
	"github.com/oichkatzele/rvos/vm"
	"github.com/stretchr/testify/require"
)

func TestOpenFileCreateTruncatesExisting(t *testing.T) {
	store := fs.NewBlockStore(8)
	ino, _ := store.CreateInode("f0")
	store.WriteAt(ino, 0, []byte("old data"))

	f, ok := OpenFile(store, "f0", CREATE)
	require.True(t, ok)
	require.True(t, f.Readable())
	require.True(t, f.Writable())

	buf := make([]byte, 8)
	n := store.ReadAt(ino, 0, buf)
	require.Zero(t, n)
}

func TestOpenFileWithoutCreateMissingFails(t *testing.T) {
	store := fs.NewBlockStore(8)
	_, ok := OpenFile(store, "nope", 0)
	require.False(t, ok)
}

func TestOpenFileWriteThenReadAllRoundTrip(t *testing.T) {
	store := fs.NewBlockStore(8)
	f, ok := OpenFile(store, "f0", CREATE)
	require.True(t, ok)

	data := []byte("payload")
	n, err := f.Write(&vm.UserBuffer{Slices: [][]byte{data}})
	require.Zero(t, err)
	require.Equal(t, len(data), n)

	f2, ok := OpenFile(store, "f0", 0)
	require.True(t, ok)
	require.Equal(t, data, f2.ReadAll())
}

func TestOSInodeReadAdvancesCursor(t *testing.T) {
	store := fs.NewBlockStore(8)
	ino, _ := store.CreateInode("f0")
	store.WriteAt(ino, 0, []byte("abcdef"))

	f := NewOSInode(ino, true, false, store)
	first := make([]byte, 3)
	n, err := f.Read(&vm.UserBuffer{Slices: [][]byte{first}})
	require.Zero(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("abc"), first)

	second := make([]byte, 3)
	f.Read(&vm.UserBuffer{Slices: [][]byte{second}})
	require.Equal(t, []byte("def"), second)
}

func TestWronlyIsNotReadable(t *testing.T) {
	store := fs.NewBlockStore(8)
	f, ok := OpenFile(store, "f0", CREATE|WRONLY)
	require.True(t, ok)
	require.False(t, f.Readable())
	require.True(t, f.Writable())
}
