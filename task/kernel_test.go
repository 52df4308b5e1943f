package task

import (
	"bytes"
	"testing"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/fs"
	"github.com/stretchr/testify/require"
)

func TestBootLoadsRegisteredInitProcAsPidZero(t *testing.T) {
	store := fs.NewBlockStore(64)
	elfBytes, ok := ExecutableBytes(config.InitProcPath)
	require.True(t, ok)
	ino, ok := store.CreateInode(config.InitProcPath)
	require.True(t, ok)
	store.WriteAt(ino, 0, elfBytes)

	var out bytes.Buffer
	k := NewKernel(store, 64, &out)
	root, err := k.Boot()
	require.NoError(t, err)
	require.Equal(t, 0, root.Pid)
	require.Same(t, root, k.InitProc)
	require.Equal(t, 1, k.Manager.Len())
}

func TestBootFailsWhenExecutableMissing(t *testing.T) {
	store := fs.NewBlockStore(64)
	var out bytes.Buffer
	k := NewKernel(store, 64, &out)
	_, err := k.Boot()
	require.Error(t, err)
}
