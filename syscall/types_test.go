package syscall

import (
	"encoding/binary"
	"testing"

	"github.com/oichkatzele/rvos/config"
	"github.com/stretchr/testify/require"
)

func TestTimeValBytesLayout(t *testing.T) {
	tv := TimeVal{Sec: 5, Usec: 250000}
	b := tv.Bytes()
	require.Len(t, b, 16)
	require.Equal(t, uint64(5), binary.LittleEndian.Uint64(b[0:8]))
	require.Equal(t, uint64(250000), binary.LittleEndian.Uint64(b[8:16]))
}

func TestTaskInfoBytesLayout(t *testing.T) {
	ti := TaskInfo{Status: 1, Time: 42}
	ti.SyscallTimes[63] = 7
	b := ti.Bytes()
	require.Len(t, b, 8+4*config.MaxSyscallNum+8)
	require.Equal(t, uint64(1), binary.LittleEndian.Uint64(b[0:8]))
	require.Equal(t, uint32(7), binary.LittleEndian.Uint32(b[8+63*4:8+63*4+4]))
	require.Equal(t, uint64(42), binary.LittleEndian.Uint64(b[len(b)-8:]))
}
