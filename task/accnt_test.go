package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccntAccumulatesUserAndSystemTime(t *testing.T) {
	a := &Accnt{}
	a.Utadd(100)
	a.Systadd(50)
	a.Utadd(25)
	require.Equal(t, int64(125), a.Userns)
	require.Equal(t, int64(50), a.Sysns)
	require.Equal(t, int64(175), a.Total())
}

func TestPidAllocReusesFreedIds(t *testing.T) {
	a := allocPid()
	b := allocPid()
	require.NotEqual(t, a, b)
	freePid(a)
	c := allocPid()
	require.Equal(t, a, c)
	freePid(b)
	freePid(c)
}

func TestPidZeroNeverFreedByAlloc(t *testing.T) {
	// freePid(0) must be a no-op: 0 is the permanently reserved init pid.
	freePid(0)
	p := allocPid()
	require.NotZero(t, p)
	freePid(p)
}
