package accelerator_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voievodin/pinksom/internal/accelerator"
	"github.com/voievodin/pinksom/internal/pinkerr"
)

func TestCPUBackendIsAlwaysAvailableAndNoOp(t *testing.T) {
	t.Parallel()

	var cpu accelerator.Backend = accelerator.CPU{}
	require.Equal(t, "cpu", cpu.Name())
	require.True(t, cpu.Available())
	require.NoError(t, cpu.Push([]float32{1, 2, 3}))
	require.NoError(t, cpu.Pull([]float32{1, 2, 3}))
}

func TestSelectWithCudaOffAlwaysReturnsCPU(t *testing.T) {
	t.Parallel()

	backend, err := accelerator.Select(true)
	require.NoError(t, err)
	require.Equal(t, "cpu", backend.Name())
}

func TestSelectWithoutAcceleratorLibraryReportsBackendUnavailable(t *testing.T) {
	t.Parallel()

	// No accelerator runtime library is ever shipped with this repo (the
	// capability boundary is bound at runtime only), so on any machine
	// without one dlopen-able at a well-known path, this must surface
	// ErrBackendUnavailable rather than silently falling back.
	_, err := accelerator.Select(false)
	if err != nil {
		require.ErrorIs(t, err, pinkerr.ErrBackendUnavailable)
	}
}
