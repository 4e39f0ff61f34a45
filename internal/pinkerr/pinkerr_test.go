package pinkerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voievodin/pinksom/internal/pinkerr"
)

func TestWrappersAreMatchableByErrorsIs(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, pinkerr.Config("bad flag %s", "x"), pinkerr.ErrConfig)
	require.ErrorIs(t, pinkerr.IO("reading %s", "f"), pinkerr.ErrIO)
	require.ErrorIs(t, pinkerr.Overflow("neuron %d", 3), pinkerr.ErrNumericOverflow)
	require.ErrorIs(t, pinkerr.BackendUnavailable("no device"), pinkerr.ErrBackendUnavailable)
}

func TestWrappersPreserveTheFormattedMessage(t *testing.T) {
	t.Parallel()

	err := pinkerr.Config("bad flag %s", "numrot")
	require.Contains(t, err.Error(), "bad flag numrot")
	require.False(t, errors.Is(err, pinkerr.ErrIO))
}
