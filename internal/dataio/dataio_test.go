package dataio_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voievodin/pinksom/internal/dataio"
	"github.com/voievodin/pinksom/internal/pinkerr"
)

func TestWriteThenReadRoundTripsHeaderAndPayloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")
	header := dataio.Header{
		Reserved:        [3]int32{1, 2, 3},
		NumberOfEntries: 2,
		LayoutCode:      0,
		Dimensionality:  2,
		Extents:         []int32{2, 2},
	}

	w, err := dataio.Create(path, header)
	require.NoError(t, err)

	entry1 := []float32{1, 2, 3, 4}
	entry2 := []float32{5, 6, 7, 8}
	require.NoError(t, w.WriteEntry(entry1))
	require.NoError(t, w.WriteEntry(entry2))
	require.NoError(t, w.Close())

	r, err := dataio.Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, header.Reserved, r.Header.Reserved)
	require.Equal(t, header.NumberOfEntries, r.Header.NumberOfEntries)
	require.Equal(t, header.Extents, r.Header.Extents)
	require.Equal(t, 4, r.Header.PayloadSize())

	buf := make([]float32, 4)
	require.NoError(t, r.Next(buf))
	require.Equal(t, entry1, buf)

	require.NoError(t, r.Next(buf))
	require.Equal(t, entry2, buf)

	require.ErrorIs(t, r.Next(buf), io.EOF)
}

func TestOpenMissingFileReturnsIOError(t *testing.T) {
	t.Parallel()

	_, err := dataio.Open(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	require.ErrorIs(t, err, pinkerr.ErrIO)
}
