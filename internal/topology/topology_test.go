package topology_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voievodin/pinksom/internal/topology"
)

func TestCartesianSizeAndDistance(t *testing.T) {
	t.Parallel()

	c := topology.NewCartesian(4, 3, 1, false)
	require.Equal(t, 12, c.Size())
	require.Equal(t, 2, c.Dimensionality())

	// (0,0) to (3,0): width 4, distance 3.
	require.InDelta(t, 3.0, c.Distance(0, 3), 1e-9)
}

func TestCartesianPBCWrapsToShorterSide(t *testing.T) {
	t.Parallel()

	pbc := topology.NewCartesian(10, 1, 1, true)
	plain := topology.NewCartesian(10, 1, 1, false)

	// Index 0 and index 9 are adjacent under PBC (wrap distance 1).
	require.InDelta(t, 1.0, pbc.Distance(0, 9), 1e-9)
	require.InDelta(t, 9.0, plain.Distance(0, 9), 1e-9)
}

func TestCartesianNeighborsRespectsMaxDistance(t *testing.T) {
	t.Parallel()

	c := topology.NewCartesian(5, 5, 1, false)
	center := 12 // (2,2)

	all := c.Neighbors(center, -1)
	require.Len(t, all, c.Size())

	bounded := c.Neighbors(center, 1.0)
	for _, n := range bounded {
		require.LessOrEqual(t, n.Distance, 1.0)
	}
	require.Contains(t, indexesOf(bounded), center)
}

func TestCartesianDistanceIsSymmetric(t *testing.T) {
	t.Parallel()

	c := topology.NewCartesian(6, 4, 2, true)
	for a := 0; a < c.Size(); a += 7 {
		for b := 0; b < c.Size(); b += 5 {
			require.InDelta(t, c.Distance(a, b), c.Distance(b, a), 1e-9)
		}
	}
}

func TestHexSizeMatchesClosedFormula(t *testing.T) {
	t.Parallel()

	// width = height = 5 -> r = 2 -> size = 3*2*3+1 = 19.
	h := topology.NewHex(5, 5)
	require.Equal(t, 19, h.Size())
}

func TestHexNeighborsWithinRadiusOneHasAnInteriorCellWithSeven(t *testing.T) {
	t.Parallel()

	h := topology.NewHex(5, 5)
	maxCount := 0
	for i := 0; i < h.Size(); i++ {
		neighbors := h.Neighbors(i, 1.0)
		if len(neighbors) > maxCount {
			maxCount = len(neighbors)
		}
		// i is always its own distance-0 neighbor.
		require.Contains(t, indexesOf(neighbors), i)
	}
	require.Equal(t, 7, maxCount) // self + 6 hex neighbors, for a fully interior cell
}

func TestHexNeighborsUnboundedCoversEveryCell(t *testing.T) {
	t.Parallel()

	h := topology.NewHex(3, 3)
	all := h.Neighbors(0, -1)
	require.Len(t, all, h.Size())
}

func TestHexRejectsEvenOrMismatchedDimensions(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { topology.NewHex(4, 4) })
	require.Panics(t, func() { topology.NewHex(5, 3) })
}

func indexesOf(ns []topology.Neighbor) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Index
	}
	return out
}
