package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voievodin/pinksom/internal/kernel"
)

func TestGaussianPeaksAtZeroDistance(t *testing.T) {
	t.Parallel()

	g := kernel.Gaussian{Sigma: 1.0, Damping: 2.0}
	require.InDelta(t, 2.0, g.Apply(0), 1e-9)
	require.Less(t, g.Apply(1.0), g.Apply(0.5))
	require.Greater(t, g.Apply(10), 0.0)
}

func TestGaussianIsMonotonicallyDecreasing(t *testing.T) {
	t.Parallel()

	g := kernel.Gaussian{Sigma: 2.0, Damping: 1.0}
	prev := g.Apply(0)
	for d := 0.5; d <= 10; d += 0.5 {
		cur := g.Apply(d)
		require.Less(t, cur, prev)
		prev = cur
	}
}

func TestMexicanHatGoesNegativeBeyondSigma(t *testing.T) {
	t.Parallel()

	m := kernel.MexicanHat{Sigma: 1.0, Damping: 1.0}
	require.InDelta(t, 1.0, m.Apply(0), 1e-9)
	require.Less(t, m.Apply(2.0), 0.0)
}
