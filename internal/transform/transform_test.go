package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voievodin/pinksom/internal/interpolate"
	"github.com/voievodin/pinksom/internal/transform"
)

func TestGenerateVariantCountMatchesNumRotAndFlip(t *testing.T) {
	t.Parallel()

	src := make([]float32, 8*8)
	stack := transform.Generate(src, 8, 8, 4, false, interpolate.Bilinear{})
	require.Equal(t, 4, stack.Count)

	stack = transform.Generate(src, 8, 8, 4, true, interpolate.Bilinear{})
	require.Equal(t, 8, stack.Count)

	stack = transform.Generate(src, 8, 8, 1, false, interpolate.Bilinear{})
	require.Equal(t, 1, stack.Count)

	stack = transform.Generate(src, 8, 8, 1, true, interpolate.Bilinear{})
	require.Equal(t, 2, stack.Count)
}

func TestGeneratePanicsOnInvalidNumRot(t *testing.T) {
	t.Parallel()

	src := make([]float32, 4*4)
	require.Panics(t, func() {
		transform.Generate(src, 4, 4, 3, false, interpolate.Bilinear{})
	})
	require.Panics(t, func() {
		transform.Generate(src, 4, 4, 0, false, interpolate.Bilinear{})
	})
}

func Test90DegreeShufflesArePixelPermutationsOfTheIdentity(t *testing.T) {
	t.Parallel()

	size := 6
	src := make([]float32, size*size)
	for i := range src {
		src[i] = float32(i)
	}

	stack := transform.Generate(src, size, size, 4, false, interpolate.NearestNeighbor{})
	identity := stack.Variant(0)

	identitySum, rotSum := 0.0, 0.0
	for i := 0; i < size*size; i++ {
		identitySum += float64(identity[i])
	}
	for v := 1; v < 4; v++ {
		variant := stack.Variant(v)
		sum := 0.0
		for i := 0; i < size*size; i++ {
			sum += float64(variant[i])
		}
		rotSum = sum
		// A pure index permutation preserves the multiset of pixel values,
		// so the sum over all pixels is unchanged by a 90-degree rotation.
		require.InDelta(t, identitySum, rotSum, 1e-6)
	}
}

func TestFlipVariantsAreHorizontalMirrorsOfTheirRotation(t *testing.T) {
	t.Parallel()

	size := 4
	src := make([]float32, size*size)
	for i := range src {
		src[i] = float32(i)
	}

	stack := transform.Generate(src, size, size, 4, true, interpolate.NearestNeighbor{})
	for rot := 0; rot < 4; rot++ {
		base := append([]float32(nil), stack.Variant(rot)...)
		flipped := append([]float32(nil), stack.Variant(4+rot)...)
		interpolate.Mirror(base, size)
		require.Equal(t, base, flipped)
	}
}
