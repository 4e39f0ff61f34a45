// Package transform produces the stack of rotated/flipped variants of one
// input image, cropped to neuron size.
//
// Each orbit resamples once: the four 90°-aligned rotations within one
// orbit are related by an exact index permutation, never by a second
// bilinear resample.
package transform

import (
	"math"

	"github.com/voievodin/pinksom/internal/interpolate"
)

// Stack holds the contiguous variant buffer for one input, in
// rotation-major-then-flip order.
type Stack struct {
	Variants  []float32
	NeuronDim int
	Count     int
}

// Variant returns the i-th variant as a NeuronDim x NeuronDim slice view.
func (s *Stack) Variant(i int) []float32 {
	n := s.NeuronDim * s.NeuronDim
	return s.Variants[i*n : (i+1)*n]
}

// Generate builds the variant stack for one square src image
// (srcSize x srcSize) into neuronDim x neuronDim variants.
//
// numRot must be 1 or a positive multiple of 4 (the caller is expected to
// have validated this already; Generate panics otherwise).
func Generate(src []float32, srcSize, neuronDim, numRot int, flip bool, sampler interpolate.Sampler) *Stack {
	if numRot != 1 && numRot%4 != 0 {
		panic("transform: numRot must be 1 or a multiple of 4")
	}

	orbits := numRot / 4
	if numRot == 1 {
		orbits = 0
	}

	rotCount := numRot
	total := rotCount
	if flip {
		total *= 2
	}

	neuronSize := neuronDim * neuronDim
	out := &Stack{Variants: make([]float32, total*neuronSize), NeuronDim: neuronDim, Count: total}

	// Identity crop (variant 0).
	identity := out.Variant(0)
	sampler.Sample(src, srcSize, identity, neuronDim, 0)

	if numRot == 1 {
		if flip {
			flipped := out.Variant(1)
			copy(flipped, identity)
			interpolate.Mirror(flipped, neuronDim)
		}
		return out
	}

	// The three 90°-multiple shuffles of the identity variant.
	shuffle90(identity, out.Variant(1*orbits), neuronDim)
	shuffle90(out.Variant(1*orbits), out.Variant(2*orbits), neuronDim)
	shuffle90(out.Variant(2*orbits), out.Variant(3*orbits), neuronDim)

	// angle_step_radians = (pi/2) / (numRot/4).
	step := (0.5 * math.Pi) / float64(orbits)

	for k := 1; k < orbits; k++ {
		angle := float64(k) * step
		base := out.Variant(k)
		sampler.Sample(src, srcSize, base, neuronDim, angle)
		shuffle90(base, out.Variant(1*orbits+k), neuronDim)
		shuffle90(out.Variant(1*orbits+k), out.Variant(2*orbits+k), neuronDim)
		shuffle90(out.Variant(2*orbits+k), out.Variant(3*orbits+k), neuronDim)
	}

	if flip {
		for i := 0; i < rotCount; i++ {
			src := out.Variant(i)
			dst := out.Variant(rotCount + i)
			copy(dst, src)
			interpolate.Mirror(dst, neuronDim)
		}
	}

	return out
}

// shuffle90 rotates a size x size image by 90 degrees, in the same sense
// as a Sampler rotation by alpha = pi/2, using a lossless index
// permutation: dst[y][x] = src[x][size-1-y].
func shuffle90(src, dst []float32, size int) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dst[y*size+x] = src[x*size+(size-1-y)]
		}
	}
}
