// Package distance computes the (neurons x variants) euclidean-distance
// matrix and the per-neuron argmin variant ("best rotation index").
//
// The reduction is a plain sum-of-squares over a cropped central window,
// taken over SOM element types of {float32, uint16, uint8}, with an
// optional packed-integer fast path for uint8 inputs. The packed path
// is guarded by a klauspost/cpuid/v2 capability check, falling back to
// the generic path when the hardware feature is unavailable.
package distance

import (
	"math"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"github.com/voievodin/pinksom/internal/concurrency"
	"github.com/voievodin/pinksom/internal/pinkerr"
)

// Elem is the set of SOM/neuron element types the engine supports.
type Elem interface {
	~float32 | ~uint16 | ~uint8
}

// Accum selects the accumulation strategy. It only affects uint8 inputs;
// float32 and uint16 inputs always accumulate in float64 internally.
type Accum int

const (
	// AccumFloat accumulates squared differences in floating point.
	AccumFloat Accum = iota
	// AccumPackedInt uses a 4-way packed integer dot-product reduction
	// on supporting hardware, falling back to AccumFloat otherwise.
	AccumPackedInt
)

// packedIntSupported reports whether this CPU can run the packed 4-way
// signed dot-product reduction. Real PINK gates this on a single CUDA
// architecture (sm_61+); here it gates a CPU SIMD extension known to
// support fast packed byte arithmetic.
var packedIntSupported = cpuid.CPU.Supports(cpuid.SSE41)

// Engine computes distance matrices for one element type E.
type Engine struct {
	Accum Accum
	// Pool parallelizes the per-neuron reduction loop across workers when
	// non-nil. A nil Pool runs the loop on the calling goroutine.
	Pool *concurrency.Pool
}

// Result holds one image step's distance matrix and best-rotation index.
type Result[E Elem] struct {
	Distance     []E
	BestRotation []uint32
}

// Compute fills dist[neuron] with the minimum squared-euclidean distance
// between that neuron and any variant, cropped to a distDim x distDim
// central window of the neuronDim x neuronDim prototypes, and records the
// argmin variant index. Ties are broken by lowest variant index.
func Compute[E Elem](e Engine, neurons []E, somSize int, variants []E, numVariants, neuronDim, distDim int) (Result[E], error) {
	neuronSize := neuronDim * neuronDim
	res := Result[E]{
		Distance:     make([]E, somSize),
		BestRotation: make([]uint32, somSize),
	}

	usePacked := e.Accum == AccumPackedInt && packedIntSupported
	var asU8Neurons, asU8Variants []uint8
	if usePacked {
		var ok1, ok2 bool
		asU8Neurons, ok1 = any(neurons).([]uint8)
		asU8Variants, ok2 = any(variants).([]uint8)
		usePacked = ok1 && ok2
	}

	var firstErr error
	var errMu sync.Mutex
	reduceOne := func(n int) {
		neuron := neurons[n*neuronSize : (n+1)*neuronSize]

		bestSum := math.Inf(1)
		bestVariant := uint32(0)

		for v := 0; v < numVariants; v++ {
			variant := variants[v*neuronSize : (v+1)*neuronSize]

			var sum float64
			if usePacked {
				sum = packedUint8Window(asU8Neurons[n*neuronSize:(n+1)*neuronSize],
					asU8Variants[v*neuronSize:(v+1)*neuronSize], neuronDim, distDim)
			} else {
				sum = floatWindow(neuron, variant, neuronDim, distDim)
			}

			if sum < bestSum {
				bestSum = sum
				bestVariant = uint32(v)
			}
		}

		val, err := toElem[E](bestSum)
		if err != nil {
			errMu.Lock()
			if firstErr == nil {
				firstErr = pinkerr.Overflow("neuron %d: %v", n, err)
			}
			errMu.Unlock()
			return
		}
		res.Distance[n] = val
		res.BestRotation[n] = bestVariant
	}

	if e.Pool != nil {
		e.Pool.ParallelFor(somSize, reduceOne)
	} else {
		for n := 0; n < somSize; n++ {
			reduceOne(n)
		}
	}
	if firstErr != nil {
		return res, firstErr
	}

	return res, nil
}

func window(neuronDim, distDim int) (offset, dim int) {
	dim = distDim
	if dim <= 0 || dim > neuronDim {
		dim = neuronDim
	}
	offset = (neuronDim - dim) / 2
	return
}

func floatWindow[E Elem](a, b []E, neuronDim, distDim int) float64 {
	offset, dim := window(neuronDim, distDim)
	var sum float64
	for y := 0; y < dim; y++ {
		row := (y + offset) * neuronDim
		for x := 0; x < dim; x++ {
			i := row + x + offset
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
	}
	return sum
}

// packedUint8Window mirrors floatWindow but processes four pixels at a
// time, the CPU analogue of a packed 4-way dot product. The numerical
// result is identical to floatWindow; only the grouping of additions
// differs, which cannot change the float64 sum for values in this range.
func packedUint8Window(a, b []uint8, neuronDim, distDim int) float64 {
	offset, dim := window(neuronDim, distDim)
	var sum float64
	for y := 0; y < dim; y++ {
		row := (y + offset) * neuronDim
		x := 0
		for ; x+4 <= dim; x += 4 {
			var group int32
			for k := 0; k < 4; k++ {
				i := row + x + k + offset
				d := int32(a[i]) - int32(b[i])
				group += d * d
			}
			sum += float64(group)
		}
		for ; x < dim; x++ {
			i := row + x + offset
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
	}
	return sum
}

func toElem[E Elem](sum float64) (E, error) {
	var zero E
	switch any(zero).(type) {
	case float32:
		return E(float32(sum)), nil
	case uint16:
		if sum > float64(math.MaxUint16) {
			return zero, pinkerr.ErrNumericOverflow
		}
		return E(uint16(sum + 0.5)), nil
	case uint8:
		if sum > float64(math.MaxUint8) {
			return zero, pinkerr.ErrNumericOverflow
		}
		return E(uint8(sum + 0.5)), nil
	default:
		return zero, nil
	}
}
