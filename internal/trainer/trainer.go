// Package trainer is the per-image pipeline orchestrator: transform ->
// distance -> (train: update) or (map: emit), run as two independent
// state machines (INIT -> (TRAIN_STEP)* -> FINALIZE and
// INIT -> (MAP_STEP)* -> CLOSE); train and map are never interleaved
// within one Facade.
package trainer

import (
	"github.com/voievodin/pinksom/internal/accelerator"
	"github.com/voievodin/pinksom/internal/concurrency"
	"github.com/voievodin/pinksom/internal/distance"
	"github.com/voievodin/pinksom/internal/interpolate"
	"github.com/voievodin/pinksom/internal/kernel"
	"github.com/voievodin/pinksom/internal/pinkerr"
	"github.com/voievodin/pinksom/internal/som"
	"github.com/voievodin/pinksom/internal/transform"
	"github.com/voievodin/pinksom/internal/update"
)

// Elem is the set of element types a Facade can drive.
type Elem interface {
	~float32 | ~uint16 | ~uint8
}

// StepResult is what MapStep (and, internally, TrainStep) produce for one
// input image: the full distance matrix and the best-rotation index of
// every neuron.
type StepResult struct {
	Distance     []float64
	BestRotation []uint32
}

// Facade drives one image step end to end, built once from a SOM, a
// distribution kernel, and the transform/backend parameters.
type Facade[E Elem] struct {
	SOM           *som.SOM[E]
	Kernel        kernel.Func
	NumRot        int
	Flip          bool
	Interpolation interpolate.Sampler
	DistDim       int
	MaxUpdateDist float64 // negative means "whole SOM"
	Accum         distance.Accum
	Backend       accelerator.Backend
	Pool          *concurrency.Pool // nil runs distance/update loops unparallelized

	counts update.Counts
}

// New constructs a Facade and zeroes its update counters.
func New[E Elem](s *som.SOM[E], k kernel.Func, numRot int, flip bool, sampler interpolate.Sampler,
	distDim int, maxUpdateDist float64, accum distance.Accum, backend accelerator.Backend, pool *concurrency.Pool) *Facade[E] {
	if numRot <= 0 || (numRot != 1 && numRot%4 != 0) {
		panic("trainer: numRot must be 1 or a multiple of 4")
	}
	return &Facade[E]{
		SOM:           s,
		Kernel:        k,
		NumRot:        numRot,
		Flip:          flip,
		Interpolation: sampler,
		DistDim:       distDim,
		MaxUpdateDist: maxUpdateDist,
		Accum:         accum,
		Backend:       backend,
		Pool:          pool,
		counts:        make(update.Counts, s.Size()),
	}
}

// UpdateCounts returns the running per-neuron update counter (§4.8
// diagnostics).
func (f *Facade[E]) UpdateCounts() update.Counts { return f.counts }

// step runs phases 1-2 (transform, distance) common to both train and map.
// The SOM is mirrored to the backend before the distance phase and pulled
// back after it -- the only suspension points in the pipeline (a no-op
// round trip on the CPU backend).
func (f *Facade[E]) step(input []float32, inputDim int) (*transform.Stack, distance.Result[E], error) {
	stack := transform.Generate(input, inputDim, f.SOM.NeuronDim, f.NumRot, f.Flip, f.Interpolation)

	variants, err := castTo[E](stack.Variants)
	if err != nil {
		return nil, distance.Result[E]{}, err
	}

	if err := f.SOM.PushToDevice(f.Backend); err != nil {
		return nil, distance.Result[E]{}, err
	}

	eng := distance.Engine{Accum: f.Accum, Pool: f.Pool}
	res, err := distance.Compute[E](eng, f.SOM.Buffer, f.SOM.Size(), variants, stack.Count, f.SOM.NeuronDim, f.DistDim)
	if err != nil {
		return stack, res, err
	}

	if err := f.SOM.PullToHost(f.Backend); err != nil {
		return stack, res, err
	}
	return stack, res, nil
}

// MapStep runs transform -> distance and returns the distance matrix
// without mutating the SOM.
func (f *Facade[E]) MapStep(input []float32, inputDim int) (StepResult, error) {
	_, res, err := f.step(input, inputDim)
	if err != nil {
		return StepResult{}, err
	}
	return toStepResult(res), nil
}

// TrainStep runs transform -> distance -> update: it finds the
// global-minimum-distance neuron (ties broken by lowest neuron index),
// then moves every neuron within MaxUpdateDist of it toward that
// neuron's own best-rotation variant.
func (f *Facade[E]) TrainStep(input []float32, inputDim int) error {
	stack, res, err := f.step(input, inputDim)
	if err != nil {
		return err
	}

	bmu := argminNeuron(res.Distance)
	target := stack.Variant(int(res.BestRotation[bmu]))
	targetE, err := castTo[E](target)
	if err != nil {
		return err
	}

	neighbors := f.SOM.Topology.Neighbors(bmu, f.MaxUpdateDist)
	mover := update.Mover[E]{Kernel: f.Kernel, Pool: f.Pool}
	update.Apply(mover, f.SOM.Buffer, f.SOM.NeuronSize, neighbors, targetE, f.counts)

	// The update phase always runs on the host; re-mirror the changed
	// weights to the backend so the next step's push sees them too.
	return f.SOM.PushToDevice(f.Backend)
}

// argminNeuron returns the index of the smallest distance, breaking ties
// by lowest neuron index.
func argminNeuron[E Elem](dist []E) int {
	best := 0
	for i := 1; i < len(dist); i++ {
		if dist[i] < dist[best] {
			best = i
		}
	}
	return best
}

func toStepResult[E Elem](res distance.Result[E]) StepResult {
	out := StepResult{
		Distance:     make([]float64, len(res.Distance)),
		BestRotation: res.BestRotation,
	}
	for i, v := range res.Distance {
		out.Distance[i] = float64(v)
	}
	return out
}

// castTo quantizes a float32 buffer down to element type E, rounding to
// nearest for integer types. It returns a NumericOverflow error if any
// value would not fit the target type's range rather than silently
// truncating it.
func castTo[E Elem](src []float32) ([]E, error) {
	out := make([]E, len(src))
	var zero E
	switch any(zero).(type) {
	case float32:
		for i, v := range src {
			out[i] = E(v)
		}
	case uint16:
		for i, v := range src {
			if v < 0 || v > 65535 {
				return nil, pinkerr.Overflow("variant pixel %d value %g out of uint16 range", i, v)
			}
			out[i] = E(uint16(v + 0.5))
		}
	case uint8:
		for i, v := range src {
			if v < 0 || v > 255 {
				return nil, pinkerr.Overflow("variant pixel %d value %g out of uint8 range", i, v)
			}
			out[i] = E(uint8(v + 0.5))
		}
	}
	return out, nil
}
