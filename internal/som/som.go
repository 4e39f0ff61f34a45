// Package som owns the neuron buffer and lattice descriptor.
//
// SOM stores every neuron's weights in one contiguous,
// lattice-index-addressed buffer of som_size * neuron_size elements,
// rather than a grid of individually-allocated neurons.
package som

import (
	"math/rand"

	"github.com/voievodin/pinksom/internal/accelerator"
	"github.com/voievodin/pinksom/internal/topology"
)

// Elem is the set of element types a SOM buffer can hold.
type Elem interface {
	~float32 | ~uint16 | ~uint8
}

// SOM holds one contiguous neuron buffer over a topology.
type SOM[E Elem] struct {
	Topology   topology.Topology
	NeuronDim  int
	NeuronSize int
	Buffer     []E

	// pushed tracks whether the host buffer and the backend's mirror are
	// believed to be in sync; it is diagnostic only.
	pushed bool
}

// New allocates a zero-valued SOM over the given topology.
func New[E Elem](t topology.Topology, neuronDim int) *SOM[E] {
	neuronSize := neuronDim * neuronDim
	return &SOM[E]{
		Topology:   t,
		NeuronDim:  neuronDim,
		NeuronSize: neuronSize,
		Buffer:     make([]E, t.Size()*neuronSize),
	}
}

// Neuron returns the mutable slice for the neuron at lattice index i.
func (s *SOM[E]) Neuron(i int) []E {
	return s.Buffer[i*s.NeuronSize : (i+1)*s.NeuronSize]
}

// Size returns the number of neurons.
func (s *SOM[E]) Size() int { return s.Topology.Size() }

// InitZero leaves the buffer at its zero value (the default after New).
func (s *SOM[E]) InitZero() {
	for i := range s.Buffer {
		s.Buffer[i] = 0
	}
}

// InitRandom fills the buffer with uniform random values in [0, 1)
// (rescaled to the element type's natural range for integer types),
// seeded deterministically.
func (s *SOM[E]) InitRandom(seed int64) {
	r := rand.New(rand.NewSource(seed))
	scale := maxValue[E]()
	for i := range s.Buffer {
		s.Buffer[i] = E(r.Float64() * scale)
	}
}

// InitRandomPreferredDirection is like InitRandom, but biases each neuron
// so that one axis (chosen round-robin by neuron index) has a higher
// mean than the others, matching PINK's
// RANDOM_WITH_PREFERRED_DIRECTION initialization mode.
func (s *SOM[E]) InitRandomPreferredDirection(seed int64) {
	r := rand.New(rand.NewSource(seed))
	scale := maxValue[E]()
	axes := s.NeuronSize
	if axes == 0 {
		return
	}
	for n := 0; n < s.Size(); n++ {
		preferred := n % axes
		neuron := s.Neuron(n)
		for i := range neuron {
			v := r.Float64() * 0.5
			if i == preferred {
				v += 0.5
			}
			neuron[i] = E(v * scale)
		}
	}
}

func maxValue[E Elem]() float64 {
	var zero E
	switch any(zero).(type) {
	case float32:
		return 1.0
	case uint16:
		return float64(^uint16(0))
	case uint8:
		return float64(^uint8(0))
	default:
		return 1.0
	}
}

// PushToDevice mirrors the host buffer to b, a no-op when b is the CPU
// backend. Called before a phase that may run on an accelerator so the
// device's copy reflects the latest weights.
func (s *SOM[E]) PushToDevice(b accelerator.Backend) error {
	buf := make([]float32, len(s.Buffer))
	for i, v := range s.Buffer {
		buf[i] = float32(v)
	}
	if err := b.Push(buf); err != nil {
		return err
	}
	s.pushed = true
	return nil
}

// PullToHost mirrors b's buffer back into the host buffer, a no-op when
// b is the CPU backend. buf is seeded with the current host values
// first, so a backend that leaves it untouched (the CPU backend) is a
// true no-op rather than zeroing the SOM.
func (s *SOM[E]) PullToHost(b accelerator.Backend) error {
	buf := make([]float32, len(s.Buffer))
	for i, v := range s.Buffer {
		buf[i] = float32(v)
	}
	if err := b.Pull(buf); err != nil {
		return err
	}
	for i, v := range buf {
		s.Buffer[i] = E(v)
	}
	s.pushed = false
	return nil
}
