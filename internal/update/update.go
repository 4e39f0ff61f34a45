// Package update moves SOM neurons toward a winning variant, weighted by
// topology distance through a distribution kernel.
//
// Only neurons within max_update_distance of the winner are touched,
// using the single winning variant image for every neighbor, rather
// than recomputing a restraint*influence coefficient for every weight
// of every neuron on every iteration.
package update

import (
	"github.com/voievodin/pinksom/internal/concurrency"
	"github.com/voievodin/pinksom/internal/kernel"
	"github.com/voievodin/pinksom/internal/topology"
)

// Mover applies one weighted move toward target for every pixel of a
// neuron's slice.
type Mover[E Elem] struct {
	Kernel kernel.Func
	// Pool parallelizes the per-neighbor update loop across workers when
	// non-nil; each neighbor touches a disjoint neuron slice so this is
	// always safe.
	Pool *concurrency.Pool
}

// Elem is the set of neuron element types the updater can mutate.
type Elem interface {
	~float32 | ~uint16 | ~uint8
}

// Neighbor describes one neuron to update: its lattice index and its
// topology distance from the winning neuron.
type Neighbor = topology.Neighbor

// Counts tracks how many times each neuron has been written.
type Counts []uint64

// Apply moves every neuron named in neighbors toward target, elementwise,
// skipping any neuron whose kernel weight is exactly zero so its memory
// is never touched. counts[i] is incremented for every neuron actually
// written.
func Apply[E Elem](m Mover[E], buffer []E, neuronSize int, neighbors []Neighbor, target []E, counts Counts) {
	updateOne := func(idx int) {
		nb := neighbors[idx]
		w := m.Kernel.Apply(nb.Distance)
		if w == 0 {
			return
		}

		neuron := buffer[nb.Index*neuronSize : (nb.Index+1)*neuronSize]
		for i := range neuron {
			old := float64(neuron[i])
			neuron[i] = E(old + w*(float64(target[i])-old))
		}
		counts[nb.Index]++
	}

	if m.Pool != nil {
		m.Pool.ParallelFor(len(neighbors), updateOne)
	} else {
		for i := range neighbors {
			updateOne(i)
		}
	}
}
