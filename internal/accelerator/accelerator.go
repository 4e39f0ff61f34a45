// Package accelerator defines the backend capability boundary the
// trainer facade consumes, and a CPU implementation that is always
// present.
//
// An accelerator runtime's memory-transfer and kernel-launch primitives
// are treated as an external collaborator here: this package is that
// capability boundary (one interface, two implementations, selected at
// facade construction), not a GPU math implementation.
package accelerator

import "github.com/voievodin/pinksom/internal/pinkerr"

// Backend is the capability a trainer facade drives at phase boundaries
// (host<->device transfer, kernel completion). Distance/update math for
// the CPU backend lives in the distance and update packages directly;
// Backend only decides whether an accelerator is present and mirrors
// data to/from it.
type Backend interface {
	// Name identifies the backend for diagnostics.
	Name() string

	// Available reports whether this backend can run on the current
	// host. The CPU backend is always available.
	Available() bool

	// Push mirrors a host buffer to the device. No-op on the CPU
	// backend.
	Push(buf []float32) error

	// Pull mirrors a device buffer back to the host. No-op on the CPU
	// backend.
	Pull(buf []float32) error
}

// CPU is the always-present backend: its host<->accelerator mirroring
// primitives are no-ops, since no accelerator is configured.
type CPU struct{}

func (CPU) Name() string          { return "cpu" }
func (CPU) Available() bool       { return true }
func (CPU) Push([]float32) error  { return nil }
func (CPU) Pull([]float32) error  { return nil }

// Select returns the CPU backend when cudaOff is true, or attempts to
// locate a dynamic accelerator runtime otherwise, falling back to
// reporting ErrBackendUnavailable (never falling back to CPU silently --
// the caller decides whether BackendUnavailable is fatal).
func Select(cudaOff bool) (Backend, error) {
	if cudaOff {
		return CPU{}, nil
	}
	dyn, err := newDynamic()
	if err != nil {
		return nil, pinkerr.BackendUnavailable("%v", err)
	}
	return dyn, nil
}
