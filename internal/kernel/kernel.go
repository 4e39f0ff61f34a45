// Package kernel implements the scalar radial distribution functions that
// weight neighbor updates by topology distance, rather than by raw
// lattice coordinates relative to a BMU.
package kernel

import "math"

// Func maps a topology distance to an update weight in [0, Damping] for
// Gaussian, and potentially negative for MexicanHat.
type Func interface {
	Apply(d float64) float64
}

// Gaussian computes damping * exp(-d^2 / (2*sigma^2)).
type Gaussian struct {
	Sigma, Damping float64
}

func (g Gaussian) Apply(d float64) float64 {
	return g.Damping * math.Exp(-(d*d)/(2*g.Sigma*g.Sigma))
}

// MexicanHat computes damping * (1 - d^2/sigma^2) * exp(-d^2/(2*sigma^2)).
// The result may be negative for d > sigma; that is intended.
type MexicanHat struct {
	Sigma, Damping float64
}

func (m MexicanHat) Apply(d float64) float64 {
	ratio := (d * d) / (m.Sigma * m.Sigma)
	return m.Damping * (1 - ratio) * math.Exp(-(d*d)/(2*m.Sigma*m.Sigma))
}
