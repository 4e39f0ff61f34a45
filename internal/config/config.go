// Package config merges CLI flags with an optional YAML defaults file and
// validates the merged result before the trainer facade is constructed.
//
// Precedence is CLI > file > built-in defaults.
package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voievodin/pinksom/internal/pinkerr"
)

// Mode names the mutually exclusive execution path.
type Mode string

const (
	ModeTrain Mode = "train"
	ModeMap   Mode = "map"
)

// Layout names the lattice kind.
type Layout string

const (
	LayoutCartesian Layout = "cartesian"
	LayoutHexagonal Layout = "hexagonal"
)

// Interpolation names the resampling kind.
type Interpolation string

const (
	InterpNearestNeighbor Interpolation = "nearest_neighbor"
	InterpBilinear        Interpolation = "bilinear"
)

// ElementType names the storage precision for images/neurons/distances.
type ElementType string

const (
	ElementFloat  ElementType = "float"
	ElementUint16 ElementType = "uint16"
	ElementUint8  ElementType = "uint8"
)

// DistFunc names the distribution kernel kind.
type DistFunc string

const (
	DistGaussian   DistFunc = "gaussian"
	DistMexicanHat DistFunc = "mexicanhat"
)

// InterStore names the intermediate-storage mode.
type InterStore string

const (
	InterStoreOff       InterStore = "off"
	InterStoreOverwrite InterStore = "overwrite"
	InterStoreKeep      InterStore = "keep"
)

// Init names the neuron-initialization mode; any value outside the three
// named constants is treated as a file path to load from.
const (
	InitZero                      = "zero"
	InitRandom                    = "random"
	InitRandomPreferredDirection  = "random_with_preferred_direction"
)

// Params is the complete merged configuration consumed by the facade.
type Params struct {
	Mode         Mode
	DataFile     string
	ResultFile   string
	SomFile      string // required for ModeMap

	Layout    Layout
	SomWidth  int
	SomHeight int
	SomDepth  int
	PBC       bool

	NeuronDim             int
	EuclideanDistanceDim  int
	EuclideanDistanceType ElementType

	NumRot        int
	Flip          bool
	Interpolation Interpolation

	NumIter           int
	Init              string
	Seed              int64
	DistFunc          DistFunc
	Sigma, Damping    float64
	MaxUpdateDistance float64 // -1 means unset (whole SOM)

	CudaOff     bool
	NumThreads  int
	BlockSize1  int

	InterStore   InterStore
	StoreRotFlip string
	Progress     bool
	Verbose      bool

	// Derived fields, populated by DeriveFromDataDim once the data
	// file's spatial extent is known.
	SomSize              int
	NeuronSize           int
	NumSpatialTransforms int
}

// Defaults returns the built-in defaults, matching
// InputData::InputData()'s member-initializer list.
func Defaults() Params {
	return Params{
		SomWidth:              10,
		SomHeight:             10,
		SomDepth:              1,
		Layout:                LayoutCartesian,
		Seed:                  1234,
		NumRot:                360,
		NumThreads:            -1,
		Init:                  InitZero,
		NumIter:               1,
		Flip:                  true,
		Interpolation:         InterpBilinear,
		InterStore:            InterStoreOff,
		DistFunc:              DistGaussian,
		Sigma:                 1.0,
		Damping:               1.0,
		BlockSize1:            256,
		MaxUpdateDistance:     -1.0,
		EuclideanDistanceType: ElementUint8,
	}
}

// LoadYAMLDefaults reads a YAML file and overlays it onto base, returning
// a new Params. Fields absent from the YAML document are left untouched.
func LoadYAMLDefaults(path string, base Params) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, pinkerr.IO("reading config %s: %v", path, err)
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, pinkerr.Config("parsing config %s: %v", path, err)
	}
	return out, nil
}

// Validate checks static flag-combination rules that don't require the
// data file to be open yet.
func (p Params) Validate() error {
	if p.Mode != ModeTrain && p.Mode != ModeMap {
		return pinkerr.Config("a run mode (train or map) is required")
	}
	if p.NumRot <= 0 || (p.NumRot != 1 && p.NumRot%4 != 0) {
		return pinkerr.Config("numrot must be 1 or a positive multiple of 4, got %d", p.NumRot)
	}
	if p.MaxUpdateDistance < 0 && p.MaxUpdateDistance != -1 {
		return pinkerr.Config("max-update-distance must be >= 0 or unset, got %g", p.MaxUpdateDistance)
	}
	if p.SomWidth < 2 {
		return pinkerr.Config("som-width must be >= 2, got %d", p.SomWidth)
	}
	if p.SomHeight < 1 || p.SomDepth < 1 {
		return pinkerr.Config("som-height and som-depth must be >= 1")
	}

	if p.Layout == LayoutHexagonal {
		if p.PBC {
			return pinkerr.Config("periodic boundary conditions are not supported for hexagonal layout")
		}
		if p.SomWidth != p.SomHeight {
			return pinkerr.Config("hexagonal layout requires som-width == som-height")
		}
		if (p.SomWidth-1)%2 != 0 {
			return pinkerr.Config("hexagonal layout requires an odd som-width")
		}
		if p.SomDepth != 1 {
			return pinkerr.Config("hexagonal layout requires som-depth == 1")
		}
	}

	switch p.EuclideanDistanceType {
	case ElementFloat, ElementUint16, ElementUint8:
	default:
		return pinkerr.Config("unknown euclidean-distance-type %q", p.EuclideanDistanceType)
	}

	switch p.Interpolation {
	case InterpNearestNeighbor, InterpBilinear:
	default:
		return pinkerr.Config("unknown interpolation %q", p.Interpolation)
	}

	switch p.DistFunc {
	case DistGaussian, DistMexicanHat:
	default:
		return pinkerr.Config("unknown dist-func %q", p.DistFunc)
	}

	return nil
}

// DeriveFromDataDim fills in NeuronDim/EuclideanDistanceDim defaults and
// the SomSize/NeuronSize/NumSpatialTransforms fields once the input
// data's spatial extent (dataDim) is known.
//
// EuclideanDistanceDim, left unset, is always derived from dataDim
// directly rather than from an explicit NeuronDim.
func (p *Params) DeriveFromDataDim(dataDim int, somSize int) {
	if p.NeuronDim == 0 {
		p.NeuronDim = dataDim
		if p.NumRot != 1 {
			p.NeuronDim = int(2*float64(dataDim)/math.Sqrt2) + 1
		}
	}
	if p.EuclideanDistanceDim == 0 {
		p.EuclideanDistanceDim = dataDim
		if p.NumRot != 1 {
			p.EuclideanDistanceDim = int(float64(dataDim) * math.Sqrt2 / 2.0)
		}
	}

	p.NeuronSize = p.NeuronDim * p.NeuronDim
	p.SomSize = somSize
	p.NumSpatialTransforms = p.NumRot
	if p.Flip {
		p.NumSpatialTransforms *= 2
	}
}
