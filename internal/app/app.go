// Package app wires config, dataio, topology, som, and trainer together
// into the two run modes the CLI exposes, at the process level
// (cmd/pinksom only parses flags and calls into here).
package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/voievodin/pinksom/internal/accelerator"
	"github.com/voievodin/pinksom/internal/concurrency"
	"github.com/voievodin/pinksom/internal/config"
	"github.com/voievodin/pinksom/internal/dataio"
	"github.com/voievodin/pinksom/internal/distance"
	"github.com/voievodin/pinksom/internal/interpolate"
	"github.com/voievodin/pinksom/internal/kernel"
	"github.com/voievodin/pinksom/internal/logging"
	"github.com/voievodin/pinksom/internal/pinkerr"
	"github.com/voievodin/pinksom/internal/som"
	"github.com/voievodin/pinksom/internal/topology"
	"github.com/voievodin/pinksom/internal/trainer"
)

// Run validates p and executes the requested mode.
func Run(p config.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	switch p.Mode {
	case config.ModeTrain:
		return runTrain(p)
	case config.ModeMap:
		return runMap(p)
	default:
		return pinkerr.Config("unknown execution path %q", p.Mode)
	}
}

func buildTopology(p config.Params) topology.Topology {
	if p.Layout == config.LayoutHexagonal {
		return topology.NewHex(p.SomWidth, p.SomHeight)
	}
	return topology.NewCartesian(p.SomWidth, p.SomHeight, p.SomDepth, p.PBC)
}

func buildSampler(p config.Params) interpolate.Sampler {
	if p.Interpolation == config.InterpNearestNeighbor {
		return interpolate.NearestNeighbor{}
	}
	return interpolate.Bilinear{}
}

func buildKernel(p config.Params) kernel.Func {
	if p.DistFunc == config.DistMexicanHat {
		return kernel.MexicanHat{Sigma: p.Sigma, Damping: p.Damping}
	}
	return kernel.Gaussian{Sigma: p.Sigma, Damping: p.Damping}
}

func buildAccum(p config.Params) distance.Accum {
	if p.EuclideanDistanceType == config.ElementUint8 {
		return distance.AccumPackedInt
	}
	return distance.AccumFloat
}

func runTrain(p config.Params) error {
	reader, err := dataio.Open(p.DataFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	dataDim := int(reader.Header.Extents[0])
	topo := buildTopology(p)
	p.DeriveFromDataDim(dataDim, topo.Size())

	switch p.EuclideanDistanceType {
	case config.ElementFloat:
		return trainGeneric[float32](p, reader, dataDim, topo)
	case config.ElementUint16:
		return trainGeneric[uint16](p, reader, dataDim, topo)
	default:
		return trainGeneric[uint8](p, reader, dataDim, topo)
	}
}

func trainGeneric[E trainer.Elem](p config.Params, reader *dataio.Reader, dataDim int, topo topology.Topology) error {
	logger := logging.New(p.Verbose)

	s := som.New[E](topo, p.NeuronDim)
	if err := initSOM(s, p); err != nil {
		return err
	}

	backend, err := accelerator.Select(p.CudaOff)
	if err != nil {
		logger.Debugf("accelerator unavailable, continuing on CPU: %v", err)
		backend = accelerator.CPU{}
	} else {
		logger.Debugf("using accelerator backend %q", backend.Name())
	}

	facade := trainer.New[E](s, buildKernel(p), p.NumRot, p.Flip, buildSampler(p),
		p.EuclideanDistanceDim, p.MaxUpdateDistance, buildAccum(p), backend, concurrency.New(p.NumThreads))

	progress := newProgress(p, int(reader.Header.NumberOfEntries)*p.NumIter)

	buf := make([]float32, dataDim*dataDim)
	count := 0
	for iter := 0; iter < p.NumIter; iter++ {
		if iter > 0 {
			// Each pass after the first re-reads the data file from its first entry.
			again, err := dataio.Open(p.DataFile)
			if err != nil {
				return err
			}
			defer again.Close()
			reader = again
		}
		for {
			if err := reader.Next(buf); err != nil {
				if err == io.EOF {
					break
				}
				return err
			}
			if err := facade.TrainStep(buf, dataDim); err != nil {
				return err
			}
			count++
			progress.tick(count)

			if p.InterStore != config.InterStoreOff {
				path := p.ResultFile
				if p.InterStore == config.InterStoreKeep {
					path = fmt.Sprintf("%s.%d", p.ResultFile, count)
				}
				if err := writeSOM(s, topo, p, path); err != nil {
					return err
				}
			}
		}
	}

	if err := writeSOM(s, topo, p, p.ResultFile); err != nil {
		return err
	}

	logger.Debugf("update counts: %v", facade.UpdateCounts())
	return nil
}

func runMap(p config.Params) error {
	reader, err := dataio.Open(p.DataFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	dataDim := int(reader.Header.Extents[0])
	somReader, err := dataio.Open(p.SomFile)
	if err != nil {
		return err
	}
	defer somReader.Close()

	topo := buildTopology(p)
	p.DeriveFromDataDim(dataDim, topo.Size())

	switch p.EuclideanDistanceType {
	case config.ElementFloat:
		return mapGeneric[float32](p, reader, somReader, dataDim, topo)
	case config.ElementUint16:
		return mapGeneric[uint16](p, reader, somReader, dataDim, topo)
	default:
		return mapGeneric[uint8](p, reader, somReader, dataDim, topo)
	}
}

func mapGeneric[E trainer.Elem](p config.Params, reader, somReader *dataio.Reader, dataDim int, topo topology.Topology) error {
	s := som.New[E](topo, p.NeuronDim)
	if err := loadSOM(s, somReader); err != nil {
		return err
	}

	backend, err := accelerator.Select(p.CudaOff)
	if err != nil {
		backend = accelerator.CPU{}
	}

	facade := trainer.New[E](s, buildKernel(p), p.NumRot, p.Flip, buildSampler(p),
		p.EuclideanDistanceDim, p.MaxUpdateDistance, buildAccum(p), backend, concurrency.New(p.NumThreads))

	header := dataio.Header{
		Reserved:        [3]int32{0, 0, 0},
		NumberOfEntries: reader.Header.NumberOfEntries,
		LayoutCode:      int32(layoutCode(p.Layout)),
		Dimensionality:  1,
		Extents:         []int32{int32(s.Size())},
	}
	writer, err := dataio.Create(p.ResultFile, header)
	if err != nil {
		return err
	}
	defer writer.Close()

	var rotFlipWriter *dataio.Writer
	if p.StoreRotFlip != "" {
		rotFlipWriter, err = dataio.Create(p.StoreRotFlip, header)
		if err != nil {
			return err
		}
		defer rotFlipWriter.Close()
	}

	buf := make([]float32, dataDim*dataDim)
	progress := newProgress(p, int(reader.Header.NumberOfEntries))
	count := 0
	for {
		if err := reader.Next(buf); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		res, err := facade.MapStep(buf, dataDim)
		if err != nil {
			return err
		}
		row := make([]float32, len(res.Distance))
		for i, v := range res.Distance {
			row[i] = float32(v)
		}
		if err := writer.WriteEntry(row); err != nil {
			return err
		}

		if rotFlipWriter != nil {
			if err := rotFlipWriter.WriteEntry(encodeRotFlip(res.BestRotation, p.NumRot)); err != nil {
				return err
			}
		}

		count++
		progress.tick(count)
	}
	return nil
}

// encodeRotFlip packs each neuron's winning variant index into a single
// float32 pairing a flip bit with a rotation index: variants
// [0, numRot) are unflipped (flip_bit 0, rotation_index = variant), and
// variants [numRot, 2*numRot) are their mirrored counterparts (flip_bit
// 1, rotation_index = variant - numRot). The packed value is
// rotation_index*2 + flip_bit, recoverable by %2/ /2.
func encodeRotFlip(bestRotation []uint32, numRot int) []float32 {
	out := make([]float32, len(bestRotation))
	for i, v := range bestRotation {
		variant := int(v)
		flipBit := 0
		rotation := variant
		if variant >= numRot {
			flipBit = 1
			rotation = variant - numRot
		}
		out[i] = float32(rotation*2 + flipBit)
	}
	return out
}

func layoutCode(l config.Layout) int {
	if l == config.LayoutHexagonal {
		return 1
	}
	return 0
}

func initSOM[E som.Elem](s *som.SOM[E], p config.Params) error {
	switch p.Init {
	case config.InitZero:
		s.InitZero()
	case config.InitRandom:
		s.InitRandom(p.Seed)
	case config.InitRandomPreferredDirection:
		s.InitRandomPreferredDirection(p.Seed)
	default:
		r, err := dataio.Open(p.Init)
		if err != nil {
			return err
		}
		defer r.Close()
		return loadSOM(s, r)
	}
	return nil
}

func loadSOM[E som.Elem](s *som.SOM[E], r *dataio.Reader) error {
	buf := make([]float32, s.NeuronSize)
	for n := 0; n < s.Size(); n++ {
		if err := r.Next(buf); err != nil {
			return pinkerr.IO("loading SOM neuron %d: %v", n, err)
		}
		neuron := s.Neuron(n)
		for i, v := range buf {
			neuron[i] = E(v)
		}
	}
	return nil
}

func writeSOM[E som.Elem](s *som.SOM[E], topo topology.Topology, p config.Params, path string) error {
	header := dataio.Header{
		Reserved:        [3]int32{0, 0, 0},
		NumberOfEntries: int32(s.Size()),
		LayoutCode:      int32(layoutCode(p.Layout)),
		Dimensionality:  2,
		Extents:         []int32{int32(s.NeuronDim), int32(s.NeuronDim)},
	}
	w, err := dataio.Create(path, header)
	if err != nil {
		return err
	}
	defer w.Close()

	row := make([]float32, s.NeuronSize)
	for n := 0; n < s.Size(); n++ {
		neuron := s.Neuron(n)
		for i, v := range neuron {
			row[i] = float32(v)
		}
		if err := w.WriteEntry(row); err != nil {
			return err
		}
	}
	return nil
}

// progress periodically logs percent-complete and elapsed time.
type progress struct {
	enabled bool
	total   int
	start   time.Time
	next    int
	step    int
}

func newProgress(p config.Params, total int) *progress {
	step := total / 10
	if step < 1 {
		step = 1
	}
	return &progress{enabled: p.Progress, total: total, start: time.Now(), step: step}
}

func (pr *progress) tick(count int) {
	if !pr.enabled || pr.total == 0 {
		return
	}
	if count < pr.next {
		return
	}
	pct := 100 * float64(count) / float64(pr.total)
	fmt.Fprintf(os.Stderr, "  Progress: %12d updates, %5.1f %% (%s)\n",
		count, pct, time.Since(pr.start).Round(time.Second))
	pr.next += pr.step
}
