package trainer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voievodin/pinksom/internal/accelerator"
	"github.com/voievodin/pinksom/internal/distance"
	"github.com/voievodin/pinksom/internal/interpolate"
	"github.com/voievodin/pinksom/internal/kernel"
	"github.com/voievodin/pinksom/internal/som"
	"github.com/voievodin/pinksom/internal/topology"
	"github.com/voievodin/pinksom/internal/trainer"
)

func newTestFacade(t *testing.T, somWidth, somHeight, neuronDim int) *trainer.Facade[float32] {
	t.Helper()
	topo := topology.NewCartesian(somWidth, somHeight, 1, false)
	s := som.New[float32](topo, neuronDim)
	return trainer.New[float32](s, kernel.Gaussian{Sigma: 1, Damping: 1}, 4, false,
		interpolate.Bilinear{}, neuronDim, -1, distance.AccumFloat, accelerator.CPU{}, nil)
}

func TestNewRejectsNonConformingNumRot(t *testing.T) {
	t.Parallel()

	build := func(numRot int) func() {
		return func() {
			topo := topology.NewCartesian(3, 3, 1, false)
			s := som.New[float32](topo, 4)
			trainer.New[float32](s, kernel.Gaussian{Sigma: 1, Damping: 1}, numRot, false,
				interpolate.Bilinear{}, 4, -1, distance.AccumFloat, accelerator.CPU{}, nil)
		}
	}

	require.Panics(t, build(0))
	require.Panics(t, build(3))
	require.Panics(t, build(90))
	require.NotPanics(t, build(1))
	require.NotPanics(t, build(4))
	require.NotPanics(t, build(360))
}

func TestMapStepReturnsOneDistancePerNeuronAndDoesNotMutateSOM(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t, 3, 3, 4)
	before := append([]float32(nil), f.SOM.Buffer...)

	input := make([]float32, 4*4)
	for i := range input {
		input[i] = float32(i)
	}

	res, err := f.MapStep(input, 4)
	require.NoError(t, err)
	require.Len(t, res.Distance, 9)
	require.Len(t, res.BestRotation, 9)
	require.Equal(t, before, f.SOM.Buffer)
}

func TestTrainStepSelectsClosestNeuronAsBMUAndMovesItTowardInput(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t, 3, 3, 2)

	// Bias neuron 4 (center) toward the input value so it is the clear BMU.
	target := f.SOM.Neuron(4)
	for i := range target {
		target[i] = 5
	}

	input := []float32{5, 5, 5, 5}
	before4 := append([]float32(nil), f.SOM.Neuron(4)...)

	require.NoError(t, f.TrainStep(input, 2))

	after4 := f.SOM.Neuron(4)
	for i := range after4 {
		// Already at the target value; a zero-distance BMU should stay put.
		require.InDelta(t, before4[i], after4[i], 1e-3)
	}
	require.Equal(t, uint64(1), f.UpdateCounts()[4])
}

func TestTrainStepUpdatesNeighborsMonotonicallyTowardTheWinningVariant(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t, 3, 1, 2)

	input := []float32{9, 9, 9, 9}
	before := make([][]float32, f.SOM.Size())
	for i := 0; i < f.SOM.Size(); i++ {
		before[i] = append([]float32(nil), f.SOM.Neuron(i)...)
	}

	require.NoError(t, f.TrainStep(input, 2))

	for i := 0; i < f.SOM.Size(); i++ {
		after := f.SOM.Neuron(i)
		for px := range after {
			require.GreaterOrEqual(t, after[px], before[i][px])
		}
	}
}
