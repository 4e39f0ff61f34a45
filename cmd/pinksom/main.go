// Command pinksom trains, or maps images against, a rotation/flip
// invariant self-organizing map.
package main

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/voievodin/pinksom/internal/app"
	"github.com/voievodin/pinksom/internal/config"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "pinksom",
		Short: "Rotation and flip invariant self-organizing maps over images",
		Long: "pinksom trains self-organizing maps over 2-D (or channel-major n-D) images\n" +
			"invariant to rotation and mirroring, and maps images against a trained map.",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a YAML defaults file")

	pf.String("layout", "", "lattice layout: cartesian or hexagonal")
	pf.Int("som-width", 0, "SOM width (and side length, for hexagonal)")
	pf.Int("som-height", 0, "SOM height (must equal som-width for hexagonal)")
	pf.Int("som-depth", 0, "SOM depth (cartesian only)")
	pf.Bool("pbc", false, "enable periodic boundary conditions (cartesian only)")

	pf.Int("neuron-dim", 0, "neuron side length; 0 derives it from the data dimension")
	pf.Int("euclidean-distance-dim", 0, "central-window side length for distance computation; 0 derives it")
	pf.String("euclidean-distance-type", "", "storage/accumulation element type: float, uint16, or uint8")

	pf.Int("numrot", 0, "number of rotations over the full circle (1, or a positive multiple of 4)")
	pf.Bool("flip", false, "also generate mirrored variants")
	pf.String("interpolation", "", "resampling kind: bilinear or nearest_neighbor")

	pf.Int("num-iter", 0, "number of passes over the data file (training only)")
	pf.String("init", "", "neuron initialization: zero, random, random_with_preferred_direction, or a SOM file path")
	pf.Int64("seed", 0, "random seed for non-zero initialization")
	pf.String("dist-func", "", "distribution kernel: gaussian or mexicanhat")
	pf.Float64("sigma", 0, "distribution kernel sigma")
	pf.Float64("damping", 0, "distribution kernel damping factor")
	pf.Float64("max-update-distance", 0, "neighborhood radius to update around the BMU; -1 means the whole SOM")

	pf.Bool("cuda-off", false, "never attempt to use an accelerator backend")
	pf.Int("num-threads", 0, "worker pool size; -1 uses all available cores")

	pf.String("inter-store", "", "intermediate SOM snapshots: off, overwrite, or keep")
	pf.String("store-rot-flip", "", "path to also store the per-input best-rotation/flip record")
	pf.Bool("progress", false, "print periodic progress to stderr")
	pf.Bool("verbose", false, "print diagnostic logging")

	rootCmd.AddCommand(newTrainCmd(&configPath), newMapCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Fatal(err)
	}
}

func newTrainCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "train <data-file> <result-file>",
		Short: "train a self-organizing map against an image data file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(*configPath)
			if err != nil {
				return err
			}
			p.Mode = config.ModeTrain
			p.DataFile = args[0]
			p.ResultFile = args[1]
			applyExplicitFlags(cmd.Flags(), &p)
			return app.Run(p)
		},
	}
}

func newMapCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "map <data-file> <result-file> <som-file>",
		Short: "map an image data file against a trained self-organizing map",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadParams(*configPath)
			if err != nil {
				return err
			}
			p.Mode = config.ModeMap
			p.DataFile = args[0]
			p.ResultFile = args[1]
			p.SomFile = args[2]
			applyExplicitFlags(cmd.Flags(), &p)
			return app.Run(p)
		},
	}
}

func loadParams(configPath string) (config.Params, error) {
	p := config.Defaults()
	if configPath == "" {
		return p, nil
	}
	return config.LoadYAMLDefaults(configPath, p)
}

// applyExplicitFlags copies only the flags the user actually set on the
// command line into p, so that defaults and --config values are not
// clobbered by a flag's zero value. Mirrors the CLI-over-file-over-defaults
// precedence qubicDB-qubicdb/cmd/qubicdb/main.go's applyExplicitFlags
// establishes.
func applyExplicitFlags(flags *pflag.FlagSet, p *config.Params) {
	changed := func(name string) bool { return flags.Changed(name) }

	if changed("layout") {
		v, _ := flags.GetString("layout")
		p.Layout = config.Layout(v)
	}
	if changed("som-width") {
		p.SomWidth, _ = flags.GetInt("som-width")
	}
	if changed("som-height") {
		p.SomHeight, _ = flags.GetInt("som-height")
	}
	if changed("som-depth") {
		p.SomDepth, _ = flags.GetInt("som-depth")
	}
	if changed("pbc") {
		p.PBC, _ = flags.GetBool("pbc")
	}
	if changed("neuron-dim") {
		p.NeuronDim, _ = flags.GetInt("neuron-dim")
	}
	if changed("euclidean-distance-dim") {
		p.EuclideanDistanceDim, _ = flags.GetInt("euclidean-distance-dim")
	}
	if changed("euclidean-distance-type") {
		v, _ := flags.GetString("euclidean-distance-type")
		p.EuclideanDistanceType = config.ElementType(v)
	}
	if changed("numrot") {
		p.NumRot, _ = flags.GetInt("numrot")
	}
	if changed("flip") {
		p.Flip, _ = flags.GetBool("flip")
	}
	if changed("interpolation") {
		v, _ := flags.GetString("interpolation")
		p.Interpolation = config.Interpolation(v)
	}
	if changed("num-iter") {
		p.NumIter, _ = flags.GetInt("num-iter")
	}
	if changed("init") {
		p.Init, _ = flags.GetString("init")
	}
	if changed("seed") {
		p.Seed, _ = flags.GetInt64("seed")
	}
	if changed("dist-func") {
		v, _ := flags.GetString("dist-func")
		p.DistFunc = config.DistFunc(v)
	}
	if changed("sigma") {
		p.Sigma, _ = flags.GetFloat64("sigma")
	}
	if changed("damping") {
		p.Damping, _ = flags.GetFloat64("damping")
	}
	if changed("max-update-distance") {
		p.MaxUpdateDistance, _ = flags.GetFloat64("max-update-distance")
	}
	if changed("cuda-off") {
		p.CudaOff, _ = flags.GetBool("cuda-off")
	}
	if changed("num-threads") {
		p.NumThreads, _ = flags.GetInt("num-threads")
	}
	if changed("inter-store") {
		v, _ := flags.GetString("inter-store")
		p.InterStore = config.InterStore(v)
	}
	if changed("store-rot-flip") {
		p.StoreRotFlip, _ = flags.GetString("store-rot-flip")
	}
	if changed("progress") {
		p.Progress, _ = flags.GetBool("progress")
	}
	if changed("verbose") {
		p.Verbose, _ = flags.GetBool("verbose")
	}
}
