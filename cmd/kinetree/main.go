package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/kinematics"
	"github.com/san-kum/kinetree/internal/mechanism"
)

var (
	configFile string
	dataDir    string
	mechName   string
	endLink    string
	preset     string
	verbose    bool
	anglesFlag string
	targetFlag string
	offsetFlag string
	noSave     bool
	showPlot   bool
	iterations int
	plotJoints bool
	dumpPreset string
	halfWidth  float64
	gridPoints int
	workers    int
	logger     *slog.Logger
	cfg        *config.Config
	mechanisms = mechanism.NewRegistry()
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Defining the flags resets the
// package-level flag variables to their defaults.
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kinetree",
		Short:         "forward and inverse kinematics for articulated mechanisms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = newLogger(verbose)
			return loadConfig(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (yaml)")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVarP(&mechName, "mechanism", "m", config.DefaultMechanism, "mechanism preset name or yaml file")
	pf.StringVarP(&endLink, "end-link", "e", "", "end link of the chain (default: first end link)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	dofCmd := &cobra.Command{
		Use:   "dof",
		Short: "list the movable joints of the mechanism",
		Args:  cobra.NoArgs,
		RunE:  showDOF,
	}

	fkCmd := &cobra.Command{
		Use:   "fk",
		Short: "forward kinematics over the whole tree",
		Args:  cobra.NoArgs,
		RunE:  runFK,
	}
	fkCmd.Flags().StringVarP(&anglesFlag, "angles", "a", "", "joint angles for every movable joint, comma separated")

	chainCmd := &cobra.Command{
		Use:   "chain",
		Short: "show the chain from the root to the end link",
		Args:  cobra.NoArgs,
		RunE:  showChain,
	}
	chainCmd.Flags().StringVarP(&anglesFlag, "angles", "a", "", "chain joint angles, comma separated")

	ikCmd := &cobra.Command{
		Use:   "ik",
		Short: "solve inverse kinematics for the end link",
		Long: `Solve joint angles that bring the end link to a target pose.

The target is either absolute (--target x,y,z[,roll,pitch,yaw]) or relative to
the current end pose (--offset dx,dy,dz). A target without an orientation
keeps the current end link orientation.`,
		Args: cobra.NoArgs,
		RunE: runIK,
	}
	ikCmd.Flags().StringVarP(&anglesFlag, "angles", "a", "", "starting chain joint angles")
	ikCmd.Flags().StringVarP(&targetFlag, "target", "t", "", "target pose x,y,z[,roll,pitch,yaw]")
	ikCmd.Flags().StringVar(&offsetFlag, "offset", "", "target as a translation of the current end pose")
	ikCmd.Flags().StringVarP(&preset, "preset", "p", "", "solver preset")
	ikCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	ikCmd.Flags().BoolVar(&showPlot, "plot", false, "plot convergence after solving")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored ik runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	runsCmd.AddCommand(
		&cobra.Command{
			Use:   "show [run_id]",
			Short: "show one run",
			Args:  cobra.ExactArgs(1),
			RunE:  showRun,
		},
		&cobra.Command{
			Use:   "rm [run_id]",
			Short: "delete a run",
			Args:  cobra.ExactArgs(1),
			RunE:  deleteRun,
		},
		&cobra.Command{
			Use:   "export [run_id] [file]",
			Short: "export a run to JSON",
			Args:  cobra.ExactArgs(2),
			RunE:  exportRun,
		},
	)

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot solver convergence of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&plotJoints, "joints", false, "also plot every joint")

	jogCmd := &cobra.Command{
		Use:   "jog",
		Short: "move joints interactively",
		Args:  cobra.NoArgs,
		RunE:  runJog,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time forward and inverse kinematics",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntVarP(&iterations, "n", "n", 1000, "repetitions")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve a grid of targets around the current end pose",
		Long: `Solve ik for every point of an x-y-z grid centred on the current end pose
and report how many targets converge. Workers solve on private copies of the
mechanism.`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
	sweepCmd.Flags().StringVarP(&anglesFlag, "angles", "a", "", "starting chain joint angles")
	sweepCmd.Flags().Float64VarP(&halfWidth, "range", "r", 0.05, "grid half width per axis")
	sweepCmd.Flags().IntVar(&gridPoints, "points", 3, "grid points per axis")
	sweepCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (default GOMAXPROCS)")
	sweepCmd.Flags().StringVarP(&preset, "preset", "p", "", "solver preset")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list mechanism and solver presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&dumpPreset, "dump", "", "print a mechanism preset as yaml")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [file]",
		Short: "write the effective configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	})

	rootCmd.AddCommand(dofCmd, fkCmd, chainCmd, ikCmd, sweepCmd, runsCmd, plotCmd, jogCmd, benchCmd, presetsCmd, configCmd)
	return rootCmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers the config file over the defaults and explicit flags
// over the file.
func loadConfig(cmd *cobra.Command) error {
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("mechanism") || configFile == "" {
		cfg.Mechanism = mechName
	}
	if flags.Changed("end-link") {
		cfg.EndLink = endLink
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}
	return nil
}

// buildTree resolves the configured mechanism. The configured root
// transform places the mechanism's own root frame in the world.
func buildTree() (*mechanism.Description, *kinematics.Tree, error) {
	desc, err := mechanisms.Resolve(cfg.Mechanism)
	if err != nil {
		return nil, nil, err
	}
	tree, err := desc.Build()
	if err != nil {
		return nil, nil, err
	}
	if err := tree.SetRootTransform(cfg.Root.Pose().Mul(tree.RootTransform())); err != nil {
		return nil, nil, err
	}
	logger.Debug("mechanism loaded", "name", tree.Name(), "links", tree.Len(), "dof", tree.DOF())
	return desc, tree, nil
}

// checkout extracts the configured chain; the caller releases it.
func checkout(desc *mechanism.Description, tree *kinematics.Tree) (*kinematics.Chain, error) {
	name := cfg.EndLink
	if name == "" {
		ends := desc.EndLinks()
		if len(ends) == 0 {
			return nil, fmt.Errorf("mechanism %s has no end link", tree.Name())
		}
		name = ends[0]
	}
	return tree.ChainFromEndLinkName(name)
}
