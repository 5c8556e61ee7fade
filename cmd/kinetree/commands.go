package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinetree/internal/batch"
	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/ik"
	"github.com/san-kum/kinetree/internal/kinematics"
	"github.com/san-kum/kinetree/internal/storage"
	"github.com/san-kum/kinetree/internal/viz"
)

// parseFloats accepts comma and/or space separated numbers.
func parseFloats(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseTarget reads x,y,z or x,y,z,roll,pitch,yaw. Without an orientation
// the rotation of current is kept.
func parseTarget(s string, current geom.Pose) (geom.Pose, error) {
	v, err := parseFloats(s)
	if err != nil {
		return geom.Pose{}, err
	}
	switch len(v) {
	case 3:
		p := current
		p.Translation.X, p.Translation.Y, p.Translation.Z = v[0], v[1], v[2]
		return p, nil
	case 6:
		return geom.Translation(v[0], v[1], v[2]).Mul(geom.RPY(v[3], v[4], v[5])), nil
	}
	return geom.Pose{}, fmt.Errorf("target needs 3 or 6 values, got %d", len(v))
}

func applyAngles(set func([]float64) error) error {
	if anglesFlag == "" {
		return nil
	}
	q, err := parseFloats(anglesFlag)
	if err != nil {
		return err
	}
	return set(q)
}

func fmtLimits(r *kinematics.Range) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("[%.3f, %.3f]", r.Min, r.Max)
}

func showDOF(cmd *cobra.Command, args []string) error {
	_, tree, err := buildTree()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d dof, %d links\n\n", tree.Name(), tree.DOF(), tree.Len())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tJOINT\tLINK\tTYPE\tAXIS\tLIMITS")
	i := 0
	for l := range tree.Joints() {
		j := l.Joint()
		a := j.Axis()
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t[%.3g %.3g %.3g]\t%s\n",
			i, j.Name(), l.Name(), j.Kind(), a.X, a.Y, a.Z, fmtLimits(j.Limits()))
		i++
	}
	return w.Flush()
}

func runFK(cmd *cobra.Command, args []string) error {
	_, tree, err := buildTree()
	if err != nil {
		return err
	}
	if err := applyAngles(tree.SetJointAngles); err != nil {
		return err
	}

	poses, err := tree.CalcLinkTransforms()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINK\tX\tY\tZ\tROLL\tPITCH\tYAW")
	for i, name := range tree.LinkNames() {
		p := poses[i]
		r, pi, y := p.RPY()
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			name, p.Translation.X, p.Translation.Y, p.Translation.Z, r, pi, y)
	}
	return w.Flush()
}

func showChain(cmd *cobra.Command, args []string) error {
	desc, tree, err := buildTree()
	if err != nil {
		return err
	}
	chain, err := checkout(desc, tree)
	if err != nil {
		return err
	}
	defer chain.Release()
	if err := applyAngles(chain.SetJointAngles); err != nil {
		return err
	}

	fmt.Printf("chain %s: %d dof\n", chain.Name(), chain.DOF())
	fmt.Printf("joints: %s\n\n", strings.Join(chain.JointNames(), ", "))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINK\tPOSE")
	names := chain.LinkNames()
	for i, p := range chain.LinkTransforms() {
		fmt.Fprintf(w, "%s\t%s\n", names[i], viz.FormatPose(p))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nend: %s\n", viz.FormatPose(chain.EndTransform()))
	return nil
}

func runIK(cmd *cobra.Command, args []string) error {
	if (targetFlag == "") == (offsetFlag == "") {
		return fmt.Errorf("exactly one of --target and --offset is required")
	}
	desc, tree, err := buildTree()
	if err != nil {
		return err
	}
	chain, err := checkout(desc, tree)
	if err != nil {
		return err
	}
	defer chain.Release()
	if err := applyAngles(chain.SetJointAngles); err != nil {
		return err
	}

	current := chain.EndTransform()
	var target geom.Pose
	if targetFlag != "" {
		target, err = parseTarget(targetFlag, current)
	} else {
		var d []float64
		d, err = parseFloats(offsetFlag)
		if err == nil && len(d) != 3 {
			err = fmt.Errorf("offset needs 3 values, got %d", len(d))
		}
		if err == nil {
			target = geom.Translation(d[0], d[1], d[2]).Mul(current)
		}
	}
	if err != nil {
		return err
	}

	solverCfg := cfg.Solver
	solverCfg.RecordHistory = true
	solver, err := ik.New(solverCfg, ik.WithLogger(logger))
	if err != nil {
		return err
	}

	initial := chain.JointAngles()
	logger.Info("solving", "mechanism", tree.Name(), "end_link", chain.Name(), "target", viz.FormatPose(target))
	start := time.Now()
	res, solveErr := solver.Solve(chain, target)
	elapsed := time.Since(start)
	if res == nil {
		return solveErr
	}
	if solveErr != nil && !ik.IsNotConverged(solveErr) {
		return solveErr
	}

	if !noSave {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.Run{
			Mechanism:     tree.Name(),
			EndLink:       chain.Name(),
			JointNames:    chain.JointNames(),
			Target:        target,
			InitialAngles: initial,
			Solver:        solverCfg,
			Result:        res,
			Err:           solveErr,
		})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	status := "converged"
	if !res.Converged {
		status = "not converged"
	}
	fmt.Printf("%s in %d iterations (%v, %s jacobian)\n", status, res.Iterations, elapsed, res.Method)
	fmt.Printf("position error: %.3g  orientation error: %.3g\n\n", res.PositionError, res.OrientationError)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOINT\tSTART\tSOLUTION")
	for i, name := range chain.JointNames() {
		fmt.Fprintf(w, "%s\t%.5f\t%.5f\n", name, initial[i], res.Angles[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if showPlot {
		fmt.Println()
		fmt.Print(viz.ConvergencePlot(res.History, 70, 12, chain.Name()))
	}
	return solveErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	if gridPoints < 1 {
		return fmt.Errorf("--points must be positive")
	}
	var startAngles []float64
	if anglesFlag != "" {
		q, err := parseFloats(anglesFlag)
		if err != nil {
			return err
		}
		startAngles = q
	}
	factory := func() (*kinematics.Chain, error) {
		desc, tree, err := buildTree()
		if err != nil {
			return nil, err
		}
		chain, err := checkout(desc, tree)
		if err != nil {
			return nil, err
		}
		if startAngles != nil {
			if err := chain.SetJointAngles(startAngles); err != nil {
				chain.Release()
				return nil, err
			}
		}
		return chain, nil
	}

	first, err := factory()
	if err != nil {
		return err
	}
	center := first.EndTransform()
	name := first.Name()
	first.Release()

	axis := batch.Linspace(-halfWidth, halfWidth, gridPoints)
	jobs := batch.Grid(center, axis, axis, axis)
	logger.Info("sweeping", "end_link", name, "jobs", len(jobs), "center", viz.FormatPose(center))

	runner := batch.NewRunner(factory, cfg.Solver, batch.WithWorkers(workers), batch.WithLogger(logger))
	began := time.Now()
	outcomes, err := runner.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDX\tDY\tDZ\tCONVERGED\tITERS\tPOS ERR")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%d\t%+.3f\t%+.3f\t%+.3f\t%t\t%d\t%.2g\n",
			o.Index, o.Offset[0], o.Offset[1], o.Offset[2],
			o.Result.Converged, o.Result.Iterations, o.Result.PositionError)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%s in %v\n", batch.Summarize(outcomes), elapsed)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMECHANISM\tEND LINK\tCONVERGED\tITERS\tPOS ERR\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%.2g\t%s\n",
			r.ID[:8], r.Mechanism, r.EndLink, r.Converged, r.Iterations, r.PositionError,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(cfg.DataDir).Find(args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Find(args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(meta.ID); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", meta.ID)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Find(args[0])
	if err != nil {
		return err
	}
	if err := st.ExportJSON(meta.ID, args[1]); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", meta.ID, args[1])
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Find(args[0])
	if err != nil {
		return err
	}
	steps, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mechanism: %s, end link: %s\n\n", meta.Mechanism, meta.EndLink)
	fmt.Print(viz.ConvergencePlot(steps, 70, 12, meta.EndLink))

	if !plotJoints {
		return nil
	}
	for i, name := range meta.JointNames {
		graph, err := viz.JointPlot(steps, i, name, 70, 6)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(graph)
	}
	return nil
}

func runJog(cmd *cobra.Command, args []string) error {
	_, tree, err := buildTree()
	if err != nil {
		return err
	}
	if _, err := viz.RunJog(tree, cfg.EndLink); err != nil {
		return err
	}
	names := tree.JointNames()
	for i, q := range tree.JointAngles() {
		fmt.Printf("%s=%.4f\n", names[i], q)
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	if iterations <= 0 {
		return fmt.Errorf("-n must be positive")
	}
	desc, tree, err := buildTree()
	if err != nil {
		return err
	}

	start := time.Now()
	for range iterations {
		if _, err := tree.CalcLinkTransforms(); err != nil {
			return err
		}
	}
	fk := time.Since(start)

	chain, err := checkout(desc, tree)
	if err != nil {
		return err
	}
	defer chain.Release()

	solver, err := ik.New(cfg.Solver, ik.WithLogger(logger))
	if err != nil {
		return err
	}
	home := chain.JointAngles()
	target := geom.Translation(0.02, 0, 0).Mul(chain.EndTransform())

	var failed, total int
	start = time.Now()
	for range iterations {
		res, err := solver.Solve(chain, target)
		if err != nil {
			if !errors.Is(err, ik.ErrNotConverged) {
				return err
			}
			failed++
		}
		total += res.Iterations
		if err := chain.SetJointAngles(home); err != nil {
			return err
		}
	}
	solve := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tRUNS\tTOTAL\tPER OP")
	fmt.Fprintf(w, "tree fk (%d links)\t%d\t%v\t%v\n", tree.Len(), iterations, fk, fk/time.Duration(iterations))
	fmt.Fprintf(w, "ik 2cm step (%d dof)\t%d\t%v\t%v\n", chain.DOF(), iterations, solve, solve/time.Duration(iterations))
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nmean ik iterations: %.1f, failures: %d\n", float64(total)/float64(iterations), failed)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if dumpPreset != "" {
		desc, err := mechanisms.Get(dumpPreset)
		if err != nil {
			return err
		}
		data, err := desc.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	fmt.Println("mechanisms:")
	for _, name := range mechanisms.List() {
		desc, _ := mechanisms.Get(name)
		fmt.Printf("  %-8s %d links, ends: %s\n", name, len(desc.Links), strings.Join(desc.EndLinks(), ", "))
	}
	fmt.Println("\nsolver presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Printf("  %-8s tol %.0e, %d iterations, gain %.2g\n", name, p.PositionTolerance, p.MaxIterations, p.StepGain)
	}
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err == nil {
		return fmt.Errorf("%s already exists", args[0])
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
