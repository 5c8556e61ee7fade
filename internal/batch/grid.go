package batch

import (
	"github.com/san-kum/kinetree/internal/geom"
)

// Job is one target for the solver. Offset is the world translation that
// moved the grid center onto Target.
type Job struct {
	Index  int
	Offset [3]float64
	Target geom.Pose
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Grid builds one job per point of the cartesian product xs × ys × zs,
// each a world translation of center that keeps its orientation. A nil or
// empty axis contributes only the zero offset. z varies fastest.
func Grid(center geom.Pose, xs, ys, zs []float64) []Job {
	axes := [3][]float64{xs, ys, zs}
	for i, a := range axes {
		if len(a) == 0 {
			axes[i] = []float64{0}
		}
	}

	jobs := make([]Job, 0, len(axes[0])*len(axes[1])*len(axes[2]))
	for _, x := range axes[0] {
		for _, y := range axes[1] {
			for _, z := range axes[2] {
				jobs = append(jobs, Job{
					Index:  len(jobs),
					Offset: [3]float64{x, y, z},
					Target: geom.Translation(x, y, z).Mul(center),
				})
			}
		}
	}
	return jobs
}
