package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kinetree/internal/ik"
)

// errorFloor keeps log10 finite for exact hits.
const errorFloor = 1e-16

// ConvergencePlot charts log10 of the position and orientation errors of a
// solve. Position is drawn in cyan, orientation in magenta.
func ConvergencePlot(steps []ik.Step, width, height int, title string) string {
	if len(steps) == 0 {
		return "no iterations recorded\n"
	}
	pos := make([]float64, len(steps))
	ori := make([]float64, len(steps))
	for i, s := range steps {
		pos[i] = math.Log10(math.Max(s.PositionError, errorFloor))
		ori[i] = math.Log10(math.Max(s.OrientationError, errorFloor))
	}
	caption := fmt.Sprintf("%s: log10 error over %d iterations (cyan position, magenta orientation)", title, len(steps)-1)
	return asciigraph.PlotMany([][]float64{pos, ori},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
		asciigraph.Caption(caption),
	) + "\n"
}

// JointPlot charts one joint's value across a solve.
func JointPlot(steps []ik.Step, joint int, name string, width, height int) (string, error) {
	if len(steps) == 0 {
		return "", fmt.Errorf("no iterations recorded")
	}
	vals := make([]float64, len(steps))
	for i, s := range steps {
		if joint < 0 || joint >= len(s.Angles) {
			return "", fmt.Errorf("joint %d out of range [0, %d)", joint, len(s.Angles))
		}
		vals[i] = s.Angles[joint]
	}
	return asciigraph.Plot(vals,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(name),
	) + "\n", nil
}
