package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/idtree"
	"github.com/san-kum/kinetree/internal/kinematics"
)

// Camera is an orthographic view looking at the origin. Yaw turns about
// world z, pitch tilts about the view's horizontal axis. With both at zero
// the screen shows the x-z plane with z up.
type Camera struct {
	Yaw, Pitch float64
	// Scale is dots per world unit; zero fits the scene to the canvas.
	Scale float64
}

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dpitch))
}

func (c *Camera) view() geom.Pose {
	return geom.AxisAngle(geom.UnitX, c.Pitch).Mul(geom.AxisAngle(geom.UnitZ, -c.Yaw))
}

// Segment is a line between two world points, typically parent to child
// link origin.
type Segment struct {
	From, To r3.Vec
}

// TreeSegments runs forward kinematics on tree and returns one segment per
// non-root link, from the parent origin to the link origin.
func TreeSegments(tree *kinematics.Tree) ([]Segment, error) {
	poses, err := tree.CalcLinkTransforms()
	if err != nil {
		return nil, err
	}
	var out []Segment
	for i, p := range tree.Parents() {
		if p == idtree.None {
			continue
		}
		out = append(out, Segment{From: poses[p].Translation, To: poses[i].Translation})
	}
	return out, nil
}

// ChainSegments connects the chain's base and every link origin in order.
func ChainSegments(c *kinematics.Chain) []Segment {
	prev := c.BaseTransform().Translation
	var out []Segment
	for _, p := range c.LinkTransforms() {
		out = append(out, Segment{From: prev, To: p.Translation})
		prev = p.Translation
	}
	return out
}

// Render draws segments onto the canvas, centred on their bounding box.
func (c *Camera) Render(cv *Canvas, segs []Segment) {
	if len(segs) == 0 {
		return
	}
	view := c.view()
	type pt struct{ x, y float64 }
	proj := make([][2]pt, len(segs))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, s := range segs {
		for j, v := range []r3.Vec{s.From, s.To} {
			r := view.Rotate(v)
			p := pt{r.X, r.Z}
			proj[i][j] = p
			minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
			minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
		}
	}

	w, h := cv.Dots()
	scale := c.Scale
	if scale == 0 {
		span := math.Max(maxX-minX, maxY-minY)
		if span == 0 {
			span = 1
		}
		scale = 0.9 * float64(min(w, h)) / span
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	toDot := func(p pt) (int, int) {
		return int(math.Round(float64(w)/2 + (p.x-cx)*scale)),
			int(math.Round(float64(h)/2 - (p.y-cy)*scale))
	}
	for _, s := range proj {
		x0, y0 := toDot(s[0])
		x1, y1 := toDot(s[1])
		cv.Line(x0, y0, x1, y1)
	}
}
