package mechanism

import (
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/san-kum/kinetree/internal/kinematics"
)

// Registry maps preset names to mechanism descriptions.
type Registry struct {
	presets map[string]func() *Description
}

// NewRegistry returns a registry holding the built-in mechanisms.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]func() *Description)}
	r.presets["arm6"] = func() *Description { return Arm(6) }
	r.presets["arm7"] = func() *Description { return Arm(7) }
	r.presets["torso"] = Torso
	return r
}

// Register adds or replaces a preset.
func (r *Registry) Register(name string, fn func() *Description) {
	r.presets[name] = fn
}

func (r *Registry) Get(name string) (*Description, error) {
	fn, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown mechanism: %s", name)
	}
	return fn(), nil
}

// List returns the preset names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve treats ref as a preset name first and as a YAML file path
// otherwise.
func (r *Registry) Resolve(ref string) (*Description, error) {
	if _, ok := r.presets[ref]; ok {
		return r.Get(ref)
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("unknown mechanism %q: not a preset and not a readable file", ref)
	}
	return LoadFile(ref)
}

type armSegment struct {
	link, joint string
	axis        [3]float64
	translation [3]float64
}

var armSegments = []armSegment{
	{"shoulder_link1", "shoulder_pitch", [3]float64{0, 1, 0}, [3]float64{0, 0, 0}},
	{"shoulder_link2", "shoulder_roll", [3]float64{1, 0, 0}, [3]float64{0, 0.1, 0}},
	{"shoulder_link3", "shoulder_yaw", [3]float64{0, 0, 1}, [3]float64{0, 0, -0.30}},
	{"elbow_link1", "elbow_pitch", [3]float64{0, 1, 0}, [3]float64{0, 0, -0.15}},
	{"wrist_link1", "wrist_yaw", [3]float64{0, 0, 1}, [3]float64{0, 0, -0.15}},
	{"wrist_link2", "wrist_pitch", [3]float64{0, 1, 0}, [3]float64{0, 0, -0.15}},
	{"wrist_link3", "wrist_roll", [3]float64{1, 0, 0}, [3]float64{0, 0, -0.10}},
}

// Arm is a serial arm with dof unlimited revolute joints (at most 7),
// hanging down the -z axis from the shoulder.
func Arm(dof int) *Description {
	dof = min(max(dof, 1), len(armSegments))
	d := &Description{Name: fmt.Sprintf("arm%d", dof)}
	parent := ""
	for _, s := range armSegments[:dof] {
		d.Links = append(d.Links, LinkSpec{
			Name:        s.link,
			Parent:      parent,
			Translation: s.translation,
			Joint:       &JointSpec{Name: s.joint, Type: "revolute", Axis: s.axis},
		})
		parent = s.link
	}
	return d
}

// Torso is a fixed torso carrying two mirrored six-joint arms with limits.
// Each arm ends in a fixed tool frame named l_wrist2 / r_wrist2.
func Torso() *Description {
	d := &Description{
		Name:  "torso",
		Links: []LinkSpec{{Name: "root", Translation: [3]float64{0, 0, 0.8}}},
	}
	limit := func(v float64) *JointSpec {
		return &JointSpec{Type: "revolute", Limits: &kinematics.Range{Min: -v, Max: v}}
	}
	for _, side := range []struct {
		prefix string
		sign   float64
	}{{"l", 1}, {"r", -1}} {
		p := side.prefix + "_"
		chain := []struct {
			name        string
			axis        [3]float64
			translation [3]float64
			joint       *JointSpec
		}{
			{"shoulder_yaw", [3]float64{0, 0, 1}, [3]float64{0, 0.2 * side.sign, 0.4}, limit(math.Pi / 2)},
			{"shoulder_pitch", [3]float64{0, 1, 0}, [3]float64{0, 0.05 * side.sign, 0}, limit(math.Pi)},
			{"shoulder_roll", [3]float64{1, 0, 0}, [3]float64{0, 0, -0.05}, limit(math.Pi / 2)},
			{"elbow_pitch", [3]float64{0, 1, 0}, [3]float64{0, 0, -0.25}, limit(2.5)},
			{"wrist_yaw", [3]float64{0, 0, 1}, [3]float64{0, 0, -0.2}, limit(math.Pi)},
			{"wrist_pitch", [3]float64{0, 1, 0}, [3]float64{0, 0, -0.05}, limit(math.Pi / 2)},
		}
		parent := "root"
		for _, c := range chain {
			j := c.joint
			j.Name = p + c.name
			j.Axis = c.axis
			d.Links = append(d.Links, LinkSpec{
				Name:        p + c.name + "_link",
				Parent:      parent,
				Translation: c.translation,
				Joint:       j,
			})
			parent = p + c.name + "_link"
		}
		d.Links = append(d.Links, LinkSpec{
			Name:        p + "wrist2",
			Parent:      parent,
			Translation: [3]float64{0, 0, -0.08},
		})
	}
	return d
}
