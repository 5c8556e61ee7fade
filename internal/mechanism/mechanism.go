package mechanism

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinetree/internal/idtree"
	"github.com/san-kum/kinetree/internal/kinematics"
)

var ErrInvalid = errors.New("mechanism: invalid description")

type Description struct {
	Name  string     `yaml:"name"`
	Links []LinkSpec `yaml:"links"`
}

type LinkSpec struct {
	Name        string     `yaml:"name"`
	Parent      string     `yaml:"parent,omitempty"`
	Translation [3]float64 `yaml:"translation,flow,omitempty"`
	RPY         [3]float64 `yaml:"rpy,flow,omitempty"`
	Joint       *JointSpec `yaml:"joint,omitempty"`
}

type JointSpec struct {
	Name   string            `yaml:"name,omitempty"`
	Type   string            `yaml:"type"`
	Axis   [3]float64        `yaml:"axis,flow"`
	Limits *kinematics.Range `yaml:"limits,flow,omitempty"`
}

func Parse(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("mechanism: parse: %w", err)
	}
	return &d, nil
}

func LoadFile(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mechanism: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *Description) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

func (d *Description) SaveFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LinkConfig converts one entry into the kinematics input.
func (s LinkSpec) LinkConfig() (kinematics.LinkConfig, error) {
	cfg := kinematics.LinkConfig{
		Name:        s.Name,
		Translation: r3.Vec{X: s.Translation[0], Y: s.Translation[1], Z: s.Translation[2]},
		RPY:         s.RPY,
	}
	if s.Joint == nil {
		return cfg, nil
	}
	kind, err := kinematics.ParseJointKind(s.Joint.Type)
	if err != nil {
		return cfg, err
	}
	cfg.Joint = kinematics.JointConfig{
		Name:   s.Joint.Name,
		Kind:   kind,
		Axis:   r3.Vec{X: s.Joint.Axis[0], Y: s.Joint.Axis[1], Z: s.Joint.Axis[2]},
		Limits: s.Joint.Limits,
	}
	return cfg, nil
}

// Build validates the description and returns the tree it describes. Links
// may be listed in any order; node ids follow the listing order.
func (d *Description) Build() (*kinematics.Tree, error) {
	if len(d.Links) == 0 {
		return nil, fmt.Errorf("%w: %q has no links", ErrInvalid, d.Name)
	}

	arena := idtree.New[kinematics.Link]()
	index := make(map[string]idtree.NodeID, len(d.Links))
	joints := make(map[string]bool)
	root := ""
	for _, spec := range d.Links {
		cfg, err := spec.LinkConfig()
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("mechanism %q: link %q: %w", d.Name, spec.Name, err)
		}
		if _, dup := index[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate link %q", ErrInvalid, spec.Name)
		}
		link, err := kinematics.NewLink(cfg)
		if err != nil {
			return nil, err
		}
		if link.HasJointAngle() {
			jn := link.Joint().Name()
			if joints[jn] {
				return nil, fmt.Errorf("%w: duplicate joint %q", ErrInvalid, jn)
			}
			joints[jn] = true
		}
		if spec.Parent == "" {
			if root != "" {
				return nil, fmt.Errorf("%w: both %q and %q have no parent", ErrInvalid, root, spec.Name)
			}
			root = spec.Name
		}
		index[spec.Name] = arena.CreateNode(link)
	}
	if root == "" {
		return nil, fmt.Errorf("%w: no root link", ErrInvalid)
	}

	parents := make(map[string]string, len(d.Links))
	for _, s := range d.Links {
		parents[s.Name] = s.Parent
	}
	for _, spec := range d.Links {
		if spec.Parent == "" {
			continue
		}
		parent, ok := index[spec.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: link %q has unknown parent %q", ErrInvalid, spec.Name, spec.Parent)
		}
		if err := checkReachesRoot(parents, spec.Name); err != nil {
			return nil, err
		}
		arena.SetParentChild(parent, index[spec.Name])
	}

	name := d.Name
	if name == "" {
		name = root
	}
	return kinematics.NewTree(name, arena), nil
}

// checkReachesRoot follows parent names from link and fails on a cycle.
func checkReachesRoot(parents map[string]string, link string) error {
	cur := link
	for range len(parents) {
		cur = parents[cur]
		if cur == "" {
			return nil
		}
	}
	return fmt.Errorf("%w: link %q is part of a parent cycle", ErrInvalid, link)
}

// EndLinks returns the names of links that are no other link's parent, in
// listing order.
func (d *Description) EndLinks() []string {
	isParent := make(map[string]bool)
	for _, s := range d.Links {
		isParent[s.Parent] = true
	}
	var out []string
	for _, s := range d.Links {
		if !isParent[s.Name] {
			out = append(out, s.Name)
		}
	}
	return out
}
