package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/ik"
)

const (
	DefaultDataDir   = ".kinetree"
	DefaultMechanism = "arm6"
)

type Config struct {
	DataDir   string `yaml:"data_dir"`
	Mechanism string `yaml:"mechanism"`
	// EndLink selects the chain for ik and chain commands. Empty means the
	// first end link of the mechanism.
	EndLink string          `yaml:"end_link"`
	Root    TransformConfig `yaml:"root_transform"`
	Solver  ik.Config       `yaml:"solver"`
}

type TransformConfig struct {
	Translation [3]float64 `yaml:"translation,flow"`
	RPY         [3]float64 `yaml:"rpy,flow"`
}

func (t TransformConfig) Pose() geom.Pose {
	return geom.Translation(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul(geom.RPY(t.RPY[0], t.RPY[1], t.RPY[2]))
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		Mechanism: DefaultMechanism,
		Solver:    ik.DefaultConfig(),
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Mechanism == "" {
		return fmt.Errorf("mechanism must be set")
	}
	return c.Solver.Validate()
}

// ApplyPreset replaces the solver section with a named preset.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("unknown solver preset: %s", name)
	}
	c.Solver = *p
	return nil
}
