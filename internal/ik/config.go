package ik

import "fmt"

// Config holds the solver tuning. Every float must be strictly positive.
type Config struct {
	// PositionTolerance is the accepted translation error, in the units of
	// the mechanism (usually metres).
	PositionTolerance float64 `yaml:"position_tolerance" json:"position_tolerance"`

	// OrientationTolerance is the accepted rotation error in radians.
	OrientationTolerance float64 `yaml:"orientation_tolerance" json:"orientation_tolerance"`

	// StepThreshold stops the solve when a joint step is shorter than this.
	StepThreshold float64 `yaml:"step_threshold" json:"step_threshold"`

	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	Damping       float64 `yaml:"damping" json:"damping"`
	StepGain      float64 `yaml:"step_gain" json:"step_gain"`

	// MaxStep caps the largest single-joint change per iteration.
	MaxStep float64 `yaml:"max_step" json:"max_step"`

	JacobianEpsilon float64 `yaml:"jacobian_epsilon" json:"jacobian_epsilon"`
	RecordHistory   bool    `yaml:"record_history" json:"record_history"`
}

func DefaultConfig() Config {
	return Config{
		PositionTolerance:    1e-5,
		OrientationTolerance: 1e-5,
		StepThreshold:        1e-10,
		MaxIterations:        100,
		Damping:              0.01,
		StepGain:             0.7,
		MaxStep:              0.5,
		JacobianEpsilon:      1e-6,
	}
}

func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"position_tolerance", c.PositionTolerance},
		{"orientation_tolerance", c.OrientationTolerance},
		{"step_threshold", c.StepThreshold},
		{"damping", c.Damping},
		{"step_gain", c.StepGain},
		{"max_step", c.MaxStep},
		{"jacobian_epsilon", c.JacobianEpsilon},
	}
	for _, p := range positive {
		// !(v > 0) also rejects NaN.
		if !(p.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.v)
		}
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	return nil
}
