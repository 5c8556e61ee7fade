package config

import (
	"slices"

	"github.com/san-kum/kinetree/internal/ik"
)

var Presets = map[string]ik.Config{
	"default": ik.DefaultConfig(),
	"precise": {
		PositionTolerance: 1e-8, OrientationTolerance: 1e-8, StepThreshold: 1e-14,
		MaxIterations: 500, Damping: 1e-3, StepGain: 0.5, MaxStep: 0.2, JacobianEpsilon: 1e-7,
	},
	"fast": {
		PositionTolerance: 1e-3, OrientationTolerance: 1e-3, StepThreshold: 1e-8,
		MaxIterations: 30, Damping: 0.05, StepGain: 1.0, MaxStep: 1.0, JacobianEpsilon: 1e-5,
	},
}

// GetPreset returns a copy of the named solver preset, or nil.
func GetPreset(name string) *ik.Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
