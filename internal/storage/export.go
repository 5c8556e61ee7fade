package storage

import (
	"encoding/json"
	"os"

	"github.com/san-kum/kinetree/internal/ik"
)

// ExportData is a single-file JSON form of a run.
type ExportData struct {
	RunMetadata
	Trajectory []ik.Step `json:"trajectory"`
}

// ExportJSON writes the run's metadata and trajectory to path.
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	steps, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(ExportData{RunMetadata: *meta, Trajectory: steps}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
