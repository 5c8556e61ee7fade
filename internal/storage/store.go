package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/kinetree/internal/geom"
	"github.com/san-kum/kinetree/internal/ik"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Target is a pose in the form people type on the command line.
type Target struct {
	Translation [3]float64 `json:"translation"`
	RPY         [3]float64 `json:"rpy"`
}

func TargetFromPose(p geom.Pose) Target {
	r, pi, y := p.RPY()
	return Target{
		Translation: [3]float64{p.Translation.X, p.Translation.Y, p.Translation.Z},
		RPY:         [3]float64{r, pi, y},
	}
}

func (t Target) Pose() geom.Pose {
	return geom.Translation(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul(geom.RPY(t.RPY[0], t.RPY[1], t.RPY[2]))
}

type RunMetadata struct {
	ID               string    `json:"id"`
	Mechanism        string    `json:"mechanism"`
	EndLink          string    `json:"end_link"`
	Timestamp        time.Time `json:"timestamp"`
	Method           ik.Method `json:"method"`
	Converged        bool      `json:"converged"`
	Iterations       int       `json:"iterations"`
	PositionError    float64   `json:"position_error"`
	OrientationError float64   `json:"orientation_error"`
	Error            string    `json:"error,omitempty"`
	Target           Target    `json:"target"`
	JointNames       []string  `json:"joint_names"`
	InitialAngles    []float64 `json:"initial_angles"`
	FinalAngles      []float64 `json:"final_angles"`
	Solver           ik.Config `json:"solver"`
}

// Run is everything recorded about one solve.
type Run struct {
	Mechanism     string
	EndLink       string
	JointNames    []string
	Target        geom.Pose
	InitialAngles []float64
	Solver        ik.Config
	Result        *ik.Result
	Err           error
}

// Save writes the run under a fresh id and returns it. The trajectory is
// only as long as the result's history.
func (s *Store) Save(run Run) (string, error) {
	if run.Result == nil {
		return "", fmt.Errorf("storage: run has no result")
	}
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	res := run.Result
	meta := RunMetadata{
		ID:               runID,
		Mechanism:        run.Mechanism,
		EndLink:          run.EndLink,
		Timestamp:        time.Now(),
		Method:           res.Method,
		Converged:        res.Converged,
		Iterations:       res.Iterations,
		PositionError:    res.PositionError,
		OrientationError: res.OrientationError,
		Target:           TargetFromPose(run.Target),
		JointNames:       run.JointNames,
		InitialAngles:    run.InitialAngles,
		FinalAngles:      res.Angles,
		Solver:           run.Solver,
	}
	if run.Err != nil {
		meta.Error = run.Err.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), run.JointNames, res.History); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectory(path string, joints []string, steps []ik.Step) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"iteration", "position_error", "orientation_error", "step_norm"}
	header = append(header, joints...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, st := range steps {
		row := []string{
			strconv.Itoa(st.Iteration),
			strconv.FormatFloat(st.PositionError, 'g', -1, 64),
			strconv.FormatFloat(st.OrientationError, 'g', -1, 64),
			strconv.FormatFloat(st.StepNorm, 'g', -1, 64),
		}
		for _, q := range st.Angles {
			row = append(row, strconv.FormatFloat(q, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first. Directories without a
// valid metadata file are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	return &meta, nil
}

// Find resolves a unique id prefix, so callers can type the first few
// characters of a run id.
func (s *Store) Find(prefix string) (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	var match *RunMetadata
	for i := range runs {
		if !strings.HasPrefix(runs[i].ID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("storage: run prefix %q is ambiguous", prefix)
		}
		match = &runs[i]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}

// LoadTrajectory reads the per-iteration records back.
func (s *Store) LoadTrajectory(runID string) ([]ik.Step, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []ik.Step{}, nil
	}

	steps := make([]ik.Step, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) < 4 {
			return nil, fmt.Errorf("storage: %s line %d: want at least 4 fields, got %d", trajectoryFile, line+2, len(record))
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", trajectoryFile, line+2, err)
			}
			vals[j] = v
		}
		steps = append(steps, ik.Step{
			Iteration:        int(vals[0]),
			PositionError:    vals[1],
			OrientationError: vals[2],
			StepNorm:         vals[3],
			Angles:           vals[4:],
		})
	}
	return steps, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return os.RemoveAll(dir)
}
