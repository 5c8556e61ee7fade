package batch

import "fmt"

type Summary struct {
	Jobs           int
	Converged      int
	MeanIterations float64
	// WorstPosition is the largest final position error over all jobs.
	WorstPosition float64
	WorstIndex    int
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{Jobs: len(outcomes), WorstIndex: -1}
	if len(outcomes) == 0 {
		return s
	}
	total := 0
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		if o.Result.Converged {
			s.Converged++
		}
		total += o.Result.Iterations
		if s.WorstIndex < 0 || o.Result.PositionError > s.WorstPosition {
			s.WorstPosition = o.Result.PositionError
			s.WorstIndex = o.Index
		}
	}
	s.MeanIterations = float64(total) / float64(len(outcomes))
	return s
}

// Reachability is the converged fraction.
func (s Summary) Reachability() float64 {
	if s.Jobs == 0 {
		return 0
	}
	return float64(s.Converged) / float64(s.Jobs)
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d converged (%.0f%%), mean %.1f iterations, worst position error %.3g (job %d)",
		s.Converged, s.Jobs, 100*s.Reachability(), s.MeanIterations, s.WorstPosition, s.WorstIndex)
}
