package stats

import "math"

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic keeps a running mean and variance (Welford's algorithm).
// Two statistics collected on separate goroutines can be combined with Merge.
type Statistic struct {
	totalIterations int
	last            float64

	mean float64
	m2   float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.totalIterations++
	delta := val - s.mean
	s.mean += delta / float64(s.totalIterations)
	s.m2 += delta * (val - s.mean)
}

// Merge folds o into s (Chan et al. parallel update).
func (s *Statistic) Merge(o *Statistic) {
	if o.totalIterations == 0 {
		return
	}
	if s.totalIterations == 0 {
		*s = *o
		return
	}
	n := float64(s.totalIterations + o.totalIterations)
	delta := o.mean - s.mean
	s.mean += delta * float64(o.totalIterations) / n
	s.m2 += o.m2 + delta*delta*float64(s.totalIterations)*float64(o.totalIterations)/n
	s.totalIterations += o.totalIterations
	s.last = o.last
}

func (s *Statistic) Mean() float64 {
	if s.totalIterations > 0 {
		return s.mean
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.totalIterations-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 {
	return s.last
}

func (s *Statistic) Iterations() int {
	return s.totalIterations
}
