package montecarlo

import (
	"math"
	"slices"
)

// Outcome is what happens to a band at the end of the contest.
type Outcome int

const (
	Promoted Outcome = iota
	Stay
	Relegated
)

func (o Outcome) String() string {
	switch o {
	case Promoted:
		return "promoted"
	case Stay:
		return "stay"
	case Relegated:
		return "relegated"
	}
	return "unknown"
}

// Combine adds each band's drawn position to its prior score. It returns a
// new slice and leaves its inputs alone.
func Combine(prior []float64, positions []int) []float64 {
	finals := make([]float64, len(prior))
	for i := range prior {
		finals[i] = prior[i] + float64(positions[i])
	}
	return finals
}

// Cutoffs are the final-score thresholds of one trial.
type Cutoffs struct {
	Promotion  float64
	Relegation float64
}

// NewCutoffs finds the promotion and relegation thresholds of a trial. The
// promotion cutoff is the score of the band ranked promoted+1; the
// relegation cutoff is the score of the band ranked n-relegated+1, or +Inf
// when nobody goes down.
func NewCutoffs(finals []float64, promoted, relegated int) Cutoffs {
	sorted := slices.Clone(finals)
	slices.Sort(sorted)
	c := Cutoffs{
		Promotion:  sorted[promoted],
		Relegation: math.Inf(1),
	}
	if relegated > 0 {
		c.Relegation = sorted[len(sorted)-relegated]
	}
	return c
}

// Classify places a final score against the cutoffs. A band level with the
// promotion cutoff is not promoted and a band level with the relegation
// cutoff is relegated, so ties can promote fewer or relegate more bands than
// there are places.
func (c Cutoffs) Classify(score float64) Outcome {
	switch {
	case score < c.Promotion:
		return Promoted
	case score >= c.Relegation:
		return Relegated
	}
	return Stay
}

// Standing is the place of band target in the final table: one more than the
// number of bands with a strictly lower total.
func Standing(finals []float64, target int) int {
	s := 1
	for _, f := range finals {
		if f < finals[target] {
			s++
		}
	}
	return s
}
