package stats

import (
	"errors"

	"gonum.org/v1/gonum/stat/distuv"
)

var errTooFewCategories = errors.New("need at least two categories with observations")

// ChiSquareUniform runs Pearson's goodness-of-fit test of observed counts
// against a uniform distribution over the categories. It returns the test
// statistic and the p-value (probability of a statistic at least this large
// if the counts really were uniform).
func ChiSquareUniform(observed []int) (float64, float64, error) {
	total := 0
	for _, o := range observed {
		total += o
	}
	if len(observed) < 2 || total == 0 {
		return 0, 0, errTooFewCategories
	}
	expected := float64(total) / float64(len(observed))
	chi2 := 0.0
	for _, o := range observed {
		d := float64(o) - expected
		chi2 += d * d / expected
	}
	dist := distuv.ChiSquared{K: float64(len(observed) - 1)}
	return chi2, dist.Survival(chi2), nil
}
