package montecarlo

import (
	"math"
	"slices"
	"testing"

	"github.com/matryer/is"
)

// fixedSource deals out canned permutations in turn.
type fixedSource struct {
	perms [][]int
	i     int
}

func (f *fixedSource) Perm(n int) []int {
	p := f.perms[f.i%len(f.perms)]
	f.i++
	return slices.Clone(p[:n])
}

func TestCutoffWorkedExample(t *testing.T) {
	is := is.New(t)
	prior := []float64{0, 0, 0}
	sc := NewScenario([]bool{false, false, false})
	positions := sc.Draw(&fixedSource{perms: [][]int{{0, 1, 2}}})
	is.Equal(positions, []int{1, 2, 3})

	finals := Combine(prior, positions)
	is.Equal(finals, []float64{1, 2, 3})

	cut := NewCutoffs(finals, 1, 1)
	is.Equal(cut.Promotion, 2.0)
	is.Equal(cut.Relegation, 3.0)

	is.Equal(cut.Classify(finals[0]), Promoted)
	is.Equal(cut.Classify(finals[1]), Stay)
	is.Equal(cut.Classify(finals[2]), Relegated)
}

func TestCombineDoesNotTouchInputs(t *testing.T) {
	is := is.New(t)
	prior := []float64{7, 3.5, 0}
	positions := []int{2, 1, 3}
	finals := Combine(prior, positions)
	is.Equal(finals, []float64{9, 4.5, 3})
	is.Equal(prior, []float64{7, 3.5, 0})

	// Sorting for the cutoffs must not reorder the trial's totals.
	NewCutoffs(finals, 1, 1)
	is.Equal(finals, []float64{9, 4.5, 3})
}

func TestTieAtPromotionCutoff(t *testing.T) {
	is := is.New(t)
	finals := []float64{2, 2, 3, 4}
	cut := NewCutoffs(finals, 1, 1)
	// Both bands on 2 sit on the cutoff, so nobody goes up.
	is.Equal(cut.Classify(finals[0]), Stay)
	is.Equal(cut.Classify(finals[1]), Stay)
	is.Equal(cut.Classify(finals[3]), Relegated)
}

func TestTieAtRelegationCutoff(t *testing.T) {
	is := is.New(t)
	finals := []float64{1, 2, 3, 3}
	cut := NewCutoffs(finals, 1, 1)
	// Both bands on 3 are level with the cutoff, so both go down.
	is.Equal(cut.Classify(finals[0]), Promoted)
	is.Equal(cut.Classify(finals[1]), Stay)
	is.Equal(cut.Classify(finals[2]), Relegated)
	is.Equal(cut.Classify(finals[3]), Relegated)
}

func TestNoPromotionOrRelegation(t *testing.T) {
	is := is.New(t)
	finals := []float64{5, 1, 3}
	cut := NewCutoffs(finals, 0, 0)
	is.True(math.IsInf(cut.Relegation, 1))
	for _, f := range finals {
		is.Equal(cut.Classify(f), Stay)
	}
}

func TestStanding(t *testing.T) {
	is := is.New(t)
	finals := []float64{4, 2, 4, 1}
	is.Equal(Standing(finals, 3), 1)
	is.Equal(Standing(finals, 1), 2)
	// Level bands share a standing.
	is.Equal(Standing(finals, 0), 3)
	is.Equal(Standing(finals, 2), 3)
}

func TestOutcomeString(t *testing.T) {
	is := is.New(t)
	is.Equal(Promoted.String(), "promoted")
	is.Equal(Stay.String(), "stay")
	is.Equal(Relegated.String(), "relegated")
	is.Equal(Outcome(9).String(), "unknown")
}
