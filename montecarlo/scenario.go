package montecarlo

import "github.com/samber/lo"

// Scenario draws finishing positions for every band in a section.
//
// Bands that compete get a random permutation of 1..n, n being the number of
// competing bands. Every absent band is placed n+1: the absent bands all
// share that one placing rather than being spread over n+1, n+2, ...
type Scenario struct {
	absent   []bool
	nPresent int
}

// NewScenario creates a scenario for a section with the given absence mask.
func NewScenario(absent []bool) *Scenario {
	a := make([]bool, len(absent))
	copy(a, absent)
	return &Scenario{
		absent:   a,
		nPresent: len(a) - lo.Count(a, true),
	}
}

func (sc *Scenario) NumBands() int {
	return len(sc.absent)
}

// NumPresent is the number of bands that compete.
func (sc *Scenario) NumPresent() int {
	return sc.nPresent
}

// AbsentPosition is the placing given to every absent band.
func (sc *Scenario) AbsentPosition() int {
	return sc.nPresent + 1
}

func (sc *Scenario) IsAbsent(i int) bool {
	return sc.absent[i]
}

// Draw returns a fresh position for every band, indexed like the section.
// It is safe to call concurrently as long as each caller has its own src.
func (sc *Scenario) Draw(src Source) []int {
	positions := make([]int, len(sc.absent))
	var perm []int
	if sc.nPresent > 0 {
		perm = src.Perm(sc.nPresent)
	}
	k := 0
	for i, a := range sc.absent {
		if a {
			positions[i] = sc.AbsentPosition()
			continue
		}
		positions[i] = perm[k] + 1
		k++
	}
	return positions
}
