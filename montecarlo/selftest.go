package montecarlo

import (
	"github.com/domino14/brassgrade/section"
)

// PositionCounts draws trials scenarios from src and counts how often each
// band drew each position. counts[i][p-1] is the number of trials band i
// was placed p. It is used to check that a source deals positions fairly.
func PositionCounts(sec *section.Section, cfg Config, src Source, trials int) ([][]int, error) {
	absent, err := cfg.Validate(sec)
	if err != nil {
		return nil, err
	}
	sc := NewScenario(absent)
	counts := make([][]int, sc.NumBands())
	for i := range counts {
		counts[i] = make([]int, sc.AbsentPosition())
	}
	for range trials {
		for i, p := range sc.Draw(src) {
			counts[i][p-1]++
		}
	}
	return counts, nil
}
