package montecarlo

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/domino14/brassgrade/section"
)

// ErrInvalidConfig is returned, wrapped with detail, for any configuration
// that cannot be simulated. Nothing is simmed when it is returned.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds the grading rules of a section for one contest.
type Config struct {
	// Promoted and Relegated are the number of places promoted and relegated.
	Promoted  int `json:"promoted" yaml:"promoted"`
	Relegated int `json:"relegated" yaml:"relegated"`
	// SamplesPerBand scales the number of trials. A band that competes gets
	// SamplesPerBand * number-of-bands trials; an absent band gets
	// SamplesPerBand.
	SamplesPerBand int `json:"samples_per_band" yaml:"samples_per_band"`
	// Absent names bands that do not compete and take the worst placing.
	Absent []string `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// Validate checks the config against a section and returns the absence mask
// indexed like the section's bands.
func (c Config) Validate(sec *section.Section) ([]bool, error) {
	if sec == nil || sec.NumBands() <= 0 {
		return nil, fmt.Errorf("%w: section has no bands", ErrInvalidConfig)
	}
	n := sec.NumBands()
	if c.Promoted < 0 || c.Relegated < 0 {
		return nil, fmt.Errorf("%w: promoted (%d) and relegated (%d) must not be negative",
			ErrInvalidConfig, c.Promoted, c.Relegated)
	}
	if c.Promoted+c.Relegated >= n {
		return nil, fmt.Errorf("%w: %d promoted plus %d relegated must be fewer than %d bands",
			ErrInvalidConfig, c.Promoted, c.Relegated, n)
	}
	if c.SamplesPerBand <= 0 {
		return nil, fmt.Errorf("%w: samples per band must be positive, got %d",
			ErrInvalidConfig, c.SamplesPerBand)
	}
	if c.SamplesPerBand > math.MaxInt/n {
		return nil, fmt.Errorf("%w: %d samples per band over %d bands is too many trials",
			ErrInvalidConfig, c.SamplesPerBand, n)
	}
	for i, p := range sec.PriorScores() {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: band %q has a prior score of %v",
				ErrInvalidConfig, sec.Band(i).Name, p)
		}
	}
	absent := make([]bool, n)
	for _, name := range lo.Uniq(c.Absent) {
		idxs := sec.Indices(name)
		if len(idxs) == 0 {
			return nil, fmt.Errorf("%w: absent band %q is not in the section", ErrInvalidConfig, name)
		}
		for _, i := range idxs {
			absent[i] = true
		}
	}
	return absent, nil
}
