// Package section holds the bands of a grading section and loads them from
// the results table kept by the section secretary.
package section

import (
	"github.com/samber/lo"
)

// Band is one competitor in a section. PriorScore is the sum of its results
// over the two preceding contests; a lower score is better.
type Band struct {
	Name        string  `json:"name" yaml:"name"`
	TwoYearsAgo float64 `json:"two_years_ago" yaml:"two_years_ago"`
	LastYear    float64 `json:"last_year" yaml:"last_year"`
	PriorScore  float64 `json:"prior_score" yaml:"prior_score"`
}

// NewBand builds a band from its two previous results.
func NewBand(name string, twoYearsAgo, lastYear float64) Band {
	return Band{
		Name:        name,
		TwoYearsAgo: twoYearsAgo,
		LastYear:    lastYear,
		PriorScore:  twoYearsAgo + lastYear,
	}
}

// Section is an ordered list of bands. The order is the order of the input
// table and is kept stable; names are not required to be unique.
type Section struct {
	bands []Band
}

func New(bands []Band) *Section {
	b := make([]Band, len(bands))
	copy(b, bands)
	return &Section{bands: b}
}

func (s *Section) NumBands() int {
	return len(s.bands)
}

// Band returns the band at index i.
func (s *Section) Band(i int) Band {
	return s.bands[i]
}

// Bands returns a copy of the bands in input order.
func (s *Section) Bands() []Band {
	b := make([]Band, len(s.bands))
	copy(b, s.bands)
	return b
}

func (s *Section) Names() []string {
	return lo.Map(s.bands, func(b Band, _ int) string { return b.Name })
}

// PriorScores returns the carried-over totals indexed like the bands.
func (s *Section) PriorScores() []float64 {
	return lo.Map(s.bands, func(b Band, _ int) float64 { return b.PriorScore })
}

// Indices returns every index whose band is called name.
func (s *Section) Indices(name string) []int {
	var idxs []int
	for i, b := range s.bands {
		if b.Name == name {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
