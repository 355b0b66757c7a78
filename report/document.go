// Package report renders simulation results for people and for programs.
package report

import (
	"math"

	"github.com/samber/lo"

	"github.com/domino14/brassgrade/montecarlo"
	"github.com/domino14/brassgrade/section"
)

// Row is a result row ready for serialization. Percentages are nil when the
// bucket saw no trials.
type Row struct {
	Position     int               `json:"position" yaml:"position"`
	Label        string            `json:"label" yaml:"label"`
	Absent       bool              `json:"absent,omitempty" yaml:"absent,omitempty"`
	Trials       int               `json:"trials" yaml:"trials"`
	Counts       montecarlo.Counts `json:"counts" yaml:"counts"`
	Promoted     *float64          `json:"promoted_pct" yaml:"promoted_pct"`
	Stay         *float64          `json:"stay_pct" yaml:"stay_pct"`
	Relegated    *float64          `json:"relegated_pct" yaml:"relegated_pct"`
	Insufficient bool              `json:"insufficient_samples,omitempty" yaml:"insufficient_samples,omitempty"`
}

type Band struct {
	Name          string   `json:"name" yaml:"name"`
	Absent        bool     `json:"absent,omitempty" yaml:"absent,omitempty"`
	Trials        int      `json:"trials" yaml:"trials"`
	Planned       int      `json:"planned" yaml:"planned"`
	PromotedPct   *float64 `json:"promoted_pct" yaml:"promoted_pct"`
	StandingMean  *float64 `json:"standing_mean" yaml:"standing_mean"`
	StandingStdev *float64 `json:"standing_stdev" yaml:"standing_stdev"`
	Standings     []int    `json:"standings" yaml:"standings,flow"`
	Rows          []Row    `json:"rows" yaml:"rows"`
}

// Document is the machine-readable form of a simulation.
type Document struct {
	Config      montecarlo.Config    `json:"config" yaml:"config"`
	NumPresent  int                  `json:"num_present" yaml:"num_present"`
	Interrupted bool                 `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	Bands       []Band               `json:"bands" yaml:"bands"`
	Skipped     []section.SkippedRow `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func pct(r montecarlo.Row, v float64) *float64 {
	if r.Insufficient {
		return nil
	}
	return &v
}

// bandStat is nil for a band that ran no trials.
func bandStat(b *montecarlo.BandResult, v float64) *float64 {
	if b.Trials == 0 || math.IsNaN(v) {
		return nil
	}
	return &v
}

// NewDocument converts a result, plus any rows the loader skipped.
func NewDocument(res *montecarlo.Result, skipped []section.SkippedRow) *Document {
	return &Document{
		Config:      res.Config,
		NumPresent:  res.NumPresent,
		Interrupted: res.Interrupted,
		Skipped:     skipped,
		Bands: lo.Map(res.Bands, func(b *montecarlo.BandResult, _ int) Band {
			return Band{
				Name:          b.Name,
				Absent:        b.Absent,
				Trials:        b.Trials,
				Planned:       b.Planned,
				PromotedPct:   bandStat(b, b.Promoted()),
				StandingMean:  bandStat(b, b.StandingMean),
				StandingStdev: bandStat(b, b.StandingStdev),
				Standings:     b.Standings,
				Rows: lo.Map(b.Rows, func(r montecarlo.Row, _ int) Row {
					return Row{
						Position:     r.Position,
						Label:        r.Label,
						Absent:       r.Absent,
						Trials:       r.Trials(),
						Counts:       r.Counts,
						Promoted:     pct(r, r.Promoted),
						Stay:         pct(r, r.Stay),
						Relegated:    pct(r, r.Relegated),
						Insufficient: r.Insufficient,
					}
				}),
			}
		}),
	}
}
