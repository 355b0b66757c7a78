package worker

import (
	"github.com/domino14/brassgrade/montecarlo"
	"github.com/domino14/brassgrade/report"
)

// BandRow is one band of a request's section.
type BandRow struct {
	Name        string  `json:"name"`
	TwoYearsAgo float64 `json:"two_years_ago"`
	LastYear    float64 `json:"last_year"`
}

// Request asks for a section to be simmed. The section is given either as
// Bands or as a raw CSV table in the usual three-column layout.
type Request struct {
	ID     string            `json:"id,omitempty"`
	Bands  []BandRow         `json:"bands,omitempty"`
	CSV    string            `json:"csv,omitempty"`
	Config montecarlo.Config `json:"config"`
	// Seed makes the answer reproducible.
	Seed *uint64 `json:"seed,omitempty"`
}

// Response answers a Request. Error is set if the simulation could not run,
// or ran out of time; in the latter case Result holds the partial tables.
type Response struct {
	ID     string           `json:"id,omitempty"`
	Error  string           `json:"error,omitempty"`
	Result *report.Document `json:"result,omitempty"`
}
