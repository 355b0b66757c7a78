package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/brassgrade/montecarlo"
	"github.com/domino14/brassgrade/section"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown report format")

// Options tweak the text report.
type Options struct {
	// Histogram adds a chart of each band's final standings.
	Histogram bool
	// HistogramWidth is the width of the longest bar.
	HistogramWidth int
}

// Write renders res in the named format.
func Write(w io.Writer, format string, res *montecarlo.Result, skipped []section.SkippedRow,
	opts Options) error {

	switch strings.ToLower(format) {
	case "", FormatText:
		return Text(w, res, opts)
	case FormatJSON:
		return JSON(w, NewDocument(res, skipped))
	case FormatYAML:
		return YAML(w, NewDocument(res, skipped))
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func JSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func YAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	return enc.Encode(doc)
}

// Text prints one table per band:
//
//	Cory
//	----
//	Place	Promote	 Stay	Relegate
//	--------------------------------
//	  1	 100.0	  0.0	  0.0
func Text(w io.Writer, res *montecarlo.Result, opts Options) error {
	var ss strings.Builder
	if res.Interrupted {
		fmt.Fprintf(&ss, "Simulation interrupted; tables below may be incomplete.\n")
	}
	for _, b := range res.Bands {
		BandTable(&ss, b)
		if opts.Histogram {
			if err := Histogram(&ss, b, opts.HistogramWidth); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, ss.String())
	return err
}

// BandTable writes the table of a single band.
func BandTable(ss *strings.Builder, b *montecarlo.BandResult) {
	fmt.Fprintf(ss, "\n%s\n%s\n", b.Name, strings.Repeat("-", len(b.Name)))
	fmt.Fprintf(ss, "Place\tPromote\t Stay\tRelegate\n%s\n", strings.Repeat("-", 32))
	for _, r := range b.Rows {
		label := fmt.Sprintf(" %2d\t", r.Position)
		if r.Absent {
			label = fmt.Sprintf(" %2da\t", r.Position)
		}
		if r.Insufficient {
			fmt.Fprintf(ss, "%s  insufficient samples\n", label)
			continue
		}
		fmt.Fprintf(ss, "%s% 5.1f\t% 5.1f\t%5.1f\n", label, r.Promoted, r.Stay, r.Relegated)
	}
	if b.Trials < b.Planned {
		fmt.Fprintf(ss, "trials: %d of %d\n", b.Trials, b.Planned)
	}
	if b.Trials > 0 {
		fmt.Fprintf(ss, "Overall promotion %.1f%%, final standing %.2f (sd %.2f)\n",
			b.Promoted(), b.StandingMean, b.StandingStdev)
	}
}

// Histogram charts the band's final standings, one bin per place.
func Histogram(ss *strings.Builder, b *montecarlo.BandResult, width int) error {
	if b.Trials == 0 {
		return nil
	}
	if width <= 0 {
		width = 40
	}
	fmt.Fprintf(ss, "Final standing\n")
	if places := lo.CountBy(b.Standings, func(n int) bool { return n > 0 }); places < 2 {
		_, only, _ := lo.FindIndexOf(b.Standings, func(n int) bool { return n > 0 })
		fmt.Fprintf(ss, "%d: all %d trials\n", only+1, b.Trials)
		return nil
	}
	data := make([]float64, 0, b.Trials)
	for i, n := range b.Standings {
		for range n {
			data = append(data, float64(i+1))
		}
	}
	hist := histogram.Hist(len(b.Standings), data)
	return histogram.Fprint(ss, hist, histogram.Linear(width))
}
