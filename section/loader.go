package section

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

var ErrUnknownEncoding = errors.New("unknown encoding")

// SkippedRow is an input row the loader could not turn into a band.
type SkippedRow struct {
	Line   int    `json:"line" yaml:"line"`
	Raw    string `json:"raw" yaml:"raw"`
	Reason string `json:"reason" yaml:"reason"`
}

// LoadResult is the outcome of loading a table: the accepted bands and
// every row that was skipped along the way.
type LoadResult struct {
	Section *Section
	Skipped []SkippedRow
}

// LoadOptions control how the raw table is read.
type LoadOptions struct {
	// Encoding of the input; empty means UTF-8. Old secretary spreadsheets
	// tend to be exported as Windows-1252.
	Encoding string
}

func decoderFor(enc string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.ReplaceAll(enc, "_", "-")) {
	case "", EncodingUTF8, "utf8":
		return nil, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case EncodingISO88591, "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
}

// LoadFile loads a section table from a file on disk.
func LoadFile(path string, opts LoadOptions) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, opts)
}

// Load reads rows of the form
//
//	Band Name, Result Two Years Ago, Result Last Year
//
// Columns past the third are ignored. Rows that are too short, have an empty
// name, or carry a non-numeric result are skipped and reported in the
// result rather than failing the whole load; a header row is skipped the
// same way.
func Load(r io.Reader, opts LoadOptions) (*LoadResult, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	res := &LoadResult{}
	var bands []Band
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped = append(res.Skipped, SkippedRow{
					Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		band, reason := parseRow(record)
		if reason != "" {
			res.Skipped = append(res.Skipped, SkippedRow{
				Line: line, Raw: strings.Join(record, ","), Reason: reason})
			continue
		}
		bands = append(bands, band)
	}
	res.Section = New(bands)
	if len(res.Skipped) > 0 {
		log.Debug().Int("skipped", len(res.Skipped)).Int("bands", len(bands)).
			Msg("section-rows-skipped")
	}
	return res, nil
}

func parseRow(record []string) (Band, string) {
	if len(record) < 3 {
		return Band{}, fmt.Sprintf("expected 3 fields, got %d", len(record))
	}
	name := strings.TrimSpace(record[0])
	if name == "" {
		return Band{}, "empty band name"
	}
	twoY, ok := parseResult(record[1])
	if !ok {
		return Band{}, fmt.Sprintf("result two years ago %q is not a number", record[1])
	}
	lastY, ok := parseResult(record[2])
	if !ok {
		return Band{}, fmt.Sprintf("result last year %q is not a number", record[2])
	}
	return NewBand(name, twoY, lastY), ""
}

// parseResult accepts finite numbers only; ParseFloat on its own lets
// "NaN" and "Inf" through.
func parseResult(field string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
